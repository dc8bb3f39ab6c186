package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/dework-labs/marketsync/internal/common"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/remote"
	"github.com/dework-labs/marketsync/internal/store"
)

// HeadTracker records the latest observed chain sequence number into the
// persisted indexer state.
type HeadTracker struct {
	store    *store.Store
	client   *remote.Client
	interval time.Duration
	log      *logger.Logger
}

// NewHeadTracker creates a HeadTracker task.
func NewHeadTracker(st *store.Store, client *remote.Client, interval time.Duration, log *logger.Logger) *HeadTracker {
	return &HeadTracker{
		store:    st,
		client:   client,
		interval: interval,
		log:      log.WithComponent(common.ComponentHeadTracker),
	}
}

// Name returns the task name.
func (h *HeadTracker) Name() string {
	return common.ComponentHeadTracker
}

// Interval returns the polling cadence.
func (h *HeadTracker) Interval() time.Duration {
	return h.interval
}

// Run records the latest block number as the indexer's last seen
// sequence number. A no-op while the remote client is not connected.
func (h *HeadTracker) Run(ctx context.Context) (time.Duration, error) {
	if !h.client.Ready() {
		return h.interval, nil
	}

	header, err := h.client.LatestHeader(ctx)
	if err != nil {
		return h.interval, fmt.Errorf("failed to get latest header: %w", err)
	}

	seqNo := header.Number.Uint64()
	if err := h.store.SetLastSeqNo(ctx, seqNo); err != nil {
		return h.interval, err
	}

	HeadSeqNoLog(seqNo)
	h.log.Debugf("chain head at %d", seqNo)

	return h.interval, nil
}
