package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/dework-labs/marketsync/internal/common"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/store"
)

// Resync periodically enqueues a forced refresh for every known entity
// of one type. MinLastSync is set to the enqueue time, so a refresh only
// settles the row once it achieves freshness from after the resync began.
type Resync struct {
	store      *store.Store
	entityType store.EntityType
	interval   time.Duration
	log        *logger.Logger
}

// NewResync creates a Resync task for the given entity type.
func NewResync(st *store.Store, entityType store.EntityType, interval time.Duration, log *logger.Logger) *Resync {
	return &Resync{
		store:      st,
		entityType: entityType,
		interval:   interval,
		log:        log.WithComponent(common.ComponentResync),
	}
}

// Name returns the task name.
func (r *Resync) Name() string {
	return fmt.Sprintf("%s-%s", common.ComponentResync, r.entityType)
}

// Interval returns the resync cadence.
func (r *Resync) Interval() time.Duration {
	return r.interval
}

// Run enqueues one refresh per known entity of the task's type.
func (r *Resync) Run(ctx context.Context) (time.Duration, error) {
	indices, err := r.store.Indices(ctx, r.entityType)
	if err != nil {
		return r.interval, err
	}

	now := time.Now()
	for _, idx := range indices {
		err := r.store.Enqueue(ctx, &store.SyncQueueItem{
			EntityType:  r.entityType,
			EntityIndex: idx,
			SyncAt:      now,
			MinLastSync: now,
		})
		if err != nil {
			return r.interval, err
		}
	}

	if len(indices) > 0 {
		r.log.Debugf("enqueued resync of %d %s entities", len(indices), r.entityType)
	}

	return r.interval, nil
}
