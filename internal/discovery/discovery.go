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

// Discovery compares the entity counts reported by the master contract
// against the highest locally known index per type and enqueues a sync
// for every index not yet mirrored. New entities get a stub row first so
// the refresh path finds them.
type Discovery struct {
	store    *store.Store
	client   *remote.Client
	reader   *remote.Reader
	interval time.Duration
	log      *logger.Logger
}

// New creates a Discovery task.
func New(st *store.Store, client *remote.Client, reader *remote.Reader, interval time.Duration, log *logger.Logger) *Discovery {
	return &Discovery{
		store:    st,
		client:   client,
		reader:   reader,
		interval: interval,
		log:      log.WithComponent(common.ComponentDiscovery),
	}
}

// Name returns the task name.
func (d *Discovery) Name() string {
	return common.ComponentDiscovery
}

// Interval returns the polling cadence.
func (d *Discovery) Interval() time.Duration {
	return d.interval
}

// Run performs one discovery pass. While the remote client is not yet
// connected the pass is a no-op; the sync scheduler owns connection
// establishment.
func (d *Discovery) Run(ctx context.Context) (time.Duration, error) {
	if !d.client.Ready() {
		return d.interval, nil
	}

	counts, err := d.reader.Counts(ctx)
	if err != nil {
		return d.interval, fmt.Errorf("failed to read entity counts: %w", err)
	}

	now := time.Now()

	for _, probe := range []struct {
		entityType store.EntityType
		count      uint64
	}{
		{store.EntityTypeAdmin, counts.Admins},
		{store.EntityTypeUser, counts.Users},
		{store.EntityTypeOrder, counts.Orders},
	} {
		if err := d.discoverType(ctx, probe.entityType, probe.count, now); err != nil {
			return d.interval, err
		}
	}

	return d.interval, nil
}

func (d *Discovery) discoverType(ctx context.Context, entityType store.EntityType, count uint64, now time.Time) error {
	maxIdx, any, err := d.store.MaxIndex(ctx, entityType)
	if err != nil {
		return err
	}

	// Contract indices are 1-based and dense.
	next := uint64(1)
	if any {
		next = maxIdx + 1
	}
	if next > count {
		return nil
	}

	for idx := next; idx <= count; idx++ {
		if err := d.registerStub(ctx, entityType, idx); err != nil {
			return err
		}

		err := d.store.Enqueue(ctx, &store.SyncQueueItem{
			EntityType:  entityType,
			EntityIndex: idx,
			SyncAt:      now,
			MinLastSync: now,
		})
		if err != nil {
			return err
		}
	}

	DiscoveredAdd(entityType, int(count-next)+1)
	d.log.Infof("discovered %d new %s entities (%d..%d)", count-next+1, entityType, next, count)

	return nil
}

// registerStub inserts an empty placeholder row for a newly discovered
// index. Zero LastSync means any later refresh wins the monotonic upsert.
func (d *Discovery) registerStub(ctx context.Context, entityType store.EntityType, index uint64) error {
	switch entityType {
	case store.EntityTypeAdmin:
		return d.store.SaveAdmin(ctx, &store.Admin{Index: index})
	case store.EntityTypeUser:
		return d.store.SaveUser(ctx, &store.User{Index: index})
	case store.EntityTypeOrder:
		return d.store.SaveOrder(ctx, &store.Order{Index: index})
	default:
		return fmt.Errorf("unknown entity type %q", entityType)
	}
}
