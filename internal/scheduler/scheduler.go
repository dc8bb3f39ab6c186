package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/dework-labs/marketsync/internal/common"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/store"
	"github.com/dework-labs/marketsync/pkg/config"
)

// RemoteInitializer is the connection-management surface of the remote
// data client. While the connection is not yet established the scheduler
// runs in fast-retry mode instead of its normal cadence.
type RemoteInitializer interface {
	InitIfNeeded(ctx context.Context) error
}

// Scheduler drains the sync queue, dispatching each due item to the
// refresh operation for its entity type and applying backoff on failure
// or insufficient freshness. One invocation processes at most BatchCap
// items, so it always terminates in bounded work.
type Scheduler struct {
	store     *store.Store
	client    RemoteInitializer
	refresh   map[store.EntityType]RefreshFunc
	trigger   func()
	log       *logger.Logger
	interval  time.Duration
	fastRetry time.Duration
	batchCap  int
}

// New creates a Scheduler. trigger is invoked once after any invocation
// that processed at least one item; wiring it to the cache engine's
// debounced trigger keeps snapshots fresh right after sync activity.
func New(
	cfg config.SyncConfig,
	st *store.Store,
	client RemoteInitializer,
	refresh map[store.EntityType]RefreshFunc,
	trigger func(),
	log *logger.Logger,
) *Scheduler {
	if trigger == nil {
		trigger = func() {}
	}

	return &Scheduler{
		store:     st,
		client:    client,
		refresh:   refresh,
		trigger:   trigger,
		log:       log.WithComponent(common.ComponentScheduler),
		interval:  cfg.Interval.Duration,
		fastRetry: cfg.FastRetryInterval.Duration,
		batchCap:  cfg.BatchCap,
	}
}

// Name returns the task name.
func (s *Scheduler) Name() string {
	return common.ComponentScheduler
}

// Interval returns the normal polling cadence.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run performs one scheduler invocation and returns the interval until
// the next one. The returned interval shrinks to the next item's due
// time when that is sooner than the normal cadence.
func (s *Scheduler) Run(ctx context.Context) (time.Duration, error) {
	if err := s.client.InitIfNeeded(ctx); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.log.Warnf("remote client not ready, running in fast-retry mode: %v", err)
		return s.fastRetry, nil
	}

	interval := s.interval
	processed := 0

	for i := 0; i < s.batchCap; i++ {
		if ctx.Err() != nil {
			break
		}

		item, err := s.store.EarliestQueueItem(ctx)
		if errors.Is(err, store.ErrNotFound) {
			break
		}
		if err != nil {
			// Store-level failures terminate this invocation; the
			// periodic runner restarts the work on its next tick.
			return interval, err
		}

		now := time.Now()
		if item.SyncAt.After(now) {
			// Not due yet: leave it queued and wake up exactly when it
			// becomes due, or on the normal cadence, whichever is sooner.
			if until := item.SyncAt.Sub(now); until < interval {
				interval = until
			}
			break
		}

		s.syncItem(ctx, item, now)
		processed++
	}

	if processed > 0 {
		s.log.Debugf("processed %d queue items", processed)
		s.trigger()
	}

	ObserveQueueDepth(ctx, s.store)

	return interval, nil
}

// syncItem refreshes one queue item and settles its queue rows.
func (s *Scheduler) syncItem(ctx context.Context, item *store.SyncQueueItem, now time.Time) {
	refresh, ok := s.refresh[item.EntityType]
	if !ok {
		if _, err := s.store.PurgeQueueItems(ctx, item.EntityType, item.EntityIndex); err != nil {
			s.log.Errorf("failed to purge queue rows for unknown type %s: %v", item.EntityType, err)
		}
		s.log.Warnf("dropped queue item for unknown entity type %q", item.EntityType)
		return
	}

	achieved, err := refresh(ctx, item.EntityIndex)

	switch {
	case errors.Is(err, ErrEntityVanished):
		if _, perr := s.store.PurgeQueueItems(ctx, item.EntityType, item.EntityIndex); perr != nil {
			s.log.Errorf("failed to purge queue rows for %s #%d: %v", item.EntityType, item.EntityIndex, perr)
		}
		s.log.Warnf("skipped %s #%d: entity no longer exists", item.EntityType, item.EntityIndex)
		ItemSyncedInc(item.EntityType, "skipped")

	case err != nil:
		delay := s.reschedule(ctx, item, now)
		s.log.Errorf("refresh of %s #%d failed, retry %d in %s: %v",
			item.EntityType, item.EntityIndex, item.RetryCount, delay, err)
		ItemSyncedInc(item.EntityType, "error")

	default:
		deleted, derr := s.store.DeleteQueueItems(ctx, item.EntityType, item.EntityIndex, achieved)
		if derr != nil {
			s.log.Errorf("failed to settle queue rows for %s #%d: %v", item.EntityType, item.EntityIndex, derr)
		}

		if achieved.Before(item.MinLastSync) {
			// The refresh ran but the achieved freshness is still below
			// what this item requires, e.g. remote state moved again
			// mid-refresh. Soft retry with the same backoff policy.
			delay := s.reschedule(ctx, item, now)
			s.log.Warnf("refresh of %s #%d reached %d, below required %d; retry %d in %s",
				item.EntityType, item.EntityIndex,
				achieved.Unix(), item.MinLastSync.Unix(), item.RetryCount, delay)
			ItemSyncedInc(item.EntityType, "stale")
		} else {
			s.log.Debugf("synced %s #%d, settled %d queue rows", item.EntityType, item.EntityIndex, deleted)
			ItemSyncedInc(item.EntityType, "synced")
		}
	}
}

// reschedule pushes the item back with a backoff delay derived from its
// retry count and returns the applied delay.
func (s *Scheduler) reschedule(ctx context.Context, item *store.SyncQueueItem, now time.Time) time.Duration {
	delay := BackoffDelay(item.RetryCount)
	item.SyncAt = now.Add(delay)
	item.RetryCount++

	if err := s.store.UpdateQueueItem(ctx, item); err != nil {
		s.log.Errorf("failed to reschedule %s #%d: %v", item.EntityType, item.EntityIndex, err)
	}

	return delay
}
