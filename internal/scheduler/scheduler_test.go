package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dework-labs/marketsync/internal/common"
	"github.com/dework-labs/marketsync/internal/db"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/migrations"
	"github.com/dework-labs/marketsync/internal/store"
	"github.com/dework-labs/marketsync/pkg/config"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDB := t.TempDir() + "/test_scheduler.db"

	err := migrations.RunMigrations(tmpDB)
	require.NoError(t, err)

	database, err := db.NewSQLiteDB(tmpDB)
	require.NoError(t, err)

	t.Cleanup(func() {
		database.Close()
	})

	return store.New(database, logger.NewNopLogger())
}

type fakeClient struct {
	err   error
	calls int
}

func (c *fakeClient) InitIfNeeded(ctx context.Context) error {
	c.calls++
	return c.err
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		Interval:          common.NewDuration(10 * time.Second),
		FastRetryInterval: common.NewDuration(1 * time.Second),
		BatchCap:          100,
	}
}

// staticRefresh returns a refresh map where every order refresh reports
// the given achieved freshness.
func staticRefresh(achieved time.Time, err error) map[store.EntityType]RefreshFunc {
	return map[store.EntityType]RefreshFunc{
		store.EntityTypeOrder: func(ctx context.Context, index uint64) (time.Time, error) {
			return achieved, err
		},
	}
}

func TestRunSyncsDueItem(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, st.Enqueue(ctx, &store.SyncQueueItem{
		EntityType:  store.EntityTypeOrder,
		EntityIndex: 42,
		SyncAt:      now.Add(-time.Second),
		MinLastSync: now.Add(-time.Second),
	}))

	triggered := 0
	s := New(testSyncConfig(), st, &fakeClient{}, staticRefresh(now.Add(time.Minute), nil),
		func() { triggered++ }, logger.NewNopLogger())

	interval, err := s.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, interval)
	require.Equal(t, 1, triggered)

	depth, err := st.QueueDepth(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, depth)
}

func TestRunReschedulesStaleRefresh(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	minLastSync := now.Add(time.Minute)
	require.NoError(t, st.Enqueue(ctx, &store.SyncQueueItem{
		EntityType:  store.EntityTypeOrder,
		EntityIndex: 42,
		SyncAt:      now.Add(-time.Second),
		MinLastSync: minLastSync,
	}))

	// Refresh succeeds but achieves freshness below the requirement
	s := New(testSyncConfig(), st, &fakeClient{}, staticRefresh(now, nil), nil, logger.NewNopLogger())

	_, err := s.Run(ctx)
	require.NoError(t, err)

	items, err := st.QueueItems(ctx, store.EntityTypeOrder, 42)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].RetryCount)
	require.Equal(t, minLastSync.Unix(), items[0].MinLastSync.Unix())

	// First retry backs off by 5s
	require.InDelta(t, time.Now().Add(5*time.Second).Unix(), items[0].SyncAt.Unix(), 2)
}

func TestRunReschedulesFailedRefresh(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, st.Enqueue(ctx, &store.SyncQueueItem{
		EntityType:  store.EntityTypeOrder,
		EntityIndex: 7,
		SyncAt:      now.Add(-time.Second),
		MinLastSync: now,
	}))

	triggered := 0
	s := New(testSyncConfig(), st, &fakeClient{}, staticRefresh(time.Time{}, errors.New("rpc timeout")),
		func() { triggered++ }, logger.NewNopLogger())

	_, err := s.Run(ctx)
	require.NoError(t, err)

	items, err := st.QueueItems(ctx, store.EntityTypeOrder, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].RetryCount)

	// A failed item still counts as processed, so the rebuild triggers
	require.Equal(t, 1, triggered)
}

func TestRunPurgesVanishedEntity(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 2; i++ {
		require.NoError(t, st.Enqueue(ctx, &store.SyncQueueItem{
			EntityType:  store.EntityTypeOrder,
			EntityIndex: 9,
			SyncAt:      now.Add(-time.Second),
			MinLastSync: now.Add(time.Duration(i) * time.Hour),
		}))
	}

	s := New(testSyncConfig(), st, &fakeClient{}, staticRefresh(time.Time{}, ErrEntityVanished),
		nil, logger.NewNopLogger())

	_, err := s.Run(ctx)
	require.NoError(t, err)

	depth, err := st.QueueDepth(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, depth)
}

func TestRunLeavesFutureItemUnconsumed(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, st.Enqueue(ctx, &store.SyncQueueItem{
		EntityType:  store.EntityTypeOrder,
		EntityIndex: 1,
		SyncAt:      now.Add(3 * time.Second),
		MinLastSync: now,
	}))

	triggered := 0
	s := New(testSyncConfig(), st, &fakeClient{}, staticRefresh(now, nil),
		func() { triggered++ }, logger.NewNopLogger())

	interval, err := s.Run(ctx)
	require.NoError(t, err)

	// Wake up when the item becomes due, not on the normal cadence
	require.Greater(t, interval, time.Duration(0))
	require.LessOrEqual(t, interval, 3*time.Second)
	require.Zero(t, triggered)

	depth, err := st.QueueDepth(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, depth)
}

func TestRunRespectsBatchCap(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	for i := uint64(1); i <= 150; i++ {
		require.NoError(t, st.Enqueue(ctx, &store.SyncQueueItem{
			EntityType:  store.EntityTypeOrder,
			EntityIndex: i,
			SyncAt:      now.Add(-time.Minute),
			MinLastSync: now.Add(-time.Minute),
		}))
	}

	s := New(testSyncConfig(), st, &fakeClient{}, staticRefresh(now, nil), nil, logger.NewNopLogger())

	_, err := s.Run(ctx)
	require.NoError(t, err)

	depth, err := st.QueueDepth(ctx)
	require.NoError(t, err)
	require.Equal(t, 50, depth)

	// The next invocation drains the rest
	_, err = s.Run(ctx)
	require.NoError(t, err)

	depth, err = st.QueueDepth(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, depth)
}

func TestRunFastRetryWhileDisconnected(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, st.Enqueue(ctx, &store.SyncQueueItem{
		EntityType:  store.EntityTypeOrder,
		EntityIndex: 1,
		SyncAt:      now.Add(-time.Second),
		MinLastSync: now,
	}))

	client := &fakeClient{err: errors.New("connection refused")}
	s := New(testSyncConfig(), st, client, staticRefresh(now, nil), nil, logger.NewNopLogger())

	interval, err := s.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1*time.Second, interval)

	// Nothing was consumed while disconnected
	depth, err := st.QueueDepth(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, depth)
}

func TestRunEmptyQueueDoesNotTrigger(t *testing.T) {
	st := setupTestStore(t)

	triggered := 0
	s := New(testSyncConfig(), st, &fakeClient{}, staticRefresh(time.Now(), nil),
		func() { triggered++ }, logger.NewNopLogger())

	interval, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, interval)
	require.Zero(t, triggered)
}

func TestRunDropsUnknownEntityType(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, st.Enqueue(ctx, &store.SyncQueueItem{
		EntityType:  store.EntityType("widget"),
		EntityIndex: 1,
		SyncAt:      now.Add(-time.Second),
		MinLastSync: now,
	}))

	s := New(testSyncConfig(), st, &fakeClient{}, staticRefresh(now, nil), nil, logger.NewNopLogger())

	_, err := s.Run(ctx)
	require.NoError(t, err)

	depth, err := st.QueueDepth(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, depth)
}
