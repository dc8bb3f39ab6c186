package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/store"
)

type fakeReader struct {
	err      error
	achieved time.Time
	name     string
}

func (r *fakeReader) ReadAdmin(ctx context.Context, a *store.Admin) error {
	if r.err != nil {
		return r.err
	}
	a.Status = store.AdminStatusActive
	a.LastSync = r.achieved
	return nil
}

func (r *fakeReader) ReadUser(ctx context.Context, u *store.User) error {
	if r.err != nil {
		return r.err
	}
	u.Status = store.UserStatusActive
	u.LastSync = r.achieved
	return nil
}

func (r *fakeReader) ReadOrder(ctx context.Context, o *store.Order) error {
	if r.err != nil {
		return r.err
	}
	o.Status = store.OrderStatusActive
	o.Name = r.name
	o.LastSync = r.achieved
	return nil
}

func TestRefreshOrderPersistsResult(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveOrder(ctx, &store.Order{
		Index: 42, Status: store.OrderStatusDraft, Name: "old", LastSync: base,
	}))

	achieved := base.Add(time.Hour)
	r := NewStoreRefresher(st, &fakeReader{achieved: achieved, name: "new"}, logger.NewNopLogger())

	got, err := r.Funcs()[store.EntityTypeOrder](ctx, 42)
	require.NoError(t, err)
	require.Equal(t, achieved, got)

	order, err := st.Order(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "new", order.Name)
	require.Equal(t, store.OrderStatusActive, order.Status)
	require.Equal(t, achieved.Unix(), order.LastSync.Unix())
}

func TestRefreshMissingEntityReportsVanished(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	r := NewStoreRefresher(st, &fakeReader{achieved: time.Now()}, logger.NewNopLogger())

	for _, refresh := range r.Funcs() {
		_, err := refresh(ctx, 999)
		require.ErrorIs(t, err, ErrEntityVanished)
	}
}

func TestRefreshErrorLeavesEntityUnchanged(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveOrder(ctx, &store.Order{
		Index: 42, Status: store.OrderStatusDraft, Name: "old", LastSync: base,
	}))

	r := NewStoreRefresher(st, &fakeReader{err: errors.New("rpc timeout")}, logger.NewNopLogger())

	_, err := r.Funcs()[store.EntityTypeOrder](ctx, 42)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrEntityVanished)

	order, err := st.Order(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "old", order.Name)
	require.Equal(t, store.OrderStatusDraft, order.Status)
	require.Equal(t, base.Unix(), order.LastSync.Unix())
}
