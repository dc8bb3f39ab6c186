package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dework-labs/marketsync/internal/db"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/migrations"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDB := t.TempDir() + "/test_store.db"

	err := migrations.RunMigrations(tmpDB)
	require.NoError(t, err)

	database, err := db.NewSQLiteDB(tmpDB)
	require.NoError(t, err)

	t.Cleanup(func() {
		database.Close()
	})

	return New(database, logger.NewNopLogger())
}

func TestEnsureState(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	// First run creates the state row
	state, err := st.EnsureState(ctx, "0xMaster", true)
	require.NoError(t, err)
	require.Equal(t, "0xMaster", state.MasterAddress)
	require.True(t, state.InMainnet)
	require.Equal(t, uint64(0), state.LastSeqNo)

	// Matching restart succeeds
	state, err = st.EnsureState(ctx, "0xMaster", true)
	require.NoError(t, err)
	require.Equal(t, "0xMaster", state.MasterAddress)

	// Conflicting master address is fatal
	_, err = st.EnsureState(ctx, "0xOther", true)
	require.ErrorIs(t, err, ErrStateMismatch)

	// Conflicting network flag is fatal
	_, err = st.EnsureState(ctx, "0xMaster", false)
	require.ErrorIs(t, err, ErrStateMismatch)
}

func TestSetLastSeqNo(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, err := st.EnsureState(ctx, "0xMaster", false)
	require.NoError(t, err)

	require.NoError(t, st.SetLastSeqNo(ctx, 42))

	state, err := st.State(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(42), state.LastSeqNo)
}

func TestSaveOrderMonotonic(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	order := &Order{
		Index:    7,
		Address:  "0xOrder7",
		Status:   OrderStatusActive,
		Name:     "first",
		LastSync: base,
	}
	require.NoError(t, st.SaveOrder(ctx, order))

	// A fresher write wins
	order.Name = "second"
	order.LastSync = base.Add(time.Minute)
	require.NoError(t, st.SaveOrder(ctx, order))

	got, err := st.Order(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "second", got.Name)
	require.Equal(t, base.Add(time.Minute).Unix(), got.LastSync.Unix())

	// A stale write persists nothing
	stale := &Order{
		Index:    7,
		Address:  "0xOrder7",
		Status:   OrderStatusCancelled,
		Name:     "stale",
		LastSync: base,
	}
	require.NoError(t, st.SaveOrder(ctx, stale))

	got, err = st.Order(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "second", got.Name)
	require.Equal(t, OrderStatusActive, got.Status)
	require.Equal(t, base.Add(time.Minute).Unix(), got.LastSync.Unix())
}

func TestEntityNotFound(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, err := st.Admin(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = st.User(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = st.Order(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMaxIndexAndIndices(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, any, err := st.MaxIndex(ctx, EntityTypeUser)
	require.NoError(t, err)
	require.False(t, any)

	now := time.Now()
	for _, idx := range []uint64{1, 2, 5} {
		require.NoError(t, st.SaveUser(ctx, &User{Index: idx, Address: "0x", LastSync: now}))
	}

	max, any, err := st.MaxIndex(ctx, EntityTypeUser)
	require.NoError(t, err)
	require.True(t, any)
	require.Equal(t, uint64(5), max)

	indices, err := st.Indices(ctx, EntityTypeUser)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 5}, indices)
}

func TestListEntities(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, st.SaveAdmin(ctx, &Admin{Index: 1, Address: "0xA", Status: AdminStatusActive, LastSync: now}))
	require.NoError(t, st.SaveUser(ctx, &User{Index: 1, Address: "0xU", Status: UserStatusActive, Language: "en", LastSync: now}))
	require.NoError(t, st.SaveOrder(ctx, &Order{Index: 1, Address: "0xO", Status: OrderStatusDraft, LastSync: now}))

	admins, err := st.Admins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)

	users, err := st.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	orders, err := st.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}
