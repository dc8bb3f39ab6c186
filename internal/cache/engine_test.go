package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dework-labs/marketsync/internal/db"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/migrations"
	"github.com/dework-labs/marketsync/internal/store"
	"github.com/dework-labs/marketsync/pkg/config"
)

const masterAddress = "0xMaster"

func setupTestEngine(t *testing.T) (*store.Store, *Engine, *Holder) {
	t.Helper()

	tmpDB := t.TempDir() + "/test_cache.db"

	err := migrations.RunMigrations(tmpDB)
	require.NoError(t, err)

	database, err := db.NewSQLiteDB(tmpDB)
	require.NoError(t, err)

	t.Cleanup(func() {
		database.Close()
	})

	st := store.New(database, logger.NewNopLogger())

	_, err = st.EnsureState(context.Background(), masterAddress, false)
	require.NoError(t, err)

	cfg := config.CacheConfig{
		Languages: []config.LanguageConfig{
			{Key: "en", Name: "English"},
			{Key: "de", Name: "German"},
		},
	}
	cfg.ApplyDefaults()

	holder := NewHolder()
	engine := New(cfg, st, holder, logger.NewNopLogger())

	return st, engine, holder
}

func seedUser(t *testing.T, st *store.Store, index uint64, address string) {
	t.Helper()
	require.NoError(t, st.SaveUser(context.Background(), &store.User{
		Index: index, Address: address, Status: store.UserStatusActive,
		Language: "en", LastSync: time.Now(),
	}))
}

func TestRebuildCrossLinksOrders(t *testing.T) {
	st, engine, holder := setupTestEngine(t)
	ctx := context.Background()

	seedUser(t, st, 1, "0xCustomer")
	seedUser(t, st, 2, "0xFreelancer")

	require.NoError(t, st.SaveOrder(ctx, &store.Order{
		Index: 1, Address: "0xOrder1", Status: store.OrderStatusActive,
		CustomerAddress: "0xCustomer", FreelancerAddress: "0xFreelancer",
		LastSync: time.Now(),
	}))
	require.NoError(t, st.SaveOrder(ctx, &store.Order{
		Index: 2, Address: "0xOrder2", Status: store.OrderStatusDraft,
		CustomerAddress: "0xNobody",
		LastSync:        time.Now(),
	}))

	require.Nil(t, holder.Load())
	require.NoError(t, engine.Rebuild(ctx))

	snap := holder.Load()
	require.NotNil(t, snap)
	require.Equal(t, masterAddress, snap.MasterAddress)
	require.Len(t, snap.Orders, 2)
	require.Len(t, snap.ActiveOrders, 1)

	order := snap.Order(1)
	require.NotNil(t, order)
	require.NotNil(t, order.Customer)
	require.Equal(t, "0xCustomer", order.Customer.Address)
	require.NotNil(t, order.Freelancer)
	require.Equal(t, "0xFreelancer", order.Freelancer.Address)

	// Every resolved reference points at a user present in the snapshot
	require.Equal(t, snap.UserByAddress("0xCustomer"), order.Customer)

	// Unresolvable addresses stay nil
	require.Nil(t, snap.Order(2).Customer)
}

func TestRebuildExcludesMasterPlaceholder(t *testing.T) {
	st, engine, holder := setupTestEngine(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, st.SaveAdmin(ctx, &store.Admin{Index: 1, Address: masterAddress, LastSync: now}))
	require.NoError(t, st.SaveAdmin(ctx, &store.Admin{Index: 2, Address: "0xAdmin", Status: store.AdminStatusActive, LastSync: now}))
	require.NoError(t, st.SaveUser(ctx, &store.User{Index: 1, Address: masterAddress, LastSync: now}))
	require.NoError(t, st.SaveOrder(ctx, &store.Order{Index: 1, Address: masterAddress, LastSync: now}))

	require.NoError(t, engine.Rebuild(ctx))

	snap := holder.Load()
	require.Len(t, snap.Admins, 1)
	require.Equal(t, "0xAdmin", snap.Admins[0].Address)
	require.Empty(t, snap.Users)
	require.Empty(t, snap.Orders)
	require.Empty(t, snap.UsersByStatus)
	require.Empty(t, snap.OrdersByStatus)
}

func TestRebuildTranslations(t *testing.T) {
	st, engine, holder := setupTestEngine(t)
	ctx := context.Background()

	// Three active orders in German; order 1's name has an English
	// translation, nothing has a German one.
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, st.SaveOrder(ctx, &store.Order{
			Index: i, Address: "0xOrder", Status: store.OrderStatusActive,
			Language: "de", Name: "Auftrag", NameHash: "0xh" + string(rune('0'+i)),
			LastSync: time.Now(),
		}))
	}
	require.NoError(t, st.SaveTranslation(ctx, &store.Translation{
		Hash: "0xh1", Lang: "en", Text: "Order",
	}))

	require.NoError(t, engine.Rebuild(ctx))
	snap := holder.Load()

	english := snap.TranslatedActiveOrders["en"]
	require.Len(t, english, 3)

	var first *store.Order
	for _, o := range english {
		if o.Index == 1 {
			first = o
		}
	}
	require.NotNil(t, first)
	require.NotNil(t, first.TranslatedName)
	require.Equal(t, "Order", *first.TranslatedName)
	require.Nil(t, first.TranslatedDescription)

	// No German translations exist, and the source language already is
	// German, so every field stays nil.
	for _, o := range snap.TranslatedActiveOrders["de"] {
		require.Nil(t, o.TranslatedName)
	}

	// Lookup by display name returns the same list as by key
	require.Equal(t, snap.TranslatedActiveOrders["en"], snap.TranslatedActiveOrders["English"])
	require.Equal(t, snap.TranslatedActiveOrders["de"], snap.TranslatedActiveOrders["German"])

	// The canonical untranslated orders are untouched
	for _, o := range snap.ActiveOrders {
		require.Nil(t, o.TranslatedName)
	}
}

func TestRebuildSkipsTranslationForSourceLanguage(t *testing.T) {
	st, engine, holder := setupTestEngine(t)
	ctx := context.Background()

	require.NoError(t, st.SaveOrder(ctx, &store.Order{
		Index: 1, Address: "0xOrder", Status: store.OrderStatusActive,
		Language: "en", Name: "Order", NameHash: "0xh1",
		LastSync: time.Now(),
	}))

	// A translation row into the order's own source language is ignored
	require.NoError(t, st.SaveTranslation(ctx, &store.Translation{
		Hash: "0xh1", Lang: "en", Text: "should not apply",
	}))

	require.NoError(t, engine.Rebuild(ctx))
	snap := holder.Load()

	require.Nil(t, snap.TranslatedActiveOrders["en"][0].TranslatedName)
}

func TestRebuildResponders(t *testing.T) {
	st, engine, holder := setupTestEngine(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, st.SaveOrder(ctx, &store.Order{
		Index: 1, Address: "0xOrder1", Status: store.OrderStatusActive, LastSync: now,
	}))
	require.NoError(t, st.SaveOrder(ctx, &store.Order{
		Index: 2, Address: "0xOrder2", Status: store.OrderStatusCompleted, LastSync: now,
	}))

	// Two bids from the same freelancer collapse into one set entry
	for i := 0; i < 2; i++ {
		require.NoError(t, st.SaveOrderResponse(ctx, &store.OrderResponse{
			OrderIndex: 1, FreelancerAddress: "0xF1", CreatedAt: now,
		}))
	}
	require.NoError(t, st.SaveOrderResponse(ctx, &store.OrderResponse{
		OrderIndex: 1, FreelancerAddress: "0xF2", CreatedAt: now,
	}))
	require.NoError(t, st.SaveOrderResponse(ctx, &store.OrderResponse{
		OrderIndex: 2, FreelancerAddress: "0xF1", CreatedAt: now,
	}))

	require.NoError(t, engine.Rebuild(ctx))
	snap := holder.Load()

	require.Len(t, snap.OrderResponders[1], 2)
	require.Contains(t, snap.OrderResponders[1], "0xF1")
	require.Contains(t, snap.OrderResponders[1], "0xF2")

	// Inactive orders carry no responder set
	require.NotContains(t, snap.OrderResponders, uint64(2))
}

func TestRebuildAggregates(t *testing.T) {
	st, engine, holder := setupTestEngine(t)
	ctx := context.Background()

	now := time.Now()
	orders := []*store.Order{
		{Index: 1, Address: "0x1", Status: store.OrderStatusActive, Category: "dev", Language: "en"},
		{Index: 2, Address: "0x2", Status: store.OrderStatusActive, Category: "design", Language: "de"},
		{Index: 3, Address: "0x3", Status: store.OrderStatusDraft, Category: "dev", Language: "en"},
	}
	for _, o := range orders {
		o.LastSync = now
		require.NoError(t, st.SaveOrder(ctx, o))
	}

	users := []*store.User{
		{Index: 1, Address: "0xU1", Status: store.UserStatusActive, Language: "en"},
		{Index: 2, Address: "0xU2", Status: store.UserStatusBanned, Language: "en"},
	}
	for _, u := range users {
		u.LastSync = now
		require.NoError(t, st.SaveUser(ctx, u))
	}

	require.NoError(t, engine.Rebuild(ctx))
	snap := holder.Load()

	require.Equal(t, map[string]int{
		store.OrderStatusActive: 2,
		store.OrderStatusDraft:  1,
	}, snap.OrdersByStatus)
	require.Equal(t, map[string]int{"dev": 2, "design": 1}, snap.OrdersByCategory)
	require.Equal(t, map[string]int{"en": 2, "de": 1}, snap.OrdersByLanguage)
	require.Equal(t, map[string]int{
		store.UserStatusActive: 1,
		store.UserStatusBanned: 1,
	}, snap.UsersByStatus)
	require.Equal(t, map[string]int{"en": 2}, snap.UsersByLanguage)
}

func TestRebuildReplacesSnapshotWholesale(t *testing.T) {
	st, engine, holder := setupTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.Rebuild(ctx))
	first := holder.Load()

	seedUser(t, st, 1, "0xUser")
	require.NoError(t, engine.Rebuild(ctx))
	second := holder.Load()

	require.NotSame(t, first, second)
	require.Empty(t, first.Users)
	require.Len(t, second.Users, 1)
}

func TestTriggerCollapses(t *testing.T) {
	_, engine, _ := setupTestEngine(t)

	// Repeated triggers while no rebuild consumed them collapse into one
	for i := 0; i < 10; i++ {
		engine.Trigger()
	}

	require.Len(t, engine.trigger, 1)
}
