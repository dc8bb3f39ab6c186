package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dework-labs/marketsync/internal/common"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/store"
	"github.com/dework-labs/marketsync/pkg/config"
)

// Engine rebuilds the published snapshot from the store, on a fixed
// cadence and on demand via Trigger. A rebuild is all or nothing: any
// error aborts it and the previous snapshot stays current.
type Engine struct {
	store     *store.Store
	holder    *Holder
	languages []config.LanguageConfig
	interval  time.Duration
	trigger   chan struct{}
	log       *logger.Logger
}

// New creates an Engine publishing into holder.
func New(cfg config.CacheConfig, st *store.Store, holder *Holder, log *logger.Logger) *Engine {
	return &Engine{
		store:     st,
		holder:    holder,
		languages: cfg.Languages,
		interval:  cfg.RebuildInterval.Duration,
		trigger:   make(chan struct{}, 1),
		log:       log.WithComponent(common.ComponentCache),
	}
}

// Trigger requests an immediate rebuild. Requests arriving while a
// rebuild is pending or in flight collapse into a single subsequent run.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run rebuilds once immediately, then on every tick of the cadence and
// on every Trigger, until ctx is cancelled. Rebuild errors are logged
// and do not stop the loop.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Infof("starting, rebuild interval %s", e.interval)

	e.rebuildLogged(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("stopping")
			return ctx.Err()
		case <-ticker.C:
			e.rebuildLogged(ctx)
		case <-e.trigger:
			e.rebuildLogged(ctx)
		}
	}
}

func (e *Engine) rebuildLogged(ctx context.Context) {
	if err := e.Rebuild(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		e.log.Errorf("rebuild failed: %v", err)
	}
}

// Rebuild assembles a new snapshot from the store and publishes it.
// On error nothing is published.
func (e *Engine) Rebuild(ctx context.Context) error {
	started := time.Now()

	snap, err := e.build(ctx)
	if err != nil {
		RebuildInc("error")
		return err
	}

	e.holder.Store(snap)

	RebuildInc("success")
	RebuildDurationLog(time.Since(started))
	SnapshotSizeLog(len(snap.Admins), len(snap.Users), len(snap.Orders), len(snap.ActiveOrders))

	e.log.Debugf("published snapshot: %d admins, %d users, %d orders (%d active) in %s",
		len(snap.Admins), len(snap.Users), len(snap.Orders), len(snap.ActiveOrders), time.Since(started))

	return nil
}

func (e *Engine) build(ctx context.Context) (*Snapshot, error) {
	state, err := e.store.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load indexer state: %w", err)
	}

	admins, err := e.store.Admins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}

	users, err := e.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	orders, err := e.store.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	// The master contract registers itself as a placeholder entity in
	// every collection. It carries no data and is excluded everywhere.
	admins = dropMaster(admins, state.MasterAddress, func(a *store.Admin) string { return a.Address })
	users = dropMaster(users, state.MasterAddress, func(u *store.User) string { return u.Address })
	orders = dropMaster(orders, state.MasterAddress, func(o *store.Order) string { return o.Address })

	usersByAddress := make(map[string]*store.User, len(users))
	for _, u := range users {
		usersByAddress[u.Address] = u
	}

	var active []*store.Order
	for _, o := range orders {
		o.Customer = usersByAddress[o.CustomerAddress]
		o.Freelancer = usersByAddress[o.FreelancerAddress]
		if o.Status == store.OrderStatusActive {
			active = append(active, o)
		}
	}

	translated, err := e.translateActive(ctx, active)
	if err != nil {
		return nil, err
	}

	responders, err := e.collectResponders(ctx, active)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		MasterAddress:          state.MasterAddress,
		InMainnet:              state.InMainnet,
		LastSeqNo:              state.LastSeqNo,
		Admins:                 admins,
		Users:                  users,
		Orders:                 orders,
		ActiveOrders:           active,
		TranslatedActiveOrders: translated,
		OrderResponders:        responders,
		OrdersByStatus:         map[string]int{},
		OrdersByCategory:       map[string]int{},
		OrdersByLanguage:       map[string]int{},
		UsersByStatus:          map[string]int{},
		UsersByLanguage:        map[string]int{},
		BuiltAt:                time.Now(),
	}

	for _, o := range orders {
		snap.OrdersByStatus[o.Status]++
		snap.OrdersByCategory[o.Category]++
		snap.OrdersByLanguage[o.Language]++
	}
	for _, u := range users {
		snap.UsersByStatus[u.Status]++
		snap.UsersByLanguage[u.Language]++
	}

	return snap, nil
}

// translateActive builds, for every configured language, a list of
// shallow copies of the active orders with translated fields populated.
// A translated field stays nil when no translation row exists or when
// the order's source language already equals the target. Each list is
// indexed under both the language key and its display name.
func (e *Engine) translateActive(ctx context.Context, active []*store.Order) (map[string][]*store.Order, error) {
	rows, err := e.store.Translations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	type key struct{ hash, lang string }
	lookup := make(map[key]string, len(rows))
	for _, t := range rows {
		lookup[key{t.Hash, t.Lang}] = t.Text
	}

	out := make(map[string][]*store.Order, 2*len(e.languages))

	for _, lang := range e.languages {
		list := make([]*store.Order, 0, len(active))

		for _, o := range active {
			cp := o.Copy()
			if o.Language != lang.Key {
				if text, ok := lookup[key{o.NameHash, lang.Key}]; ok {
					cp.TranslatedName = &text
				}
				if text, ok := lookup[key{o.DescriptionHash, lang.Key}]; ok {
					cp.TranslatedDescription = &text
				}
				if text, ok := lookup[key{o.TechnicalTaskHash, lang.Key}]; ok {
					cp.TranslatedTechnicalTask = &text
				}
			}
			list = append(list, cp)
		}

		out[lang.Key] = list
		out[lang.Name] = list
	}

	return out, nil
}

// collectResponders maps each active order's index to the distinct set
// of freelancer addresses that have responded to it.
func (e *Engine) collectResponders(ctx context.Context, active []*store.Order) (map[uint64]map[string]struct{}, error) {
	rows, err := e.store.OrderResponses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load order responses: %w", err)
	}

	activeSet := make(map[uint64]struct{}, len(active))
	for _, o := range active {
		activeSet[o.Index] = struct{}{}
	}

	out := make(map[uint64]map[string]struct{}, len(active))
	for _, r := range rows {
		if _, ok := activeSet[r.OrderIndex]; !ok {
			continue
		}
		set := out[r.OrderIndex]
		if set == nil {
			set = map[string]struct{}{}
			out[r.OrderIndex] = set
		}
		set[r.FreelancerAddress] = struct{}{}
	}

	return out, nil
}

func dropMaster[T any](items []*T, master string, address func(*T) string) []*T {
	out := items[:0]
	for _, it := range items {
		if address(it) == master {
			continue
		}
		out = append(out, it)
	}
	return out
}
