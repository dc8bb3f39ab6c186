package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/store"
)

// ErrEntityVanished is returned by a refresh when the referenced entity
// no longer exists. The scheduler purges the queue rows and moves on.
var ErrEntityVanished = errors.New("entity no longer exists")

// RefreshFunc refreshes one entity from the authoritative remote source
// and returns the freshness timestamp actually achieved.
type RefreshFunc func(ctx context.Context, index uint64) (time.Time, error)

// ContractReader re-reads one entity's fields from its on-chain contract
// and stamps LastSync with the achieved freshness. Implemented by the
// remote parser collaborator; all retry logic stays in the scheduler.
type ContractReader interface {
	ReadAdmin(ctx context.Context, a *store.Admin) error
	ReadUser(ctx context.Context, u *store.User) error
	ReadOrder(ctx context.Context, o *store.Order) error
}

// StoreRefresher builds per-type refresh operations from the entity store
// and a contract reader. A refresh loads the stored record, re-reads it
// from the chain and persists the result; nothing is written on failure.
type StoreRefresher struct {
	store  *store.Store
	reader ContractReader
	log    *logger.Logger
}

// NewStoreRefresher creates a StoreRefresher.
func NewStoreRefresher(st *store.Store, reader ContractReader, log *logger.Logger) *StoreRefresher {
	return &StoreRefresher{
		store:  st,
		reader: reader,
		log:    log,
	}
}

// Funcs returns the closed dispatch table, one refresh operation per
// entity type.
func (r *StoreRefresher) Funcs() map[store.EntityType]RefreshFunc {
	return map[store.EntityType]RefreshFunc{
		store.EntityTypeAdmin: r.refreshAdmin,
		store.EntityTypeUser:  r.refreshUser,
		store.EntityTypeOrder: r.refreshOrder,
	}
}

func (r *StoreRefresher) refreshAdmin(ctx context.Context, index uint64) (time.Time, error) {
	admin, err := r.store.Admin(ctx, index)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, ErrEntityVanished
	}
	if err != nil {
		return time.Time{}, err
	}

	if err := r.reader.ReadAdmin(ctx, admin); err != nil {
		return time.Time{}, fmt.Errorf("failed to read admin %d: %w", index, err)
	}

	if err := r.store.SaveAdmin(ctx, admin); err != nil {
		return time.Time{}, err
	}

	return admin.LastSync, nil
}

func (r *StoreRefresher) refreshUser(ctx context.Context, index uint64) (time.Time, error) {
	user, err := r.store.User(ctx, index)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, ErrEntityVanished
	}
	if err != nil {
		return time.Time{}, err
	}

	if err := r.reader.ReadUser(ctx, user); err != nil {
		return time.Time{}, fmt.Errorf("failed to read user %d: %w", index, err)
	}

	if err := r.store.SaveUser(ctx, user); err != nil {
		return time.Time{}, err
	}

	return user.LastSync, nil
}

func (r *StoreRefresher) refreshOrder(ctx context.Context, index uint64) (time.Time, error) {
	order, err := r.store.Order(ctx, index)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, ErrEntityVanished
	}
	if err != nil {
		return time.Time{}, err
	}

	if err := r.reader.ReadOrder(ctx, order); err != nil {
		return time.Time{}, fmt.Errorf("failed to read order %d: %w", index, err)
	}

	if err := r.store.SaveOrder(ctx, order); err != nil {
		return time.Time{}, err
	}

	return order.LastSync, nil
}
