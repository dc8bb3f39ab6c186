package cache

import (
	"sync/atomic"
	"time"

	"github.com/dework-labs/marketsync/internal/store"
)

// Snapshot is one immutable, internally consistent view of the indexed
// state. A snapshot is assembled off to the side and published wholesale;
// nothing mutates it after publication, so readers share it without locks.
type Snapshot struct {
	MasterAddress string
	InMainnet     bool
	LastSeqNo     uint64

	Admins []*store.Admin
	Users  []*store.User
	Orders []*store.Order

	// ActiveOrders is the subset of Orders with active status, untranslated.
	ActiveOrders []*store.Order

	// TranslatedActiveOrders holds per-language copies of the active
	// orders with translated fields populated. Keyed by both the language
	// key and its display name, so lookups accept either form.
	TranslatedActiveOrders map[string][]*store.Order

	// OrderResponders maps an active order's index to the distinct set of
	// freelancer addresses that have responded to it.
	OrderResponders map[uint64]map[string]struct{}

	OrdersByStatus   map[string]int
	OrdersByCategory map[string]int
	OrdersByLanguage map[string]int
	UsersByStatus    map[string]int
	UsersByLanguage  map[string]int

	BuiltAt time.Time
}

// Order returns the order with the given index, or nil.
func (s *Snapshot) Order(index uint64) *store.Order {
	for _, o := range s.Orders {
		if o.Index == index {
			return o
		}
	}
	return nil
}

// User returns the user with the given index, or nil.
func (s *Snapshot) User(index uint64) *store.User {
	for _, u := range s.Users {
		if u.Index == index {
			return u
		}
	}
	return nil
}

// UserByAddress returns the user with the given address, or nil.
// Addresses are case-sensitive exact matches.
func (s *Snapshot) UserByAddress(address string) *store.User {
	for _, u := range s.Users {
		if u.Address == address {
			return u
		}
	}
	return nil
}

// Holder publishes the current snapshot behind an atomic reference.
// Load before the first publication returns nil.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates an empty Holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Load returns the current snapshot, or nil when none has been published.
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// Store publishes snap as the current snapshot.
func (h *Holder) Store(snap *Snapshot) {
	h.current.Store(snap)
}
