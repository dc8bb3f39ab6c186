package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrStateMismatch is returned when the persisted indexer state conflicts
// with the current configuration. Starting against the wrong chain or
// master contract would silently corrupt the mirror, so this is fatal.
var ErrStateMismatch = errors.New("persisted indexer state conflicts with configuration")

// EntityType identifies one kind of tracked on-chain entity.
type EntityType string

const (
	EntityTypeAdmin EntityType = "admin"
	EntityTypeUser  EntityType = "user"
	EntityTypeOrder EntityType = "order"
)

// String returns the string representation of the entity type.
func (t EntityType) String() string {
	return string(t)
}

// Order status values as mirrored from the contract.
const (
	OrderStatusDraft      = "draft"
	OrderStatusActive     = "active"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// User status values as mirrored from the contract.
const (
	UserStatusModeration = "moderation"
	UserStatusActive     = "active"
	UserStatusBanned     = "banned"
)

// Admin status values as mirrored from the contract.
const (
	AdminStatusActive  = "active"
	AdminStatusRevoked = "revoked"
)

// SyncQueueItem is one pending refresh in the durable sync queue.
// Multiple rows for the same (EntityType, EntityIndex) may coexist
// transiently; a successful sync removes every row for the key whose
// MinLastSync is at or below the achieved freshness.
type SyncQueueItem struct {
	ID          int64      `meddler:"id,pk"`
	EntityType  EntityType `meddler:"entity_type"`
	EntityIndex uint64     `meddler:"entity_index"`
	SyncAt      time.Time  `meddler:"sync_at,unixtime"`
	MinLastSync time.Time  `meddler:"min_last_sync,unixtime"`
	RetryCount  int        `meddler:"retry_count"`
}

// IndexerState is the single persisted settings row. MasterAddress and
// InMainnet are written once and checked on every start; LastSeqNo tracks
// the latest observed chain sequence number.
type IndexerState struct {
	ID            int64  `meddler:"id,pk"`
	MasterAddress string `meddler:"master_address"`
	InMainnet     bool   `meddler:"in_mainnet"`
	LastSeqNo     uint64 `meddler:"last_seq_no"`
}

// Admin mirrors one administrator contract.
type Admin struct {
	Index    uint64    `meddler:"idx,pk"`
	Address  string    `meddler:"address"`
	Status   string    `meddler:"status"`
	LastSync time.Time `meddler:"last_sync,unixtime"`
}

// User mirrors one user contract.
type User struct {
	Index    uint64    `meddler:"idx,pk"`
	Address  string    `meddler:"address"`
	Status   string    `meddler:"status"`
	Language string    `meddler:"language"`
	Name     string    `meddler:"name"`
	LastSync time.Time `meddler:"last_sync,unixtime"`
}

// Order mirrors one order contract. The free-text fields carry content
// hashes used as translation keys.
type Order struct {
	Index             uint64    `meddler:"idx,pk"`
	Address           string    `meddler:"address"`
	Status            string    `meddler:"status"`
	Category          string    `meddler:"category"`
	Language          string    `meddler:"language"`
	Price             uint64    `meddler:"price"`
	CustomerAddress   string    `meddler:"customer_address"`
	FreelancerAddress string    `meddler:"freelancer_address"`
	Name              string    `meddler:"name"`
	NameHash          string    `meddler:"name_hash"`
	Description       string    `meddler:"description"`
	DescriptionHash   string    `meddler:"description_hash"`
	TechnicalTask     string    `meddler:"technical_task"`
	TechnicalTaskHash string    `meddler:"technical_task_hash"`
	LastSync          time.Time `meddler:"last_sync,unixtime"`

	// Snapshot-only fields, resolved during cache rebuilds and never persisted.
	Customer   *User `meddler:"-" json:"customer,omitempty"`
	Freelancer *User `meddler:"-" json:"freelancer,omitempty"`

	// Per-language translated variants, populated only on snapshot copies.
	TranslatedName          *string `meddler:"-" json:"translated_name,omitempty"`
	TranslatedDescription   *string `meddler:"-" json:"translated_description,omitempty"`
	TranslatedTechnicalTask *string `meddler:"-" json:"translated_technical_task,omitempty"`
}

// Copy returns a shallow value copy of the order. Snapshot code must copy
// before setting any translated field so the canonical order stays untouched.
func (o *Order) Copy() *Order {
	cp := *o
	return &cp
}

// Translation holds translated text for one (content hash, language) pair.
// Rows are produced by the translation collaborator; the core only reads them.
type Translation struct {
	Hash string `meddler:"hash"`
	Lang string `meddler:"lang"`
	Text string `meddler:"text"`
}

// OrderResponse is a freelancer's bid on an order.
type OrderResponse struct {
	ID                int64     `meddler:"id,pk"`
	OrderIndex        uint64    `meddler:"order_index"`
	FreelancerAddress string    `meddler:"freelancer_address"`
	Comment           string    `meddler:"comment"`
	Price             uint64    `meddler:"price"`
	CreatedAt         time.Time `meddler:"created_at,unixtime"`
}

// OrderActivity is one entry in an order's activity log.
type OrderActivity struct {
	ID         int64     `meddler:"id,pk"`
	OrderIndex uint64    `meddler:"order_index"`
	Kind       string    `meddler:"kind"`
	Actor      string    `meddler:"actor"`
	Note       string    `meddler:"note"`
	CreatedAt  time.Time `meddler:"created_at,unixtime"`
}
