package api

import (
	"time"

	"github.com/dework-labs/marketsync/internal/store"
)

// QueryParams represents common query parameters for list endpoints.
type QueryParams struct {
	// Pagination
	Limit  int `json:"limit" form:"limit"`
	Offset int `json:"offset" form:"offset"`

	// Filtering
	Status   string `json:"status,omitempty" form:"status"`
	Category string `json:"category,omitempty" form:"category"`
	Language string `json:"language,omitempty" form:"language"`

	// Lang selects the translation language for order listings.
	// Accepts either a language key or its display name.
	Lang string `json:"lang,omitempty" form:"lang"`

	// Query is a free-text filter matched against name and description.
	Query string `json:"q,omitempty" form:"q"`
}

// NewDefaultQueryParams returns query parameters with defaults applied.
func NewDefaultQueryParams() *QueryParams {
	return &QueryParams{Limit: 100}
}

// PaginationResult contains pagination metadata.
type PaginationResult struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// AdminsResponse is the admin list response.
type AdminsResponse struct {
	Admins     []*store.Admin   `json:"admins"`
	Pagination PaginationResult `json:"pagination"`
}

// UsersResponse is the user list response.
type UsersResponse struct {
	Users      []*store.User    `json:"users"`
	Pagination PaginationResult `json:"pagination"`
}

// OrdersResponse is the order list response.
type OrdersResponse struct {
	Orders     []*store.Order   `json:"orders"`
	Pagination PaginationResult `json:"pagination"`
}

// OrderDetailResponse is one order together with its responder set.
type OrderDetailResponse struct {
	Order      *store.Order `json:"order"`
	Responders []string     `json:"responders"`
}

// ResponsesResponse is the list of bids on one order.
type ResponsesResponse struct {
	Responses []*store.OrderResponse `json:"responses"`
}

// ActivityResponse is the activity log of one order.
type ActivityResponse struct {
	Activity []*store.OrderActivity `json:"activity"`
}

// StatusResponse describes the indexer and its current snapshot.
type StatusResponse struct {
	MasterAddress string    `json:"master_address"`
	InMainnet     bool      `json:"in_mainnet"`
	LastSeqNo     uint64    `json:"last_seq_no"`
	SnapshotAt    time.Time `json:"snapshot_at"`
	Admins        int       `json:"admins"`
	Users         int       `json:"users"`
	Orders        int       `json:"orders"`
	ActiveOrders  int       `json:"active_orders"`
}

// StatsResponse carries the precomputed aggregate counts.
type StatsResponse struct {
	OrdersByStatus   map[string]int `json:"orders_by_status"`
	OrdersByCategory map[string]int `json:"orders_by_category"`
	OrdersByLanguage map[string]int `json:"orders_by_language"`
	UsersByStatus    map[string]int `json:"users_by_status"`
	UsersByLanguage  map[string]int `json:"users_by_language"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  bool      `json:"snapshot"`
}
