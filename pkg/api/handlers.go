package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dework-labs/marketsync/internal/cache"
	"github.com/dework-labs/marketsync/internal/logger"
	"github.com/dework-labs/marketsync/internal/store"
)

// SnapshotSource provides the current published snapshot. Load returns
// nil while no snapshot has been published yet.
type SnapshotSource interface {
	Load() *cache.Snapshot
}

// DetailStore provides the per-order detail lookups that are served from
// the entity store rather than the snapshot.
type DetailStore interface {
	ResponsesByOrder(ctx context.Context, orderIndex uint64) ([]*store.OrderResponse, error)
	ActivityByOrder(ctx context.Context, orderIndex uint64) ([]*store.OrderActivity, error)
}

// Handler handles HTTP requests for the API. All list endpoints read
// exclusively from the current snapshot.
type Handler struct {
	snapshots SnapshotSource
	details   DetailStore
	log       *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(snapshots SnapshotSource, details DetailStore, log *logger.Logger) *Handler {
	return &Handler{
		snapshots: snapshots,
		details:   details,
		log:       log,
	}
}

// snapshot returns the current snapshot or responds 503 when none has
// been published yet.
func (h *Handler) snapshot(w http.ResponseWriter) *cache.Snapshot {
	snap := h.snapshots.Load()
	if snap == nil {
		respondError(w, http.StatusServiceUnavailable, "no snapshot available yet")
	}
	return snap
}

// Health returns the service health.
// @Summary Health check
// @Description Reports service health and whether a snapshot has been published
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Health status"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Snapshot:  h.snapshots.Load() != nil,
	})
}

// GetStatus returns the indexer status.
// @Summary Indexer status
// @Description Get the master contract address, network flag, last chain sequence number and snapshot counts
// @Tags Status
// @Produce json
// @Success 200 {object} StatusResponse "Indexer status"
// @Failure 503 {object} ErrorResponse "No snapshot available"
// @Router /status [get]
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{
		MasterAddress: snap.MasterAddress,
		InMainnet:     snap.InMainnet,
		LastSeqNo:     snap.LastSeqNo,
		SnapshotAt:    snap.BuiltAt,
		Admins:        len(snap.Admins),
		Users:         len(snap.Users),
		Orders:        len(snap.Orders),
		ActiveOrders:  len(snap.ActiveOrders),
	})
}

// GetAdmins lists administrators.
// @Summary List administrators
// @Description List administrators with optional status filtering and pagination
// @Tags Admins
// @Produce json
// @Param status query string false "Status to filter by"
// @Param limit query int false "Maximum number of results" default(100)
// @Param offset query int false "Number of results to skip" default(0)
// @Success 200 {object} AdminsResponse "List of administrators"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 503 {object} ErrorResponse "No snapshot available"
// @Router /admins [get]
func (h *Handler) GetAdmins(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	params, err := parseQueryParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	var filtered []*store.Admin
	for _, a := range snap.Admins {
		if params.Status != "" && a.Status != params.Status {
			continue
		}
		filtered = append(filtered, a)
	}

	page, pagination := paginate(filtered, params)
	respondJSON(w, http.StatusOK, AdminsResponse{Admins: page, Pagination: pagination})
}

// GetUsers lists users.
// @Summary List users
// @Description List users with optional status and language filtering and pagination
// @Tags Users
// @Produce json
// @Param status query string false "Status to filter by"
// @Param language query string false "Language to filter by"
// @Param limit query int false "Maximum number of results" default(100)
// @Param offset query int false "Number of results to skip" default(0)
// @Success 200 {object} UsersResponse "List of users"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 503 {object} ErrorResponse "No snapshot available"
// @Router /users [get]
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	params, err := parseQueryParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	var filtered []*store.User
	for _, u := range snap.Users {
		if params.Status != "" && u.Status != params.Status {
			continue
		}
		if params.Language != "" && u.Language != params.Language {
			continue
		}
		filtered = append(filtered, u)
	}

	page, pagination := paginate(filtered, params)
	respondJSON(w, http.StatusOK, UsersResponse{Users: page, Pagination: pagination})
}

// GetOrders lists orders.
// @Summary List orders
// @Description List orders with optional filtering, free-text search, translation selection and pagination. When lang is set, only active orders are listed, with translated fields populated where translations exist.
// @Tags Orders
// @Produce json
// @Param status query string false "Status to filter by"
// @Param category query string false "Category to filter by"
// @Param language query string false "Source language to filter by"
// @Param lang query string false "Translation language (key or display name); implies active orders only"
// @Param q query string false "Free-text filter on name and description"
// @Param limit query int false "Maximum number of results" default(100)
// @Param offset query int false "Number of results to skip" default(0)
// @Success 200 {object} OrdersResponse "List of orders"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 503 {object} ErrorResponse "No snapshot available"
// @Router /orders [get]
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	params, err := parseQueryParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	source := snap.Orders
	if params.Lang != "" {
		translated, ok := snap.TranslatedActiveOrders[params.Lang]
		if !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported language %q", params.Lang))
			return
		}
		source = translated
	}

	var filtered []*store.Order
	for _, o := range source {
		if params.Status != "" && o.Status != params.Status {
			continue
		}
		if params.Category != "" && o.Category != params.Category {
			continue
		}
		if params.Language != "" && o.Language != params.Language {
			continue
		}
		if params.Query != "" && !orderMatches(o, params.Query) {
			continue
		}
		filtered = append(filtered, o)
	}

	page, pagination := paginate(filtered, params)
	respondJSON(w, http.StatusOK, OrdersResponse{Orders: page, Pagination: pagination})
}

// GetOrder returns one order with its responder set.
// @Summary Get one order
// @Description Get one order by index, together with the set of addresses that have responded to it
// @Tags Orders
// @Produce json
// @Param index path int true "Order index"
// @Success 200 {object} OrderDetailResponse "Order detail"
// @Failure 400 {object} ErrorResponse "Invalid index"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 503 {object} ErrorResponse "No snapshot available"
// @Router /orders/{index} [get]
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	index, err := parseIndex(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order := snap.Order(index)
	if order == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("order %d not found", index))
		return
	}

	responders := make([]string, 0, len(snap.OrderResponders[index]))
	for addr := range snap.OrderResponders[index] {
		responders = append(responders, addr)
	}

	respondJSON(w, http.StatusOK, OrderDetailResponse{Order: order, Responders: responders})
}

// GetOrderResponses lists the bids on one order.
// @Summary List order responses
// @Description List all freelancer bids on one order, read from the entity store
// @Tags Orders
// @Produce json
// @Param index path int true "Order index"
// @Success 200 {object} ResponsesResponse "List of responses"
// @Failure 400 {object} ErrorResponse "Invalid index"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Failure 503 {object} ErrorResponse "No snapshot available"
// @Router /orders/{index}/responses [get]
func (h *Handler) GetOrderResponses(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	index, err := parseIndex(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if snap.Order(index) == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("order %d not found", index))
		return
	}

	responses, err := h.details.ResponsesByOrder(r.Context(), index)
	if err != nil {
		h.log.Errorf("failed to load responses for order %d: %v", index, err)
		respondError(w, http.StatusInternalServerError, "failed to load responses")
		return
	}

	respondJSON(w, http.StatusOK, ResponsesResponse{Responses: responses})
}

// GetOrderActivity lists one order's activity log.
// @Summary List order activity
// @Description List the activity log entries of one order, read from the entity store
// @Tags Orders
// @Produce json
// @Param index path int true "Order index"
// @Success 200 {object} ActivityResponse "Activity log"
// @Failure 400 {object} ErrorResponse "Invalid index"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Failure 503 {object} ErrorResponse "No snapshot available"
// @Router /orders/{index}/activity [get]
func (h *Handler) GetOrderActivity(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	index, err := parseIndex(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if snap.Order(index) == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("order %d not found", index))
		return
	}

	activity, err := h.details.ActivityByOrder(r.Context(), index)
	if err != nil {
		h.log.Errorf("failed to load activity for order %d: %v", index, err)
		respondError(w, http.StatusInternalServerError, "failed to load activity")
		return
	}

	respondJSON(w, http.StatusOK, ActivityResponse{Activity: activity})
}

// GetStats returns the precomputed aggregate counts.
// @Summary Aggregate statistics
// @Description Get precomputed order and user counts grouped by status, category and language
// @Tags Status
// @Produce json
// @Success 200 {object} StatsResponse "Aggregate counts"
// @Failure 503 {object} ErrorResponse "No snapshot available"
// @Router /stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		OrdersByStatus:   snap.OrdersByStatus,
		OrdersByCategory: snap.OrdersByCategory,
		OrdersByLanguage: snap.OrdersByLanguage,
		UsersByStatus:    snap.UsersByStatus,
		UsersByLanguage:  snap.UsersByLanguage,
	})
}

// orderMatches reports whether the order matches a free-text query.
// Translated fields are matched when populated, so searching works in
// the selected translation language too.
func orderMatches(o *store.Order, query string) bool {
	q := strings.ToLower(query)

	fields := []string{o.Name, o.Description, o.TechnicalTask}
	for _, tf := range []*string{o.TranslatedName, o.TranslatedDescription, o.TranslatedTechnicalTask} {
		if tf != nil {
			fields = append(fields, *tf)
		}
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func parseIndex(r *http.Request) (uint64, error) {
	raw := r.PathValue("index")
	index, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", raw)
	}
	return index, nil
}

func parseQueryParams(r *http.Request) (*QueryParams, error) {
	params := NewDefaultQueryParams()

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 1000 {
			return params, fmt.Errorf("invalid limit: must be between 1 and 1000")
		}
		params.Limit = limit
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return params, fmt.Errorf("invalid offset: must be non-negative")
		}
		params.Offset = offset
	}

	params.Status = r.URL.Query().Get("status")
	params.Category = r.URL.Query().Get("category")
	params.Language = r.URL.Query().Get("language")
	params.Lang = r.URL.Query().Get("lang")
	params.Query = r.URL.Query().Get("q")

	return params, nil
}

// paginate applies offset/limit to a filtered list.
func paginate[T any](items []T, params *QueryParams) ([]T, PaginationResult) {
	total := len(items)

	start := params.Offset
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	return items[start:end], PaginationResult{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: end < total,
	}
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	// Encode first so an encoding failure can still change the status
	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)

	if _, err := w.Write(encoded); err != nil {
		return
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	respondJSON(w, status, response)
}
