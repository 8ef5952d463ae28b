package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ataraxii/wishlist/pkg/middleware"
	"github.com/ataraxii/wishlist/pkg/validator"

	"github.com/ataraxii/wishlist/internal/wishlist/domain"
	"github.com/ataraxii/wishlist/internal/wishlist/service"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateWishlistRequest is the JSON request body for creating a wishlist.
type CreateWishlistRequest struct {
	Name    string     `json:"name" validate:"required,min=1,max=32"`
	Comment *string    `json:"comment" validate:"omitempty,max=255"`
	Date    *time.Time `json:"date"`
}

// UpdateWishlistRequest is the JSON patch body for a wishlist. Absent fields
// are left untouched.
type UpdateWishlistRequest struct {
	Name    *string    `json:"name" validate:"omitempty,min=1,max=32"`
	Comment *string    `json:"comment" validate:"omitempty,max=255"`
	Date    *time.Time `json:"date"`
}

// --- Response DTOs ---

// WishlistSummaryResponse is the list shape of a wishlist: no comment, date,
// or shared flag.
type WishlistSummaryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WishlistResponse is the full-detail shape of a wishlist.
type WishlistResponse struct {
	ID      string     `json:"id"`
	UserID  string     `json:"user_id"`
	Name    string     `json:"name"`
	Comment *string    `json:"comment,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	Shared  bool       `json:"shared"`
}

// WishlistWithItemsResponse is the full-detail shape plus item summaries.
type WishlistWithItemsResponse struct {
	WishlistResponse
	Items []*domain.ItemSummary `json:"items"`
}

func toWishlistResponse(w *domain.Wishlist) WishlistResponse {
	return WishlistResponse{
		ID:      w.ID,
		UserID:  w.UserID,
		Name:    w.Name,
		Comment: w.Comment,
		Date:    w.Date,
		Shared:  w.Shared,
	}
}

func toWishlistWithItemsResponse(wi *domain.WishlistWithItems) WishlistWithItemsResponse {
	return WishlistWithItemsResponse{
		WishlistResponse: toWishlistResponse(wi.Wishlist),
		Items:            wi.Items,
	}
}

// --- Handlers ---

// Create handles POST /api/v1/wishlists
func (h *WishlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	var req CreateWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	wishlist, err := h.service.Create(r.Context(), userID, service.CreateWishlistInput{
		Name:    req.Name,
		Comment: req.Comment,
		Date:    req.Date,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: toWishlistResponse(wishlist)})
}

// List handles GET /api/v1/wishlists
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	wishlists, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	summaries := make([]WishlistSummaryResponse, 0, len(wishlists))
	for _, wl := range wishlists {
		summaries = append(summaries, WishlistSummaryResponse{ID: wl.ID, Name: wl.Name})
	}

	writeJSON(w, http.StatusOK, response{Data: summaries})
}

// Get handles GET /api/v1/wishlists/{wishlistId}
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	wishlistID, ok := pathUUID(w, r, "wishlistId")
	if !ok {
		return
	}

	result, err := h.service.GetWithItems(r.Context(), userID, wishlistID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: toWishlistWithItemsResponse(result)})
}

// Update handles PATCH /api/v1/wishlists/{wishlistId}
func (h *WishlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	wishlistID, ok := pathUUID(w, r, "wishlistId")
	if !ok {
		return
	}

	var req UpdateWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	wishlist, err := h.service.Update(r.Context(), userID, wishlistID, service.UpdateWishlistInput{
		Name:    req.Name,
		Comment: req.Comment,
		Date:    req.Date,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: toWishlistResponse(wishlist)})
}

// Delete handles DELETE /api/v1/wishlists/{wishlistId}
func (h *WishlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	wishlistID, ok := pathUUID(w, r, "wishlistId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, wishlistID); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": wishlistID, "status": "deleted"}})
}

// Share handles PATCH /api/v1/wishlists/share/{wishlistId}
func (h *WishlistHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	wishlistID, ok := pathUUID(w, r, "wishlistId")
	if !ok {
		return
	}

	if err := h.service.SetShared(r.Context(), userID, wishlistID); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": wishlistID, "status": "shared"}})
}

// GetShared handles GET /api/v1/shared/wishlists/{wishlistId}. No identity
// required.
func (h *WishlistHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	wishlistID, ok := pathUUID(w, r, "wishlistId")
	if !ok {
		return
	}

	result, err := h.service.GetShared(r.Context(), wishlistID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: toWishlistWithItemsResponse(result)})
}

// pathUUID extracts and validates a UUID path parameter, writing a 400
// response when it is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := chi.URLParam(r, name)
	if err := uuid.Validate(value); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_PARAMETER", Message: name + " must be a valid UUID"},
		})
		return "", false
	}
	return value, true
}
