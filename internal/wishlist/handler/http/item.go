package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ataraxii/wishlist/pkg/middleware"
	"github.com/ataraxii/wishlist/pkg/validator"

	"github.com/ataraxii/wishlist/internal/wishlist/domain"
	"github.com/ataraxii/wishlist/internal/wishlist/service"
)

// ItemHandler handles HTTP requests for item endpoints.
type ItemHandler struct {
	service *service.ItemService
	logger  *slog.Logger
}

// NewItemHandler creates a new item HTTP handler.
func NewItemHandler(svc *service.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateItemRequest is the JSON request body for creating an item.
type CreateItemRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=32"`
	URL      string  `json:"url" validate:"required,url"`
	Price    *int64  `json:"price" validate:"omitempty,gte=0"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
	Comment  *string `json:"comment" validate:"omitempty,max=255"`
}

// UpdateItemRequest is the JSON patch body for an item. Absent fields are
// left untouched; the image URL cannot be changed after creation.
type UpdateItemRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=32"`
	URL     *string `json:"url" validate:"omitempty,url"`
	Price   *int64  `json:"price" validate:"omitempty,gte=0"`
	Comment *string `json:"comment" validate:"omitempty,max=255"`
}

// --- Response DTOs ---

// ItemResponse is the public shape of an item.
type ItemResponse struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	Price    *int64  `json:"price,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	Comment  *string `json:"comment,omitempty"`
}

func toItemResponse(i *domain.Item) ItemResponse {
	return ItemResponse{
		ID:       i.ID,
		UserID:   i.UserID,
		Name:     i.Name,
		URL:      i.URL,
		Price:    i.Price,
		ImageURL: i.ImageURL,
		Comment:  i.Comment,
	}
}

// --- Handlers ---

// Create handles POST /api/v1/items: a standalone item with no wishlist link.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, nil)
}

// CreateInWishlist handles POST /api/v1/wishlists/{wishlistId}/items: the
// item is created and linked into the wishlist atomically.
func (h *ItemHandler) CreateInWishlist(w http.ResponseWriter, r *http.Request) {
	wishlistID, ok := pathUUID(w, r, "wishlistId")
	if !ok {
		return
	}
	h.create(w, r, &wishlistID)
}

func (h *ItemHandler) create(w http.ResponseWriter, r *http.Request, wishlistID *string) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	var req CreateItemRequest
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

	item, err := h.service.Create(r.Context(), userID, service.CreateItemInput{
		Name:       req.Name,
		URL:        req.URL,
		Price:      req.Price,
		ImageURL:   req.ImageURL,
		Comment:    req.Comment,
		WishlistID: wishlistID,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: toItemResponse(item)})
}

// Update handles PATCH /api/v1/wishlists/{wishlistId}/items/{itemId}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	wishlistID, ok := pathUUID(w, r, "wishlistId")
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	var req UpdateItemRequest
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

	item, err := h.service.Update(r.Context(), userID, wishlistID, itemID, service.UpdateItemInput{
		Name:    req.Name,
		URL:     req.URL,
		Price:   req.Price,
		Comment: req.Comment,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: toItemResponse(item)})
}

// Delete handles DELETE /api/v1/wishlists/{wishlistId}/items/{itemId}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		writeUnauthenticated(w)
		return
	}

	wishlistID, ok := pathUUID(w, r, "wishlistId")
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, wishlistID, itemID); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": itemID, "status": "deleted"}})
}
