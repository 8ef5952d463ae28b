package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/ataraxii/wishlist/pkg/kafka"
	"github.com/ataraxii/wishlist/pkg/middleware"

	"github.com/ataraxii/wishlist/internal/wishlist/auth"
	"github.com/ataraxii/wishlist/internal/wishlist/domain"
	"github.com/ataraxii/wishlist/internal/wishlist/event"
	"github.com/ataraxii/wishlist/internal/wishlist/service"
)

const (
	testUserID     = "550e8400-e29b-41d4-a716-446655440001"
	testWishlistID = "550e8400-e29b-41d4-a716-446655440002"
	testItemID     = "550e8400-e29b-41d4-a716-446655440003"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockRefreshTokenRepo struct {
	mock.Mock
}

func (m *mockRefreshTokenRepo) Store(ctx context.Context, token *domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRefreshTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) Delete(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockRefreshTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockWishlistRepo struct {
	mock.Mock
}

func (m *mockWishlistRepo) Create(ctx context.Context, wishlist *domain.Wishlist) error {
	args := m.Called(ctx, wishlist)
	return args.Error(0)
}

func (m *mockWishlistRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Wishlist, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepo) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Wishlist, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepo) GetShared(ctx context.Context, id string) (*domain.Wishlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockWishlistRepo) Update(ctx context.Context, wishlist *domain.Wishlist) error {
	args := m.Called(ctx, wishlist)
	return args.Error(0)
}

func (m *mockWishlistRepo) SetShared(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *mockWishlistRepo) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *mockWishlistRepo) ListItems(ctx context.Context, wishlistID string) ([]*domain.ItemSummary, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ItemSummary), args.Error(1)
}

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepo) CreateWithLink(ctx context.Context, item *domain.Item, wishlistID string) error {
	args := m.Called(ctx, item, wishlistID)
	return args.Error(0)
}

func (m *mockItemRepo) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Item, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *mockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockItemRepo) LinkExists(ctx context.Context, itemID, wishlistID string) (bool, error) {
	args := m.Called(ctx, itemID, wishlistID)
	return args.Bool(0), args.Error(1)
}

// ============================================================================
// Test Helpers
// ============================================================================

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func handlerTestEventProducer() *event.Producer {
	return event.NewProducer(noopPublisher{})
}

func handlerTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute, 7*24*time.Hour)
}

// fakeTokenValidator returns a middleware.TokenValidator that always succeeds
// and injects the given userID into the request context.
func fakeTokenValidator(userID string) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		return &middleware.Claims{UserID: userID, Username: "alice"}, nil
	}
}

// setupWishlistRouter mirrors the production wishlist and item routes with a
// fake token validator for auth.
func setupWishlistRouter(wishlistHandler *WishlistHandler, itemHandler *ItemHandler, userID string) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/v1/shared/wishlists/{wishlistId}", wishlistHandler.GetShared)
	r.Route("/api/v1/wishlists", func(r chi.Router) {
		r.Use(middleware.Auth(fakeTokenValidator(userID)))
		r.Post("/", wishlistHandler.Create)
		r.Get("/", wishlistHandler.List)
		r.Get("/{wishlistId}", wishlistHandler.Get)
		r.Patch("/{wishlistId}", wishlistHandler.Update)
		r.Delete("/{wishlistId}", wishlistHandler.Delete)
		r.Patch("/share/{wishlistId}", wishlistHandler.Share)
		r.Post("/{wishlistId}/items", itemHandler.CreateInWishlist)
		r.Patch("/{wishlistId}/items/{itemId}", itemHandler.Update)
		r.Delete("/{wishlistId}/items/{itemId}", itemHandler.Delete)
	})
	r.Route("/api/v1/items", func(r chi.Router) {
		r.Use(middleware.Auth(fakeTokenValidator(userID)))
		r.Post("/", itemHandler.Create)
	})
	return r
}

func newWishlistHandlers(wishlistRepo *mockWishlistRepo, itemRepo *mockItemRepo) (*WishlistHandler, *ItemHandler) {
	logger := handlerTestLogger()
	producer := handlerTestEventProducer()
	wishlistSvc := service.NewWishlistService(wishlistRepo, producer, logger)
	itemSvc := service.NewItemService(itemRepo, wishlistRepo, producer, logger)
	return NewWishlistHandler(wishlistSvc, logger), NewItemHandler(itemSvc, logger)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}
