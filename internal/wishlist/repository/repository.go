// Package repository defines the persistence interfaces for the wishlist
// service. Implementations live in the postgres subpackage.
package repository

import (
	"context"

	"github.com/ataraxii/wishlist/internal/wishlist/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a new user. Returns a Conflict error when the
	// username is already taken.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// RefreshTokenRepository persists hashed refresh tokens.
type RefreshTokenRepository interface {
	Store(ctx context.Context, token *domain.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// WishlistRepository persists wishlists and resolves their linked items.
type WishlistRepository interface {
	Create(ctx context.Context, wishlist *domain.Wishlist) error

	// ListByOwner returns all wishlists owned by the given user in
	// insertion order.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Wishlist, error)

	// GetByIDAndOwner returns the wishlist only when it exists and is
	// owned by ownerID; otherwise a NotFound error.
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Wishlist, error)

	// GetShared returns the wishlist only when it exists and has been
	// shared. A missing wishlist and an unshared one produce the same
	// NotFound error.
	GetShared(ctx context.Context, id string) (*domain.Wishlist, error)

	// Update writes the mutable fields (name, comment, date) of the row.
	Update(ctx context.Context, wishlist *domain.Wishlist) error

	// SetShared flips the shared flag to true for an owned wishlist.
	// Already-shared wishlists are left as-is without error.
	SetShared(ctx context.Context, id, ownerID string) error

	// Delete removes an owned wishlist and its item links in one
	// transaction. Linked items survive.
	Delete(ctx context.Context, id, ownerID string) error

	// ListItems returns summaries of the items linked into a wishlist.
	ListItems(ctx context.Context, wishlistID string) ([]*domain.ItemSummary, error)
}

// ItemRepository persists items and their wishlist links.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error

	// CreateWithLink inserts the item and a link row into wishlistID in
	// one transaction; neither persists if either write fails.
	CreateWithLink(ctx context.Context, item *domain.Item, wishlistID string) error

	// GetByIDAndOwner returns the item only when it exists and is owned
	// by ownerID; otherwise a NotFound error.
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Item, error)

	// Update writes the mutable fields (name, url, price, comment).
	Update(ctx context.Context, item *domain.Item) error

	// Delete removes the item and all of its link rows in one
	// transaction.
	Delete(ctx context.Context, id string) error

	// LinkExists reports whether at least one link row connects the item
	// to the wishlist.
	LinkExists(ctx context.Context, itemID, wishlistID string) (bool, error)
}
