package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/ataraxii/wishlist/pkg/errors"

	"github.com/ataraxii/wishlist/internal/wishlist/domain"
)

// WishlistRepository implements repository.WishlistRepository using PostgreSQL.
type WishlistRepository struct {
	db DB
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(db DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Create inserts a new wishlist.
func (r *WishlistRepository) Create(ctx context.Context, w *domain.Wishlist) error {
	query := `
		INSERT INTO wishlists (id, user_id, name, comment, date, shared, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		w.ID,
		w.UserID,
		w.Name,
		w.Comment,
		w.Date,
		w.Shared,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wishlist: %w", err)
	}

	return nil
}

// ListByOwner returns all wishlists owned by the user in insertion order.
func (r *WishlistRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Wishlist, error) {
	query := `
		SELECT id, user_id, name, comment, date, shared, created_at, updated_at
		FROM wishlists
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list wishlists: %w", err)
	}
	defer rows.Close()

	wishlists := []*domain.Wishlist{}
	for rows.Next() {
		var w domain.Wishlist
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Comment, &w.Date, &w.Shared, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist: %w", err)
		}
		wishlists = append(wishlists, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}

	return wishlists, nil
}

// GetByIDAndOwner returns the wishlist only when owned by ownerID. A missing
// row and a row owned by someone else are both NotFound.
func (r *WishlistRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Wishlist, error) {
	query := `
		SELECT id, user_id, name, comment, date, shared, created_at, updated_at
		FROM wishlists
		WHERE id = $1 AND user_id = $2`

	return r.scanWishlist(ctx, query, id, id, ownerID)
}

// GetShared returns the wishlist only when its shared flag is set. Absent and
// unshared rows collapse into the same NotFound so that private wishlists do
// not leak their existence.
func (r *WishlistRepository) GetShared(ctx context.Context, id string) (*domain.Wishlist, error) {
	query := `
		SELECT id, user_id, name, comment, date, shared, created_at, updated_at
		FROM wishlists
		WHERE id = $1 AND shared = TRUE`

	return r.scanWishlist(ctx, query, id, id)
}

func (r *WishlistRepository) scanWishlist(ctx context.Context, query, id string, args ...any) (*domain.Wishlist, error) {
	var w domain.Wishlist

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&w.ID,
		&w.UserID,
		&w.Name,
		&w.Comment,
		&w.Date,
		&w.Shared,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("wishlist", id)
		}
		return nil, fmt.Errorf("scan wishlist: %w", err)
	}

	return &w, nil
}

// Update writes the mutable fields of the wishlist row.
func (r *WishlistRepository) Update(ctx context.Context, w *domain.Wishlist) error {
	w.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE wishlists
		SET name = $1, comment = $2, date = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6`

	ct, err := r.db.Exec(ctx, query, w.Name, w.Comment, w.Date, w.UpdatedAt, w.ID, w.UserID)
	if err != nil {
		return fmt.Errorf("update wishlist: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist", w.ID)
	}

	return nil
}

// SetShared marks an owned wishlist as shared. Repeated calls are no-ops;
// the UPDATE matches the row whether or not the flag is already set.
func (r *WishlistRepository) SetShared(ctx context.Context, id, ownerID string) error {
	query := `
		UPDATE wishlists
		SET shared = TRUE, updated_at = $1
		WHERE id = $2 AND user_id = $3`

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), id, ownerID)
	if err != nil {
		return fmt.Errorf("share wishlist: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist", id)
	}

	return nil
}

// Delete removes an owned wishlist and its link rows in one transaction.
// Items linked into the wishlist are left untouched.
func (r *WishlistRepository) Delete(ctx context.Context, id, ownerID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete wishlist: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM item_wishlists WHERE wishlist_id = $1`, id); err != nil {
		return fmt.Errorf("delete wishlist links: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM wishlists WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete wishlist: %w", err)
	}

	return nil
}

// ListItems returns summaries of the items linked into the wishlist, in link
// insertion order. Duplicate links yield duplicate summaries.
func (r *WishlistRepository) ListItems(ctx context.Context, wishlistID string) ([]*domain.ItemSummary, error) {
	query := `
		SELECT i.id, i.name, i.url
		FROM items i
		JOIN item_wishlists iw ON iw.item_id = i.id
		WHERE iw.wishlist_id = $1
		ORDER BY iw.id`

	rows, err := r.db.Query(ctx, query, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer rows.Close()

	items := []*domain.ItemSummary{}
	for rows.Next() {
		var it domain.ItemSummary
		if err := rows.Scan(&it.ID, &it.Name, &it.URL); err != nil {
			return nil, fmt.Errorf("scan item summary: %w", err)
		}
		items = append(items, &it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item summary rows: %w", err)
	}

	return items, nil
}
