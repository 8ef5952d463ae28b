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

// ItemRepository implements repository.ItemRepository using PostgreSQL.
type ItemRepository struct {
	db DB
}

// NewItemRepository creates a new PostgreSQL-backed item repository.
func NewItemRepository(db DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const insertItemQuery = `
		INSERT INTO items (id, user_id, name, url, price, image_url, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Create inserts an item with no wishlist link.
func (r *ItemRepository) Create(ctx context.Context, i *domain.Item) error {
	_, err := r.db.Exec(ctx, insertItemQuery,
		i.ID,
		i.UserID,
		i.Name,
		i.URL,
		i.Price,
		i.ImageURL,
		i.Comment,
		i.CreatedAt,
		i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	return nil
}

// CreateWithLink inserts the item and its link row in a single transaction,
// so a failed link insert leaves no orphaned item behind.
func (r *ItemRepository) CreateWithLink(ctx context.Context, i *domain.Item, wishlistID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create item: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertItemQuery,
		i.ID,
		i.UserID,
		i.Name,
		i.URL,
		i.Price,
		i.ImageURL,
		i.Comment,
		i.CreatedAt,
		i.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO item_wishlists (item_id, wishlist_id, created_at) VALUES ($1, $2, $3)`,
		i.ID, wishlistID, i.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert item link: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create item: %w", err)
	}

	return nil
}

// GetByIDAndOwner returns the item only when owned by ownerID.
func (r *ItemRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Item, error) {
	query := `
		SELECT id, user_id, name, url, price, image_url, comment, created_at, updated_at
		FROM items
		WHERE id = $1 AND user_id = $2`

	var i domain.Item
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.URL,
		&i.Price,
		&i.ImageURL,
		&i.Comment,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("item", id)
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}

	return &i, nil
}

// Update writes the mutable fields of the item row.
func (r *ItemRepository) Update(ctx context.Context, i *domain.Item) error {
	i.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE items
		SET name = $1, url = $2, price = $3, comment = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7`

	ct, err := r.db.Exec(ctx, query, i.Name, i.URL, i.Price, i.Comment, i.UpdatedAt, i.ID, i.UserID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("item", i.ID)
	}

	return nil
}

// Delete removes the item and all of its link rows in one transaction. The
// wishlists it was linked into survive.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete item: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM item_wishlists WHERE item_id = $1`, id); err != nil {
		return fmt.Errorf("delete item links: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("item", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete item: %w", err)
	}

	return nil
}

// LinkExists reports whether the item is linked into the wishlist.
func (r *ItemRepository) LinkExists(ctx context.Context, itemID, wishlistID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM item_wishlists WHERE item_id = $1 AND wishlist_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, itemID, wishlistID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check item link: %w", err)
	}

	return exists, nil
}
