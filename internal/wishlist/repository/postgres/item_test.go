package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ataraxii/wishlist/pkg/errors"

	"github.com/ataraxii/wishlist/internal/wishlist/domain"
)

func newItemTestFixture(t *testing.T) (*ItemRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewItemRepository(mock)
	return repo, mock
}

var itemColumns = []string{"id", "user_id", "name", "url", "price", "image_url", "comment", "created_at", "updated_at"}

func int64Ptr(v int64) *int64 { return &v }

func testItem() *domain.Item {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Item{
		ID:        "item-1",
		UserID:    "user-1",
		Name:      "Book",
		URL:       "https://example.com/book",
		Price:     int64Ptr(1999),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestItemRepository_Create_Success(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	i := testItem()

	mock.ExpectExec("INSERT INTO items").
		WithArgs(i.ID, i.UserID, i.Name, i.URL, i.Price, i.ImageURL, i.Comment, i.CreatedAt, i.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), i)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// CreateWithLink
// ---------------------------------------------------------------------------

func TestItemRepository_CreateWithLink_Success(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	i := testItem()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO items").
		WithArgs(i.ID, i.UserID, i.Name, i.URL, i.Price, i.ImageURL, i.Comment, i.CreatedAt, i.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO item_wishlists").
		WithArgs(i.ID, "wl-1", i.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.CreateWithLink(context.Background(), i, "wl-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_CreateWithLink_LinkFails(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	i := testItem()

	// A failed link insert rolls back the item insert too.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO items").
		WithArgs(i.ID, i.UserID, i.Name, i.URL, i.Price, i.ImageURL, i.Comment, i.CreatedAt, i.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO item_wishlists").
		WithArgs(i.ID, "wl-1", i.CreatedAt).
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	err := repo.CreateWithLink(context.Background(), i, "wl-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert item link")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByIDAndOwner
// ---------------------------------------------------------------------------

func TestItemRepository_GetByIDAndOwner_Success(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows(itemColumns).
		AddRow("item-1", "user-1", "Book", "https://example.com/book", int64Ptr(1999), (*string)(nil), (*string)(nil), now, now)
	mock.ExpectQuery("SELECT id, user_id, name, url, price, image_url, comment").
		WithArgs("item-1", "user-1").
		WillReturnRows(rows)

	i, err := repo.GetByIDAndOwner(context.Background(), "item-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Book", i.Name)
	assert.Equal(t, int64(1999), *i.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_GetByIDAndOwner_NotFound(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, user_id, name, url, price, image_url, comment").
		WithArgs("item-missing", "user-1").
		WillReturnRows(pgxmock.NewRows(itemColumns))

	_, err := repo.GetByIDAndOwner(context.Background(), "item-missing", "user-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.Contains(t, err.Error(), "item with id item-missing not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestItemRepository_Update_Success(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	i := testItem()

	mock.ExpectExec("UPDATE items").
		WithArgs(i.Name, i.URL, i.Price, i.Comment, pgxmock.AnyArg(), i.ID, i.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), i)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_Update_NotFound(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	i := testItem()

	mock.ExpectExec("UPDATE items").
		WithArgs(i.Name, i.URL, i.Price, i.Comment, pgxmock.AnyArg(), i.ID, i.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), i)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestItemRepository_Delete_Success(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM item_wishlists WHERE item_id =").
		WithArgs("item-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("DELETE FROM items WHERE id =").
		WithArgs("item-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "item-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM item_wishlists WHERE item_id =").
		WithArgs("item-missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM items WHERE id =").
		WithArgs("item-missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "item-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// LinkExists
// ---------------------------------------------------------------------------

func TestItemRepository_LinkExists_True(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("item-1", "wl-1").
		WillReturnRows(rows)

	exists, err := repo.LinkExists(context.Background(), "item-1", "wl-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_LinkExists_False(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("item-1", "wl-other").
		WillReturnRows(rows)

	exists, err := repo.LinkExists(context.Background(), "item-1", "wl-other")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_LinkExists_QueryError(t *testing.T) {
	repo, mock := newItemTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("item-1", "wl-1").
		WillReturnError(errors.New("query failed"))

	exists, err := repo.LinkExists(context.Background(), "item-1", "wl-1")
	require.Error(t, err)
	assert.False(t, exists)
	assert.Contains(t, err.Error(), "check item link")
	assert.NoError(t, mock.ExpectationsWereMet())
}
