package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ataraxii/wishlist/pkg/errors"

	"github.com/ataraxii/wishlist/internal/wishlist/domain"
	"github.com/ataraxii/wishlist/internal/wishlist/event"
	"github.com/ataraxii/wishlist/internal/wishlist/repository"
)

// ItemService implements item CRUD and the membership checks that guard
// wishlist-scoped item mutation.
type ItemService struct {
	itemRepo     repository.ItemRepository
	wishlistRepo repository.WishlistRepository
	producer     *event.Producer
	logger       *slog.Logger
}

// NewItemService creates a new item service.
func NewItemService(
	itemRepo repository.ItemRepository,
	wishlistRepo repository.WishlistRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		wishlistRepo: wishlistRepo,
		producer:     producer,
		logger:       logger,
	}
}

// CreateItemInput holds the parameters for creating an item. A non-nil
// WishlistID requests an initial link into that wishlist.
type CreateItemInput struct {
	Name       string
	URL        string
	Price      *int64
	ImageURL   *string
	Comment    *string
	WishlistID *string
}

// UpdateItemInput holds the partial-update patch for an item. Nil fields are
// left untouched. The image URL is fixed at creation.
type UpdateItemInput struct {
	Name    *string
	URL     *string
	Price   *int64
	Comment *string
}

// Create persists a new item owned by the caller. When a wishlist ID is
// supplied, the wishlist must be owned by the caller and the item plus its
// link are written atomically; a failed wishlist lookup persists nothing.
func (s *ItemService) Create(ctx context.Context, ownerID string, input CreateItemInput) (*domain.Item, error) {
	if err := validateItemName(input.Name); err != nil {
		return nil, err
	}
	if input.URL == "" {
		return nil, apperrors.InvalidInput("url is required")
	}

	now := time.Now().UTC()
	item := &domain.Item{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Name:      input.Name,
		URL:       input.URL,
		Price:     input.Price,
		ImageURL:  input.ImageURL,
		Comment:   input.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var linkedWishlistID string
	if input.WishlistID != nil {
		wishlist, err := s.wishlistRepo.GetByIDAndOwner(ctx, *input.WishlistID, ownerID)
		if err != nil {
			return nil, err
		}
		if err := s.itemRepo.CreateWithLink(ctx, item, wishlist.ID); err != nil {
			return nil, fmt.Errorf("create item with link: %w", err)
		}
		linkedWishlistID = wishlist.ID
	} else {
		if err := s.itemRepo.Create(ctx, item); err != nil {
			return nil, fmt.Errorf("create item: %w", err)
		}
	}

	if err := s.producer.PublishItemCreated(ctx, item, linkedWishlistID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish item.created event",
			slog.String("item_id", item.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "item created",
		slog.String("item_id", item.ID),
		slog.String("user_id", ownerID),
		slog.Bool("linked", linkedWishlistID != ""),
	)

	return item, nil
}

// Update applies the non-nil fields of the patch to an item reached through
// a wishlist. The wishlist, the item, and the link between them are checked
// in that order; the first missing piece determines the error.
func (s *ItemService) Update(ctx context.Context, ownerID, wishlistID, itemID string, patch UpdateItemInput) (*domain.Item, error) {
	item, err := s.resolveMember(ctx, ownerID, wishlistID, itemID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if err := validateItemName(*patch.Name); err != nil {
			return nil, err
		}
		item.Name = *patch.Name
	}
	if patch.URL != nil {
		if *patch.URL == "" {
			return nil, apperrors.InvalidInput("url must not be empty")
		}
		item.URL = *patch.URL
	}
	if patch.Price != nil {
		item.Price = patch.Price
	}
	if patch.Comment != nil {
		item.Comment = patch.Comment
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Delete removes an item reached through a wishlist, after the same
// three-way check as Update. The item's links go with it; the wishlist
// stays.
func (s *ItemService) Delete(ctx context.Context, ownerID, wishlistID, itemID string) error {
	item, err := s.resolveMember(ctx, ownerID, wishlistID, itemID)
	if err != nil {
		return err
	}

	if err := s.itemRepo.Delete(ctx, item.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "item deleted",
		slog.String("item_id", item.ID),
		slog.String("user_id", ownerID),
	)

	return nil
}

// resolveMember runs the wishlist -> item -> link check chain and returns
// the item when all three hold.
func (s *ItemService) resolveMember(ctx context.Context, ownerID, wishlistID, itemID string) (*domain.Item, error) {
	if _, err := s.wishlistRepo.GetByIDAndOwner(ctx, wishlistID, ownerID); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByIDAndOwner(ctx, itemID, ownerID)
	if err != nil {
		return nil, err
	}

	linked, err := s.itemRepo.LinkExists(ctx, itemID, wishlistID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperrors.NotFoundMsg("item does not belong to this wishlist")
	}

	return item, nil
}

func validateItemName(name string) error {
	if name == "" {
		return apperrors.InvalidInput("name is required")
	}
	if len(name) > domain.MaxNameLength {
		return apperrors.InvalidInput(fmt.Sprintf("name must be at most %d characters", domain.MaxNameLength))
	}
	return nil
}
