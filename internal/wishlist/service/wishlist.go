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

// WishlistService implements wishlist CRUD, sharing, and the public shared
// read path. Every operation takes the caller's user ID explicitly; there is
// no ambient identity.
type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	producer     *event.Producer
	logger       *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		producer:     producer,
		logger:       logger,
	}
}

// CreateWishlistInput holds the parameters for creating a wishlist.
type CreateWishlistInput struct {
	Name    string
	Comment *string
	Date    *time.Time
}

// UpdateWishlistInput holds the partial-update patch for a wishlist. Nil
// fields are left untouched.
type UpdateWishlistInput struct {
	Name    *string
	Comment *string
	Date    *time.Time
}

// Create persists a new wishlist for the owner. New wishlists are always
// private.
func (s *WishlistService) Create(ctx context.Context, ownerID string, input CreateWishlistInput) (*domain.Wishlist, error) {
	if err := validateWishlistName(input.Name); err != nil {
		return nil, err
	}
	if err := validateWishlistComment(input.Comment); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wishlist := &domain.Wishlist{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Name:      input.Name,
		Comment:   input.Comment,
		Date:      input.Date,
		Shared:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.wishlistRepo.Create(ctx, wishlist); err != nil {
		return nil, fmt.Errorf("create wishlist: %w", err)
	}

	if err := s.producer.PublishWishlistCreated(ctx, wishlist); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.created event",
			slog.String("wishlist_id", wishlist.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist created",
		slog.String("wishlist_id", wishlist.ID),
		slog.String("user_id", ownerID),
	)

	return wishlist, nil
}

// List returns all wishlists owned by the caller.
func (s *WishlistService) List(ctx context.Context, ownerID string) ([]*domain.Wishlist, error) {
	return s.wishlistRepo.ListByOwner(ctx, ownerID)
}

// GetWithItems returns an owned wishlist with its item summaries. A wishlist
// owned by someone else is NotFound.
func (s *WishlistService) GetWithItems(ctx context.Context, ownerID, wishlistID string) (*domain.WishlistWithItems, error) {
	wishlist, err := s.wishlistRepo.GetByIDAndOwner(ctx, wishlistID, ownerID)
	if err != nil {
		return nil, err
	}

	items, err := s.wishlistRepo.ListItems(ctx, wishlistID)
	if err != nil {
		return nil, err
	}

	return &domain.WishlistWithItems{Wishlist: wishlist, Items: items}, nil
}

// Update applies the non-nil fields of the patch to an owned wishlist.
func (s *WishlistService) Update(ctx context.Context, ownerID, wishlistID string, patch UpdateWishlistInput) (*domain.Wishlist, error) {
	wishlist, err := s.wishlistRepo.GetByIDAndOwner(ctx, wishlistID, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if err := validateWishlistName(*patch.Name); err != nil {
			return nil, err
		}
		wishlist.Name = *patch.Name
	}
	if patch.Comment != nil {
		if err := validateWishlistComment(patch.Comment); err != nil {
			return nil, err
		}
		wishlist.Comment = patch.Comment
	}
	if patch.Date != nil {
		wishlist.Date = patch.Date
	}

	if err := s.wishlistRepo.Update(ctx, wishlist); err != nil {
		return nil, err
	}

	return wishlist, nil
}

// Delete removes an owned wishlist and its item links. Items survive.
func (s *WishlistService) Delete(ctx context.Context, ownerID, wishlistID string) error {
	if err := s.wishlistRepo.Delete(ctx, wishlistID, ownerID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "wishlist deleted",
		slog.String("wishlist_id", wishlistID),
		slog.String("user_id", ownerID),
	)

	return nil
}

// SetShared marks an owned wishlist as publicly readable. The transition is
// one-way and idempotent: sharing an already-shared wishlist succeeds.
func (s *WishlistService) SetShared(ctx context.Context, ownerID, wishlistID string) error {
	if err := s.wishlistRepo.SetShared(ctx, wishlistID, ownerID); err != nil {
		return err
	}

	if err := s.producer.PublishWishlistShared(ctx, wishlistID, ownerID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish wishlist.shared event",
			slog.String("wishlist_id", wishlistID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist shared",
		slog.String("wishlist_id", wishlistID),
		slog.String("user_id", ownerID),
	)

	return nil
}

// GetShared returns a shared wishlist with its items without any caller
// identity. Missing and unshared wishlists are indistinguishable to the
// caller.
func (s *WishlistService) GetShared(ctx context.Context, wishlistID string) (*domain.WishlistWithItems, error) {
	wishlist, err := s.wishlistRepo.GetShared(ctx, wishlistID)
	if err != nil {
		return nil, err
	}

	items, err := s.wishlistRepo.ListItems(ctx, wishlistID)
	if err != nil {
		return nil, err
	}

	return &domain.WishlistWithItems{Wishlist: wishlist, Items: items}, nil
}

func validateWishlistName(name string) error {
	if name == "" {
		return apperrors.InvalidInput("name is required")
	}
	if len(name) > domain.MaxNameLength {
		return apperrors.InvalidInput(fmt.Sprintf("name must be at most %d characters", domain.MaxNameLength))
	}
	return nil
}

func validateWishlistComment(comment *string) error {
	if comment != nil && len(*comment) > domain.MaxCommentLength {
		return apperrors.InvalidInput(fmt.Sprintf("comment must be at most %d characters", domain.MaxCommentLength))
	}
	return nil
}
