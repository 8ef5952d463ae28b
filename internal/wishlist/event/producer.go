// Package event publishes wishlist domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/ataraxii/wishlist/pkg/kafka"
	"github.com/ataraxii/wishlist/pkg/logger"

	"github.com/ataraxii/wishlist/internal/wishlist/domain"
)

const source = "wishlist-service"

// Kafka topics.
const (
	TopicUserRegistered  = "wishlist.user.registered"
	TopicWishlistCreated = "wishlist.wishlist.created"
	TopicWishlistShared  = "wishlist.wishlist.shared"
	TopicItemCreated     = "wishlist.item.created"
)

// Publisher is the subset of the Kafka producer the event layer needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Producer publishes domain events. Publish failures are the caller's to
// log; event delivery never blocks a request from succeeding.
type Producer struct {
	producer Publisher
}

// NewProducer creates an event producer on top of a Kafka producer.
func NewProducer(producer Publisher) *Producer {
	return &Producer{producer: producer}
}

// UserRegisteredPayload is the body of a user.registered event.
type UserRegisteredPayload struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// PublishUserRegistered emits a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	payload := UserRegisteredPayload{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
	return p.publish(ctx, TopicUserRegistered, "user.registered", user.ID, payload)
}

// WishlistCreatedPayload is the body of a wishlist.created event.
type WishlistCreatedPayload struct {
	WishlistID string    `json:"wishlist_id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublishWishlistCreated emits a wishlist.created event.
func (p *Producer) PublishWishlistCreated(ctx context.Context, w *domain.Wishlist) error {
	payload := WishlistCreatedPayload{
		WishlistID: w.ID,
		UserID:     w.UserID,
		Name:       w.Name,
		CreatedAt:  w.CreatedAt,
	}
	return p.publish(ctx, TopicWishlistCreated, "wishlist.created", w.ID, payload)
}

// WishlistSharedPayload is the body of a wishlist.shared event.
type WishlistSharedPayload struct {
	WishlistID string    `json:"wishlist_id"`
	UserID     string    `json:"user_id"`
	SharedAt   time.Time `json:"shared_at"`
}

// PublishWishlistShared emits a wishlist.shared event.
func (p *Producer) PublishWishlistShared(ctx context.Context, wishlistID, userID string) error {
	payload := WishlistSharedPayload{
		WishlistID: wishlistID,
		UserID:     userID,
		SharedAt:   time.Now().UTC(),
	}
	return p.publish(ctx, TopicWishlistShared, "wishlist.shared", wishlistID, payload)
}

// ItemCreatedPayload is the body of an item.created event.
type ItemCreatedPayload struct {
	ItemID     string    `json:"item_id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	WishlistID string    `json:"wishlist_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublishItemCreated emits an item.created event. wishlistID is empty when
// the item was created without an initial link.
func (p *Producer) PublishItemCreated(ctx context.Context, item *domain.Item, wishlistID string) error {
	payload := ItemCreatedPayload{
		ItemID:     item.ID,
		UserID:     item.UserID,
		Name:       item.Name,
		WishlistID: wishlistID,
		CreatedAt:  item.CreatedAt,
	}
	return p.publish(ctx, TopicItemCreated, "item.created", item.ID, payload)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID string, payload any) error {
	evt, err := kafka.NewEvent(eventType, aggregateID, source, payload)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}

	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	return p.producer.Publish(ctx, topic, evt)
}
