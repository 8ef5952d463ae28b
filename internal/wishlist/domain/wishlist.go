package domain

import "time"

// MaxNameLength caps wishlist and item names.
const MaxNameLength = 32

// MaxCommentLength caps wishlist comments.
const MaxCommentLength = 255

// Wishlist is a named, user-owned collection that items can be linked into.
// Once Shared is set the wishlist is publicly readable; there is no reverse
// transition.
type Wishlist struct {
	ID        string
	UserID    string
	Name      string
	Comment   *string
	Date      *time.Time
	Shared    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WishlistWithItems is the full-detail read shape: the wishlist plus
// summaries of its linked items.
type WishlistWithItems struct {
	Wishlist *Wishlist
	Items    []*ItemSummary
}
