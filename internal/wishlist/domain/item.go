package domain

import "time"

// Item is a user-owned entry that exists independently of any wishlist.
// The owner is fixed at creation and never changes.
type Item struct {
	ID        string
	UserID    string
	Name      string
	URL       string
	Price     *int64
	ImageURL  *string
	Comment   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemSummary is the shape items take inside a wishlist view. It carries no
// owner-only fields.
type ItemSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}
