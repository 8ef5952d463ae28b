// Package main implements a standalone seed script that populates the
// wishlist service database with demo users, wishlists, items, and links so
// the API can be exercised without registering accounts by hand.
//
// Run: go run scripts/seed_demo_data.go
//   (from the repo root, or: cd scripts && go run seed_demo_data.go)
package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func connString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "wishlist"),
		getEnv("POSTGRES_PASSWORD", "wishlist_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("WISHLIST_DB_NAME", "wishlist_db"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)
}

// ---------------------------------------------------------------------------
// Deterministic UUID generation
// ---------------------------------------------------------------------------

// deterministicUUID produces a stable UUID-shaped string from a namespace and
// an index so re-runs always touch the same rows.
func deterministicUUID(namespace string, index int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", namespace, index)))
	hex := fmt.Sprintf("%x", h[:16])
	return fmt.Sprintf("%s-%s-4%s-%x%s-%s",
		hex[0:8],
		hex[8:12],
		hex[13:16],
		0x8|(h[8]&0x3),
		hex[17:20],
		hex[20:32],
	)
}

// ---------------------------------------------------------------------------
// Demo data
// ---------------------------------------------------------------------------

type demoUser struct {
	Username string
	Password string
}

var demoUsers = []demoUser{
	{"alice", "alice-demo-password"},
	{"bob", "bob-demo-password"},
}

type demoItem struct {
	Name  string
	URL   string
	Price int64 // cents
}

type demoWishlist struct {
	Name    string
	Comment string
	Shared  bool
	Items   []demoItem
}

var demoWishlists = map[string][]demoWishlist{
	"alice": {
		{
			Name:    "Birthday",
			Comment: "things I keep forgetting to buy myself",
			Shared:  true,
			Items: []demoItem{
				{"Mechanical keyboard", "https://shop.example.com/kb-87", 12999},
				{"Pour-over kettle", "https://shop.example.com/kettle-1", 5450},
			},
		},
		{
			Name:   "Workshop",
			Shared: false,
			Items: []demoItem{
				{"Digital calipers", "https://shop.example.com/calipers", 3200},
			},
		},
	},
	"bob": {
		{
			Name:    "Trail gear",
			Comment: "next season",
			Shared:  true,
			Items: []demoItem{
				{"Headlamp", "https://shop.example.com/headlamp-9", 4999},
				{"Trekking poles", "https://shop.example.com/poles-2", 8900},
			},
		},
	},
}

// ---------------------------------------------------------------------------
// Seeding
// ---------------------------------------------------------------------------

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connString())
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := seed(ctx, pool); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Println("demo data seeded")
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	now := time.Now().UTC()

	userIDs := make(map[string]string, len(demoUsers))
	for i, u := range demoUsers {
		id := deterministicUUID("user", i)
		userIDs[u.Username] = id

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Username, err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, username, password_hash, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (username) DO NOTHING`,
			id, u.Username, string(hash), now)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.Username, err)
		}
	}

	wlIndex, itemIndex := 0, 0
	for username, lists := range demoWishlists {
		ownerID := userIDs[username]
		for _, wl := range lists {
			wlID := deterministicUUID("wishlist", wlIndex)
			wlIndex++

			var comment *string
			if wl.Comment != "" {
				comment = &wl.Comment
			}
			_, err := pool.Exec(ctx, `
				INSERT INTO wishlists (id, user_id, name, comment, shared, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $6)
				ON CONFLICT (id) DO NOTHING`,
				wlID, ownerID, wl.Name, comment, wl.Shared, now)
			if err != nil {
				return fmt.Errorf("insert wishlist %s: %w", wl.Name, err)
			}

			for _, it := range wl.Items {
				itemID := deterministicUUID("item", itemIndex)
				itemIndex++

				_, err := pool.Exec(ctx, `
					INSERT INTO items (id, user_id, name, url, price, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, $6)
					ON CONFLICT (id) DO NOTHING`,
					itemID, ownerID, it.Name, it.URL, it.Price, now)
				if err != nil {
					return fmt.Errorf("insert item %s: %w", it.Name, err)
				}

				_, err = pool.Exec(ctx, `
					INSERT INTO item_wishlists (item_id, wishlist_id, created_at)
					SELECT $1, $2, $3
					WHERE NOT EXISTS (
						SELECT 1 FROM item_wishlists WHERE item_id = $1 AND wishlist_id = $2
					)`,
					itemID, wlID, now)
				if err != nil {
					return fmt.Errorf("link item %s: %w", it.Name, err)
				}
			}
		}
	}

	return nil
}
