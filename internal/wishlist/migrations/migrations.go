// Package migrations embeds the SQL schema migrations for the wishlist
// service.
package migrations

import "embed"

// FS holds the .up.sql migration files, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
