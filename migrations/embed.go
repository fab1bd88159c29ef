// Package migrations holds the database schema applied by the migrate command.
package migrations

import _ "embed"

// Schema creates every table and index the services depend on. Each
// statement is idempotent.
//
//go:embed schema.sql
var Schema string
