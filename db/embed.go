// Package db provides embedded database schema and seed files.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Seed contains the default catalog, categories, settings, and about content
// loaded by cmd/seed-db.
//
//go:embed seed/catalog.json
var Seed []byte
