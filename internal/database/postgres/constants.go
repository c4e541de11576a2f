package postgres

import "time"

// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
const PgErrorCodeUniqueViolation = "23505"

// Ledger counter names
const (
	counterMarket   = "market"
	counterPosition = "position"
)

// SchemaPrefix starts every per-run schema name
const SchemaPrefix = "sim_"

// DefaultGovernanceTTL bounds how long a plain governance read may lag a
// commit made by another process
const DefaultGovernanceTTL = 2 * time.Second

// CacheSchemaVersion invalidates cached entries written by an older layout
const CacheSchemaVersion = "1.0"
