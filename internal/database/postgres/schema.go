package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxSchemaName is PostgreSQL's identifier limit (NAMEDATALEN - 1)
const maxSchemaName = 63

var schemaUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

// SchemaName turns a run id into a lowercase identifier that needs no quoting
// in search_path. Long ids keep their tail, where runs carry a unique suffix.
func SchemaName(runID string) string {
	id := strings.Trim(schemaUnsafe.ReplaceAllString(strings.ToLower(runID), "_"), "_")
	if room := maxSchemaName - len(SchemaPrefix); len(id) > room {
		id = id[len(id)-room:]
	}
	return SchemaPrefix + id
}

// CreateSchema creates schema if it does not exist
func CreateSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", schema, err)
	}
	return nil
}

// DropSchema removes schema and everything in it
func DropSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS "+pgx.Identifier{schema}.Sanitize()+" CASCADE"); err != nil {
		return fmt.Errorf("failed to drop schema %s: %w", schema, err)
	}
	return nil
}
