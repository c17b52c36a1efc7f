// internal/assistant/query/schema_cache.go
package query

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// SchemaCache memoizes per-table column metadata so column candidates can be
// resolved with one information_schema lookup per table instead of
// speculative queries against maybe-missing columns.
type SchemaCache struct {
	db *sql.DB

	mu      sync.RWMutex
	columns map[string]map[string]bool
}

func NewSchemaCache(db *sql.DB) *SchemaCache {
	return &SchemaCache{
		db:      db,
		columns: make(map[string]map[string]bool),
	}
}

// TableExists probes the store for the table.
func (c *SchemaCache) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`,
		table,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("existence probe for %s: %w", table, err)
	}
	return exists, nil
}

// Columns returns the column set of a table, loading it on first use.
func (c *SchemaCache) Columns(ctx context.Context, table string) (map[string]bool, error) {
	c.mu.RLock()
	cols, ok := c.columns[table]
	c.mu.RUnlock()
	if ok {
		return cols, nil
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("column lookup for %s: %w", table, err)
	}
	defer rows.Close()

	cols = make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.columns[table] = cols
	c.mu.Unlock()

	return cols, nil
}

// FirstPresent returns the first candidate column that exists on the table,
// or "" when none do.
func (c *SchemaCache) FirstPresent(ctx context.Context, table string, candidates []string) (string, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return "", err
	}
	for _, cand := range candidates {
		if cols[cand] {
			return cand, nil
		}
	}
	return "", nil
}
