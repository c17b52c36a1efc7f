// internal/assistant/query/executor.go
package query

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"crm-assistant/internal/assistant/tables"
	apperrors "crm-assistant/internal/common/errors"
	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/common/metrics"
	"crm-assistant/internal/models"
)

// Intent-specific row limits.
const (
	limitSingle   = 1
	limitOrdered  = 5
	limitDefault  = 10
	limitFiltered = 20
)

// Executor builds and runs structured queries against the relational store.
type Executor struct {
	db       *sql.DB
	cache    *SchemaCache
	rdb      *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
	now      func() time.Time
}

func NewExecutor(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *Executor {
	return &Executor{
		db:       db,
		cache:    NewSchemaCache(db),
		rdb:      rdb,
		cacheTTL: cacheTTL,
		logger:   log.With(map[string]interface{}{"component": "query-executor"}),
		now:      time.Now,
	}
}

// TableExists probes the store for the table.
func (e *Executor) TableExists(ctx context.Context, table string) (bool, error) {
	return e.cache.TableExists(ctx, table)
}

// Count runs an aggregate row count with the extracted filters applied.
func (e *Executor) Count(ctx context.Context, table string, fs models.FilterSet) (int, error) {
	where, args, err := e.buildFilters(ctx, table, models.IntentCount, fs)
	if err != nil {
		return 0, err
	}

	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(table))
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}

	start := time.Now()
	var count int
	err = e.db.QueryRowContext(ctx, q, args...).Scan(&count)
	metrics.ExternalCallDuration.WithLabelValues("postgres").Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, apperrors.NewQueryExecutionError(fmt.Errorf("count query on %s: %w", table, err))
	}
	return count, nil
}

// Run executes the structured query for a data intent and returns the rows.
func (e *Executor) Run(ctx context.Context, table string, it models.Intent, fs models.FilterSet) ([]models.Row, error) {
	cacheKey := e.cacheKey(table, it, fs)
	if rows, ok := e.cachedRows(ctx, cacheKey); ok {
		return rows, nil
	}

	where, args, err := e.buildFilters(ctx, table, it, fs)
	if err != nil {
		return nil, err
	}

	orderBy, limit, err := e.ordering(ctx, table, it, fs)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(table))
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	if orderBy != "" {
		q += " ORDER BY " + orderBy
	}
	q += fmt.Sprintf(" LIMIT %d", limit)

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, q, args...)
	metrics.ExternalCallDuration.WithLabelValues("postgres").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, apperrors.NewQueryExecutionError(fmt.Errorf("query on %s: %w", table, err))
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, apperrors.NewQueryExecutionError(fmt.Errorf("scan rows from %s: %w", table, err))
	}

	e.storeRows(ctx, cacheKey, result)

	return result, nil
}

// buildFilters assembles WHERE clauses from the date window and FilterSet.
func (e *Executor) buildFilters(ctx context.Context, table string, it models.Intent, fs models.FilterSet) ([]string, []interface{}, error) {
	var where []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if from, to, ok := e.dateWindow(it); ok {
		col, err := e.cache.FirstPresent(ctx, table, tables.DateColumns(table))
		if err != nil {
			return nil, nil, err
		}
		if col == "" {
			// No usable date column: skip the window rather than fail.
			e.logger.Warn("date filter skipped, no date column", map[string]interface{}{
				"table": table,
			})
		} else {
			qcol := pq.QuoteIdentifier(col)
			where = append(where, fmt.Sprintf("%s >= %s", qcol, arg(from)))
			where = append(where, fmt.Sprintf("%s < %s", qcol, arg(to)))
		}
	}

	status := fs.Status
	if table == "deals" && fs.DealStage != "" {
		status = fs.DealStage
	}
	if status != "" {
		col, err := e.cache.FirstPresent(ctx, table, tables.StatusColumns(table))
		if err != nil {
			return nil, nil, err
		}
		if col != "" {
			where = append(where, fmt.Sprintf("%s ILIKE %s", pq.QuoteIdentifier(col), arg("%"+status+"%")))
		}
	}

	if fs.Priority != "" {
		cols, err := e.cache.Columns(ctx, table)
		if err != nil {
			return nil, nil, err
		}
		if cols["priority"] {
			where = append(where, fmt.Sprintf("priority ILIKE %s", arg("%"+fs.Priority+"%")))
		}
	}

	if fs.EntityType != "" {
		col, err := e.cache.FirstPresent(ctx, table, []string{"entity_type", "type"})
		if err != nil {
			return nil, nil, err
		}
		if col != "" {
			where = append(where, fmt.Sprintf("%s ILIKE %s", pq.QuoteIdentifier(col), arg("%"+fs.EntityType+"%")))
		}
	}

	min := fs.MinValue
	if fs.MinPrice > 0 {
		min = fs.MinPrice
	}
	max := fs.MaxValue
	if fs.MaxPrice > 0 {
		max = fs.MaxPrice
	}
	if min > 0 || max > 0 {
		col, err := e.cache.FirstPresent(ctx, table, tables.ValueColumns(table))
		if err != nil {
			return nil, nil, err
		}
		if col != "" {
			qcol := pq.QuoteIdentifier(col)
			if min > 0 {
				where = append(where, fmt.Sprintf("%s >= %s", qcol, arg(min)))
			}
			if max > 0 {
				where = append(where, fmt.Sprintf("%s <= %s", qcol, arg(max)))
			}
		}
	}

	return where, args, nil
}

// ordering picks the ORDER BY clause and the row limit for the intent.
func (e *Executor) ordering(ctx context.Context, table string, it models.Intent, fs models.FilterSet) (string, int, error) {
	dateCol, err := e.cache.FirstPresent(ctx, table, tables.DateColumns(table))
	if err != nil {
		return "", 0, err
	}

	switch it {
	case models.IntentLatest, models.IntentOldest:
		dir := "DESC"
		if it == models.IntentOldest {
			dir = "ASC"
		}
		if dateCol == "" {
			return "", limitOrdered, nil
		}
		return pq.QuoteIdentifier(dateCol) + " " + dir, limitOrdered, nil

	case models.IntentCheapest, models.IntentExpensive:
		valueCol, err := e.cache.FirstPresent(ctx, table, tables.ValueColumns(table))
		if err != nil {
			return "", 0, err
		}
		dir := "ASC"
		if it == models.IntentExpensive {
			dir = "DESC"
		}
		if valueCol == "" {
			return "", limitSingle, nil
		}
		return pq.QuoteIdentifier(valueCol) + " " + dir, limitSingle, nil
	}

	limit := limitDefault
	if !fs.IsEmpty() {
		limit = limitFiltered
	}
	if dateCol == "" {
		return "", limit, nil
	}
	return pq.QuoteIdentifier(dateCol) + " DESC", limit, nil
}

// dateWindow returns the [from, to) bounds for a date-filter intent.
func (e *Executor) dateWindow(it models.Intent) (time.Time, time.Time, bool) {
	now := e.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch it {
	case models.IntentFilterToday:
		return midnight, midnight.AddDate(0, 0, 1), true
	case models.IntentFilterYesterday:
		return midnight.AddDate(0, 0, -1), midnight, true
	case models.IntentFilterWeek:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday closes the week
		}
		start := midnight.AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7), true
	case models.IntentFilterMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), true
	}
	return time.Time{}, time.Time{}, false
}

func scanRows(rows *sql.Rows) ([]models.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []models.Row
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(models.Row, len(cols))
		for i, col := range cols {
			switch v := vals[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (e *Executor) cacheKey(table string, it models.Intent, fs models.FilterSet) string {
	payload, _ := json.Marshal(fs)
	sum := sha1.Sum([]byte(table + "|" + string(it) + "|" + string(payload)))
	return "assistant:query:" + hex.EncodeToString(sum[:])
}

func (e *Executor) cachedRows(ctx context.Context, key string) ([]models.Row, bool) {
	if e.rdb == nil {
		return nil, false
	}
	val, err := e.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var rows []models.Row
	if err := json.Unmarshal([]byte(val), &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (e *Executor) storeRows(ctx context.Context, key string, rows []models.Row) {
	if e.rdb == nil || len(rows) == 0 {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := e.rdb.Set(ctx, key, payload, e.cacheTTL).Err(); err != nil {
		e.logger.Warn("query cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
