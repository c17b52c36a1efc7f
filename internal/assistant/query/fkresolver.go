// internal/assistant/query/fkresolver.go
package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"crm-assistant/internal/assistant/tables"
	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/models"
)

// FKResolver expands reference columns into human-readable labels so answers
// can say "customer PT Maju Jaya" instead of a bare id. Resolution is best
// effort: any lookup failure leaves the rows untouched.
type FKResolver struct {
	db     *sql.DB
	logger logger.Logger
}

func NewFKResolver(db *sql.DB, log logger.Logger) *FKResolver {
	return &FKResolver{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "fk-resolver"}),
	}
}

// Resolve annotates rows in place with <ref>_name columns for each known
// foreign key of the table.
func (r *FKResolver) Resolve(ctx context.Context, table string, rows []models.Row) {
	if len(rows) == 0 {
		return
	}

	for _, fk := range tables.ForeignKeys(table) {
		ids := collectIDs(rows, fk.Column)
		if len(ids) == 0 {
			continue
		}

		labels, err := r.lookupLabels(ctx, fk, ids)
		if err != nil {
			r.logger.Warn("foreign key expansion skipped", map[string]interface{}{
				"table":  table,
				"column": fk.Column,
				"error":  err.Error(),
			})
			continue
		}

		labelKey := labelColumnName(fk.Column)
		for _, row := range rows {
			id := stringID(row[fk.Column])
			if label, ok := labels[id]; ok {
				row[labelKey] = label
			}
		}
	}
}

func (r *FKResolver) lookupLabels(ctx context.Context, fk tables.ForeignKey, ids []string) (map[string]string, error) {
	q := fmt.Sprintf(
		"SELECT id::text, %s FROM %s WHERE id::text = ANY($1)",
		pq.QuoteIdentifier(fk.LabelColumn),
		pq.QuoteIdentifier(fk.RefTable),
	)

	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make(map[string]string, len(ids))
	for rows.Next() {
		var id, label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, err
		}
		labels[id] = label
	}
	return labels, rows.Err()
}

// labelColumnName derives the annotation key: customer_id becomes
// customer_name.
func labelColumnName(fkColumn string) string {
	const suffix = "_id"
	if len(fkColumn) > len(suffix) && fkColumn[len(fkColumn)-len(suffix):] == suffix {
		return fkColumn[:len(fkColumn)-len(suffix)] + "_name"
	}
	return fkColumn + "_name"
}

func collectIDs(rows []models.Row, column string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, row := range rows {
		id := stringID(row[column])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func stringID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case []byte:
		return string(id)
	case int64:
		return fmt.Sprintf("%d", id)
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprintf("%v", id)
	}
}
