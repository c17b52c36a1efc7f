// internal/assistant/answer/format.go
package answer

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"crm-assistant/internal/models"
)

const (
	maxContextRows = 10
	maxFieldChars  = 100
)

// Columns never shown to the model.
var hiddenColumns = map[string]bool{
	"id":             true,
	"password":       true,
	"password_hash":  true,
	"remember_token": true,
	"api_key":        true,
	"secret":         true,
	"hash":           true,
}

var currencyColumns = map[string]bool{
	"deal_value": true,
	"amount":     true,
	"budget":     true,
	"price":      true,
	"value":      true,
	"total":      true,
}

// ShrinkRows prepares query rows for prompt context: caps the row count,
// drops sensitive columns, truncates long strings and reformats dates and
// currency values for Indonesian readers.
func ShrinkRows(rows []models.Row) []models.Row {
	if len(rows) > maxContextRows {
		rows = rows[:maxContextRows]
	}

	shrunk := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		out := make(models.Row, len(row))
		for col, val := range row {
			if hiddenColumns[col] || strings.HasSuffix(col, "_hash") {
				continue
			}
			out[col] = formatValue(col, val)
		}
		shrunk = append(shrunk, out)
	}
	return shrunk
}

// RowsContext serializes shrunk rows into the context block sent to the model.
func RowsContext(rows []models.Row) string {
	var b strings.Builder
	for i, row := range rows {
		payload, err := json.Marshal(row)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, string(payload))
	}
	return b.String()
}

func formatValue(col string, val interface{}) interface{} {
	switch v := val.(type) {
	case time.Time:
		return v.Format("02 Jan 2006")
	case string:
		if t, ok := parseDate(v); ok && isDateColumn(col) {
			return t.Format("02 Jan 2006")
		}
		if len(v) > maxFieldChars {
			return v[:maxFieldChars] + "..."
		}
		return v
	case float64:
		if currencyColumns[col] {
			return formatRupiah(v)
		}
		return v
	case int64:
		if currencyColumns[col] {
			return formatRupiah(float64(v))
		}
		return v
	}
	return val
}

func isDateColumn(col string) bool {
	return strings.HasSuffix(col, "_at") || strings.HasSuffix(col, "_date") || col == "date"
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatRupiah renders a numeric as "Rp 1.500.000" with dot thousands
// grouping, dropping any fraction.
func formatRupiah(v float64) string {
	n := int64(math.Abs(v))
	s := fmt.Sprintf("%d", n)

	var b strings.Builder
	if v < 0 {
		b.WriteString("-")
	}
	b.WriteString("Rp ")

	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteString(".")
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteString(".")
		}
	}
	return b.String()
}
