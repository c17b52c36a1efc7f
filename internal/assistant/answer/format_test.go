// internal/assistant/answer/format_test.go
package answer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crm-assistant/internal/models"
)

func TestShrinkRowsCapsRowCount(t *testing.T) {
	rows := make([]models.Row, 25)
	for i := range rows {
		rows[i] = models.Row{"deal_name": "Deal"}
	}

	shrunk := ShrinkRows(rows)
	assert.Len(t, shrunk, 10)
}

func TestShrinkRowsStripsSensitiveColumns(t *testing.T) {
	rows := []models.Row{{
		"id":            int64(1),
		"name":          "Budi",
		"password":      "secret",
		"password_hash": "abc123",
		"token_hash":    "def456",
		"api_key":       "xyz",
	}}

	shrunk := ShrinkRows(rows)
	assert.NotContains(t, shrunk[0], "id")
	assert.NotContains(t, shrunk[0], "password")
	assert.NotContains(t, shrunk[0], "password_hash")
	assert.NotContains(t, shrunk[0], "token_hash")
	assert.NotContains(t, shrunk[0], "api_key")
	assert.Equal(t, "Budi", shrunk[0]["name"])
}

func TestShrinkRowsTruncatesLongStrings(t *testing.T) {
	long := strings.Repeat("a", 250)
	rows := []models.Row{{"description": long}}

	shrunk := ShrinkRows(rows)
	got, ok := shrunk[0]["description"].(string)
	assert.True(t, ok)
	assert.Len(t, got, 103)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestShrinkRowsFormatsDates(t *testing.T) {
	rows := []models.Row{{
		"created_at": time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
		"start_date": "2026-02-14",
		"updated_at": "2026-02-14T09:30:00Z",
	}}

	shrunk := ShrinkRows(rows)
	assert.Equal(t, "14 Feb 2026", shrunk[0]["created_at"])
	assert.Equal(t, "14 Feb 2026", shrunk[0]["start_date"])
	assert.Equal(t, "14 Feb 2026", shrunk[0]["updated_at"])
}

func TestShrinkRowsFormatsCurrency(t *testing.T) {
	rows := []models.Row{{
		"deal_value": float64(1500000),
		"price":      int64(250000),
		"quantity":   float64(3),
	}}

	shrunk := ShrinkRows(rows)
	assert.Equal(t, "Rp 1.500.000", shrunk[0]["deal_value"])
	assert.Equal(t, "Rp 250.000", shrunk[0]["price"])
	assert.Equal(t, float64(3), shrunk[0]["quantity"])
}

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "Rp 0"},
		{500, "Rp 500"},
		{1500, "Rp 1.500"},
		{1500000, "Rp 1.500.000"},
		{123456789, "Rp 123.456.789"},
		{-2500, "-Rp 2.500"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatRupiah(tt.in))
	}
}

func TestRowsContextNumbersEntries(t *testing.T) {
	rows := []models.Row{
		{"deal_name": "Deal A"},
		{"deal_name": "Deal B"},
	}

	out := RowsContext(rows)
	assert.Contains(t, out, "1. ")
	assert.Contains(t, out, "2. ")
	assert.Contains(t, out, "Deal A")
	assert.Contains(t, out, "Deal B")
}
