// internal/assistant/tables/router_test.go
package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"deal keyword", "tampilkan deal terbaru", "deals"},
		{"customer keyword", "siapa pelanggan baru kita", "customers"},
		{"product keyword", "produk apa yang paling laku", "products"},
		{"ticket keyword", "ada komplain apa hari ini", "tickets"},
		{"invoice keyword", "tagihan yang belum lunas", "invoices"},
		{"campaign keyword", "hasil kampanye bulan ini", "campaigns"},
		{"lead keyword beats weaker campaign keyword", "prospek dari iklan facebook", "leads"},
		{"activity keyword", "jadwal meeting minggu ini", "activities"},
		{"company keyword alone", "daftar perusahaan", "companies"},
		{"no keyword no verb", "apakah besok libur", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.question))
		})
	}
}

func TestRouteDeterministic(t *testing.T) {
	question := "deal dan invoice bulan ini"
	first := Route(question)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Route(question))
	}
}

func TestRouteTieBreakFirstDeclared(t *testing.T) {
	// "deal" and "lead" are the same length and both whole-word match, so
	// both tables score identically. The earlier-declared table wins.
	assert.Equal(t, "deals", Route("deal atau lead"))
}

func TestRouteSubstringStillScores(t *testing.T) {
	// "pembayaran" inside "pembayaranku" fails the word boundary but still
	// earns the base score, enough to route.
	assert.Equal(t, "invoices", Route("list pembayaranku"))
}

func TestRouteContextualOverride(t *testing.T) {
	// Company plus affiliation wording forces customers regardless of score.
	assert.Equal(t, "customers", Route("perusahaan milik customer budi"))
	assert.Equal(t, "customers", Route("company dari pelanggan itu apa"))

	// Company wording alone still routes to companies.
	assert.Equal(t, "companies", Route("perusahaan apa saja yang terdaftar"))
}

func TestRouteGenericFallback(t *testing.T) {
	// Generic data verbs with no entity keyword fall back to deals.
	assert.Equal(t, DefaultTable, Route("tampilkan yang terbaru dong"))
	assert.Equal(t, DefaultTable, Route("berapa semuanya"))
}

func TestBlacklist(t *testing.T) {
	assert.True(t, IsBlacklisted("users"))
	assert.True(t, IsBlacklisted("password_resets"))
	assert.True(t, IsBlacklisted("embeddings"))
	assert.False(t, IsBlacklisted("deals"))

	assert.True(t, IsAllowed("deals"))
	assert.False(t, IsAllowed("users"))
}

func TestVocabularyCoversGenericWords(t *testing.T) {
	vocab := Vocabulary()
	assert.Contains(t, vocab, "deal")
	assert.Contains(t, vocab, "pelanggan")
	assert.Contains(t, vocab, "data")
	assert.Contains(t, vocab, "laporan")
}
