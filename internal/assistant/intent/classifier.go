// internal/assistant/intent/classifier.go
package intent

import (
	"strings"

	"crm-assistant/internal/assistant/tables"
	"crm-assistant/internal/models"
)

// greetingTokens match the whole question only.
var greetingTokens = map[string]bool{
	"halo": true, "hai": true, "hi": true, "hello": true, "hey": true,
	"pagi": true, "siang": true, "sore": true, "malam": true,
	"assalamualaikum": true,
}

var greetingPhrases = []string{
	"selamat pagi", "selamat siang", "selamat sore", "selamat malam", "apa kabar",
}

var generalPhrases = []string{
	"bisa bantu apa", "apa yang bisa", "bantuan apa", "kamu bisa apa",
	"fitur apa", "fiturnya apa", "help",
}

var chatPhrases = []string{
	"terima kasih", "makasih", "thanks", "thank you",
	"sampai jumpa", "bye", "dadah", "oke deh", "sip", "mantap",
}

var countWords = []string{"berapa", "jumlah", "total", "banyak", "hitung"}

var dateWindows = []struct {
	phrase string
	intent models.Intent
}{
	{"hari ini", models.IntentFilterToday},
	{"kemarin", models.IntentFilterYesterday},
	{"minggu ini", models.IntentFilterWeek},
	{"bulan ini", models.IntentFilterMonth},
}

var superlatives = []struct {
	words  []string
	intent models.Intent
}{
	{[]string{"terbaru", "terakhir", "terkini", "paling baru"}, models.IntentLatest},
	{[]string{"terlama", "pertama", "paling lama", "tertua"}, models.IntentOldest},
	{[]string{"termurah", "paling murah"}, models.IntentCheapest},
	{[]string{"termahal", "paling mahal"}, models.IntentExpensive},
}

var listWords = []string{"list", "daftar", "tampilkan", "lihat", "semua"}

var semanticWords = []string{"kenapa", "mengapa", "jelaskan", "bagaimana", "analisa", "analisis"}

// Classify maps a question to exactly one intent. The rules form an ordered
// cascade evaluated top to bottom; the first match wins, so a question
// holding both a date window and a superlative resolves to the date window.
func Classify(question string) models.Intent {
	q := strings.ToLower(strings.TrimSpace(question))

	if greetingTokens[q] || containsAny(q, greetingPhrases) {
		return models.IntentGreeting
	}

	if containsAny(q, generalPhrases) {
		return models.IntentGeneral
	}

	if containsAny(q, chatPhrases) {
		return models.IntentChat
	}

	// Questions with no business vocabulary at all are small talk.
	if !containsAny(q, tables.Vocabulary()) {
		return models.IntentChat
	}

	if containsAny(q, countWords) {
		return models.IntentCount
	}

	for _, w := range dateWindows {
		if strings.Contains(q, w.phrase) {
			return w.intent
		}
	}

	for _, s := range superlatives {
		if containsAny(q, s.words) {
			return s.intent
		}
	}

	if containsAny(q, listWords) {
		return models.IntentList
	}

	if containsAny(q, semanticWords) {
		return models.IntentSemantic
	}

	return models.IntentList
}

func containsAny(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}
