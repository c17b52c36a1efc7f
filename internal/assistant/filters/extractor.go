// internal/assistant/filters/extractor.go
package filters

import (
	"regexp"
	"strconv"
	"strings"

	"crm-assistant/internal/models"
)

var dealStages = []string{
	"prospecting", "qualification", "proposal", "negotiation",
	"closed won", "closed lost",
}

// ticketStatuses and invoiceStatuses both write the shared status key;
// the invoice pass runs second and overwrites on a double match. Known
// ambiguity, kept for behavioral compatibility.
var ticketStatuses = []string{
	"open", "in progress", "pending", "resolved", "closed", "selesai", "proses",
}

// Longer phrases come first so "belum lunas" is not shadowed by "lunas".
var invoiceStatuses = []string{
	"unpaid", "paid", "overdue", "belum lunas", "lunas", "jatuh tempo",
}

var priorities = []string{
	"urgent", "mendesak", "high", "tinggi", "medium", "sedang", "low", "rendah",
}

var entityTypes = []string{"internet", "hosting", "domain", "cloud"}

// amountRE captures a currency-ish marker followed by a number in Indonesian
// formatting (dot thousands separator, comma decimals).
var amountRE = regexp.MustCompile(`(rp|harga|nilai|value|amount)\s*\.?\s*([0-9][0-9.,]*)`)

var greaterWords = []string{"lebih besar", ">", "diatas", "di atas", "minimal"}
var lessWords = []string{"lebih kecil", "<", "dibawah", "di bawah", "maksimal"}

// Extract pulls scalar constraints out of the question text. Checks are
// independent per domain; absence of a match leaves the key unset.
func Extract(question string) models.FilterSet {
	q := strings.ToLower(question)
	var fs models.FilterSet

	for _, stage := range dealStages {
		if strings.Contains(q, stage) {
			fs.DealStage = stage
			break
		}
	}

	for _, status := range ticketStatuses {
		if strings.Contains(q, status) {
			fs.Status = status
			break
		}
	}

	for _, status := range invoiceStatuses {
		if strings.Contains(q, status) {
			fs.Status = status
			break
		}
	}

	for _, prio := range priorities {
		if strings.Contains(q, prio) {
			fs.Priority = prio
			break
		}
	}

	for _, et := range entityTypes {
		if strings.Contains(q, et) {
			fs.EntityType = et
			break
		}
	}

	extractAmount(q, &fs)

	return fs
}

func extractAmount(q string, fs *models.FilterSet) {
	m := amountRE.FindStringSubmatch(q)
	if m == nil {
		return
	}

	value, ok := parseAmount(m[2])
	if !ok {
		return
	}

	// "harga" questions constrain price columns, the rest constrain value
	// columns.
	isPrice := m[1] == "harga"

	switch {
	case containsAny(q, greaterWords):
		if isPrice {
			fs.MinPrice = value
		} else {
			fs.MinValue = value
		}
	case containsAny(q, lessWords):
		if isPrice {
			fs.MaxPrice = value
		} else {
			fs.MaxValue = value
		}
	default:
		fs.Amount = value
	}
}

// parseAmount handles "1.500.000", "1500000" and "2.500,75" style numbers.
func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimRight(raw, ".,")
	if raw == "" {
		return 0, false
	}

	// A trailing comma group is a decimal fraction; dots are thousands
	// separators.
	decimal := ""
	if idx := strings.LastIndex(raw, ","); idx >= 0 {
		decimal = raw[idx+1:]
		raw = raw[:idx]
	}
	raw = strings.ReplaceAll(raw, ".", "")

	if decimal != "" {
		raw = raw + "." + decimal
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func containsAny(q string, words []string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}
