// internal/assistant/tables/registry.go
package tables

// tableRule binds a business entity table to the question keywords that vote
// for it. Declaration order is the tie-break: on equal scores the earlier
// table wins, so the order below is part of the routing contract.
type tableRule struct {
	name     string
	keywords []string
}

var tableRules = []tableRule{
	{"deals", []string{"deal", "transaksi", "penjualan", "kesepakatan", "pipeline", "closing"}},
	{"customers", []string{"customer", "pelanggan", "klien", "client", "nasabah"}},
	{"products", []string{"produk", "product", "barang", "item"}},
	{"tickets", []string{"tiket", "ticket", "keluhan", "komplain", "complaint", "kendala"}},
	{"invoices", []string{"invoice", "faktur", "tagihan", "billing", "pembayaran"}},
	{"services", []string{"layanan", "service", "jasa"}},
	{"service_packages", []string{"paket", "package", "langganan", "subscription"}},
	{"campaigns", []string{"campaign", "kampanye", "promosi", "iklan", "marketing"}},
	{"activities", []string{"aktivitas", "activity", "kegiatan", "meeting", "jadwal", "agenda"}},
	{"communications", []string{"komunikasi", "communication", "pesan", "telepon", "call"}},
	{"leads", []string{"lead", "prospek", "calon pelanggan"}},
	{"companies", []string{"perusahaan", "company", "kantor", "firma"}},
	{"teams", []string{"tim", "team", "karyawan", "staff", "sales"}},
}

// genericDataWords are part of the business vocabulary but vote for no table;
// they keep data-flavored questions ("tampilkan data terbaru") out of small
// talk while leaving table resolution to the fallback heuristic.
var genericDataWords = []string{"data", "record", "laporan", "report"}

// genericDataVerbs trigger the default-table fallback when no table scored.
var genericDataVerbs = []string{"terbaru", "terlama", "berapa", "list", "tampilkan", "daftar"}

// DefaultTable is the fallback target for generic data questions.
const DefaultTable = "deals"

// companyWords and affiliationWords drive the contextual override: a question
// holding both is about a customer's company record, not the companies table.
var companyWords = []string{"perusahaan", "company"}
var affiliationWords = []string{"customer", "pelanggan", "klien", "client", "milik"}

// blacklist holds tables that must never be queried through the assistant,
// even when named directly.
var blacklist = map[string]bool{
	"users":                  true,
	"password_resets":        true,
	"sessions":               true,
	"migrations":             true,
	"embeddings":             true,
	"api_keys":               true,
	"personal_access_tokens": true,
}

var allowed = func() map[string]bool {
	m := make(map[string]bool, len(tableRules))
	for _, r := range tableRules {
		m[r.name] = true
	}
	return m
}()

// IsAllowed reports whether the table is a routable business entity.
func IsAllowed(name string) bool {
	return allowed[name]
}

// IsBlacklisted reports whether the table is explicitly off limits.
func IsBlacklisted(name string) bool {
	return blacklist[name]
}

// Vocabulary returns every keyword that marks a question as data-related.
func Vocabulary() []string {
	var words []string
	for _, r := range tableRules {
		words = append(words, r.keywords...)
	}
	words = append(words, genericDataWords...)
	return words
}

// DateColumns returns the candidate date columns for a table, in priority
// order. The first one present in the live schema is used.
func DateColumns(table string) []string {
	return []string{"created_at", "date", "start_date"}
}

// StatusColumns returns the candidate columns a status-style filter targets.
func StatusColumns(table string) []string {
	switch table {
	case "deals":
		return []string{"deal_stage"}
	case "leads":
		return []string{"lead_status"}
	case "activities":
		return []string{"type"}
	case "campaigns":
		return []string{"channel"}
	}
	return []string{"status", "stage", "type", "channel"}
}

// ValueColumns returns the candidate numeric columns for value-range filters
// and cheapest/expensive ordering.
func ValueColumns(table string) []string {
	switch table {
	case "deals":
		return []string{"deal_value"}
	case "invoices":
		return []string{"amount"}
	case "campaigns":
		return []string{"budget"}
	case "products", "services", "service_packages":
		return []string{"price"}
	}
	return []string{"deal_value", "amount", "budget", "price"}
}

// ForeignKey describes a reference column and the label to expand it into.
type ForeignKey struct {
	Column      string
	RefTable    string
	LabelColumn string
}

// ForeignKeys returns the reference columns worth expanding to human-readable
// labels for a table. Tables without entries are returned as-is.
func ForeignKeys(table string) []ForeignKey {
	switch table {
	case "deals", "tickets", "invoices", "communications":
		return []ForeignKey{{Column: "customer_id", RefTable: "customers", LabelColumn: "name"}}
	case "customers":
		return []ForeignKey{{Column: "company_id", RefTable: "companies", LabelColumn: "name"}}
	case "leads":
		return []ForeignKey{{Column: "campaign_id", RefTable: "campaigns", LabelColumn: "name"}}
	case "activities":
		return []ForeignKey{{Column: "deal_id", RefTable: "deals", LabelColumn: "deal_name"}}
	}
	return nil
}
