// internal/models/ask.go
package models

// Intent is the classified purpose of a question. Exactly one intent is
// chosen per question; classification rule order is significant.
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentGeneral         Intent = "general"
	IntentChat            Intent = "chat"
	IntentCount           Intent = "count"
	IntentLatest          Intent = "latest"
	IntentOldest          Intent = "oldest"
	IntentCheapest        Intent = "cheapest"
	IntentExpensive       Intent = "expensive"
	IntentFilterToday     Intent = "filter_today"
	IntentFilterYesterday Intent = "filter_yesterday"
	IntentFilterWeek      Intent = "filter_week"
	IntentFilterMonth     Intent = "filter_month"
	IntentSemantic        Intent = "semantic"
	IntentList            Intent = "list"
)

// IsData reports whether the intent requires touching the data store.
func (i Intent) IsData() bool {
	switch i {
	case IntentGreeting, IntentGeneral, IntentChat:
		return false
	}
	return true
}

// ResponseType mirrors the outcome class of the handled question.
type ResponseType string

const (
	ResponseGreeting ResponseType = "greeting"
	ResponseGeneral  ResponseType = "general"
	ResponseChat     ResponseType = "chat"
	ResponseCount    ResponseType = "count"
	ResponseData     ResponseType = "data"
	ResponseNoData   ResponseType = "no_data"
	ResponseSemantic ResponseType = "semantic"
	ResponseError    ResponseType = "error"
)

// FilterSet holds scalar constraints extracted from the question text.
// Keys are independent and additive; a zero value means "no constraint".
type FilterSet struct {
	Status     string  `json:"status,omitempty"`
	Priority   string  `json:"priority,omitempty"`
	DealStage  string  `json:"deal_stage,omitempty"`
	MinValue   float64 `json:"min_value,omitempty"`
	MaxValue   float64 `json:"max_value,omitempty"`
	MinPrice   float64 `json:"min_price,omitempty"`
	MaxPrice   float64 `json:"max_price,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	EntityType string  `json:"entity_type,omitempty"`
}

// IsEmpty reports whether no filter was extracted.
func (f FilterSet) IsEmpty() bool {
	return f == FilterSet{}
}

// Source identifies the provenance of a row used in an answer.
type Source struct {
	SourceTable string `json:"source_table"`
	SourceID    string `json:"source_id"`
}

// VectorMatch is one ranked hit from the vector index.
type VectorMatch struct {
	Content     string  `json:"content"`
	SourceTable string  `json:"source_table"`
	SourceID    string  `json:"source_id"`
	Score       float64 `json:"score"`
}

// Envelope is the response returned to the caller. Errors are represented by
// Type "error" with a user-readable Answer, never by a non-2xx status.
type Envelope struct {
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Sources  []Source     `json:"sources"`
	Type     ResponseType `json:"type"`
}

// Row is one record from the structured store, keyed by column name.
type Row map[string]interface{}
