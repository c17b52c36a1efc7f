// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/common/observability"
	"crm-assistant/internal/common/validation"
	"crm-assistant/internal/models"
)

const answerFatal = "Maaf, terjadi kesalahan pada sistem. Silakan coba lagi 🙏"

// AskService answers one question end to end.
type AskService interface {
	Ask(ctx context.Context, question string) models.Envelope
}

// Pinger reports backend reachability for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the assistant HTTP surface.
type Handler struct {
	service AskService
	pingers map[string]Pinger
	obs     *observability.Observability
	logger  logger.Logger
}

func NewHandler(service AskService, pingers map[string]Pinger, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		pingers: pingers,
		obs:     obs,
		logger:  log.With(map[string]interface{}{"component": "http"}),
	}
}

// Ask handles POST /api/ask. The endpoint always answers 200 with an
// envelope; malformed payloads get an error-typed envelope, not a 4xx.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeEnvelope(w, errorEnvelope("", "Format pertanyaan tidak valid. Kirim JSON dengan field \"question\" ya 😊"))
		return
	}

	if err := validation.ValidateAskRequest(body); err != nil {
		h.logger.Warn("invalid ask payload", map[string]interface{}{"error": err.Error()})
		h.writeEnvelope(w, errorEnvelope("", "Format pertanyaan tidak valid. Kirim JSON dengan field \"question\" ya 😊"))
		return
	}

	question, _ := body["question"].(string)

	start := time.Now()
	env := h.service.Ask(r.Context(), question)
	if h.obs != nil {
		h.obs.RecordQuestion(r.Context(), string(env.Type))
		h.obs.RecordDuration(r.Context(), time.Since(start), string(env.Type))
	}

	h.writeEnvelope(w, env)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready and pings every backend.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(h.pingers))
	for name, p := range h.pingers {
		if err := p.Ping(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	writeJSON(w, status, checks)
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, env models.Envelope) {
	writeJSON(w, http.StatusOK, env)
}

func errorEnvelope(question, answer string) models.Envelope {
	return models.Envelope{
		Question: question,
		Answer:   answer,
		Sources:  []models.Source{},
		Type:     models.ResponseError,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
