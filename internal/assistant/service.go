// internal/assistant/service.go
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crm-assistant/internal/assistant/answer"
	"crm-assistant/internal/assistant/filters"
	"crm-assistant/internal/assistant/intent"
	"crm-assistant/internal/assistant/query"
	"crm-assistant/internal/assistant/semantic"
	"crm-assistant/internal/assistant/tables"
	"crm-assistant/internal/common/errors"
	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/common/metrics"
	"crm-assistant/internal/models"
)

const maxSources = 5

// Fixed fallback answers. The LLM phrases most replies; these cover paths
// where the LLM must not be called or has itself failed.
const (
	answerEmptyQuestion = "Pertanyaan tidak boleh kosong 😊"
	answerBlacklisted   = "Maaf, data tersebut tidak dapat diakses melalui asisten ini 🙏"
	answerClarify       = "Hmm, saya kurang yakin data apa yang kamu maksud. Bisa dijelaskan lebih spesifik? Misalnya: \"tampilkan deal terbaru\" atau \"berapa customer bulan ini\" 😊"
	answerTechnical     = "Maaf, sedang ada kendala teknis saat mengambil data. Silakan coba lagi beberapa saat lagi ya 🙏"
	answerNotRelevant   = "Maaf, saya tidak menemukan informasi yang relevan dengan pertanyaan itu. Coba tanyakan dengan cara lain ya 😊"
	answerFallback      = "Maaf, saya sedang tidak bisa menjawab pertanyaan itu. Silakan coba lagi ya 🙏"
)

const clarifyPrompt = "Kamu adalah asisten CRM. Pengguna bertanya tentang data tetapi kamu tidak yakin data apa yang dimaksud. Minta klarifikasi dengan sopan dalam bahasa Indonesia dan beri satu contoh pertanyaan yang bisa kamu jawab."

const technicalPrompt = "Kamu adalah asisten CRM. Terjadi kendala teknis saat mengambil data. Sampaikan permintaan maaf singkat dalam bahasa Indonesia dan ajak pengguna mencoba lagi. Jangan sebutkan detail teknis."

// Service runs the full question pipeline: classify, route, filter, query or
// search, then synthesize the answer.
type Service struct {
	executor    *query.Executor
	fkResolver  *query.FKResolver
	searcher    *semantic.Searcher
	synthesizer *answer.Synthesizer
	logger      logger.Logger
}

func NewService(executor *query.Executor, fkResolver *query.FKResolver, searcher *semantic.Searcher, synthesizer *answer.Synthesizer, log logger.Logger) *Service {
	return &Service{
		executor:    executor,
		fkResolver:  fkResolver,
		searcher:    searcher,
		synthesizer: synthesizer,
		logger:      log.With(map[string]interface{}{"component": "assistant-service"}),
	}
}

// Ask answers one question. The returned envelope is always usable; error
// outcomes are encoded as Type "error" with a readable Answer.
func (s *Service) Ask(ctx context.Context, question string) models.Envelope {
	question = strings.TrimSpace(question)
	if question == "" {
		metrics.QuestionsFailed.WithLabelValues(string(errors.ErrCodeEmptyQuestion)).Inc()
		return s.envelope(question, answerEmptyQuestion, nil, models.ResponseError)
	}

	// Blacklisted table names are refused outright, before any
	// classification or LLM involvement.
	if table, ok := mentionedBlacklistedTable(question); ok {
		s.logger.Warn("blacklisted table requested", map[string]interface{}{"table": table})
		metrics.QuestionsFailed.WithLabelValues(string(errors.ErrCodeTableBlacklisted)).Inc()
		return s.envelope(question, answerBlacklisted, nil, models.ResponseError)
	}

	it := intent.Classify(question)
	start := time.Now()
	defer func() {
		metrics.QuestionDuration.WithLabelValues(string(it)).Observe(time.Since(start).Seconds())
	}()

	s.logger.Info("question received", map[string]interface{}{
		"intent": string(it),
	})

	var env models.Envelope
	switch it {
	case models.IntentGreeting:
		env = s.smalltalk(ctx, question, answer.ModeGreeting, models.ResponseGreeting)
	case models.IntentGeneral:
		env = s.smalltalk(ctx, question, answer.ModeGeneral, models.ResponseGeneral)
	case models.IntentChat:
		env = s.smalltalk(ctx, question, answer.ModeChat, models.ResponseChat)
	default:
		env = s.dataQuestion(ctx, question, it)
	}

	metrics.QuestionsProcessed.WithLabelValues(string(env.Type)).Inc()
	return env
}

func (s *Service) smalltalk(ctx context.Context, question string, mode answer.Mode, rt models.ResponseType) models.Envelope {
	text, err := s.synthesizer.Synthesize(ctx, question, "", mode, answer.Options{})
	if err != nil {
		s.logger.WithError(err).Warn("smalltalk synthesis failed", nil)
		metrics.QuestionsFailed.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return s.envelope(question, answerFallback, nil, models.ResponseError)
	}
	return s.envelope(question, text, nil, rt)
}

func (s *Service) dataQuestion(ctx context.Context, question string, it models.Intent) models.Envelope {
	table := tables.Route(question)

	if it == models.IntentSemantic {
		return s.semanticAnswer(ctx, question, table)
	}

	if table == "" {
		metrics.QuestionsFailed.WithLabelValues(string(errors.ErrCodeTableUnresolved)).Inc()
		return s.phrasedError(ctx, question, clarifyPrompt, answerClarify)
	}

	exists, err := s.executor.TableExists(ctx, table)
	if err != nil {
		s.logger.WithError(err).Error("table existence probe failed", map[string]interface{}{"table": table})
		metrics.QuestionsFailed.WithLabelValues(string(errors.ErrCodeQueryExecutionFailed)).Inc()
		return s.phrasedError(ctx, question, technicalPrompt, answerTechnical)
	}
	if !exists {
		metrics.QuestionsFailed.WithLabelValues(string(errors.ErrCodeTableNotFound)).Inc()
		msg := fmt.Sprintf("Maaf, saya tidak menemukan data \"%s\" di sistem. Coba tanyakan data lain ya 😊", table)
		return s.envelope(question, msg, nil, models.ResponseError)
	}

	fs := filters.Extract(question)

	if it == models.IntentCount {
		return s.countAnswer(ctx, question, table, fs)
	}

	rows, err := s.executor.Run(ctx, table, it, fs)
	if err != nil {
		s.logger.WithError(err).Error("structured query failed", map[string]interface{}{"table": table})
		metrics.QuestionsFailed.WithLabelValues(string(errors.ErrCodeQueryExecutionFailed)).Inc()
		return s.phrasedError(ctx, question, technicalPrompt, answerTechnical)
	}

	if len(rows) == 0 {
		// Plain list questions get a second chance on the knowledge index;
		// targeted intents report the miss directly.
		if it == models.IntentList {
			return s.semanticAnswer(ctx, question, table)
		}
		msg := fmt.Sprintf("Belum ada data %s yang cocok dengan pertanyaanmu. Coba ubah kata kunci atau filter pencariannya ya 😊", table)
		return s.envelope(question, msg, nil, models.ResponseNoData)
	}

	// Label expansion is best effort; rows are used as-is when it fails.
	s.fkResolver.Resolve(ctx, table, rows)

	sources := rowSources(table, rows)
	contextBlock := answer.RowsContext(answer.ShrinkRows(rows))

	text, err := s.synthesizer.Synthesize(ctx, question, contextBlock, answer.ModeData, answer.Options{})
	if err != nil {
		s.logger.WithError(err).Error("answer synthesis failed", map[string]interface{}{"table": table})
		metrics.QuestionsFailed.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return s.envelope(question, answerTechnical, nil, models.ResponseError)
	}

	return s.envelope(question, text, sources, models.ResponseData)
}

func (s *Service) countAnswer(ctx context.Context, question, table string, fs models.FilterSet) models.Envelope {
	count, err := s.executor.Count(ctx, table, fs)
	if err != nil {
		s.logger.WithError(err).Error("count query failed", map[string]interface{}{"table": table})
		metrics.QuestionsFailed.WithLabelValues(string(errors.ErrCodeQueryExecutionFailed)).Inc()
		return s.phrasedError(ctx, question, technicalPrompt, answerTechnical)
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"table":   table,
		"count":   count,
		"filters": fs,
	})

	text, err := s.synthesizer.Synthesize(ctx, question, string(summary), answer.ModeData, answer.Options{})
	if err != nil {
		s.logger.WithError(err).Error("count synthesis failed", map[string]interface{}{"table": table})
		metrics.QuestionsFailed.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return s.envelope(question, answerTechnical, nil, models.ResponseError)
	}

	// Count answers carry no row-level sources.
	return s.envelope(question, text, nil, models.ResponseCount)
}

func (s *Service) semanticAnswer(ctx context.Context, question, table string) models.Envelope {
	matches, err := s.searcher.Search(ctx, question, table)
	if err != nil {
		s.logger.WithError(err).Error("semantic search failed", map[string]interface{}{"table": table})
		metrics.QuestionsFailed.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return s.envelope(question, answerTechnical, nil, models.ResponseError)
	}

	if len(matches) == 0 {
		return s.envelope(question, answerNotRelevant, nil, models.ResponseChat)
	}

	text, err := s.synthesizer.Synthesize(ctx, question, semantic.ContextBlock(matches), answer.ModeData, answer.Options{})
	if err != nil {
		s.logger.WithError(err).Error("semantic synthesis failed", nil)
		metrics.QuestionsFailed.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return s.envelope(question, answerTechnical, nil, models.ResponseError)
	}

	return s.envelope(question, text, semantic.Sources(matches), models.ResponseSemantic)
}

// phrasedError asks the LLM to phrase the apology; fallback covers an LLM
// that is itself down.
func (s *Service) phrasedError(ctx context.Context, question, prompt, fallback string) models.Envelope {
	text, err := s.synthesizer.Synthesize(ctx, question, "", answer.ModeChat, answer.Options{CustomPrompt: prompt})
	if err != nil {
		text = fallback
	}
	return s.envelope(question, text, nil, models.ResponseError)
}

func (s *Service) envelope(question, text string, sources []models.Source, rt models.ResponseType) models.Envelope {
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	if sources == nil {
		sources = []models.Source{}
	}
	return models.Envelope{
		Question: question,
		Answer:   text,
		Sources:  sources,
		Type:     rt,
	}
}

func rowSources(table string, rows []models.Row) []models.Source {
	sources := make([]models.Source, 0, maxSources)
	for _, row := range rows {
		if len(sources) == maxSources {
			break
		}
		id, ok := row["id"]
		if !ok {
			continue
		}
		sources = append(sources, models.Source{
			SourceTable: table,
			SourceID:    fmt.Sprintf("%v", id),
		})
	}
	return sources
}

func mentionedBlacklistedTable(question string) (string, bool) {
	q := strings.ToLower(question)
	for _, word := range strings.FieldsFunc(q, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if tables.IsBlacklisted(word) {
			return word, true
		}
	}
	return "", false
}
