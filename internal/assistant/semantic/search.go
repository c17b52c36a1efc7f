// internal/assistant/semantic/search.go
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"crm-assistant/internal/common/errors"
	"crm-assistant/internal/common/llm"
	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/common/metrics"
	"crm-assistant/internal/models"
)

// Searcher answers open-ended questions by kNN lookup over the embedded
// knowledge index. The embedding client is built lazily on first use so the
// service starts even when the embedding endpoint is briefly unavailable.
type Searcher struct {
	es     *elasticsearch.Client
	index  string
	topK   int
	logger logger.Logger

	embedderOnce sync.Once
	embedderErr  error
	embedder     llm.EmbeddingClient
	newEmbedder  func() (llm.EmbeddingClient, error)
}

func NewSearcher(es *elasticsearch.Client, index string, topK int, newEmbedder func() (llm.EmbeddingClient, error), log logger.Logger) *Searcher {
	return &Searcher{
		es:          es,
		index:       index,
		topK:        topK,
		newEmbedder: newEmbedder,
		logger:      log.With(map[string]interface{}{"component": "semantic-search"}),
	}
}

// Search embeds the question and returns the top-K nearest chunks, optionally
// restricted to a single source table.
func (s *Searcher) Search(ctx context.Context, question, sourceTable string) ([]models.VectorMatch, error) {
	embedder, err := s.getEmbedder()
	if err != nil {
		return nil, errors.NewEmbeddingError(err)
	}

	vector, err := embedder.Embed(ctx, question)
	if err != nil {
		return nil, errors.NewEmbeddingError(err)
	}

	matches, err := s.knnSearch(ctx, vector, sourceTable)
	if err != nil {
		return nil, errors.NewVectorSearchError(err)
	}
	return matches, nil
}

// ContextBlock renders matches as a numbered context block for the answer
// prompt.
func ContextBlock(matches []models.VectorMatch) string {
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, m.SourceTable, m.Content)
	}
	return b.String()
}

// Sources converts matches to response sources, preserving rank order.
func Sources(matches []models.VectorMatch) []models.Source {
	sources := make([]models.Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, models.Source{
			SourceTable: m.SourceTable,
			SourceID:    m.SourceID,
		})
	}
	return sources
}

func (s *Searcher) getEmbedder() (llm.EmbeddingClient, error) {
	s.embedderOnce.Do(func() {
		s.embedder, s.embedderErr = s.newEmbedder()
		if s.embedderErr != nil {
			s.logger.WithError(s.embedderErr).Error("embedder init failed", nil)
		}
	})
	return s.embedder, s.embedderErr
}

func (s *Searcher) knnSearch(ctx context.Context, vector []float32, sourceTable string) ([]models.VectorMatch, error) {
	knn := map[string]interface{}{
		"field":          "embedding",
		"query_vector":   vector,
		"k":              s.topK,
		"num_candidates": s.topK * 10,
	}
	if sourceTable != "" {
		knn["filter"] = map[string]interface{}{
			"term": map[string]interface{}{"source_table": sourceTable},
		}
	}

	body := map[string]interface{}{
		"knn":     knn,
		"size":    s.topK,
		"_source": []string{"content", "source_table", "source_id"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(payload),
	}

	start := time.Now()
	res, err := req.Do(ctx, s.es)
	metrics.ExternalCallDuration.WithLabelValues("elasticsearch").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("knn search: %s: %s", res.Status(), string(msg))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source struct {
					Content     string `json:"content"`
					SourceTable string `json:"source_table"`
					SourceID    string `json:"source_id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	matches := make([]models.VectorMatch, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		matches = append(matches, models.VectorMatch{
			Content:     hit.Source.Content,
			SourceTable: hit.Source.SourceTable,
			SourceID:    hit.Source.SourceID,
			Score:       hit.Score,
		})
	}
	return matches, nil
}
