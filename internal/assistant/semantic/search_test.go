// internal/assistant/semantic/search_test.go
package semantic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-assistant/internal/common/errors"
	"crm-assistant/internal/common/llm"
	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/models"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

func newFakeES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func searchResponse(hits ...map[string]interface{}) string {
	wrapped := make([]map[string]interface{}, 0, len(hits))
	for _, h := range hits {
		wrapped = append(wrapped, map[string]interface{}{
			"_score":  h["_score"],
			"_source": h["_source"],
		})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"hits": map[string]interface{}{"hits": wrapped},
	})
	return string(body)
}

func TestSearcherReturnsRankedMatches(t *testing.T) {
	var capturedBody map[string]interface{}
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &capturedBody)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, searchResponse(
			map[string]interface{}{
				"_score": 0.92,
				"_source": map[string]interface{}{
					"content":      "Customer PT Maju Jaya churn karena harga",
					"source_table": "customers",
					"source_id":    "10",
				},
			},
			map[string]interface{}{
				"_score": 0.81,
				"_source": map[string]interface{}{
					"content":      "Tiket komplain harga dari PT Maju Jaya",
					"source_table": "tickets",
					"source_id":    "55",
				},
			},
		))
	})

	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	s := NewSearcher(es, "crm_embeddings", 5, func() (llm.EmbeddingClient, error) {
		return embedder, nil
	}, logger.NewNoOpLogger())

	matches, err := s.Search(context.Background(), "kenapa customer churn?", "customers")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "customers", matches[0].SourceTable)
	assert.Equal(t, "10", matches[0].SourceID)
	assert.InDelta(t, 0.92, matches[0].Score, 0.001)

	// The request body carries the knn clause with the table filter.
	knn, ok := capturedBody["knn"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 5, knn["k"])
	filter, ok := knn["filter"].(map[string]interface{})
	require.True(t, ok)
	term := filter["term"].(map[string]interface{})
	assert.Equal(t, "customers", term["source_table"])
}

func TestSearcherOmitsFilterWithoutTable(t *testing.T) {
	var capturedBody map[string]interface{}
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &capturedBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, searchResponse())
	})

	s := NewSearcher(es, "crm_embeddings", 5, func() (llm.EmbeddingClient, error) {
		return &fakeEmbedder{vector: []float32{0.1}}, nil
	}, logger.NewNoOpLogger())

	matches, err := s.Search(context.Background(), "pertanyaan umum", "")
	require.NoError(t, err)
	assert.Empty(t, matches)

	knn := capturedBody["knn"].(map[string]interface{})
	_, hasFilter := knn["filter"]
	assert.False(t, hasFilter)
}

func TestSearcherEmbedderBuiltOnce(t *testing.T) {
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, searchResponse())
	})

	var constructions int32
	s := NewSearcher(es, "crm_embeddings", 5, func() (llm.EmbeddingClient, error) {
		atomic.AddInt32(&constructions, 1)
		return &fakeEmbedder{vector: []float32{0.1}}, nil
	}, logger.NewNoOpLogger())

	ctx := context.Background()
	_, err := s.Search(ctx, "pertama", "")
	require.NoError(t, err)
	_, err = s.Search(ctx, "kedua", "")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&constructions))
}

func TestSearcherEmbeddingFailure(t *testing.T) {
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("search must not run when embedding fails")
	})

	s := NewSearcher(es, "crm_embeddings", 5, func() (llm.EmbeddingClient, error) {
		return &fakeEmbedder{err: assert.AnError}, nil
	}, logger.NewNoOpLogger())

	_, err := s.Search(context.Background(), "pertanyaan", "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmbeddingFailed, errors.CodeOf(err))
}

func TestSearcherVectorSearchFailure(t *testing.T) {
	es := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"boom"}`)
	})

	s := NewSearcher(es, "crm_embeddings", 5, func() (llm.EmbeddingClient, error) {
		return &fakeEmbedder{vector: []float32{0.1}}, nil
	}, logger.NewNoOpLogger())

	_, err := s.Search(context.Background(), "pertanyaan", "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVectorSearchFailed, errors.CodeOf(err))
}

func TestContextBlockAndSources(t *testing.T) {
	matches := []models.VectorMatch{
		{Content: "catatan pertama", SourceTable: "deals", SourceID: "1", Score: 0.9},
		{Content: "catatan kedua", SourceTable: "tickets", SourceID: "2", Score: 0.8},
	}

	block := ContextBlock(matches)
	assert.Contains(t, block, "1. [deals] catatan pertama")
	assert.Contains(t, block, "2. [tickets] catatan kedua")

	sources := Sources(matches)
	require.Len(t, sources, 2)
	assert.Equal(t, models.Source{SourceTable: "deals", SourceID: "1"}, sources[0])
	assert.Equal(t, models.Source{SourceTable: "tickets", SourceID: "2"}, sources[1])
}
