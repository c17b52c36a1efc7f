// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_questions_processed_total",
			Help: "Total number of questions processed, by response type",
		},
		[]string{"response_type"},
	)

	QuestionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_questions_failed_total",
			Help: "Total number of questions that ended in an error answer",
		},
		[]string{"error_code"},
	)

	QuestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_question_duration_seconds",
			Help: "End-to-end question handling duration in seconds",
		},
		[]string{"intent"},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_external_call_duration_seconds",
			Help: "Duration of outbound calls (postgres, elasticsearch, llm, embedding)",
		},
		[]string{"target"},
	)
)
