package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Answer, embedding and knowledge-base metrics.
var (
	AnswerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdemo",
			Name:      "answer_requests_total",
			Help:      "Total number of answer requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	AnswerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragdemo",
			Name:      "answer_request_duration_seconds",
			Help:      "Answer request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdemo",
			Name:      "embedding_requests_total",
			Help:      "Total number of remote embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragdemo",
			Name:      "embedding_request_duration_seconds",
			Help:      "Remote embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	KnowledgeDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ragdemo",
			Name:      "knowledge_documents",
			Help:      "Number of documents in the knowledge base",
		},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdemo",
			Name:      "search_requests_total",
			Help:      "Total number of similarity searches by outcome",
		},
		[]string{"outcome"}, // "hit" / "empty" / "error"
	)
)

var registerOnce sync.Once

// RegisterRAGMetrics registers answer, embedding and knowledge-base metrics.
// Safe to call more than once.
func RegisterRAGMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(AnswerRequestsTotal)
		prometheus.MustRegister(AnswerRequestDuration)
		prometheus.MustRegister(EmbeddingRequestsTotal)
		prometheus.MustRegister(EmbeddingRequestDuration)
		prometheus.MustRegister(KnowledgeDocuments)
		prometheus.MustRegister(SearchRequestsTotal)
	})
}
