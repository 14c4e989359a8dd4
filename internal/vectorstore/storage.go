package vectorstore

import (
	"context"

	"ragdemo/internal/domain"
)

// Collection is a named set of documents searchable by text similarity.
// Add and Query take parallel arrays; Query results are indexed [query][rank].
type Collection interface {
	Name() string
	Metric() Metric
	Add(ctx context.Context, ids []string, documents []string, metadatas []domain.Metadata) error
	Query(ctx context.Context, queryTexts []string, nResults int) (QueryResult, error)
	Count(ctx context.Context) (int, error)
}

// Client hands out collections by name.
type Client interface {
	GetOrCreateCollection(name string, metric Metric) (Collection, error)
}

// QueryResult holds one ranked list per query text, closest first.
type QueryResult struct {
	IDs       [][]string
	Documents [][]string
	Metadatas [][]domain.Metadata
	Distances [][]float64
}
