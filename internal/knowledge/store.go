// Package knowledge adapts a vector store collection into the add/search
// operations the application needs.
package knowledge

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ragdemo/internal/domain"
	"ragdemo/internal/vectorstore"
)

// DefaultCollection is the collection the demo stores everything in.
const DefaultCollection = "knowledge_base"

// Store adds documents to a collection and searches it.
type Store struct {
	collection vectorstore.Collection
	newID      func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the UUID generator (used by tests).
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Open gets or creates the named collection on client and wraps it.
func Open(client vectorstore.Client, name string, metric vectorstore.Metric, opts ...Option) (*Store, error) {
	col, err := client.GetOrCreateCollection(name, metric)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", name, err)
	}
	return New(col, opts...), nil
}

// New wraps an existing collection.
func New(collection vectorstore.Collection, opts ...Option) *Store {
	s := &Store{
		collection: collection,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add stores text with its metadata and returns the new document id.
func (s *Store) Add(ctx context.Context, text string, meta domain.Metadata) (string, error) {
	if meta == nil {
		meta = domain.Metadata{}
	}
	id := s.newID()
	if err := s.collection.Add(ctx, []string{id}, []string{text}, []domain.Metadata{meta}); err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}
	return id, nil
}

// Search returns at most k documents closest to query, closest first.
// An empty store yields an empty slice.
func (s *Store) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("search with k=%d: %w", k, domain.ErrInvalidK)
	}
	res, err := s.collection.Query(ctx, []string{query}, k)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	if len(res.Documents) == 0 {
		return []domain.SearchResult{}, nil
	}
	docs := res.Documents[0]
	out := make([]domain.SearchResult, 0, len(docs))
	for i, text := range docs {
		r := domain.SearchResult{Document: domain.Document{Text: text, Metadata: domain.Metadata{}}}
		if i < len(res.IDs[0]) {
			r.Document.ID = res.IDs[0][i]
		}
		if i < len(res.Metadatas[0]) && res.Metadatas[0][i] != nil {
			r.Document.Metadata = res.Metadatas[0][i]
		}
		if i < len(res.Distances[0]) {
			r.Distance = res.Distances[0][i]
		}
		out = append(out, r)
	}
	return out, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
