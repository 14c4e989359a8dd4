package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ragdemo/internal/domain"
	"ragdemo/internal/vectorstore"
)

// Client keeps named collections in process memory. Nothing is persisted.
type Client struct {
	mu          sync.Mutex
	newEmbedder func() domain.Embedder
	collections map[string]*Collection
}

// NewClient creates a client whose collections embed text with embedders
// produced by newEmbedder (one per collection).
func NewClient(newEmbedder func() domain.Embedder) *Client {
	return &Client{newEmbedder: newEmbedder, collections: make(map[string]*Collection)}
}

// GetOrCreateCollection returns the named collection, creating it with the
// given metric if needed. An existing collection keeps its original metric.
func (c *Client) GetOrCreateCollection(name string, metric vectorstore.Metric) (vectorstore.Collection, error) {
	if name == "" {
		return nil, errors.New("collection name is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if col, ok := c.collections[name]; ok {
		return col, nil
	}
	col := NewCollection(name, metric, c.newEmbedder())
	c.collections[name] = col
	return col, nil
}

// Collection is a brute-force in-memory vector collection.
type Collection struct {
	mu       sync.Mutex
	name     string
	metric   vectorstore.Metric
	embedder domain.Embedder
	ids      []string
	index    map[string]int
	texts    []string
	metas    []domain.Metadata
	vectors  [][]float64
	// stale is set when a corpus-fitted embedder must be refitted before search.
	stale bool
}

// NewCollection creates an empty collection.
func NewCollection(name string, metric vectorstore.Metric, embedder domain.Embedder) *Collection {
	if metric == "" {
		metric = vectorstore.Cosine
	}
	return &Collection{name: name, metric: metric, embedder: embedder, index: make(map[string]int)}
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Metric returns the distance metric used by Query.
func (c *Collection) Metric() vectorstore.Metric { return c.metric }

// Add stores documents with their metadata under the given ids.
func (c *Collection) Add(ctx context.Context, ids []string, documents []string, metadatas []domain.Metadata) error {
	if len(ids) != len(documents) {
		return fmt.Errorf("ids and documents length mismatch: %d != %d", len(ids), len(documents))
	}
	if metadatas != nil && len(metadatas) != len(documents) {
		return fmt.Errorf("metadatas and documents length mismatch: %d != %d", len(metadatas), len(documents))
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return errors.New("document id is required")
		}
		if _, ok := c.index[id]; ok {
			return fmt.Errorf("document %s already exists", id)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate document id %s", id)
		}
		seen[id] = struct{}{}
	}

	_, corpus := c.embedder.(domain.CorpusEmbedder)
	vectors := make([][]float64, len(documents))
	if !corpus {
		for i, text := range documents {
			vec, err := c.embedder.Embed(ctx, text)
			if err != nil {
				return fmt.Errorf("embed document %s: %w", ids[i], err)
			}
			vectors[i] = vec
		}
	}

	for i, id := range ids {
		meta := domain.Metadata{}
		if metadatas != nil && metadatas[i] != nil {
			meta = metadatas[i].Clone()
		}
		c.index[id] = len(c.ids)
		c.ids = append(c.ids, id)
		c.texts = append(c.texts, documents[i])
		c.metas = append(c.metas, meta)
		c.vectors = append(c.vectors, vectors[i])
	}
	if corpus && len(ids) > 0 {
		c.stale = true
	}
	return nil
}

// Query returns, for each query text, up to nResults documents ordered by
// ascending distance. An empty collection yields empty lists.
func (c *Collection) Query(ctx context.Context, queryTexts []string, nResults int) (vectorstore.QueryResult, error) {
	if nResults < 1 {
		return vectorstore.QueryResult{}, fmt.Errorf("nResults must be at least 1, got %d", nResults)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	res := vectorstore.QueryResult{
		IDs:       make([][]string, len(queryTexts)),
		Documents: make([][]string, len(queryTexts)),
		Metadatas: make([][]domain.Metadata, len(queryTexts)),
		Distances: make([][]float64, len(queryTexts)),
	}
	if len(c.ids) == 0 {
		for i := range queryTexts {
			res.IDs[i] = []string{}
			res.Documents[i] = []string{}
			res.Metadatas[i] = []domain.Metadata{}
			res.Distances[i] = []float64{}
		}
		return res, nil
	}
	if err := c.refit(ctx); err != nil {
		return vectorstore.QueryResult{}, err
	}

	k := nResults
	if k > len(c.ids) {
		k = len(c.ids)
	}
	for qi, text := range queryTexts {
		qv, err := c.embedder.Embed(ctx, text)
		if err != nil {
			return vectorstore.QueryResult{}, fmt.Errorf("embed query: %w", err)
		}
		dists := make([]float64, len(c.vectors))
		for i := range c.vectors {
			dists[i] = c.metric.Distance(c.vectors[i], qv)
		}
		order := argsortAsc(dists)

		res.IDs[qi] = make([]string, 0, k)
		res.Documents[qi] = make([]string, 0, k)
		res.Metadatas[qi] = make([]domain.Metadata, 0, k)
		res.Distances[qi] = make([]float64, 0, k)
		for _, j := range order[:k] {
			res.IDs[qi] = append(res.IDs[qi], c.ids[j])
			res.Documents[qi] = append(res.Documents[qi], c.texts[j])
			res.Metadatas[qi] = append(res.Metadatas[qi], c.metas[j].Clone())
			res.Distances[qi] = append(res.Distances[qi], dists[j])
		}
	}
	return res, nil
}

// Count returns the number of stored documents.
func (c *Collection) Count(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids), nil
}

// refit re-prepares a corpus-fitted embedder and re-embeds every document.
// Caller must hold c.mu.
func (c *Collection) refit(ctx context.Context) error {
	if !c.stale {
		return nil
	}
	ce, ok := c.embedder.(domain.CorpusEmbedder)
	if !ok {
		c.stale = false
		return nil
	}
	if err := ce.Prepare(c.texts); err != nil {
		return fmt.Errorf("prepare %s embedder: %w", ce.Name(), err)
	}
	for i, text := range c.texts {
		vec, err := ce.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", c.ids[i], err)
		}
		c.vectors[i] = vec
	}
	c.stale = false
	return nil
}

// argsortAsc orders indexes by ascending value; ties keep insertion order.
func argsortAsc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] < vals[idxs[b]] })
	return idxs
}

var _ vectorstore.Collection = (*Collection)(nil)
