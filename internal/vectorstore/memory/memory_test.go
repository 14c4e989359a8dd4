package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ragdemo/internal/domain"
	"ragdemo/internal/embedding/tfidf"
	"ragdemo/internal/vectorstore"
)

func newTFIDF() domain.Embedder { return tfidf.NewEmbedder() }

// fixedEmbedder maps known texts to fixed vectors and counts calls.
type fixedEmbedder struct {
	vectors map[string][]float64
	calls   int
	fail    bool
}

func (f *fixedEmbedder) Name() string   { return "fixed" }
func (f *fixedEmbedder) Dimension() int { return 2 }
func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("embedder down")
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0}, nil
}

func TestClient_GetOrCreateCollection(t *testing.T) {
	c := NewClient(newTFIDF)
	a, err := c.GetOrCreateCollection("knowledge_base", vectorstore.Cosine)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.GetOrCreateCollection("knowledge_base", vectorstore.L2)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected the same collection for the same name")
	}
	if b.Metric() != vectorstore.Cosine {
		t.Errorf("existing collection should keep its metric, got %s", b.Metric())
	}
	if _, err := c.GetOrCreateCollection("", vectorstore.Cosine); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestCollection_QueryEmpty(t *testing.T) {
	col := NewCollection("kb", vectorstore.Cosine, tfidf.NewEmbedder())
	res, err := col.Query(context.Background(), []string{"anything"}, 3)
	if err != nil {
		t.Fatalf("Query on empty collection: %v", err)
	}
	if len(res.Documents) != 1 || len(res.Documents[0]) != 0 {
		t.Errorf("expected one empty result list, got %#v", res.Documents)
	}
}

func TestCollection_QueryInvalidN(t *testing.T) {
	col := NewCollection("kb", vectorstore.Cosine, tfidf.NewEmbedder())
	if _, err := col.Query(context.Background(), []string{"x"}, 0); err == nil {
		t.Error("expected error for nResults=0")
	}
}

func TestCollection_AddAndQueryTFIDF(t *testing.T) {
	ctx := context.Background()
	col := NewCollection("kb", vectorstore.Cosine, tfidf.NewEmbedder())
	docs := []string{
		"Deep learning uses neural networks with many layers.",
		"Computer vision lets machines interpret images.",
		"Natural language processing handles human language text.",
	}
	metas := []domain.Metadata{
		{domain.MetaTitle: "Deep Learning"},
		{domain.MetaTitle: "Computer Vision"},
		{domain.MetaTitle: "NLP"},
	}
	if err := col.Add(ctx, []string{"a", "b", "c"}, docs, metas); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n, _ := col.Count(ctx); n != 3 {
		t.Fatalf("expected count 3, got %d", n)
	}

	for i, text := range docs {
		res, err := col.Query(ctx, []string{text}, 3)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if got := res.Documents[0][0]; got != text {
			t.Errorf("exact text query %d: expected itself first, got %q", i, got)
		}
		if d := res.Distances[0][0]; d > 1e-9 {
			t.Errorf("expected ~0 distance for exact match, got %f", d)
		}
		for j := 1; j < len(res.Distances[0]); j++ {
			if res.Distances[0][j] < res.Distances[0][j-1] {
				t.Errorf("distances not ascending: %v", res.Distances[0])
			}
		}
	}

	res, _ := col.Query(ctx, []string{"images"}, 1)
	if len(res.Metadatas[0]) != 1 || res.Metadatas[0][0].Title() != "Computer Vision" {
		t.Errorf("expected Computer Vision, got %#v", res.Metadatas[0])
	}
}

func TestCollection_ResultsNeverPadded(t *testing.T) {
	ctx := context.Background()
	col := NewCollection("kb", vectorstore.Cosine, tfidf.NewEmbedder())
	if err := col.Add(ctx, []string{"only"}, []string{"a single document"}, nil); err != nil {
		t.Fatal(err)
	}
	res, err := col.Query(ctx, []string{"document"}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Documents[0]) != 1 {
		t.Errorf("expected exactly 1 result, got %d", len(res.Documents[0]))
	}
}

func TestCollection_RefitAfterAdd(t *testing.T) {
	ctx := context.Background()
	col := NewCollection("kb", vectorstore.Cosine, tfidf.NewEmbedder())
	_ = col.Add(ctx, []string{"1"}, []string{"alpha beta"}, nil)
	if _, err := col.Query(ctx, []string{"alpha"}, 1); err != nil {
		t.Fatal(err)
	}
	_ = col.Add(ctx, []string{"2"}, []string{"gamma delta"}, nil)
	res, err := col.Query(ctx, []string{"gamma"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.IDs[0][0] != "2" {
		t.Errorf("expected newly added document after refit, got %s", res.IDs[0][0])
	}
}

func TestCollection_AddValidation(t *testing.T) {
	ctx := context.Background()
	col := NewCollection("kb", vectorstore.Cosine, tfidf.NewEmbedder())
	tests := []struct {
		name  string
		ids   []string
		docs  []string
		metas []domain.Metadata
		want  string
	}{
		{"length mismatch", []string{"a"}, []string{"x", "y"}, nil, "length mismatch"},
		{"metadata mismatch", []string{"a"}, []string{"x"}, []domain.Metadata{{}, {}}, "length mismatch"},
		{"empty id", []string{""}, []string{"x"}, nil, "id is required"},
		{"duplicate in batch", []string{"a", "a"}, []string{"x", "y"}, nil, "duplicate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := col.Add(ctx, tc.ids, tc.docs, tc.metas)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	_ = col.Add(ctx, []string{"a"}, []string{"x"}, nil)
	if err := col.Add(ctx, []string{"a"}, []string{"y"}, nil); err == nil {
		t.Error("expected error for existing id")
	}
}

func TestCollection_EagerEmbedder(t *testing.T) {
	ctx := context.Background()
	emb := &fixedEmbedder{vectors: map[string][]float64{
		"east":  {1, 0},
		"north": {0, 1},
		"q":     {0.9, 0.1},
	}}
	col := NewCollection("kb", vectorstore.L2, emb)
	if err := col.Add(ctx, []string{"n", "e"}, []string{"north", "east"}, nil); err != nil {
		t.Fatal(err)
	}
	if emb.calls != 2 {
		t.Errorf("expected documents embedded on add, got %d calls", emb.calls)
	}
	res, err := col.Query(ctx, []string{"q"}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if res.IDs[0][0] != "e" || res.IDs[0][1] != "n" {
		t.Errorf("unexpected order: %v", res.IDs[0])
	}
}

func TestCollection_EmbedderFailure(t *testing.T) {
	col := NewCollection("kb", vectorstore.Cosine, &fixedEmbedder{fail: true})
	if err := col.Add(context.Background(), []string{"a"}, []string{"x"}, nil); err == nil {
		t.Fatal("expected embedder error")
	}
	if n, _ := col.Count(context.Background()); n != 0 {
		t.Errorf("failed add must not grow the collection, got %d", n)
	}
}

func TestCollection_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	col := NewCollection("kb", vectorstore.Cosine, &fixedEmbedder{})
	_ = col.Add(ctx, []string{"1", "2", "3"}, []string{"a", "b", "c"}, nil)
	res, _ := col.Query(ctx, []string{"z"}, 3)
	if strings.Join(res.IDs[0], ",") != "1,2,3" {
		t.Errorf("expected insertion order on ties, got %v", res.IDs[0])
	}
}
