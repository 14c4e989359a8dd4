package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ragdemo/internal/answer"
	"ragdemo/internal/chunker"
	"ragdemo/internal/domain"
	"ragdemo/internal/embedding/tfidf"
	"ragdemo/internal/extract"
	"ragdemo/internal/knowledge"
	"ragdemo/internal/logger"
	"ragdemo/internal/summarizer"
	"ragdemo/internal/vectorstore"
	"ragdemo/internal/vectorstore/memory"
)

type fakeAsker struct {
	mu      sync.Mutex
	prompts []string
	users   []string
	result  answer.Result
}

func (f *fakeAsker) Ask(_ context.Context, prompt, userID string) answer.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.users = append(f.users, userID)
	return f.result
}

func newService(t *testing.T, asker answer.Asker, opts ...Option) *RAGService {
	t.Helper()
	client := memory.NewClient(func() domain.Embedder { return tfidf.NewEmbedder() })
	store, err := knowledge.Open(client, knowledge.DefaultCollection, vectorstore.Cosine)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return NewRAGService(store, asker, opts...)
}

func TestAddDocument_MissingField(t *testing.T) {
	s := newService(t, &fakeAsker{})
	ctx := context.Background()
	if _, err := s.AddDocument(ctx, "", "content", ""); !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
	if _, err := s.AddDocument(ctx, "title", "   ", ""); !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("expected empty store, got %d", n)
	}
}

func TestAddDocument_LogsToContextLogger(t *testing.T) {
	fieldCore, fieldLogs := observer.New(zapcore.DebugLevel)
	ctxCore, ctxLogs := observer.New(zapcore.DebugLevel)
	s := newService(t, &fakeAsker{}, WithLogger(zap.New(fieldCore)))

	ctx := logger.WithLogger(context.Background(), zap.New(ctxCore))
	if _, err := s.AddDocument(ctx, "Paris", "Paris is the capital of France.", ""); err != nil {
		t.Fatal(err)
	}
	if ctxLogs.FilterMessage("document added").Len() != 1 {
		t.Errorf("expected the context logger to record the add")
	}
	if fieldLogs.Len() != 0 {
		t.Errorf("service logger used despite a context logger: %d entries", fieldLogs.Len())
	}

	if _, err := s.AddDocument(context.Background(), "Rome", "Rome is the capital of Italy.", ""); err != nil {
		t.Fatal(err)
	}
	if fieldLogs.FilterMessage("document added").Len() != 1 {
		t.Errorf("expected the service logger without a context logger")
	}
}

func TestAddSample(t *testing.T) {
	s := newService(t, &fakeAsker{})
	ctx := context.Background()
	if len(s.Samples()) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(s.Samples()))
	}
	if _, err := s.AddSample(ctx, 1); err != nil {
		t.Fatalf("AddSample: %v", err)
	}
	if _, err := s.AddSample(ctx, 1); err != nil {
		t.Fatalf("AddSample twice: %v", err)
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("expected duplicates to be stored, got count %d", n)
	}
	if _, err := s.AddSample(ctx, 4); !errors.Is(err, domain.ErrUnknownSample) {
		t.Errorf("expected ErrUnknownSample, got %v", err)
	}

	res, err := s.Search(ctx, "deep neural networks", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].Document.Metadata.Title() != "Deep Learning" || res[0].Document.Metadata.Source() != domain.SourceSample {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestSearch(t *testing.T) {
	s := newService(t, &fakeAsker{})
	ctx := context.Background()
	if _, err := s.Search(ctx, "  ", 3); !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	res, err := s.Search(ctx, "anything", 3)
	if err != nil || len(res) != 0 {
		t.Fatalf("expected empty results on empty store, got %v, %v", res, err)
	}
	if _, err := s.AddDocument(ctx, "Paris", "Paris is the capital of France.", ""); err != nil {
		t.Fatal(err)
	}
	res, err = s.Search(ctx, "Paris is the capital of France.", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(res))
	}
	if res[0].Distance > 1e-9 || res[0].Document.Metadata.Source() != domain.SourceCustom {
		t.Errorf("unexpected result %+v", res[0])
	}
}

func TestAnswerWithRAG(t *testing.T) {
	asker := &fakeAsker{result: answer.SuccessResult("Deep learning uses layered networks.")}
	s := newService(t, asker)
	ctx := context.Background()

	if _, err := s.AnswerWithRAG(ctx, "What is deep learning?", ""); !errors.Is(err, domain.ErrNoContext) {
		t.Fatalf("expected ErrNoContext on empty store, got %v", err)
	}
	if len(asker.prompts) != 0 {
		t.Fatal("model should not be called without context")
	}

	for i := range s.Samples() {
		if _, err := s.AddSample(ctx, i); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.AnswerWithRAG(ctx, "Tell me about deep neural networks", "")
	if err != nil {
		t.Fatalf("AnswerWithRAG: %v", err)
	}
	if len(got.Contexts) != 2 {
		t.Errorf("expected 2 contexts, got %d", len(got.Contexts))
	}
	if got.Contexts[0].Document.Metadata.Title() != "Deep Learning" {
		t.Errorf("expected Deep Learning first, got %q", got.Contexts[0].Document.Metadata.Title())
	}
	texts := got.ContextTexts()
	if !strings.Contains(got.Prompt, texts[0]+"\n\n"+texts[1]) {
		t.Errorf("prompt missing joined contexts: %q", got.Prompt)
	}
	if !strings.HasSuffix(got.Prompt, "Question: Tell me about deep neural networks\nAnswer:") {
		t.Errorf("unexpected prompt tail: %q", got.Prompt)
	}
	if got.Answer.String() != "Deep learning uses layered networks." {
		t.Errorf("unexpected answer %q", got.Answer.String())
	}
	if asker.users[0] != "12" {
		t.Errorf("expected default user id 12, got %q", asker.users[0])
	}
}

func TestAnswerDirect(t *testing.T) {
	asker := &fakeAsker{result: answer.HTTPFailure(500, "oops")}
	s := newService(t, asker, WithDefaultUserID("99"))
	ctx := context.Background()

	if _, err := s.AnswerDirect(ctx, "", "1"); !errors.Is(err, domain.ErrEmptyQuestion) {
		t.Errorf("expected ErrEmptyQuestion, got %v", err)
	}
	res, err := s.AnswerDirect(ctx, "What is AI?", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.String() != "Error: 500 - oops" {
		t.Errorf("unexpected result %q", res.String())
	}
	if asker.prompts[0] != "What is AI?" || asker.users[0] != "99" {
		t.Errorf("unexpected call: %q as %q", asker.prompts[0], asker.users[0])
	}
}

func TestCompare(t *testing.T) {
	asker := &fakeAsker{result: answer.SuccessResult("ok")}
	s := newService(t, asker)
	ctx := context.Background()

	cmp, err := s.Compare(ctx, "Explain computer vision", "5")
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !errors.Is(cmp.RAGErr, domain.ErrNoContext) {
		t.Errorf("expected RAG side to report ErrNoContext, got %v", cmp.RAGErr)
	}
	if !cmp.Direct.OK() {
		t.Errorf("direct side should still answer: %+v", cmp.Direct)
	}

	if _, err := s.AddSample(ctx, 3); err != nil {
		t.Fatal(err)
	}
	cmp, err = s.Compare(ctx, "Explain computer vision", "5")
	if err != nil || cmp.RAGErr != nil {
		t.Fatalf("Compare: %v / %v", err, cmp.RAGErr)
	}
	if len(cmp.RAG.Contexts) != 1 || len(asker.prompts) != 3 {
		t.Errorf("unexpected comparison %+v (calls %d)", cmp.RAG, len(asker.prompts))
	}
}

func TestIngestFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("a.txt", "Vectors encode meaning. Similar texts have nearby vectors. Search ranks by distance.")
	write("nested/b.md", "Prompts combine context and question.")
	write("image.png", "binary")

	s := newService(t, &fakeAsker{}, WithIngestion(extract.NewExtractor(), chunker.NewSentenceChunker(2, 0), summarizer.NewFrequencySummarizer(), 2))
	var calls int
	report, err := s.IngestFiles(context.Background(), []string{filepath.Join(dir, "**", "*")}, func(done, total int, _ string) {
		calls++
		if total != 2 {
			t.Errorf("expected total 2, got %d", total)
		}
	})
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if len(report.Files) != 2 || calls != 2 {
		t.Errorf("expected 2 files, got %v (progress calls %d)", report.Files, calls)
	}
	if report.Documents != 3 {
		t.Errorf("expected 3 chunks, got %d", report.Documents)
	}
	if report.Summary == "" {
		t.Error("expected a summary")
	}

	res, err := s.Search(context.Background(), "prompts combine context", 1)
	if err != nil || len(res) != 1 {
		t.Fatalf("Search: %v %v", res, err)
	}
	meta := res[0].Document.Metadata
	if meta.Title() != "b.md" || meta.Source() != domain.SourceFile || meta[domain.MetaChunk] != "0" {
		t.Errorf("unexpected metadata %v", meta)
	}
}

func TestIngestFiles_NoMatches(t *testing.T) {
	s := newService(t, &fakeAsker{}, WithIngestion(extract.NewExtractor(), chunker.NewSentenceChunker(2, 0), nil, 0))
	if _, err := s.IngestFiles(context.Background(), []string{filepath.Join(t.TempDir(), "*.txt")}, nil); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestIngestFiles_NotConfigured(t *testing.T) {
	s := newService(t, &fakeAsker{})
	if _, err := s.IngestFiles(context.Background(), []string{"*.txt"}, nil); err == nil {
		t.Error("expected error without ingestion dependencies")
	}
}
