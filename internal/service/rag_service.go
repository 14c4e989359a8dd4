// Package service wires the knowledge store, prompt composer and answer
// client into the operations the UIs expose.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ragdemo/internal/answer"
	"ragdemo/internal/domain"
	"ragdemo/internal/knowledge"
	"ragdemo/internal/logger"
	"ragdemo/internal/metrics"
	"ragdemo/internal/prompt"
)

// RAGAnswer is the outcome of a retrieval-augmented question.
type RAGAnswer struct {
	Contexts []domain.SearchResult
	Prompt   string
	Answer   answer.Result
}

// ContextTexts returns the retrieved document texts in rank order.
func (a RAGAnswer) ContextTexts() []string {
	out := make([]string, len(a.Contexts))
	for i, c := range a.Contexts {
		out[i] = c.Document.Text
	}
	return out
}

// Comparison holds both answers to one question. RAGErr is set when the
// retrieval side could not run (e.g. ErrNoContext); Direct is always filled.
type Comparison struct {
	Question string
	RAG      RAGAnswer
	RAGErr   error
	Direct   answer.Result
}

// RAGService owns the knowledge store and the answer client.
type RAGService struct {
	store               *knowledge.Store
	asker               answer.Asker
	chunker             domain.Chunker
	summarizer          domain.Summarizer
	extractor           TextExtractor
	ragTopK             int
	summaryMaxSentences int
	defaultUserID       string
	logger              *zap.Logger
}

// Option configures a RAGService.
type Option func(*RAGService)

// WithRAGTopK sets how many documents back a RAG answer.
func WithRAGTopK(k int) Option { return func(s *RAGService) { s.ragTopK = k } }

// WithDefaultUserID sets the user id sent when callers pass an empty one.
func WithDefaultUserID(id string) Option { return func(s *RAGService) { s.defaultUserID = id } }

// WithIngestion enables IngestFiles.
func WithIngestion(extractor TextExtractor, chunker domain.Chunker, summarizer domain.Summarizer, maxSentences int) Option {
	return func(s *RAGService) {
		s.extractor = extractor
		s.chunker = chunker
		s.summarizer = summarizer
		s.summaryMaxSentences = maxSentences
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option { return func(s *RAGService) { s.logger = l } }

func NewRAGService(store *knowledge.Store, asker answer.Asker, opts ...Option) *RAGService {
	s := &RAGService{
		store:         store,
		asker:         asker,
		ragTopK:       2,
		defaultUserID: "12",
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddDocument stores a user-authored document.
func (s *RAGService) AddDocument(ctx context.Context, title, text, source string) (string, error) {
	title, text = strings.TrimSpace(title), strings.TrimSpace(text)
	if title == "" || text == "" {
		return "", domain.ErrMissingField
	}
	if source == "" {
		source = domain.SourceCustom
	}
	return s.add(ctx, text, domain.Metadata{domain.MetaTitle: title, domain.MetaSource: source})
}

// AddSample stores the sample at index. Adding the same sample twice
// stores two documents.
func (s *RAGService) AddSample(ctx context.Context, index int) (string, error) {
	if index < 0 || index >= len(samples) {
		return "", fmt.Errorf("sample %d: %w", index, domain.ErrUnknownSample)
	}
	sm := samples[index]
	return s.add(ctx, sm.Text, domain.Metadata{domain.MetaTitle: sm.Title, domain.MetaSource: domain.SourceSample})
}

func (s *RAGService) add(ctx context.Context, text string, meta domain.Metadata) (string, error) {
	id, err := s.store.Add(ctx, text, meta)
	if err != nil {
		return "", err
	}
	s.log(ctx).Debug("document added", zap.String("id", id), zap.String("title", meta.Title()), zap.String("source", meta.Source()))
	s.refreshGauge(ctx)
	return id, nil
}

func (s *RAGService) refreshGauge(ctx context.Context) {
	if n, err := s.store.Count(ctx); err == nil {
		metrics.KnowledgeDocuments.Set(float64(n))
	}
}

// Search returns up to k documents closest to query.
func (s *RAGService) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	res, err := s.store.Search(ctx, query, k)
	switch {
	case err != nil:
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	case len(res) == 0:
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
	default:
		metrics.SearchRequestsTotal.WithLabelValues("hit").Inc()
	}
	return res, nil
}

// AnswerWithRAG retrieves context for question, composes the prompt and asks
// the model. It returns ErrNoContext when the knowledge base is empty.
func (s *RAGService) AnswerWithRAG(ctx context.Context, question, userID string) (RAGAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return RAGAnswer{}, domain.ErrEmptyQuestion
	}
	contexts, err := s.Search(ctx, question, s.ragTopK)
	if err != nil {
		return RAGAnswer{}, err
	}
	if len(contexts) == 0 {
		return RAGAnswer{}, domain.ErrNoContext
	}
	out := RAGAnswer{Contexts: contexts}
	out.Prompt = prompt.Compose(question, out.ContextTexts())
	out.Answer = s.asker.Ask(ctx, out.Prompt, s.userID(userID))
	return out, nil
}

// AnswerDirect sends the question to the model without retrieval.
func (s *RAGService) AnswerDirect(ctx context.Context, question, userID string) (answer.Result, error) {
	if strings.TrimSpace(question) == "" {
		return answer.Result{}, domain.ErrEmptyQuestion
	}
	return s.asker.Ask(ctx, question, s.userID(userID)), nil
}

// Compare answers question with and without retrieval.
func (s *RAGService) Compare(ctx context.Context, question, userID string) (Comparison, error) {
	if strings.TrimSpace(question) == "" {
		return Comparison{}, domain.ErrEmptyQuestion
	}
	cmp := Comparison{Question: question}
	cmp.RAG, cmp.RAGErr = s.AnswerWithRAG(ctx, question, userID)
	if cmp.RAGErr != nil && !errors.Is(cmp.RAGErr, domain.ErrNoContext) {
		return Comparison{}, cmp.RAGErr
	}
	cmp.Direct = s.asker.Ask(ctx, question, s.userID(userID))
	return cmp, nil
}

// Count returns the number of documents in the knowledge base.
func (s *RAGService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// log prefers the request-scoped logger carried by ctx.
func (s *RAGService) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.logger)
}

func (s *RAGService) userID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.defaultUserID
}
