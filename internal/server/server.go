// Package server exposes the RAG demo over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ragdemo/internal/answer"
	"ragdemo/internal/domain"
	"ragdemo/internal/logger"
	"ragdemo/internal/metrics"
	"ragdemo/internal/service"
)

// RAGService is the subset of service.RAGService the API needs.
type RAGService interface {
	Samples() []service.Sample
	AddSample(ctx context.Context, index int) (string, error)
	AddDocument(ctx context.Context, title, text, source string) (string, error)
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
	AnswerWithRAG(ctx context.Context, question, userID string) (service.RAGAnswer, error)
	AnswerDirect(ctx context.Context, question, userID string) (answer.Result, error)
	Compare(ctx context.Context, question, userID string) (service.Comparison, error)
	Count(ctx context.Context) (int, error)
}

// Limits bounds request parameters.
type Limits struct {
	DefaultK int
	MaxK     int
}

// Server is the HTTP server for the RAG demo API.
type Server struct {
	svc    RAGService
	limits Limits
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(svc RAGService, limits Limits, log *zap.Logger) *Server {
	if limits.MaxK < 1 {
		limits.MaxK = 5
	}
	if limits.DefaultK < 1 || limits.DefaultK > limits.MaxK {
		limits.DefaultK = min(3, limits.MaxK)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, limits: limits, logger: log}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.handleAddDocument)
		r.Get("/samples", s.handleListSamples)
		r.Post("/samples/{index}", s.handleAddSample)
		r.Post("/search", s.handleSearch)
		r.Post("/ask", s.handleAsk)
		r.Post("/compare", s.handleCompare)
		r.Get("/stats", s.handleStats)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
