package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"ragdemo/internal/answer"
	answeropenai "ragdemo/internal/answer/openai"
	"ragdemo/internal/chunker"
	"ragdemo/internal/config"
	"ragdemo/internal/domain"
	"ragdemo/internal/embedding/openai"
	"ragdemo/internal/embedding/tfidf"
	"ragdemo/internal/extract"
	"ragdemo/internal/knowledge"
	"ragdemo/internal/metrics"
	"ragdemo/internal/service"
	"ragdemo/internal/summarizer"
	"ragdemo/internal/vectorstore"
	"ragdemo/internal/vectorstore/memory"
)

type app struct {
	svc    *service.RAGService
	logger *zap.Logger
}

// newApp assembles the store, answer client and service from cfg.
func newApp(cfg *config.AppConfig, log *zap.Logger) (*app, error) {
	metrics.RegisterRAGMetrics()

	newEmbedder, err := embedderFactory(cfg.Embedder, log)
	if err != nil {
		return nil, err
	}

	var client vectorstore.Client
	switch cfg.VectorStore.Type {
	case "memory", "":
		client = memory.NewClient(newEmbedder)
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
	metric, err := vectorstore.ParseMetric(cfg.VectorStore.Distance)
	if err != nil {
		return nil, err
	}
	store, err := knowledge.Open(client, cfg.VectorStore.Collection, metric)
	if err != nil {
		return nil, err
	}

	asker, err := newAsker(cfg.Answer, log)
	if err != nil {
		return nil, err
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	svc := service.NewRAGService(store, asker,
		service.WithRAGTopK(cfg.Retrieval.RAGTopK),
		service.WithDefaultUserID(cfg.Answer.UserID),
		service.WithIngestion(extract.NewExtractor(), ch, sum, cfg.Summarizer.MaxSentences),
		service.WithLogger(log),
	)
	return &app{svc: svc, logger: log}, nil
}

func embedderFactory(cfg config.EmbedderConfig, log *zap.Logger) (func() domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return func() domain.Embedder { return tfidf.NewEmbedder() }, nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			Logger:    log,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return func() domain.Embedder { return client }, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func newAsker(cfg config.AnswerConfig, log *zap.Logger) (answer.Asker, error) {
	var asker answer.Asker
	switch cfg.Provider {
	case "skillcaptain", "":
		c, err := answer.NewClient(answer.Config{
			Endpoint: cfg.Endpoint,
			Cookie:   cfg.Cookie(),
			Timeout:  cfg.Timeout(),
			Logger:   log,
		})
		if err != nil {
			return nil, err
		}
		asker = c
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai answer config missing")
		}
		a, err := answeropenai.NewAsker(answeropenai.Config{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
			Timeout:   cfg.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("openai answer provider init failed: %w", err)
		}
		asker = a
	default:
		return nil, fmt.Errorf("unknown answer provider: %s", cfg.Provider)
	}
	return answer.NewInstrumented(asker, cfg.Provider, log), nil
}

// preload ingests the files matched by patterns, drawing a progress bar on w.
// It returns a one-line banner for the UI, empty when nothing was loaded.
func (a *app) preload(ctx context.Context, w io.Writer, patterns []string) (string, error) {
	if len(patterns) == 0 {
		return "", nil
	}
	var bar *progressbar.ProgressBar
	progress := func(done, total int, _ string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Loading[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			)
		}
		_ = bar.Set(done)
	}
	report, err := a.svc.IngestFiles(ctx, patterns, progress)
	if err != nil {
		return "", fmt.Errorf("ingest failed: %w", err)
	}
	banner := fmt.Sprintf("Loaded %d files as %d documents.", len(report.Files), report.Documents)
	if report.Summary != "" {
		banner += " Summary: " + report.Summary
	}
	return banner, nil
}
