package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"ragdemo/internal/domain"
	"ragdemo/internal/extract"
)

// TextExtractor reads a file and returns its plain text.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// ProgressFunc is called after each file is ingested.
type ProgressFunc func(done, total int, path string)

// IngestReport summarizes an IngestFiles run.
type IngestReport struct {
	Files     []string
	Documents int
	Summary   string
}

// IngestFiles expands glob patterns, extracts each file's text, splits it
// into sentence chunks and stores every chunk as a document.
func (s *RAGService) IngestFiles(ctx context.Context, patterns []string, progress ProgressFunc) (IngestReport, error) {
	if s.extractor == nil || s.chunker == nil {
		return IngestReport{}, errors.New("ingestion is not configured")
	}
	files, err := ExpandPatterns(patterns)
	if err != nil {
		return IngestReport{}, err
	}
	if len(files) == 0 {
		return IngestReport{}, fmt.Errorf("no supported files match %s", strings.Join(patterns, ", "))
	}

	var report IngestReport
	var all strings.Builder
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		text, err := s.extractor.Extract(path)
		if err != nil {
			return report, fmt.Errorf("extract %s: %w", path, err)
		}
		base := filepath.Base(path)
		for n, chunk := range s.chunker.Chunk(text) {
			meta := domain.Metadata{
				domain.MetaTitle:  base,
				domain.MetaSource: domain.SourceFile,
				domain.MetaPath:   path,
				domain.MetaChunk:  strconv.Itoa(n),
			}
			if _, err := s.store.Add(ctx, chunk, meta); err != nil {
				return report, err
			}
			report.Documents++
		}
		report.Files = append(report.Files, path)
		all.WriteString(text)
		all.WriteString("\n")
		if progress != nil {
			progress(i+1, len(files), path)
		}
	}
	s.refreshGauge(ctx)

	if s.summarizer != nil && strings.TrimSpace(all.String()) != "" {
		summary, err := s.summarizer.Summarize(all.String(), s.summaryMaxSentences)
		if err != nil {
			s.log(ctx).Warn("summarize ingested text", zap.Error(err))
		} else {
			report.Summary = summary
		}
	}
	s.log(ctx).Info("files ingested", zap.Int("files", len(report.Files)), zap.Int("documents", report.Documents))
	return report, nil
}

// ExpandPatterns resolves doublestar glob patterns to a sorted, de-duplicated
// list of regular files with supported extensions.
func ExpandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			info, err := os.Stat(m)
			if err != nil || info.IsDir() || !extract.Supported(m) {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}
