package domain

import "context"

// Metadata keys understood by the application.
const (
	MetaTitle  = "title"
	MetaSource = "source"
	MetaPath   = "path"
	MetaChunk  = "chunk"
)

// Document sources.
const (
	SourceSample = "sample"
	SourceCustom = "custom"
	SourceFile   = "file"
)

// Metadata is the string key/value payload stored next to a document.
type Metadata map[string]string

// Title returns the document title, or "Untitled" when none was set.
func (m Metadata) Title() string {
	if t := m[MetaTitle]; t != "" {
		return t
	}
	return "Untitled"
}

// Source returns where the document came from (sample, custom, file).
func (m Metadata) Source() string { return m[MetaSource] }

// Clone returns a copy that is safe to hand out.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Document is a piece of text stored in the knowledge base.
type Document struct {
	ID       string
	Text     string
	Metadata Metadata
}

// SearchResult is a document matched by similarity search.
// Lower distance means a closer match.
type SearchResult struct {
	Document Document
	Distance float64
}

// Similarity returns 1 - distance, the score shown to users.
func (r SearchResult) Similarity() float64 { return 1 - r.Distance }

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// CorpusEmbedder is an Embedder that must be fitted on the whole corpus
// before its vectors are comparable (e.g. TF-IDF).
type CorpusEmbedder interface {
	Embedder
	Prepare(corpus []string) error
}

// Chunker splits long text into pieces suitable for retrieval.
type Chunker interface {
	Chunk(text string) []string
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
