package server

import (
	"ragdemo/internal/answer"
	"ragdemo/internal/domain"
	"ragdemo/internal/service"
)

type addDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type addedResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

type sampleResponse struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type searchResult struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Distance   float64           `json:"distance"`
	Similarity float64           `json:"similarity"`
}

type askRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
	Mode     string `json:"mode"`
}

type answerResponse struct {
	Kind       string `json:"kind"`
	Text       string `json:"text,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
	Display    string `json:"display"`
}

type ragResponse struct {
	Contexts []searchResult  `json:"contexts"`
	Prompt   string          `json:"prompt"`
	Answer   *answerResponse `json:"answer"`
}

type askResponse struct {
	Mode   string          `json:"mode"`
	RAG    *ragResponse    `json:"rag,omitempty"`
	Answer *answerResponse `json:"answer,omitempty"`
}

type compareResponse struct {
	Question string          `json:"question"`
	RAG      *ragResponse    `json:"rag,omitempty"`
	RAGError string          `json:"rag_error,omitempty"`
	Direct   *answerResponse `json:"direct"`
}

func toSearchResults(in []domain.SearchResult) []searchResult {
	out := make([]searchResult, len(in))
	for i, r := range in {
		out[i] = searchResult{
			ID:         r.Document.ID,
			Title:      r.Document.Metadata.Title(),
			Content:    r.Document.Text,
			Metadata:   r.Document.Metadata,
			Distance:   r.Distance,
			Similarity: r.Similarity(),
		}
	}
	return out
}

func toAnswer(res answer.Result) *answerResponse {
	out := &answerResponse{
		Kind:       res.Kind.String(),
		Text:       res.Text,
		StatusCode: res.StatusCode,
		Body:       res.Body,
		Display:    res.String(),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

func toRAG(a service.RAGAnswer) *ragResponse {
	return &ragResponse{
		Contexts: toSearchResults(a.Contexts),
		Prompt:   a.Prompt,
		Answer:   toAnswer(a.Answer),
	}
}
