package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"ragdemo/internal/answer"
	"ragdemo/internal/domain"
	"ragdemo/internal/embedding/tfidf"
	"ragdemo/internal/knowledge"
	"ragdemo/internal/service"
	"ragdemo/internal/vectorstore"
	"ragdemo/internal/vectorstore/memory"
)

type stubAsker struct{ res answer.Result }

func (s stubAsker) Ask(context.Context, string, string) answer.Result { return s.res }

func newTestServer(t *testing.T, res answer.Result) *httptest.Server {
	t.Helper()
	client := memory.NewClient(func() domain.Embedder { return tfidf.NewEmbedder() })
	store, err := knowledge.Open(client, knowledge.DefaultCollection, vectorstore.Cosine)
	if err != nil {
		t.Fatal(err)
	}
	svc := service.NewRAGService(store, stubAsker{res: res})
	srv := NewServer(svc, Limits{DefaultK: 3, MaxK: 5}, zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, answer.SuccessResult("ok"))
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d", resp.StatusCode)
	}
}

func TestAddDocumentAndSearch(t *testing.T) {
	ts := newTestServer(t, answer.SuccessResult("ok"))

	resp := post(t, ts.URL+"/api/v1/documents", addDocumentRequest{Title: "Paris", Content: "Paris is the capital of France."})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status: got %d", resp.StatusCode)
	}
	var added addedResponse
	decode(t, resp, &added)
	if added.ID == "" || added.Count != 1 {
		t.Errorf("unexpected add response %+v", added)
	}

	resp = post(t, ts.URL+"/api/v1/search", searchRequest{Query: "Paris is the capital of France."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status: got %d", resp.StatusCode)
	}
	var out struct {
		Results []searchResult `json:"results"`
	}
	decode(t, resp, &out)
	if len(out.Results) != 1 || out.Results[0].Title != "Paris" || out.Results[0].Metadata["source"] != "custom" {
		t.Errorf("unexpected results %+v", out.Results)
	}
}

func TestAddDocument_MissingField(t *testing.T) {
	ts := newTestServer(t, answer.SuccessResult("ok"))
	resp := post(t, ts.URL+"/api/v1/documents", addDocumentRequest{Title: "x"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestSamples(t *testing.T) {
	ts := newTestServer(t, answer.SuccessResult("ok"))
	resp, err := http.Get(ts.URL + "/api/v1/samples")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list struct {
		Samples []sampleResponse `json:"samples"`
	}
	decode(t, resp, &list)
	if len(list.Samples) != 4 || list.Samples[3].Title != "Computer Vision" {
		t.Errorf("unexpected samples %+v", list.Samples)
	}

	if resp := post(t, ts.URL+"/api/v1/samples/2", nil); resp.StatusCode != http.StatusCreated {
		t.Errorf("add sample status: got %d", resp.StatusCode)
	}
	if resp := post(t, ts.URL+"/api/v1/samples/9", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown sample status: got %d, want 404", resp.StatusCode)
	}
	if resp := post(t, ts.URL+"/api/v1/samples/abc", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad index status: got %d, want 400", resp.StatusCode)
	}
}

func TestSearch_InvalidK(t *testing.T) {
	ts := newTestServer(t, answer.SuccessResult("ok"))
	resp := post(t, ts.URL+"/api/v1/search", searchRequest{Query: "x", K: 6})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestAsk(t *testing.T) {
	ts := newTestServer(t, answer.HTTPFailure(500, "oops"))

	resp := post(t, ts.URL+"/api/v1/ask", askRequest{Question: "What is deep learning?"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("rag on empty store: got %d, want 404", resp.StatusCode)
	}

	post(t, ts.URL+"/api/v1/samples/1", nil)
	resp = post(t, ts.URL+"/api/v1/ask", askRequest{Question: "What is deep learning?", Mode: "rag"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	var out askResponse
	decode(t, resp, &out)
	if out.RAG == nil || len(out.RAG.Contexts) != 1 {
		t.Fatalf("unexpected rag response %+v", out)
	}
	if out.RAG.Answer.Kind != "http_error" || out.RAG.Answer.Display != "Error: 500 - oops" {
		t.Errorf("unexpected answer %+v", out.RAG.Answer)
	}

	resp = post(t, ts.URL+"/api/v1/ask", askRequest{Question: "hi", Mode: "direct"})
	var direct askResponse
	decode(t, resp, &direct)
	if direct.Answer == nil || direct.Answer.StatusCode != 500 || direct.Answer.Body != "oops" {
		t.Errorf("unexpected direct response %+v", direct)
	}

	if resp := post(t, ts.URL+"/api/v1/ask", askRequest{Question: "hi", Mode: "other"}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad mode status: got %d", resp.StatusCode)
	}
	if resp := post(t, ts.URL+"/api/v1/ask", askRequest{Mode: "direct"}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty question status: got %d", resp.StatusCode)
	}
}

func TestCompare_NoContext(t *testing.T) {
	ts := newTestServer(t, answer.SuccessResult("direct answer"))
	resp := post(t, ts.URL+"/api/v1/compare", askRequest{Question: "Explain computer vision"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	var out compareResponse
	decode(t, resp, &out)
	if out.RAG != nil || !strings.Contains(out.RAGError, "no relevant documents") {
		t.Errorf("expected rag error, got %+v", out)
	}
	if out.Direct == nil || out.Direct.Display != "direct answer" {
		t.Errorf("unexpected direct %+v", out.Direct)
	}
}

func TestStatsAndMetrics(t *testing.T) {
	ts := newTestServer(t, answer.SuccessResult("ok"))
	post(t, ts.URL+"/api/v1/samples/0", nil)

	resp, err := http.Get(ts.URL + "/api/v1/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var stats map[string]int
	decode(t, resp, &stats)
	if stats["documents"] != 1 {
		t.Errorf("expected 1 document, got %v", stats)
	}

	mresp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer mresp.Body.Close()
	if mresp.StatusCode != http.StatusOK {
		t.Errorf("metrics status: got %d", mresp.StatusCode)
	}
}
