package answer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_Ask_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Paris is the capital of France."))
	}))
	defer server.Close()

	c, err := NewClient(Config{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	res := c.Ask(context.Background(), "What is the capital of France?", "12")
	if !res.OK() {
		t.Fatalf("expected success, got %v", res)
	}
	if res.String() != "Paris is the capital of France." {
		t.Errorf("expected verbatim body, got %q", res.String())
	}
}

func TestClient_Ask_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("oops"))
	}))
	defer server.Close()

	c, _ := NewClient(Config{Endpoint: server.URL})
	res := c.Ask(context.Background(), "hi", "12")
	if res.Kind != HTTPError {
		t.Fatalf("expected HTTPError, got %s", res.Kind)
	}
	if res.StatusCode != 500 || res.Body != "oops" {
		t.Errorf("unexpected status/body: %d %q", res.StatusCode, res.Body)
	}
	if res.String() != "Error: 500 - oops" {
		t.Errorf("unexpected rendering: %q", res.String())
	}
}

func TestClient_Ask_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, _ := NewClient(Config{Endpoint: url})
	res := c.Ask(context.Background(), "hi", "12")
	if res.Kind != TransportError {
		t.Fatalf("expected TransportError, got %s", res.Kind)
	}
	if !strings.HasPrefix(res.String(), "Error calling API: ") {
		t.Errorf("unexpected rendering: %q", res.String())
	}
}

func TestClient_Ask_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c, _ := NewClient(Config{Endpoint: server.URL, Timeout: 50 * time.Millisecond})
	if res := c.Ask(context.Background(), "hi", "12"); res.Kind != TransportError {
		t.Errorf("expected TransportError on timeout, got %s", res.Kind)
	}
}

func TestClient_Ask_RequestShape(t *testing.T) {
	var gotQuery, gotRawQuery, gotUser, gotCT, gotCookie, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotRawQuery = r.URL.RawQuery
		gotQuery = r.URL.Query().Get("prompt")
		gotUser = r.URL.Query().Get("userId")
		gotCT = r.Header.Get("Content-Type")
		gotCookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c, _ := NewClient(Config{Endpoint: server.URL + "/unicorn/p/llm/openai", Cookie: "JSESSIONID=abc"})
	prompt := "Context:\nA & B = C?\nQuestion: what is 100%?"
	c.Ask(context.Background(), prompt, "user 7")

	if gotMethod != http.MethodGet {
		t.Errorf("expected GET, got %s", gotMethod)
	}
	if gotQuery != prompt {
		t.Errorf("prompt not round-tripped: %q", gotQuery)
	}
	if gotUser != "user 7" {
		t.Errorf("unexpected userId: %q", gotUser)
	}
	if !strings.HasPrefix(gotRawQuery, "userId=user%207&prompt=") {
		t.Errorf("unexpected raw query: %q", gotRawQuery)
	}
	if strings.Contains(gotRawQuery, "+") {
		t.Errorf("spaces should be encoded as %%20: %q", gotRawQuery)
	}
	if gotCT != "application/json" {
		t.Errorf("unexpected content type %q", gotCT)
	}
	if gotCookie != "JSESSIONID=abc" {
		t.Errorf("unexpected cookie %q", gotCookie)
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Config{Endpoint: "ftp://example.com"}); err == nil {
		t.Error("expected error for non-http endpoint")
	}
	c, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("default endpoint: %v", err)
	}
	if got := c.requestURL("a b", "12"); got != DefaultEndpoint+"?userId=12&prompt=a%20b" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestResult_String(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"success", SuccessResult("hello"), "hello"},
		{"http", HTTPFailure(404, "not found"), "Error: 404 - not found"},
		{"transport", TransportFailure(errors.New("dial tcp: refused")), "Error calling API: dial tcp: refused"},
		{"transport nil", Result{Kind: TransportError}, "Error calling API: unknown error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.res.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}
