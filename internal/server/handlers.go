package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ragdemo/internal/domain"
	"ragdemo/internal/logger"
)

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.log(r).Debug("add document request", zap.String("title", req.Title))
	id, err := s.svc.AddDocument(r.Context(), req.Title, req.Content, domain.SourceCustom)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	s.respondAdded(w, r, id, req.Title)
}

func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request) {
	samples := s.svc.Samples()
	out := make([]sampleResponse, len(samples))
	for i, sm := range samples {
		out[i] = sampleResponse{Index: i, Title: sm.Title, Text: sm.Text}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"samples": out})
}

func (s *Server) handleAddSample(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "sample index must be a number")
		return
	}
	id, err := s.svc.AddSample(r.Context(), index)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	s.respondAdded(w, r, id, s.svc.Samples()[index].Title)
}

func (s *Server) respondAdded(w http.ResponseWriter, r *http.Request, id, title string) {
	n, err := s.svc.Count(r.Context())
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, addedResponse{ID: id, Title: title, Count: n})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.K == 0 {
		req.K = s.limits.DefaultK
	}
	if req.K < 1 || req.K > s.limits.MaxK {
		s.respondError(w, http.StatusBadRequest, "k must be between 1 and "+strconv.Itoa(s.limits.MaxK))
		return
	}
	s.log(r).Debug("search request", zap.String("query", req.Query), zap.Int("k", req.K))
	res, err := s.svc.Search(r.Context(), req.Query, req.K)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": toSearchResults(res)})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Mode {
	case "", "rag":
		a, err := s.svc.AnswerWithRAG(r.Context(), req.Question, req.UserID)
		if err != nil {
			s.respondDomainError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, askResponse{Mode: "rag", RAG: toRAG(a)})
	case "direct":
		res, err := s.svc.AnswerDirect(r.Context(), req.Question, req.UserID)
		if err != nil {
			s.respondDomainError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, askResponse{Mode: "direct", Answer: toAnswer(res)})
	default:
		s.respondError(w, http.StatusBadRequest, "mode must be rag or direct")
	}
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cmp, err := s.svc.Compare(r.Context(), req.Question, req.UserID)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	resp := compareResponse{Question: cmp.Question, Direct: toAnswer(cmp.Direct)}
	if cmp.RAGErr != nil {
		resp.RAGError = cmp.RAGErr.Error()
	} else {
		resp.RAG = toRAG(cmp.RAG)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Count(r.Context())
	if err != nil {
		s.log(r).Error("stats: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": n})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var clientErrors = []error{
	domain.ErrInvalidK,
	domain.ErrEmptyQuery,
	domain.ErrEmptyQuestion,
	domain.ErrMissingField,
}

func (s *Server) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if errors.Is(err, domain.ErrUnknownSample) || errors.Is(err, domain.ErrNoContext) {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log(r).Error("request failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) log(r *http.Request) *zap.Logger {
	return logger.FromContext(r.Context(), s.logger)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
