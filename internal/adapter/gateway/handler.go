package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"shiro/internal/domain"
	"shiro/internal/usecase/orchestrator"
)

// Invoker is the orchestration surface the gateway depends on.
type Invoker interface {
	Invoke(ctx context.Context, items []domain.Item, integrations []string) (*domain.RunResult, error)
	InvokeStreamed(ctx context.Context, items []domain.Item, integrations []string, sink orchestrator.EventSink) error
}

// invokeRequest is the body of both invoke endpoints. Messages carry the
// whole conversation so far; the client owns persistence between turns.
type invokeRequest struct {
	Messages     []domain.Item `json:"messages"`
	Integrations []string      `json:"integrations"`
}

// invokeResponse is the buffered endpoint's success body.
type invokeResponse struct {
	Messages    []domain.Item   `json:"messages"`
	FinalOutput json.RawMessage `json:"final_output,omitempty"`
	FinalAgent  string          `json:"final_agent,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeInvoke(w, r)
	if !ok {
		return
	}

	result, err := s.invoker.Invoke(r.Context(), req.Messages, req.Integrations)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, invokeResponse{
		Messages:    result.Items,
		FinalOutput: result.FinalOutput,
		FinalAgent:  result.FinalAgent,
	})
}

func (s *Server) handleInvokeStreamed(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeInvoke(w, r)
	if !ok {
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The orchestrator emits the terminal error event itself, so a failed
	// run needs nothing more from us here.
	if err := s.invoker.InvokeStreamed(r.Context(), req.Messages, req.Integrations, sse.writeEvent); err != nil {
		s.logger.Error("streamed run failed", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decodeInvoke(w http.ResponseWriter, r *http.Request) (invokeRequest, bool) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Detail: err.Error()})
		return req, false
	}
	if len(req.Messages) == 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "messages must not be empty"})
		return req, false
	}
	return req, true
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConnectionFailed):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrAuthInvalid):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimit):
		status = http.StatusTooManyRequests
	}

	s.logger.Error("request failed", "status", status, "error", err)
	s.writeJSON(w, status, errorResponse{Error: http.StatusText(status), Detail: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("response encode failed", "error", err)
	}
}
