// Package serve exposes the hosted prediction surface for a packaged
// agent: the same execution path as the CLI behind an HTTP endpoint.
package serve

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tandemkit/tandem/internal/adapter"
	"github.com/tandemkit/tandem/internal/envelope"
)

// Server wires the runner into HTTP handlers.
type Server struct {
	runner *adapter.Runner
}

// NewServer creates the prediction server.
func NewServer(runner *adapter.Runner) *Server {
	return &Server{runner: runner}
}

// Routes returns the router for the prediction surface.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return logRequests(mux)
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Info().Str("addr", addr).Msg("serving predictions")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handlePredict accepts either a normalized request or a chat-completion
// envelope and replies with the normalized response. Execution failures
// reply 200 with an error-status body; only undecodable input is a 400.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var raw struct {
		envelope.Request
		Messages []envelope.Message `json:"messages,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope.Failure("decode request: "+err.Error()))
		return
	}

	req := raw.Request
	if req.Prompt == "" && len(req.Inputs) == 0 && len(raw.Messages) > 0 {
		comp := envelope.CompletionRequest{Messages: raw.Messages}
		if parsed, err := comp.Request(); err == nil {
			parsed.DeploymentID = req.DeploymentID
			req = parsed
		}
	}

	resp := s.runner.Execute(r.Context(), req)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
