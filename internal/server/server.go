package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"litoralnorte/imovelworker/internal/pipeline"
	"litoralnorte/imovelworker/logger"
	"litoralnorte/imovelworker/services/lock"
)

// runTimeout caps a single HTTP-triggered pipeline invocation
const runTimeout = 90 * time.Minute

// response is the envelope for every trigger endpoint
type response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Summary *pipeline.Summary `json:"summary,omitempty"`
}

// Server exposes the pipeline's HTTP trigger surface
type Server struct {
	runner pipeline.Runner
	http   *http.Server
	log    *logger.Logger
}

// New builds the server and its routes
func New(addr string, runner pipeline.Runner) *Server {
	s := &Server{
		runner: runner,
		log:    logger.ForServer(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/pipeline/cron", s.handleCron).Methods(http.MethodPost)
	r.HandleFunc("/api/pipeline/run", s.handleRun).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: runTimeout + time.Minute,
	}
	return s
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving HTTP until Shutdown or failure
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleCron runs the full pipeline with defaults. The scheduler calls
// this with an empty body; any body present is ignored.
func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	s.log.Info().Msg("Cron trigger received")
	s.execute(w, r, pipeline.Request{})
}

// handleRun runs the pipeline with an optional source and city selection
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid request body: " + err.Error()})
			return
		}
	}

	s.log.Info().
		Strs("sources", req.Sources).
		Strs("cities", req.Filters.Cities).
		Msg("Manual trigger received")
	s.execute(w, r, req)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Success: true, Message: "ok"})
}

// execute runs the pipeline synchronously and reports its summary. A
// batch-level failure yields no partial summary; record-level failures
// were already absorbed inside the run.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, req pipeline.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
	defer cancel()

	summary, err := s.runner.Run(ctx, req)
	if err != nil {
		s.log.Error().Err(err).Msg("Pipeline run failed")
		status := http.StatusInternalServerError
		if errors.Is(err, lock.ErrAlreadyHeld) {
			status = http.StatusConflict
		}
		writeJSON(w, status, response{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "pipeline run finished",
		Summary: summary,
	})
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
