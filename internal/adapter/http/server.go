package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/river-radar-sim/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Simulation is the running engine as seen by the HTTP layer.
type Simulation interface {
	Latest() (domain.Reading, bool)
	Inputs() domain.Inputs
	Submit(ctx context.Context, patch domain.InputPatch) error
}

// HistoryReader returns persisted readings, newest first.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]domain.ReadingRecord, error)
}

const (
	defaultHistoryLimit = 100
	maxInputBodyBytes   = 4 << 10

	// submitTimeout bounds how long a request waits for a busy scheduler.
	submitTimeout = 500 * time.Millisecond
)

// Server exposes the simulation API along with health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	sim        Simulation
	history    HistoryReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server. history may be nil, in which case
// /api/history responds 404.
func NewServer(addr string, sim Simulation, ready ReadinessChecker, history HistoryReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sim:     sim,
		history: history,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/reading", s.handleReading)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/inputs", s.handleInputs)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleReading(w http.ResponseWriter, _ *http.Request) {
	reading, ok := s.sim.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no reading yet")
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// statusResponse is the public flood-warning view of the latest reading.
type statusResponse struct {
	Status       domain.Status `json:"status"`
	DischargeM3s float64       `json:"discharge_m3s"`
	VelocityMS   float64       `json:"velocity_ms"`
	DepthM       float64       `json:"depth_m"`
	Moving       bool          `json:"moving"`
	Timestamp    time.Time     `json:"timestamp"`
	Inputs       domain.Inputs `json:"inputs"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	reading, ok := s.sim.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no reading yet")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:       reading.Status,
		DischargeM3s: reading.DischargeM3s,
		VelocityMS:   reading.Velocity,
		DepthM:       reading.DepthM,
		Moving:       reading.Moving,
		Timestamp:    reading.Timestamp,
		Inputs:       s.sim.Inputs(),
	})
}

func (s *Server) handleInputs(w http.ResponseWriter, r *http.Request) {
	var patch domain.InputPatch
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInputBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "no input fields set")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()

	if err := s.sim.Submit(ctx, patch); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("submit inputs failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "reading history is not enabled")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("read history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(records), "readings": records})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
