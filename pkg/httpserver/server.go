// Package httpserver exposes the interview service over HTTP/JSON.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/interview"
	"github.com/snow-ghost/interviewer/kb"
	"github.com/snow-ghost/interviewer/pkg/logging"
	"github.com/snow-ghost/interviewer/pkg/metrics"
)

const maxBodyBytes = 1 << 20

// Config holds the HTTP server settings.
type Config struct {
	Addr               string        `mapstructure:"addr" json:"addr"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
	ReportPollInterval time.Duration `mapstructure:"report_poll_interval" json:"report_poll_interval"`
}

func DefaultConfig() Config {
	return Config{
		Addr:               ":8080",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       2 * time.Minute,
		ShutdownTimeout:    15 * time.Second,
		ReportPollInterval: time.Second,
	}
}

// Server represents the HTTP server
type Server struct {
	config  Config
	service *interview.Service
	bank    *kb.Bank
	metrics *metrics.Metrics
	logger  *zap.Logger
	router  *http.ServeMux
}

type StartRequest struct {
	Profile core.CandidateProfile `json:"profile"`
}

type TurnRequest struct {
	Utterance string `json:"utterance"`
}

type TranscriptResponse struct {
	SessionID string      `json:"session_id"`
	Phase     core.Phase  `json:"phase"`
	Turns     []core.Turn `json:"turns"`
}

type TopicInfo struct {
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

// NewServer creates a new HTTP server. m may be nil.
func NewServer(config Config, service *interview.Service, bank *kb.Bank, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ReportPollInterval <= 0 {
		config.ReportPollInterval = DefaultConfig().ReportPollInterval
	}
	s := &Server{
		config:  config,
		service: service,
		bank:    bank,
		metrics: m,
		logger:  logger,
		router:  http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	s.router.HandleFunc("POST /v1/interviews", s.handleStart)
	s.router.HandleFunc("POST /v1/interviews/{id}/turns", s.handleTurn)
	s.router.HandleFunc("GET /v1/interviews/{id}", s.handleSession)
	s.router.HandleFunc("GET /v1/interviews/{id}/transcript", s.handleTranscript)
	s.router.HandleFunc("GET /v1/interviews/{id}/report", s.handleReport)
	s.router.HandleFunc("GET /v1/interviews/{id}/report/stream", s.handleReportStream)
	s.router.HandleFunc("POST /v1/interviews/{id}/evaluate", s.handleEvaluate)
	s.router.HandleFunc("GET /v1/topics", s.handleTopics)
}

// Handler returns the routes wrapped with request metrics and logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.router.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RecordHTTP(route, rec.status, time.Since(start))
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			logging.Duration(time.Since(start)))
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "interviewer",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.service.Start(r.Context(), req.Profile)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.service.Advance(r.Context(), r.PathValue("id"), req.Utterance)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := s.service.Session(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	turns, err := s.service.Transcript(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TranscriptResponse{SessionID: id, Phase: sess.Phase, Turns: turns})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleReportStream sends "pending" events until the report is stored,
// then one "report" event.
func (s *Server) handleReportStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.service.Session(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		writeError(w, "streaming not supported", CodeInternal, http.StatusInternalServerError)
		return
	}

	ticker := time.NewTicker(s.config.ReportPollInterval)
	defer ticker.Stop()
	for {
		report, err := s.service.Report(r.Context(), id)
		switch {
		case err == nil:
			sse.WriteEvent("report", report)
			return
		case errors.Is(err, core.ErrReportNotReady):
			if err := sse.WriteEvent("pending", map[string]string{"session_id": id}); err != nil {
				return
			}
		default:
			_, code := classify(err)
			sse.WriteError(code, err)
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.Reevaluate(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"session_id": id, "status": "queued"})
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	names := s.bank.Topics()
	topics := make([]TopicInfo, len(names))
	for i, name := range names {
		topics[i] = TopicInfo{Name: name, Questions: len(s.bank.Questions(name))}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics, "total_questions": s.bank.Len()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "Invalid JSON", CodeInvalidJSON, http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, err.Error(), code, status)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
