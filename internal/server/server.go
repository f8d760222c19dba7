// Package server is the reference prediction service: the HTTP API the
// console talks to, backed by a surrogate model so it runs without the
// trained models.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/raphaelgruber/xrdthermo/internal/peak"
)

// DefaultAllowedOrigins are the browser origins accepted by CORS.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"https://cdse-xray-diffraction-thermometry.onrender.com",
}

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Server wires the model into the HTTP API.
type Server struct {
	model    Model
	logger   *slog.Logger
	metrics  *Metrics
	validate *validator.Validate
	origins  []string
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins replaces the CORS origin list.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithMetrics uses m instead of a fresh registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a server for model. A nil model answers 503 on every model
// endpoint, like a service whose weights failed to load.
func New(model Model, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		model:    model,
		logger:   logger,
		validate: validator.New(),
		origins:  DefaultAllowedOrigins,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler builds the router with all middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(echoRequestID)
	r.Use(LoggingMiddleware(s.logger, s.metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.health)
	r.Handle("/metrics", s.metrics.Handler())

	r.Post("/predict", s.predict)
	r.Post("/simulate", s.simulate)
	r.Post("/estimate-fwhm", s.estimateFWHM)

	return r
}

// =============================================================================
// REQUESTS
// =============================================================================

// Pointer fields tell a missing value apart from zero.

type forwardInput struct {
	Pos       *float64 `json:"pos" validate:"required"`
	Intensity *float64 `json:"intensity" validate:"required"`
	FWHM      *float64 `json:"fwhm" validate:"required"`
}

type inverseInput struct {
	Temp *float64 `json:"temp" validate:"required"`
}

type fwhmInput struct {
	Pos       *float64 `json:"pos" validate:"required"`
	Intensity *float64 `json:"intensity" validate:"required,gte=0"`
}

// errorResponse matches the {"detail": ...} body clients expect.
type errorResponse struct {
	Detail string `json:"detail"`
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.model == nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	var in forwardInput
	if !s.decode(w, r, &in) || !s.ready(w) {
		return
	}

	params := peak.Parameters{Position: *in.Pos, Width: *in.FWHM, Height: *in.Intensity}
	temp := s.model.Predict(params)
	s.metrics.Predictions.WithLabelValues("predict").Inc()
	s.logger.Debug("predicted temperature", "pos", params.Position, "fwhm", params.Width, "temperature", temp)

	writeJSON(w, http.StatusOK, map[string]float64{"temperature": temp})
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var in inverseInput
	if !s.decode(w, r, &in) || !s.ready(w) {
		return
	}

	p := s.model.Simulate(*in.Temp)
	s.metrics.Predictions.WithLabelValues("simulate").Inc()

	writeJSON(w, http.StatusOK, map[string]float64{
		"pos":       p.Position,
		"fwhm":      p.Width,
		"intensity": p.Height,
	})
}

func (s *Server) estimateFWHM(w http.ResponseWriter, r *http.Request) {
	var in fwhmInput
	if !s.decode(w, r, &in) || !s.ready(w) {
		return
	}

	fwhm := s.model.EstimateFWHM(*in.Pos, *in.Intensity)
	s.metrics.Predictions.WithLabelValues("estimate-fwhm").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"fwhm":       fwhm,
		"peak_shift": *in.Pos - peak.RoomTemperaturePeak,
		"status":     "success",
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads and validates a JSON body, answering 422 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, formatValidationError(err))
		return false
	}
	return true
}

// ready answers 503 when no model is loaded.
func (s *Server) ready(w http.ResponseWriter) bool {
	if s.model == nil {
		writeError(w, http.StatusServiceUnavailable, "AI Model not loaded on server")
		return false
	}
	return true
}

// formatValidationError turns validator errors into one readable message.
func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, e.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
