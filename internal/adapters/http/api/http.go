// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mergington/activities/internal/domain/model"
	"github.com/mergington/activities/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ListActivities(ctx context.Context) (map[string]model.Activity, error)
	GetActivity(ctx context.Context, name string) (model.Activity, error)
	Signup(ctx context.Context, activity, email string) (string, error)
	Unregister(ctx context.Context, activity, email string) (string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	activitiesHandler *ActivitiesHandler
}

// ServerOption configures NewServer.
type ServerOption func(*Server)

// WithLogger sets the logger handlers use for unexpected errors.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.activitiesHandler.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		activitiesHandler: NewActivitiesHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /activities", MetricsMiddleware(s.activitiesHandler.HandleList, "activities"))
	mux.HandleFunc("GET /activities/{name}", MetricsMiddleware(s.activitiesHandler.HandleGet, "activity"))
	mux.HandleFunc("POST /activities/{name}/signup", MetricsMiddleware(s.activitiesHandler.HandleSignup, "signup"))
	mux.HandleFunc("DELETE /activities/{name}/unregister", MetricsMiddleware(s.activitiesHandler.HandleUnregister, "unregister"))
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	if detail == "" {
		detail = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Detail: detail, Code: code})
}

// Client-facing details. Tests and the web page match on these substrings.
const (
	detailNotFound        = "Activity not found"
	detailAlreadySignedUp = "Student is already signed up"
	detailNotRegistered   = "Student is not registered for this activity"
	detailActivityFull    = "Activity is full"
	detailEmailRequired   = "email query parameter is required"
	detailNameRequired    = "activity name is required"
)

// statusFor translates a domain error into status, code and detail.
// The bool is false for errors the API does not recognise.
func statusFor(err error) (int, string, string, bool) {
	switch {
	case errors.Is(err, model.ErrActivityNotFound):
		return http.StatusNotFound, "not_found", detailNotFound, true
	case errors.Is(err, model.ErrAlreadySignedUp):
		return http.StatusBadRequest, "already_signed_up", detailAlreadySignedUp, true
	case errors.Is(err, model.ErrNotRegistered):
		return http.StatusBadRequest, "not_registered", detailNotRegistered, true
	case errors.Is(err, model.ErrActivityFull):
		return http.StatusBadRequest, "activity_full", detailActivityFull, true
	case errors.Is(err, model.ErrEmailRequired):
		return http.StatusBadRequest, "bad_request", detailEmailRequired, true
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request", causeDetail(err), true
	default:
		return http.StatusInternalServerError, "internal_error", "", false
	}
}

// causeDetail returns the message of the cause carried by an *Error, or ""
// when there is none.
func causeDetail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Err != nil {
		return apiErr.Err.Error()
	}
	return ""
}
