// Package api exposes the dashboard HTTP surface: auth endpoints plus
// read-only court and dispute views backed by the mirrored snapshots.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"courtflow/auth"
	"courtflow/court"
	"courtflow/dispute"
	"courtflow/phase"
)

// CourtService is the slice of court operations the handlers need.
type CourtService interface {
	GetByID(ctx context.Context, id string) (court.Record, error)
	List(ctx context.Context, limit int) ([]court.Record, error)
	UpsertConfig(ctx context.Context, params court.UpsertParams) (court.Record, error)
}

// DisputeService is the slice of dispute operations the handlers need.
type DisputeService interface {
	List(ctx context.Context, courtID string, state phase.DisputeState) ([]dispute.Record, error)
	Get(ctx context.Context, id string, at *int64) (dispute.View, error)
	Events(ctx context.Context, id string) ([]dispute.Event, error)
}

// AuthService covers registration, login and token verification.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error)
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error)
	VerifyToken(token string) (string, auth.Role, error)
}

// Server wires the HTTP handlers to the underlying services.
type Server struct {
	authService    AuthService
	courtService   CourtService
	disputeService DisputeService
	logger         *slog.Logger
}

// NewServer builds a Server. A nil logger falls back to slog.Default.
func NewServer(authSvc AuthService, courts CourtService, disputes DisputeService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		authService:    authSvc,
		courtService:   courts,
		disputeService: disputes,
		logger:         logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("GET /api/courts", s.requireAuth(s.handleCourts))
	mux.Handle("POST /api/courts", s.requireAuth(s.handleUpsertCourt))
	mux.Handle("GET /api/courts/{id}", s.requireAuth(s.handleCourt))
	mux.Handle("GET /api/disputes", s.requireAuth(s.handleDisputes))
	mux.Handle("GET /api/disputes/{id}", s.requireAuth(s.handleDispute))
	mux.Handle("GET /api/disputes/{id}/events", s.requireAuth(s.handleDisputeEvents))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
