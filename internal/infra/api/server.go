package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/repository"
	"telegram-subscription-tracker/internal/infra/metrics"
)

// Pinger is anything /healthz can probe (pgxpool, redis client).
type Pinger interface {
	Ping(ctx context.Context) error
}

// UserCounter backs /admin/stats.
type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

// Server is the operational HTTP surface: health, metrics and session admin.
type Server struct {
	sessions repository.SessionStore
	users    UserCounter
	checks   map[string]Pinger
	auth     *AuthManager
	log      *zerolog.Logger
}

func NewServer(
	sessions repository.SessionStore,
	users UserCounter,
	checks map[string]Pinger,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "AdminAPI").Logger()
	return &Server{sessions: sessions, users: users, checks: checks, auth: auth, log: &l}
}

// Router builds the chi mux with the shared middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(s.log), RequestLog(s.log), Recover(s.log), Timeout(10*time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.auth.Require("/admin"))
		r.Get("/stats", s.handleStats)
		r.Get("/sessions/{tgID}", s.handleGetSession)
		r.Delete("/sessions/{tgID}", s.handleEndSession)
	})
	return r
}

// HTTPServer returns a server for the router listening on port.
func (s *Server) HTTPServer(port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	out := make(map[string]string, len(s.checks))
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			s.log.Warn().Err(err).Str("check", name).Msg("health check failed")
			out[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		out[name] = "ok"
	}
	writeJSON(w, status, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.users.Count(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("count users")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_users": n})
}

type sessionView struct {
	TelegramID  int64           `json:"telegram_id"`
	State       string          `json:"state"`
	ContextKind string          `json:"context_kind,omitempty"`
	ListView    *model.ListView `json:"list_view,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	tgID, err := parseTgID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	view := sessionView{TelegramID: tgID, State: "idle"}
	st, ok, err := s.sessions.GetState(ctx, tgID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if ok && st != model.StateIdle {
		view.State = string(st)
	}
	dc, ok, err := s.sessions.GetContext(ctx, tgID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if ok {
		view.ContextKind = string(dc.Kind)
	}
	lv, ok, err := s.sessions.GetListContext(ctx, tgID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if ok {
		view.ListView = &lv
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	tgID, err := parseTgID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.sessions.EndDialogue(r.Context(), tgID); err != nil {
		s.storeError(w, err)
		return
	}
	s.log.Info().Int64("tg_id", tgID).Msg("session ended by admin")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("session store")
	http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
}

var errBadTgID = errors.New("tgID must be a positive integer")

func parseTgID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tgID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadTgID
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
