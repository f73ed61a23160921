package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ekaraca/tutorly/internal/activity"
	"github.com/ekaraca/tutorly/internal/config"
	"github.com/ekaraca/tutorly/internal/observability"
	"github.com/ekaraca/tutorly/internal/oracle"
	"github.com/ekaraca/tutorly/internal/submission"
	"github.com/ekaraca/tutorly/internal/suggest"
	"github.com/ekaraca/tutorly/internal/tutor"
)

type Server struct {
	cfg         config.Config
	sessions    *tutor.Manager
	suggestions *suggest.Service
	submissions submission.Store
	metrics     *observability.Metrics
	upgrader    websocket.Upgrader
}

func New(cfg config.Config, sessions *tutor.Manager, suggestions *suggest.Service, submissions submission.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:         cfg,
		sessions:    sessions,
		suggestions: suggestions,
		submissions: submissions,
		metrics:     metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other sites cannot drive a learner's session
				// if the service is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/activities/link", s.handleShareLink)
	r.Get("/v1/activities/resolve", s.handleResolveLink)
	r.Post("/v1/suggestions", s.handleSuggestions)

	r.Post("/v1/sessions", s.handleCreateSession)
	r.Get("/v1/sessions/{id}", s.handleGetSession)
	r.Post("/v1/sessions/{id}/start", s.handleStart)
	r.Post("/v1/sessions/{id}/identity", s.handleIdentity)
	r.Post("/v1/sessions/{id}/messages", s.handleMessage)
	r.Post("/v1/sessions/{id}/restart", s.handleRestart)
	r.Post("/v1/sessions/{id}/finalize", s.handleFinalize)
	r.Post("/v1/sessions/{id}/continue", s.handleContinue)
	r.Get("/v1/sessions/{id}/ws", s.handleSessionWS)

	r.Get("/v1/submissions", s.handleListSubmissions)
	r.Get("/v1/submissions/{id}", s.handleGetSubmission)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondDomainError maps session engine failures to HTTP statuses. Oracle
// and sink failures surface as 502 with a retryable message; the session
// itself stays usable, which the client learns from its unchanged state.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tutor.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, activity.ErrInvalidConfig):
		respondError(w, http.StatusBadRequest, "invalid_activity", err.Error())
	case errors.Is(err, tutor.ErrBusy):
		respondError(w, http.StatusConflict, "session_busy", err.Error())
	case errors.Is(err, tutor.ErrSuperseded), errors.Is(err, suggest.ErrSuperseded):
		respondError(w, http.StatusConflict, "superseded", "a newer action replaced this exchange")
	case errors.Is(err, tutor.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, oracle.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "oracle_unavailable", "the tutor is unreachable, try again")
	case errors.Is(err, tutor.ErrMalformedResponse), errors.Is(err, tutor.ErrOutOfRangeScore):
		respondError(w, http.StatusBadGateway, "oracle_unusable", "the tutor returned an unusable reply, try again")
	case errors.Is(err, tutor.ErrSinkUnavailable):
		respondError(w, http.StatusBadGateway, "submission_failed", "the submission could not be stored, try again")
	default:
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

// turnOutcome labels a finished exchange for the turns counter.
func turnOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, tutor.ErrValidation):
		return "rejected"
	case errors.Is(err, tutor.ErrBusy):
		return "busy"
	case errors.Is(err, tutor.ErrSuperseded):
		return "superseded"
	case errors.Is(err, tutor.ErrMalformedResponse), errors.Is(err, tutor.ErrOutOfRangeScore):
		return "unusable_reply"
	case errors.Is(err, oracle.ErrUnavailable):
		return "oracle_unavailable"
	default:
		return "error"
	}
}

func sessionID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}
