package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ekaraca/tutorly/internal/activity"
	"github.com/ekaraca/tutorly/internal/tutor"
)

type createSessionRequest struct {
	ContextID       string `json:"context_id"`
	Name            string `json:"name"`
	AgeGroup        string `json:"age_group"`
	Topic           string `json:"topic"`
	LearningOutcome string `json:"learning_outcome"`
}

type sessionResponse struct {
	SessionID       string            `json:"session_id"`
	ContextID       string            `json:"context_id"`
	InactivityTTLMS int64             `json:"inactivity_ttl_ms,omitempty"`
	Turn            *tutor.TurnResult `json:"turn,omitempty"`
	Session         tutor.SessionView `json:"session"`
}

type turnResponse struct {
	Turn    tutor.TurnResult  `json:"turn"`
	Session tutor.SessionView `json:"session"`
}

// handleCreateSession binds a new controller to the activity. No oracle call
// happens here; the returned state tells the client what to do next: collect
// an identity, call start, or resume the restored transcript directly.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	cfg := activity.Config{
		AgeGroup:        req.AgeGroup,
		Topic:           req.Topic,
		LearningOutcome: req.LearningOutcome,
	}

	entry, err := s.sessions.Create(req.ContextID, cfg)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	resp := sessionResponse{
		SessionID:       entry.ID,
		ContextID:       entry.ContextID,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	}
	// An identity supplied up front passes the gate immediately and runs the
	// first exchange before the create call returns.
	if strings.TrimSpace(req.Name) != "" && entry.Controller.State() == tutor.StateAwaitingIdentity {
		turn, err := entry.Controller.SubmitIdentity(r.Context(), req.Name)
		s.metrics.Turns.WithLabelValues(turnOutcome(err)).Inc()
		if err != nil {
			respondDomainError(w, err)
			return
		}
		s.metrics.SessionEvents.WithLabelValues("identity_set").Inc()
		resp.Turn = &turn
	}
	resp.Session = entry.Controller.View()
	respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{
		SessionID: entry.ID,
		ContextID: entry.ContextID,
		Session:   entry.Controller.View(),
	})
}

// handleStart drives the first exchange for sessions whose identity was
// restored from a previous visit, so they never passed the identity gate.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.sessions.Touch(entry.ID)

	turn, err := entry.Controller.Start(r.Context())
	s.metrics.Turns.WithLabelValues(turnOutcome(err)).Inc()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, turnResponse{Turn: turn, Session: entry.Controller.View()})
}

type identityRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	var req identityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	s.sessions.Touch(entry.ID)

	turn, err := entry.Controller.SubmitIdentity(r.Context(), req.Name)
	s.metrics.Turns.WithLabelValues(turnOutcome(err)).Inc()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.metrics.SessionEvents.WithLabelValues("identity_set").Inc()
	respondJSON(w, http.StatusOK, turnResponse{Turn: turn, Session: entry.Controller.View()})
}

type messageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	s.sessions.Touch(entry.ID)

	turn, err := entry.Controller.SubmitAnswer(r.Context(), req.Text)
	s.metrics.Turns.WithLabelValues(turnOutcome(err)).Inc()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.metrics.ScoreDeltas.Observe(float64(turn.Delta))
	respondJSON(w, http.StatusOK, turnResponse{Turn: turn, Session: entry.Controller.View()})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.sessions.Touch(entry.ID)

	turn, err := entry.Controller.Restart(r.Context())
	s.metrics.Turns.WithLabelValues(turnOutcome(err)).Inc()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.metrics.SessionEvents.WithLabelValues("restarted").Inc()
	respondJSON(w, http.StatusOK, turnResponse{Turn: turn, Session: entry.Controller.View()})
}

type finalizeResponse struct {
	SubmissionID string            `json:"submission_id"`
	Session      tutor.SessionView `json:"session"`
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.sessions.Touch(entry.ID)

	id, err := entry.Controller.Finalize(r.Context())
	if err != nil {
		if errors.Is(err, tutor.ErrSinkUnavailable) {
			s.metrics.Submissions.WithLabelValues("failed").Inc()
		}
		respondDomainError(w, err)
		return
	}
	s.metrics.Submissions.WithLabelValues("saved").Inc()
	s.metrics.SessionEvents.WithLabelValues("finalized").Inc()
	respondJSON(w, http.StatusOK, finalizeResponse{
		SubmissionID: id,
		Session:      entry.Controller.View(),
	})
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	s.sessions.Touch(entry.ID)

	if err := entry.Controller.Continue(); err != nil {
		respondDomainError(w, err)
		return
	}
	s.metrics.SessionEvents.WithLabelValues("continued").Inc()
	respondJSON(w, http.StatusOK, sessionResponse{
		SessionID: entry.ID,
		ContextID: entry.ContextID,
		Session:   entry.Controller.View(),
	})
}
