package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ekaraca/tutorly/internal/oracle"
	"github.com/ekaraca/tutorly/internal/tutor"
)

// wsCommand is one client frame on the session websocket. Text carries the
// identity for "identity" and the answer for "message"; the other actions
// take no payload.
type wsCommand struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}

type wsTurnEvent struct {
	Type    string            `json:"type"`
	Turn    tutor.TurnResult  `json:"turn"`
	Session tutor.SessionView `json:"session"`
}

type wsStateEvent struct {
	Type    string            `json:"type"`
	Session tutor.SessionView `json:"session"`
}

type wsSubmittedEvent struct {
	Type         string            `json:"type"`
	SubmissionID string            `json:"submission_id"`
	Session      tutor.SessionView `json:"session"`
}

type wsErrorEvent struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// handleSessionWS runs the exchange loop over one websocket. Commands are
// dispatched strictly in arrival order; the controller already rejects
// anything that lands in the wrong state, so a slow oracle call simply makes
// the next command wait its turn.
func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	defer s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	writeEvent := func(v any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(v) == nil
	}

	if !writeEvent(wsStateEvent{Type: "state", Session: entry.Controller.View()}) {
		return
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))

		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			if !writeEvent(wsErrorEvent{Type: "error", Code: "invalid_command", Error: err.Error()}) {
				return
			}
			continue
		}
		s.sessions.Touch(entry.ID)

		if !s.dispatchWSCommand(r, entry, cmd, writeEvent) {
			return
		}
	}
}

func (s *Server) dispatchWSCommand(r *http.Request, entry *tutor.Entry, cmd wsCommand, writeEvent func(any) bool) bool {
	ctrl := entry.Controller
	switch cmd.Action {
	case "identity":
		turn, err := ctrl.SubmitIdentity(r.Context(), cmd.Text)
		s.metrics.Turns.WithLabelValues(turnOutcome(err)).Inc()
		if err != nil {
			return writeEvent(wsDomainError(err))
		}
		return writeEvent(wsTurnEvent{Type: "turn", Turn: turn, Session: ctrl.View()})
	case "start":
		turn, err := ctrl.Start(r.Context())
		s.metrics.Turns.WithLabelValues(turnOutcome(err)).Inc()
		if err != nil {
			return writeEvent(wsDomainError(err))
		}
		return writeEvent(wsTurnEvent{Type: "turn", Turn: turn, Session: ctrl.View()})
	case "message":
		turn, err := ctrl.SubmitAnswer(r.Context(), cmd.Text)
		s.metrics.Turns.WithLabelValues(turnOutcome(err)).Inc()
		if err != nil {
			return writeEvent(wsDomainError(err))
		}
		s.metrics.ScoreDeltas.Observe(float64(turn.Delta))
		return writeEvent(wsTurnEvent{Type: "turn", Turn: turn, Session: ctrl.View()})
	case "restart":
		turn, err := ctrl.Restart(r.Context())
		s.metrics.Turns.WithLabelValues(turnOutcome(err)).Inc()
		if err != nil {
			return writeEvent(wsDomainError(err))
		}
		s.metrics.SessionEvents.WithLabelValues("restarted").Inc()
		return writeEvent(wsTurnEvent{Type: "turn", Turn: turn, Session: ctrl.View()})
	case "finalize":
		id, err := ctrl.Finalize(r.Context())
		if err != nil {
			if wsIsSinkFailure(err) {
				s.metrics.Submissions.WithLabelValues("failed").Inc()
			}
			return writeEvent(wsDomainError(err))
		}
		s.metrics.Submissions.WithLabelValues("saved").Inc()
		s.metrics.SessionEvents.WithLabelValues("finalized").Inc()
		return writeEvent(wsSubmittedEvent{Type: "submitted", SubmissionID: id, Session: ctrl.View()})
	case "continue":
		if err := ctrl.Continue(); err != nil {
			return writeEvent(wsDomainError(err))
		}
		s.metrics.SessionEvents.WithLabelValues("continued").Inc()
		return writeEvent(wsStateEvent{Type: "state", Session: ctrl.View()})
	default:
		return writeEvent(wsErrorEvent{Type: "error", Code: "unknown_action", Error: "unknown action: " + cmd.Action})
	}
}

func wsDomainError(err error) wsErrorEvent {
	code := "internal"
	switch {
	case errors.Is(err, tutor.ErrValidation):
		code = "validation_failed"
	case errors.Is(err, tutor.ErrBusy):
		code = "session_busy"
	case errors.Is(err, tutor.ErrSuperseded):
		code = "superseded"
	case errors.Is(err, oracle.ErrUnavailable):
		code = "oracle_unavailable"
	case errors.Is(err, tutor.ErrMalformedResponse), errors.Is(err, tutor.ErrOutOfRangeScore):
		code = "oracle_unusable"
	case errors.Is(err, tutor.ErrSinkUnavailable):
		code = "submission_failed"
	}
	return wsErrorEvent{Type: "error", Code: code, Error: err.Error()}
}

func wsIsSinkFailure(err error) bool {
	return errors.Is(err, tutor.ErrSinkUnavailable)
}
