package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ekaraca/tutorly/internal/activity"
	"github.com/ekaraca/tutorly/internal/submission"
)

type shareLinkRequest struct {
	AgeGroup        string `json:"age_group"`
	Topic           string `json:"topic"`
	LearningOutcome string `json:"learning_outcome"`
}

type shareLinkResponse struct {
	Link string `json:"link"`
}

// handleShareLink turns an activity definition into a link an educator can
// hand out. Opening the link recreates the same activity for the learner.
func (s *Server) handleShareLink(w http.ResponseWriter, r *http.Request) {
	var req shareLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	cfg := activity.Config{
		AgeGroup:        req.AgeGroup,
		Topic:           req.Topic,
		LearningOutcome: req.LearningOutcome,
	}
	link, err := cfg.ShareLink(s.cfg.PublicBaseURL)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shareLinkResponse{Link: link})
}

// handleResolveLink parses share-link query parameters back into an activity
// definition, so a client opening /chat?age=...&topic=... can bootstrap the
// session create call from the link alone.
func (s *Server) handleResolveLink(w http.ResponseWriter, r *http.Request) {
	cfg, err := activity.FromQuery(r.URL.Query())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

type suggestionsRequest struct {
	Topic    string `json:"topic"`
	AgeGroup string `json:"age_group"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "topic is required")
		return
	}

	items, err := s.suggestions.Fetch(r.Context(), req.Topic, req.AgeGroup)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suggestionsResponse{Suggestions: items})
}

type submissionListResponse struct {
	Submissions []submission.Submission `json:"submissions"`
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	learner := strings.TrimSpace(r.URL.Query().Get("learner"))
	if learner == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "query parameter learner is required")
		return
	}
	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := s.submissions.ListByLearner(r.Context(), learner, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	if items == nil {
		items = []submission.Submission{}
	}
	respondJSON(w, http.StatusOK, submissionListResponse{Submissions: items})
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing submission id")
		return
	}

	sub, err := s.submissions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			respondError(w, http.StatusNotFound, "submission_not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sub)
}
