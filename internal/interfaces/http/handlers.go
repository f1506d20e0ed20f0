package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/kurral/feedengine/internal/domain"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// VerificationRequest is the PUT /chirps/{id}/verification payload from
// the external verification provider.
type VerificationRequest struct {
	Claims     []domain.Claim     `json:"claims"`
	FactChecks []domain.FactCheck `json:"fact_checks"`
}

// StatusResponse is the fact-check status payload.
type StatusResponse struct {
	ChirpID string                 `json:"chirp_id"`
	Status  domain.FactCheckStatus `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now()})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	viewerID := mux.Vars(r)["viewerID"]
	feed, err := s.service.BuildFeed(r.Context(), viewerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handleChirpStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status, err := s.service.ChirpStatus(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{ChirpID: id, Status: status})
}

func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	status, err := s.service.ApplyVerification(r.Context(), id, req.Claims, req.FactChecks)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{ChirpID: id, Status: status})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	score, err := s.service.Score(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	suggestion, err := s.service.SuggestTuning(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

func (s *Server) handleAcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var suggestion domain.TuningSuggestion
	if err := json.NewDecoder(r.Body).Decode(&suggestion); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg, err := s.service.AcceptSuggestion(r.Context(), id, suggestion)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleEngagement(w http.ResponseWriter, r *http.Request) {
	var ev domain.EngagementEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if ev.ViewerID == "" || ev.ChirpID == "" {
		writeError(w, http.StatusBadRequest, errMissingFields)
		return
	}
	if err := s.service.IngestEngagement(r.Context(), ev); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	if err != nil && strings.Contains(err.Error(), "not found") {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
