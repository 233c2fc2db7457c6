package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"exam-scoring-service/internal/app"
	"exam-scoring-service/internal/domain"
)

const maxBodyBytes = 1 << 20

// Handler serves the JSON scoring endpoints.
type Handler struct {
	service *app.ScoringService
}

func NewHandler(service *app.ScoringService) *Handler {
	return &Handler{service: service}
}

type recalculateRequest struct {
	ExamID string `json:"examId"`
}

type errorResponse struct {
	Error             string `json:"error"`
	RecalculatedCount *int   `json:"recalculatedCount,omitempty"`
}

// SubmitExam handles POST /api/submit-exam.
func (h *Handler) SubmitExam(w http.ResponseWriter, r *http.Request) {
	var req app.SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	res, err := h.service.Submit(r.Context(), req)
	if err != nil {
		if !app.IsClientError(err) {
			log.Printf("submit exam %s for %s: %v", req.ExamID, req.StudentID, err)
		}
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RecalculateScores handles POST /api/recalculate-scores.
func (h *Handler) RecalculateScores(w http.ResponseWriter, r *http.Request) {
	var req recalculateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	res, err := h.service.Recalculate(r.Context(), req.ExamID, nil)
	if err != nil {
		log.Printf("recalculate exam %s: %v", req.ExamID, err)
		count := res.RecalculatedCount
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), RecalculatedCount: &count})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		RecalculatedCount int `json:"recalculatedCount"`
	}{res.RecalculatedCount})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrExamNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExamClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
