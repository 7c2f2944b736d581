package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"pathwise-backend/internal/middleware"
	"pathwise-backend/internal/models"
	"pathwise-backend/internal/progress"
)

type progressAPI interface {
	GetSummary(ctx context.Context, userID uuid.UUID) (*progress.Summary, error)
	CompleteLesson(ctx context.Context, userID, lessonID, moduleID uuid.UUID, timeSpentMinutes int) (*progress.Summary, error)
}

type ProgressHandler struct {
	progress progressAPI
}

func NewProgressHandler(progress progressAPI) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("Authentication required"))
		return
	}

	summary, err := h.progress.GetSummary(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to load progress for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to load progress"))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// CompleteLesson validates the payload before touching any backend so that
// malformed requests never reach storage.
func (h *ProgressHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("Authentication required"))
		return
	}

	var req models.CompleteLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	if req.LessonID == "" || req.ModuleID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("lessonId and moduleId are required"))
		return
	}

	lessonID, err := uuid.Parse(req.LessonID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid lesson ID"))
		return
	}
	moduleID, err := uuid.Parse(req.ModuleID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid module ID"))
		return
	}

	timeSpent := 0
	if req.TimeSpent != nil {
		if *req.TimeSpent < 0 {
			writeJSON(w, http.StatusBadRequest, errorResp("timeSpent must not be negative"))
			return
		}
		timeSpent = *req.TimeSpent
	}

	summary, err := h.progress.CompleteLesson(r.Context(), userID, lessonID, moduleID, timeSpent)
	if err != nil {
		log.Printf("Failed to complete lesson %s for %s: %v", lessonID, userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to record completion"))
		return
	}

	writeJSON(w, http.StatusOK, completeLessonResponse{Summary: summary, Success: true})
}

type completeLessonResponse struct {
	*progress.Summary
	Success bool `json:"success"`
}
