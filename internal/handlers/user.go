package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"pathwise-backend/internal/middleware"
	"pathwise-backend/internal/models"
)

type userStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type preferenceStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Preferences, error)
	Upsert(ctx context.Context, p *models.Preferences) error
}

type UserHandler struct {
	users userStore
	prefs preferenceStore
}

func NewUserHandler(users userStore, prefs preferenceStore) *UserHandler {
	return &UserHandler{users: users, prefs: prefs}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("Authentication required"))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("User not found"))
			return
		}
		log.Printf("Failed to load user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to load profile"))
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("Authentication required"))
		return
	}

	var req struct {
		FullName  *string `json:"fullName"`
		AvatarURL *string `json:"avatarUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("User not found"))
			return
		}
		log.Printf("Failed to load user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update profile"))
		return
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			writeJSON(w, http.StatusBadRequest, errorResp("fullName must not be empty"))
			return
		}
		user.FullName = name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.users.Update(r.Context(), user); err != nil {
		log.Printf("Failed to update user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update profile"))
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("Authentication required"))
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	if len(req.NewPassword) < 8 {
		writeJSON(w, http.StatusBadRequest, errorResp("Password must be at least 8 characters"))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("User not found"))
			return
		}
		log.Printf("Failed to load user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to change password"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("Current password is incorrect"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to change password"))
		return
	}

	if err := h.users.UpdatePassword(r.Context(), userID, string(hash)); err != nil {
		log.Printf("Failed to update password for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to change password"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("Authentication required"))
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		log.Printf("Failed to delete user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to delete account"))
		return
	}

	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

func (h *UserHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("Authentication required"))
		return
	}

	prefs, err := h.prefs.Get(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to load preferences for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to load preferences"))
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}

func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("Authentication required"))
		return
	}

	var req models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	if msg := validatePreferences(&req); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResp(msg))
		return
	}

	req.UserID = userID
	if err := h.prefs.Upsert(r.Context(), &req); err != nil {
		log.Printf("Failed to update preferences for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update preferences"))
		return
	}

	prefs, err := h.prefs.Get(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to reload preferences for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to load preferences"))
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}

func validatePreferences(p *models.Preferences) string {
	switch p.Theme {
	case "light", "dark", "system":
	default:
		return "theme must be light, dark, or system"
	}
	if p.DailyGoalMinutes < 5 || p.DailyGoalMinutes > 600 {
		return "dailyGoalMinutes must be between 5 and 600"
	}
	if _, err := time.Parse("15:04", p.ReminderTime); err != nil {
		return "reminderTime must be in HH:MM format"
	}
	return ""
}
