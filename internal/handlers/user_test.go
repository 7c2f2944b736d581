package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"pathwise-backend/internal/middleware"
	"pathwise-backend/internal/models"
)

type stubUserStore struct {
	user            *models.User
	passwordUpdated bool
	deleted         bool
}

func (s *stubUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, pgx.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserStore) Update(ctx context.Context, user *models.User) error {
	s.user = user
	return nil
}

func (s *stubUserStore) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	s.passwordUpdated = true
	return nil
}

func (s *stubUserStore) Delete(ctx context.Context, userID uuid.UUID) error {
	s.deleted = true
	return nil
}

type stubPreferenceStore struct {
	prefs *models.Preferences
}

func (s *stubPreferenceStore) Get(ctx context.Context, userID uuid.UUID) (*models.Preferences, error) {
	if s.prefs == nil {
		return models.DefaultPreferences(userID), nil
	}
	return s.prefs, nil
}

func (s *stubPreferenceStore) Upsert(ctx context.Context, p *models.Preferences) error {
	s.prefs = p
	return nil
}

func requestAs(userID uuid.UUID, method, target, body string) *http.Request {
	r := authedRequest(method, target, body)
	return r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, userID))
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse-1"), 12)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	users := &stubUserStore{user: &models.User{ID: userID, PasswordHash: string(hash)}}
	h := NewUserHandler(users, &stubPreferenceStore{})

	body := `{"currentPassword":"wrong-guess","newPassword":"brand-new-pass1"}`
	w := httptest.NewRecorder()
	h.ChangePassword(w, requestAs(userID, http.MethodPut, "/api/user/password", body))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if users.passwordUpdated {
		t.Error("password should not change when the current one is wrong")
	}
}

func TestChangePasswordTooShort(t *testing.T) {
	userID := uuid.New()
	users := &stubUserStore{user: &models.User{ID: userID}}
	h := NewUserHandler(users, &stubPreferenceStore{})

	body := `{"currentPassword":"whatever","newPassword":"short"}`
	w := httptest.NewRecorder()
	h.ChangePassword(w, requestAs(userID, http.MethodPut, "/api/user/password", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if users.passwordUpdated {
		t.Error("password should not change on validation error")
	}
}

func TestChangePasswordSuccess(t *testing.T) {
	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse-1"), 12)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	users := &stubUserStore{user: &models.User{ID: userID, PasswordHash: string(hash)}}
	h := NewUserHandler(users, &stubPreferenceStore{})

	body := `{"currentPassword":"correct-horse-1","newPassword":"brand-new-pass1"}`
	w := httptest.NewRecorder()
	h.ChangePassword(w, requestAs(userID, http.MethodPut, "/api/user/password", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !users.passwordUpdated {
		t.Error("expected the stored hash to be replaced")
	}
}

func TestUpdatePreferencesValidation(t *testing.T) {
	userID := uuid.New()
	prefs := &stubPreferenceStore{}
	h := NewUserHandler(&stubUserStore{user: &models.User{ID: userID}}, prefs)

	tests := []struct {
		name string
		body string
	}{
		{"bad theme", `{"theme":"solarized","dailyGoalMinutes":30,"reminderTime":"18:00"}`},
		{"goal too small", `{"theme":"dark","dailyGoalMinutes":1,"reminderTime":"18:00"}`},
		{"bad reminder time", `{"theme":"dark","dailyGoalMinutes":30,"reminderTime":"6pm"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.UpdatePreferences(w, requestAs(userID, http.MethodPut, "/api/user/preferences", tt.body))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if prefs.prefs != nil {
				t.Error("invalid preferences should not be stored")
			}
		})
	}
}

func TestUpdatePreferencesRoundTrip(t *testing.T) {
	userID := uuid.New()
	prefs := &stubPreferenceStore{}
	h := NewUserHandler(&stubUserStore{user: &models.User{ID: userID}}, prefs)

	body := `{"theme":"dark","emailNotifications":false,"dailyGoalMinutes":45,"reminderTime":"07:30"}`
	w := httptest.NewRecorder()
	h.UpdatePreferences(w, requestAs(userID, http.MethodPut, "/api/user/preferences", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if prefs.prefs == nil || prefs.prefs.UserID != userID {
		t.Fatal("preferences were not stored against the session user")
	}
	if prefs.prefs.Theme != "dark" || prefs.prefs.DailyGoalMinutes != 45 {
		t.Errorf("stored preferences %+v do not match the request", prefs.prefs)
	}

	var resp models.Preferences
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.ReminderTime != "07:30" {
		t.Errorf("expected reminderTime 07:30, got %q", resp.ReminderTime)
	}
}

func TestGetPreferencesDefaults(t *testing.T) {
	userID := uuid.New()
	h := NewUserHandler(&stubUserStore{user: &models.User{ID: userID}}, &stubPreferenceStore{})

	w := httptest.NewRecorder()
	h.GetPreferences(w, requestAs(userID, http.MethodGet, "/api/user/preferences", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp models.Preferences
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Theme != "system" || !resp.EmailNotifications || resp.DailyGoalMinutes != 30 || resp.ReminderTime != "18:00" {
		t.Errorf("unexpected defaults: %+v", resp)
	}
}
