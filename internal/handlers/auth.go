package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"pathwise-backend/internal/middleware"
	"pathwise-backend/internal/models"
	"pathwise-backend/internal/services"
)

type AuthHandler struct {
	auth        *services.AuthService
	frontendURL string
}

func NewAuthHandler(auth *services.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{auth: auth, frontendURL: frontendURL}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	user, tokens, code, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	setSessionCookie(w, tokens.AccessToken)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":         user,
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"expiresIn":    tokens.ExpiresIn,
		"authCode":     code,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	tokens, code, err := h.auth.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	setSessionCookie(w, tokens.AccessToken)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"expiresIn":    tokens.ExpiresIn,
		"authCode":     code,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body"))
		return
	}

	tokens, err := h.auth.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	setSessionCookie(w, tokens.AccessToken)
	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	json.NewDecoder(r.Body).Decode(&req)

	h.auth.SignOut(r.Context(), req.RefreshToken)
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Callback is the authorization-code redirect view. It runs unauthenticated
// by design: the caller is mid-flow. A valid single-use code becomes a
// session cookie and a redirect to the `next` target (default /dashboard);
// any failure redirects back to the login view with an error query param.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	next := r.URL.Query().Get("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/dashboard"
	}

	if code == "" {
		http.Redirect(w, r, "/login?error="+url.QueryEscape("missing_code"), http.StatusSeeOther)
		return
	}

	tokens, err := h.auth.ExchangeAuthCode(r.Context(), code)
	if err != nil {
		http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid_code"), http.StatusSeeOther)
		return
	}

	setSessionCookie(w, tokens.AccessToken)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func setSessionCookie(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   900,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) map[string]string {
	return map[string]string{"error": message}
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		msg := "Validation failed"
		for _, fieldMsg := range e.Fields {
			msg = fieldMsg
			break
		}
		writeJSON(w, http.StatusBadRequest, errorResp(msg))
	case *services.ConflictError:
		writeJSON(w, http.StatusConflict, errorResp(e.Message))
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp(e.Message))
	case *services.UnauthorizedError:
		writeJSON(w, http.StatusUnauthorized, errorResp(e.Message))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("An unexpected error occurred"))
	}
}
