package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func okHandler(t *testing.T, wantUser uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := GetUserID(r.Context())
		if !ok {
			t.Error("handler ran without a user id in context")
		} else if got != wantUser {
			t.Errorf("context user %s, want %s", got, wantUser)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/progress", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp["error"] != "Authentication required" {
		t.Errorf("expected %q, got %q", "Authentication required", resp["error"])
	}
	if len(resp) != 1 {
		t.Errorf("expected flat single-key error body, got %v", resp)
	}
}

func TestMiddlewareRejectsTamperedToken(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	other := NewJWTAuth("different-secret")

	token, err := other.GenerateAccessToken(uuid.New(), "a@b.com")
	if err != nil {
		t.Fatal(err)
	}

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a token signed by another key")
	}))

	r := httptest.NewRequest("GET", "/api/progress", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestMiddlewareAcceptsBearerAndCookie(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	userID := uuid.New()
	token, err := auth.GenerateAccessToken(userID, "a@b.com")
	if err != nil {
		t.Fatal(err)
	}

	handler := auth.Middleware(okHandler(t, userID))

	r := httptest.NewRequest("GET", "/api/progress", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("bearer token rejected with %d", w.Code)
	}

	r = httptest.NewRequest("GET", "/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("session cookie rejected with %d", w.Code)
	}
}

func TestRequirePageRedirectsToLogin(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	handler := auth.RequirePage(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("page should not render without a session")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard", nil))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestOptionalPassesThroughEitherWay(t *testing.T) {
	auth := NewJWTAuth("test-secret")

	handler := auth.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsAuthenticated(r.Context()) {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/modules", nil))
	if w.Code != http.StatusOK {
		t.Errorf("anonymous request got %d", w.Code)
	}

	token, err := auth.GenerateAccessToken(uuid.New(), "a@b.com")
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest("GET", "/api/modules", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusAccepted {
		t.Errorf("authenticated request got %d", w.Code)
	}
}

func TestRedirectIfAuthed(t *testing.T) {
	auth := NewJWTAuth("test-secret")
	wrap := auth.RedirectIfAuthed("/dashboard")

	rendered := false
	handler := wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rendered = true
		w.WriteHeader(http.StatusOK)
	}))

	// Anonymous users see the login view
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/login", nil))
	if !rendered {
		t.Error("anonymous request should render the page")
	}

	// Signed-in users are sent to the app
	token, err := auth.GenerateAccessToken(uuid.New(), "a@b.com")
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest("GET", "/login", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %q", loc)
	}
}
