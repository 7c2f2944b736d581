package handlers

import (
	"html/template"
	"log"
	"net/http"

	"pathwise-backend/internal/middleware"
)

// PageHandler serves the server-rendered shells for the app. Each page is a
// thin frame; the client hydrates it with data from the /api routes.
type PageHandler struct {
	tmpl *template.Template
}

func NewPageHandler() *PageHandler {
	return &PageHandler{tmpl: template.Must(template.New("page").Parse(pageTemplate))}
}

type pageData struct {
	Title         string
	Active        string
	Authenticated bool
	Error         string
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	data.Authenticated = middleware.IsAuthenticated(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.Execute(w, data); err != nil {
		log.Printf("Failed to render %s page: %v", data.Active, err)
	}
}

// Page returns a handler for one of the protected app views.
func (h *PageHandler) Page(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, pageData{Title: title, Active: name})
	}
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageData{
		Title:  "Sign in",
		Active: "login",
		Error:  loginErrorMessage(r.URL.Query().Get("error")),
	})
}

func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageData{Title: "Create account", Active: "signup"})
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if middleware.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render(w, r, pageData{Title: "Pathwise", Active: "home"})
}

func loginErrorMessage(code string) string {
	switch code {
	case "":
		return ""
	case "missing_code":
		return "Your sign-in link was incomplete. Please sign in again."
	case "invalid_code":
		return "Your sign-in link has expired. Please sign in again."
	default:
		return "Something went wrong. Please sign in again."
	}
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} · Pathwise</title>
  <link rel="stylesheet" href="/static/app.css">
</head>
<body data-page="{{.Active}}" data-authenticated="{{.Authenticated}}">
  <header class="topbar">
    <a class="brand" href="/">Pathwise</a>
    {{if .Authenticated}}
    <input id="search" type="search" placeholder="Search modules and lessons" autocomplete="off">
    <nav>
      <a href="/dashboard">Dashboard</a>
      <a href="/modules">Modules</a>
      <a href="/progress">Progress</a>
      <a href="/settings">Settings</a>
    </nav>
    {{else}}
    <nav>
      <a href="/login">Sign in</a>
      <a href="/signup">Create account</a>
    </nav>
    {{end}}
  </header>
  <main id="app">
    {{if .Error}}<div class="alert" role="alert">{{.Error}}</div>{{end}}
  </main>
  <script src="/static/app.js"></script>
</body>
</html>
`
