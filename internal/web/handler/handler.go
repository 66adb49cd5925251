package handler

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/inkwell/internal/web/apiclient"
	"github.com/dukerupert/inkwell/internal/web/session"
	"github.com/dukerupert/inkwell/internal/web/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{
	"home.html",
	"post.html",
	"sign_in.html",
	"sign_up.html",
	"user_posts.html",
	"post_form.html",
	"delete_post.html",
	"profile.html",
	"error.html",
}

// ParseTemplates builds one template set per page so each page can define
// its own "content" block.
func ParseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(view.Funcs()).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

type Handler struct {
	api       *apiclient.Client
	sessions  *session.Manager
	templates map[string]*template.Template
	apiURL    string
	logger    *slog.Logger
}

func New(api *apiclient.Client, sessions *session.Manager, tmpl map[string]*template.Template, apiURL string, logger *slog.Logger) *Handler {
	return &Handler{
		api:       api,
		sessions:  sessions,
		templates: tmpl,
		apiURL:    apiURL,
		logger:    logger,
	}
}

// data starts a template payload with the values every page uses.
func (h *Handler) data(r *http.Request) map[string]any {
	return map[string]any{
		"Session": session.FromContext(r.Context()),
		"APIURL":  h.apiURL,
		"Year":    time.Now().Year(),
		"Path":    r.URL.Path,
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := h.templates[name]
	if !ok {
		h.logger.Error("template not found", "name", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		h.logger.Error("template render", "name", name, "error", err)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	d := h.data(r)
	d["Title"] = "Not found"
	d["Message"] = "The page you are looking for does not exist."
	h.render(w, http.StatusNotFound, "error.html", d)
}

// NotFound renders the 404 page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r)
}

// fail handles an API error that the page cannot recover from. A rejected
// token ends the session.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch apiclient.CodeOf(err) {
	case apiclient.CodeUnauthenticated:
		h.sessions.Clear(w)
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	case apiclient.CodeNotFound, apiclient.CodeForbidden:
		h.notFound(w, r)
		return
	}

	h.logger.Error(op, "error", err)
	d := h.data(r)
	d["Title"] = "Something went wrong"
	d["Message"] = "Please try again in a moment."
	h.render(w, http.StatusInternalServerError, "error.html", d)
}

// token returns the API token of the signed-in user, or "".
func token(r *http.Request) string {
	if s := session.FromContext(r.Context()); s != nil {
		return s.AccessToken
	}
	return ""
}

func currentUser(r *http.Request) *session.User {
	if s := session.FromContext(r.Context()); s != nil {
		return &s.User
	}
	return nil
}

func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

var errBadID = errors.New("bad id")

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
