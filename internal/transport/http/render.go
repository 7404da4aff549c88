package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"
	"quiz-outcome-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index", "quiz", "result",
	"admin_login", "admin", "admin_quiz_form",
	"admin_questions", "admin_question_form",
	"admin_results", "admin_result_form",
	"404", "500",
}

// view is the data handed to a page template.
type view map[string]any

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &renderer{pages: pages}, nil
}

// render executes a page with the session's pending flashes and admin state.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	if v == nil {
		v = view{}
	}
	id := sessionID(r)
	flashes, err := s.sessions.PopFlashes(r.Context(), id)
	if err != nil {
		s.log.WithError(err).Warn("pop flashes")
	}
	admin, _ := s.sessions.IsAdmin(r.Context(), id)
	v["Flashes"] = flashes
	v["Admin"] = admin

	tmpl, ok := s.pages.pages[page]
	if !ok {
		s.log.WithField("page", page).Error("unknown template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		s.log.WithError(err).WithField("page", page).Error("render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) flash(r *http.Request, category, message string) {
	if err := s.sessions.AddFlash(r.Context(), sessionID(r), category, message); err != nil {
		s.log.WithError(err).Warn("add flash")
	}
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}

// fail is the single place where application errors become responses.
// back is where validation and persistence failures return the user; when it is
// empty those failures render the error page instead.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	kind := domain.KindOf(err)
	entry := s.log.WithError(err).WithFields(logrus.Fields{
		"kind":   kind.String(),
		"method": r.Method,
		"path":   r.URL.Path,
	})

	switch {
	case kind == domain.KindNotFound:
		entry.Debug("not found")
		s.notFound(w, r)
	case kind == domain.KindValidation && back != "":
		entry.Debug("validation failed")
		s.flash(r, "error", domain.Message(err))
		s.redirect(w, r, back)
	case kind == domain.KindPersistence && back != "":
		entry.Error("persistence failure")
		s.flash(r, "error", "could not save changes, please try again")
		s.redirect(w, r, back)
	default:
		entry.Error("request failed")
		s.serverError(w, r)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "404", nil)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusInternalServerError, "500", nil)
}
