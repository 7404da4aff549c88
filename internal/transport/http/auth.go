package http

import (
	"net/http"

	"quiz-outcome-service/internal/domain"
)

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if ok, _ := s.sessions.IsAdmin(r.Context(), sessionID(r)); ok {
		s.redirect(w, r, "/admin")
		return
	}
	s.render(w, r, http.StatusOK, "admin_login", nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, domain.Validation("could not read the login form"), "/admin/login")
		return
	}
	newID, err := s.sessions.Login(r.Context(), sessionID(r), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		s.log.WithField("remote", r.RemoteAddr).Info("failed admin login")
		s.fail(w, r, err, "/admin/login")
		return
	}
	r = s.rotateSession(w, r, newID)
	s.flash(r, "success", "Logged in.")
	s.redirect(w, r, "/admin")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context(), sessionID(r)); err != nil {
		s.fail(w, r, err, "")
		return
	}
	s.flash(r, "success", "Logged out.")
	s.redirect(w, r, "/")
}
