package http

import (
	"log/slog"
	"net/http"

	applog "fintrack/internal/log"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.authenticated(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	username := r.Form.Get("username")
	password := r.Form.Get("password")

	if _, err := s.auth.Register(r.Context(), username, password); err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authenticated(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	id, err := s.auth.Authenticate(r.Context(), r.Form.Get("username"), r.Form.Get("password"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	token := s.sessions.Create(id)
	s.setSessionCookie(w, token, 0)

	slog.InfoContext(r.Context(), "User logged in", applog.FieldUserID, id)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Destroy(s.sessionToken(r))
	s.setSessionCookie(w, "", -1)

	slog.InfoContext(r.Context(), "User logged out", applog.FieldUserID, userID(r.Context()))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
