package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/common"
)

func (s *Server) handleRegistration(w http.ResponseWriter, r *http.Request) {
	var form registrationForm
	if err := s.decodeForm(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}

	account, err := s.accounts.Register(r.Context(), form.Username, form.Email, form.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRegistration(account))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := s.decodeForm(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.accounts.IssueToken(r.Context(), form.Username, form.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: token, TokenType: "bearer"})
}

// handleWebLogin is the browser flow: the token travels in an HttpOnly cookie.
func (s *Server) handleWebLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := s.decodeForm(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.accounts.IssueToken(r.Context(), form.Username, form.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
