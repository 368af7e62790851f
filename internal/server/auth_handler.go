package server

import (
	"net/http"
	"time"

	"github.com/jonathan/applicant-tracker/internal/logger"
	"github.com/jonathan/applicant-tracker/internal/server/middleware"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// handleLogin checks the credentials, then returns the user and a token that is also set as
// the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil || !s.passwords.VerifyPassword(req.Password, user.PasswordHash) {
		logger.FromContext(r.Context()).Info().Str("username", req.Username).Msg("login rejected")
		s.writeError(w, r, &ErrInvalidCredentials{})
		return
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.jwtService.TTL()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	s.jsonResponse(w, http.StatusOK, types.LoginResponse{User: user, Token: token})
}

// handleLogout clears the session cookie. Tokens are stateless, so a bearer token stays valid
// until it expires.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, r, &ErrUnauthenticated{})
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, r, &ErrNotFound{Entity: "user", ID: userID})
		return
	}

	s.jsonResponse(w, http.StatusOK, user)
}
