package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/session"
)

// MinPasswordLength is the shortest password accepted when setting one.
const MinPasswordLength = 8

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Sign in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		s.Templates.RenderStatus(w, http.StatusBadRequest, "login.html", &PageData{
			Title: "Sign in",
			Error: "Enter your email and password.",
		})
		return
	}

	token, expires, err := s.Sessions.SignIn(r.Context(), email, password)
	if err != nil {
		msg := "Sign-in is unavailable. Please try again."
		status := http.StatusBadGateway
		if errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Warn("login failed", "user", email, "remote", r.RemoteAddr)
			msg = "Invalid email or password."
			status = http.StatusUnauthorized
		} else {
			slog.Error("login error", "user", email, "error", err)
		}
		s.Templates.RenderStatus(w, status, "login.html", &PageData{Title: "Sign in", Error: msg})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(time.Until(expires).Seconds()),
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.Sessions.Secret, cookie.Value); err == nil {
			if err := s.Sessions.SignOut(r.Context(), claims); err != nil {
				slog.Error("failed to delete session", "error", err)
			}
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SetPasswordPage handles GET /auth/set-password.
func (s *Server) SetPasswordPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(r, "Set password")
	s.Templates.Render(w, "set_password.html", &pd)
}

// SetPasswordSubmit handles POST /auth/set-password.
func (s *Server) SetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	pd := s.page(r, "Set password")
	password := r.FormValue("password")

	switch {
	case len(password) < MinPasswordLength:
		pd.Error = "Password must be at least 8 characters."
	case password != r.FormValue("confirm"):
		pd.Error = "Passwords do not match."
	}
	if pd.Error != "" {
		s.Templates.RenderStatus(w, http.StatusBadRequest, "set_password.html", &pd)
		return
	}

	if err := s.Sessions.SetPassword(r.Context(), claims(r), password); err != nil {
		pd.Error = "Could not set the password. Please try again."
		slog.Error("failed to set password", "user", claims(r).Email, "error", err)
		s.Templates.RenderStatus(w, http.StatusBadGateway, "set_password.html", &pd)
		return
	}

	redirectOK(w, r, "/", "Password updated.")
}
