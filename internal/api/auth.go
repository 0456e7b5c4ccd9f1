package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/session"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Sessions *session.Manager
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// MinPasswordLength is the shortest password accepted when setting one.
const MinPasswordLength = 8

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	token, expires, err := h.Sessions.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		slog.Warn("login failed", "user", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		slog.Error("login error", "user", req.Email, "error", err)
		jsonError(w, http.StatusBadGateway, "sign-in is unavailable")
		return
	}

	jsonOK(w, loginResponse{Token: token, ExpiresAt: expires})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := h.Sessions.SignOut(r.Context(), sess.Claims); err != nil {
		jsonFailure(w, err)
		return
	}
	jsonOK(w, nil)
}

// SetPassword handles PUT /api/auth/password.
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Password) < MinPasswordLength {
		jsonError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	sess := session.FromContext(r.Context())
	if err := h.Sessions.SetPassword(r.Context(), sess.Claims, req.Password); err != nil {
		jsonFailure(w, err)
		return
	}
	jsonOK(w, nil)
}
