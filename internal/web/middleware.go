package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/gateway"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/session"
	"github.com/erazemk/armory/internal/validate"
)

// CookieAuthMiddleware resolves the session from the cookie and adds it to
// the request context. Requests without a live session go to the login page.
func CookieAuthMiddleware(m *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			sess, err := m.Resolve(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					slog.Error("failed to resolve session", "error", err)
				}
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}

// RequireRole rejects users below the given role.
func RequireRole(minimum string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !model.RoleAtLeast(claims(r).Role, minimum) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func claims(r *http.Request) *auth.Claims {
	if sess := session.FromContext(r.Context()); sess != nil {
		return sess.Claims
	}
	return &auth.Claims{}
}

func gw(r *http.Request) *gateway.Gateway {
	return session.FromContext(r.Context()).Gateway
}

// redirectOK redirects to path with a success flash message.
func redirectOK(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, withFlash(path, "ok", msg), http.StatusSeeOther)
}

// redirectErr redirects to path with an error flash message.
func redirectErr(w http.ResponseWriter, r *http.Request, path string, err error) {
	http.Redirect(w, r, withFlash(path, "err", errorMessage(err)), http.StatusSeeOther)
}

// bindForm parses the request form into dst. On failure it answers 400 and
// reports false.
func bindForm(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	if err := validate.Bind(r.PostForm, dst); err != nil {
		slog.Error("failed to bind form", "path", r.URL.Path, "error", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

func withFlash(path, key, msg string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, msg)
	u.RawQuery = q.Encode()
	return u.String()
}

// errorMessage turns an operation error into text fit for a flash banner.
func errorMessage(err error) string {
	var (
		be *backend.Error
		te *model.TransitionError
	)
	if errs, ok := validate.AsErrors(err); ok {
		return errs.Error()
	}
	switch {
	case errors.As(err, &te):
		return te.Error()
	case errors.As(err, &be) && be.Kind == backend.KindTransport:
		return "The server could not be reached. Please try again."
	case errors.As(err, &be):
		return be.Error()
	}
	return err.Error()
}
