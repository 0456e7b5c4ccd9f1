package web

import (
	"net/http"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/session"
	webembed "github.com/erazemk/armory/web"
)

// NewRouter creates the web page router with all page routes registered.
// secure marks the session cookie Secure.
func NewRouter(sessions *session.Manager, secure bool) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Sessions:  sessions,
		Templates: templates,
		Secure:    secure,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(sessions)
	page := func(h http.HandlerFunc) http.Handler { return cookieAuth(h) }
	manager := func(h http.HandlerFunc) http.Handler {
		return cookieAuth(RequireRole(model.RoleManager)(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return cookieAuth(RequireRole(model.RoleAdmin)(h))
	}

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Invited staff land here signed in.
	mux.Handle("GET /auth/set-password", page(s.SetPasswordPage))
	mux.Handle("POST /auth/set-password", page(s.SetPasswordSubmit))

	mux.Handle("GET /{$}", page(s.Dashboard))

	mux.Handle("GET /loans", page(s.LoansPage))
	mux.Handle("GET /loans/new", page(s.LoanNewPage))
	mux.Handle("POST /loans/new", page(s.LoanCreateSubmit))
	mux.Handle("GET /loans/{id}", page(s.LoanDetailPage))
	mux.Handle("POST /loans/{id}/payment", page(s.LoanPaymentSubmit))
	mux.Handle("POST /loans/{id}/status", manager(s.LoanStatusSubmit))
	mux.Handle("POST /loans/{id}/cancel", manager(s.LoanCancelSubmit))
	mux.Handle("POST /loans/{id}/assess", manager(s.LoanAssessSubmit))

	mux.Handle("GET /clients", page(s.ClientsPage))
	mux.Handle("POST /clients", page(s.ClientCreateSubmit))
	mux.Handle("GET /clients/{id}", page(s.ClientDetailPage))
	mux.Handle("POST /clients/{id}", page(s.ClientUpdateSubmit))
	mux.Handle("POST /clients/{id}/credit", page(s.ClientCreditSubmit))

	mux.Handle("GET /firearms", page(s.FirearmsPage))
	mux.Handle("POST /firearms", page(s.FirearmCreateSubmit))
	mux.Handle("GET /firearms/{id}", page(s.FirearmDetailPage))
	mux.Handle("POST /firearms/{id}", page(s.FirearmUpdateSubmit))
	mux.Handle("POST /firearms/{id}/delete", manager(s.FirearmDeleteSubmit))
	mux.Handle("POST /firearms/{id}/bookout", page(s.FirearmBookOutSubmit))
	mux.Handle("POST /firearms/{id}/bookin", page(s.FirearmBookInSubmit))

	mux.Handle("GET /storage", page(s.StoragePage))
	mux.Handle("POST /storage", page(s.StorageCreateSubmit))
	mux.Handle("POST /storage/{id}/delete", page(s.StorageDeleteSubmit))

	mux.Handle("GET /staff", admin(s.StaffPage))
	mux.Handle("POST /staff/invite", admin(s.StaffInviteSubmit))
	mux.Handle("POST /staff/{id}", admin(s.StaffUpdateSubmit))
	mux.Handle("POST /staff/{id}/block", admin(s.StaffBlockSubmit))
	mux.Handle("POST /staff/{id}/unblock", admin(s.StaffUnblockSubmit))

	mux.Handle("GET /settings", admin(s.SettingsPage))
	mux.Handle("POST /settings", admin(s.SettingsSubmit))
	mux.Handle("POST /settings/logo", admin(s.SettingsLogoSubmit))

	return mux, nil
}
