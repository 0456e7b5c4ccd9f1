package api

import (
	"net/http"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/session"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(sessions *session.Manager) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Sessions: sessions}
	searchHandler := &SearchHandler{}
	calcHandler := &CalcHandler{}
	staffHandler := &StaffHandler{}

	authMW := AuthMiddleware(sessions)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.SetPassword)))

	// Search (all roles).
	mux.Handle("GET /api/search/loans", authMW(http.HandlerFunc(searchHandler.Loans)))
	mux.Handle("GET /api/search/clients", authMW(http.HandlerFunc(searchHandler.Clients)))
	mux.Handle("GET /api/search/firearms", authMW(http.HandlerFunc(searchHandler.Firearms)))

	// Form previews and charts.
	mux.Handle("GET /api/calc/loan-amount", authMW(http.HandlerFunc(calcHandler.LoanAmount)))
	mux.Handle("GET /api/calc/paid-time", authMW(http.HandlerFunc(calcHandler.PaidTime)))
	mux.Handle("GET /api/dashboard/trends", authMW(http.HandlerFunc(calcHandler.Trends)))

	// Staff (admin only).
	mux.Handle("GET /api/staff", authMW(requireAdmin(http.HandlerFunc(staffHandler.List))))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})

	return mux
}
