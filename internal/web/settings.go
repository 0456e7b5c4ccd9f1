package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/armory/internal/imaging"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/validate"
)

type settingsData struct {
	PageData
	Settings model.Settings
	MaxLogo  int
	Failed   bool
}

// SettingsPage handles GET /settings (admin only).
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(r, "Settings")
	settings, err := gw(r).GetSettings(r.Context())
	if err != nil {
		slog.Error("failed to get settings", "error", err)
		pd.Error = errorMessage(err)
	}
	s.Templates.Render(w, "settings.html", &settingsData{
		PageData: pd,
		Settings: settings,
		MaxLogo:  imaging.MaxBytes,
		Failed:   err != nil,
	})
}

// SettingsSubmit handles POST /settings (admin only).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	var form validate.SettingsForm
	if !bindForm(w, r, &form) {
		return
	}

	in, err := form.Input()
	if errs, ok := validate.AsErrors(err); ok {
		pd := s.page(r, "Settings")
		pd.Fields = errs
		pd.Error = "Please correct the highlighted fields."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "settings.html", &settingsData{
			PageData: pd,
			Settings: in,
			MaxLogo:  imaging.MaxBytes,
		})
		return
	}

	if _, err := gw(r).SaveSettings(r.Context(), in); err != nil {
		slog.Error("failed to save settings", "error", err)
		redirectErr(w, r, "/settings", err)
		return
	}

	slog.Info("settings saved", "user", claims(r).Email)
	redirectOK(w, r, "/settings", "Settings saved.")
}

// SettingsLogoSubmit handles POST /settings/logo (admin only). The logo is
// checked here before anything is sent to the backend.
func (s *Server) SettingsLogoSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxBytes+64<<10)
	if err := r.ParseMultipartForm(imaging.MaxBytes + 64<<10); err != nil {
		redirectErr(w, r, "/settings", imaging.ErrTooLarge)
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		redirectErr(w, r, "/settings", errors.New("choose a PNG file to upload"))
		return
	}
	defer file.Close()

	g := gw(r)
	logoURL, err := g.UploadLogo(r.Context(), header.Filename, file)
	if err != nil {
		slog.Warn("failed to upload logo", "file", header.Filename, "error", err)
		redirectErr(w, r, "/settings", err)
		return
	}
	slog.Info("logo uploaded", "user", claims(r).Email, "url", logoURL)

	// Point the company settings at the new logo.
	settings, err := g.GetSettings(r.Context())
	if err == nil {
		settings.CompanyLogo = logoURL
		_, err = g.SaveSettings(r.Context(), settings)
	}
	if err != nil {
		slog.Error("failed to save logo url", "error", err)
		redirectErr(w, r, "/settings", err)
		return
	}
	redirectOK(w, r, "/settings", "Logo uploaded.")
}
