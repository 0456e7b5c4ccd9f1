package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/gateway"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/validate"
)

// StoragePage handles GET /storage.
func (s *Server) StoragePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g := gw(r)
	pd := s.page(r, "Storage")

	page, err := g.ListStorage(r.Context(), gateway.StorageQuery{
		Page:        pageNum(r),
		Search:      q.Get("search"),
		StorageType: q.Get("type"),
		Sort:        q.Get("sort"),
	})
	if err != nil {
		slog.Error("failed to list storage", "error", err)
		pd.Error = errorMessage(err)
	}

	inStock := false
	firearms, ferr := g.ListFirearms(r.Context(), gateway.FirearmQuery{BookedOut: &inStock})
	if ferr != nil {
		slog.Warn("failed to list firearms for storage form", "error", ferr)
	}
	clients, cerr := g.ListClients(r.Context(), gateway.ClientQuery{Page: 1})
	if cerr != nil {
		slog.Warn("failed to list clients for storage form", "error", cerr)
	}

	s.Templates.Render(w, "storage.html", &struct {
		PageData
		Entries    []model.StorageEntry
		Pagination backend.Pagination
		Search     string
		Type       string
		Sort       string
		Firearms   []model.Firearm
		Clients    []model.ClientData
		Today      string
		Rate       string
		Failed     bool
	}{
		PageData:   pd,
		Entries:    page.Data,
		Pagination: page.Pagination,
		Search:     q.Get("search"),
		Type:       q.Get("type"),
		Sort:       q.Get("sort"),
		Firearms:   firearms,
		Clients:    clients.Data,
		Today:      g.Now().Format("2006-01-02"),
		Rate:       money(g.Rules().StorageDailyRate),
		Failed:     err != nil,
	})
}

// StorageCreateSubmit handles POST /storage.
func (s *Server) StorageCreateSubmit(w http.ResponseWriter, r *http.Request) {
	var form validate.StorageForm
	if !bindForm(w, r, &form) {
		return
	}

	in, err := form.Input()
	if err != nil {
		redirectErr(w, r, "/storage", err)
		return
	}
	entry, err := gw(r).CreateStorage(r.Context(), in)
	if err != nil {
		slog.Error("failed to create storage entry", "error", err)
		redirectErr(w, r, "/storage", err)
		return
	}

	slog.Info("firearm booked into storage", "user", claims(r).Email, "storage", entry.ID, "firearm", in.FirearmID)
	redirectOK(w, r, "/storage", "Firearm booked into storage.")
}

// StorageDeleteSubmit handles POST /storage/{id}/delete. An optional
// bookout_date records when the firearm left storage.
func (s *Server) StorageDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	bookout := r.FormValue("bookout_date")
	if err := gw(r).DeleteStorage(r.Context(), id, bookout); err != nil {
		slog.Error("failed to delete storage entry", "storage", id, "error", err)
		redirectErr(w, r, "/storage", err)
		return
	}
	slog.Info("storage entry removed", "user", claims(r).Email, "storage", id, "bookout_date", bookout)
	redirectOK(w, r, "/storage", "Storage entry removed.")
}
