package web

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/gateway"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/validate"
)

func firearmPath(id string) string {
	return "/firearms/" + url.PathEscape(id)
}

// FirearmsPage handles GET /firearms. The filter query is "in", "out" or
// empty for all firearms.
func (s *Server) FirearmsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := gateway.FirearmQuery{Search: q.Get("search")}
	switch q.Get("filter") {
	case "in":
		out := false
		query.BookedOut = &out
	case "out":
		out := true
		query.BookedOut = &out
	}

	pd := s.page(r, "Firearms")
	firearms, err := gw(r).ListFirearms(r.Context(), query)
	if err != nil {
		slog.Error("failed to list firearms", "error", err)
		pd.Error = errorMessage(err)
	}

	s.Templates.Render(w, "firearms.html", &struct {
		PageData
		Firearms []model.Firearm
		Search   string
		Filter   string
		Failed   bool
	}{
		PageData: pd,
		Firearms: firearms,
		Search:   q.Get("search"),
		Filter:   q.Get("filter"),
		Failed:   err != nil,
	})
}

// FirearmCreateSubmit handles POST /firearms.
func (s *Server) FirearmCreateSubmit(w http.ResponseWriter, r *http.Request) {
	var form validate.FirearmForm
	if !bindForm(w, r, &form) {
		return
	}

	in, err := form.Input()
	if err != nil {
		redirectErr(w, r, "/firearms", err)
		return
	}
	id, err := gw(r).CreateFirearm(r.Context(), in)
	if err != nil {
		slog.Error("failed to create firearm", "error", err)
		redirectErr(w, r, "/firearms", err)
		return
	}

	slog.Info("firearm created", "user", claims(r).Email, "firearm", id, "make_model", in.MakeModel)
	redirectOK(w, r, "/firearms", "Firearm registered.")
}

// FirearmDetailPage handles GET /firearms/{id}.
func (s *Server) FirearmDetailPage(w http.ResponseWriter, r *http.Request) {
	firearm, err := gw(r).GetFirearm(r.Context(), r.PathValue("id"))
	if backend.IsNotFound(err) {
		http.Error(w, "firearm not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to get firearm", "firearm", r.PathValue("id"), "error", err)
		redirectErr(w, r, "/firearms", err)
		return
	}

	s.Templates.Render(w, "firearm_detail.html", &struct {
		PageData
		Firearm model.Firearm
	}{
		PageData: s.page(r, firearm.MakeModel),
		Firearm:  firearm,
	})
}

// FirearmUpdateSubmit handles POST /firearms/{id}.
func (s *Server) FirearmUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var form validate.FirearmForm
	if !bindForm(w, r, &form) {
		return
	}

	in, err := form.Input()
	if err != nil {
		redirectErr(w, r, firearmPath(id), err)
		return
	}
	if err := gw(r).UpdateFirearm(r.Context(), id, in); err != nil {
		slog.Error("failed to update firearm", "firearm", id, "error", err)
		redirectErr(w, r, firearmPath(id), err)
		return
	}

	slog.Info("firearm updated", "user", claims(r).Email, "firearm", id)
	redirectOK(w, r, firearmPath(id), "Firearm updated.")
}

// FirearmDeleteSubmit handles POST /firearms/{id}/delete.
func (s *Server) FirearmDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := gw(r).DeleteFirearm(r.Context(), id); err != nil {
		slog.Error("failed to delete firearm", "firearm", id, "error", err)
		redirectErr(w, r, firearmPath(id), err)
		return
	}
	slog.Info("firearm deleted", "user", claims(r).Email, "firearm", id)
	redirectOK(w, r, "/firearms", "Firearm deleted.")
}

// FirearmBookOutSubmit handles POST /firearms/{id}/bookout.
func (s *Server) FirearmBookOutSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	invoice := r.FormValue("invoice_number")
	if _, err := gw(r).BookOutFirearm(r.Context(), id, invoice); err != nil {
		slog.Warn("failed to book out firearm", "firearm", id, "error", err)
		redirectErr(w, r, firearmPath(id), err)
		return
	}
	slog.Info("firearm booked out", "user", claims(r).Email, "firearm", id, "invoice", invoice)
	redirectOK(w, r, firearmPath(id), "Firearm booked out.")
}

// FirearmBookInSubmit handles POST /firearms/{id}/bookin.
func (s *Server) FirearmBookInSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := gw(r).BookInFirearm(r.Context(), id); err != nil {
		slog.Warn("failed to book in firearm", "firearm", id, "error", err)
		redirectErr(w, r, firearmPath(id), err)
		return
	}
	slog.Info("firearm booked in", "user", claims(r).Email, "firearm", id)
	redirectOK(w, r, firearmPath(id), "Firearm booked in.")
}
