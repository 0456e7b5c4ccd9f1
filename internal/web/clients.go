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

func clientPath(id string) string {
	return "/clients/" + url.PathEscape(id)
}

type clientsData struct {
	PageData
	Clients    []model.ClientData
	Pagination backend.Pagination
	Search     string
	Sort       string
	Form       validate.ClientForm
	Failed     bool
}

// ClientsPage handles GET /clients.
func (s *Server) ClientsPage(w http.ResponseWriter, r *http.Request) {
	s.renderClients(w, r, http.StatusOK, s.page(r, "Clients"), validate.ClientForm{})
}

func (s *Server) renderClients(w http.ResponseWriter, r *http.Request, status int, pd PageData, form validate.ClientForm) {
	q := r.URL.Query()
	page, err := gw(r).ListClients(r.Context(), gateway.ClientQuery{
		Page:       pageNum(r),
		Search:     q.Get("search"),
		SortCredit: q.Get("sort"),
	})
	if err != nil {
		slog.Error("failed to list clients", "error", err)
		if pd.Error == "" {
			pd.Error = errorMessage(err)
		}
	}

	s.Templates.RenderStatus(w, status, "clients.html", &clientsData{
		PageData:   pd,
		Clients:    page.Data,
		Pagination: page.Pagination,
		Search:     q.Get("search"),
		Sort:       q.Get("sort"),
		Form:       form,
		Failed:     err != nil,
	})
}

// ClientCreateSubmit handles POST /clients.
func (s *Server) ClientCreateSubmit(w http.ResponseWriter, r *http.Request) {
	var form validate.ClientForm
	if !bindForm(w, r, &form) {
		return
	}

	in, err := form.Input()
	if errs, ok := validate.AsErrors(err); ok {
		pd := s.page(r, "Clients")
		pd.Fields = errs
		pd.Error = "Please correct the highlighted fields."
		s.renderClients(w, r, http.StatusBadRequest, pd, form)
		return
	}

	id, err := gw(r).CreateClient(r.Context(), in)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		redirectErr(w, r, "/clients", err)
		return
	}

	slog.Info("client created", "user", claims(r).Email, "client", id, "name", in.FullName)
	if id == "" {
		redirectOK(w, r, "/clients", "Client created.")
		return
	}
	redirectOK(w, r, clientPath(id), "Client created.")
}

type clientDetailData struct {
	PageData
	Client model.ClientData
	Form   validate.ClientForm
	Loans  []model.LoanData
}

func formFromClient(c model.ClientData) validate.ClientForm {
	f := validate.ClientForm{
		FullName:    c.FullName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		IDNumber:    c.IDNumber,
	}
	if c.Address != nil {
		f.Street = c.Address.StreetName
		f.Town = c.Address.Town
		f.Province = c.Address.Province
		f.PostalCode = c.Address.PostalCode
		f.Country = c.Address.Country
	}
	return f
}

// ClientDetailPage handles GET /clients/{id}.
func (s *Server) ClientDetailPage(w http.ResponseWriter, r *http.Request) {
	client, err := gw(r).GetClient(r.Context(), r.PathValue("id"))
	if backend.IsNotFound(err) {
		http.Error(w, "client not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to get client", "client", r.PathValue("id"), "error", err)
		redirectErr(w, r, "/clients", err)
		return
	}
	s.renderClientDetail(w, r, http.StatusOK, s.page(r, client.FullName), client, formFromClient(client))
}

func (s *Server) renderClientDetail(w http.ResponseWriter, r *http.Request, status int, pd PageData, client model.ClientData, form validate.ClientForm) {
	loans, err := gw(r).ListLoans(r.Context(), gateway.LoanQuery{Page: 1, CustomerSearch: client.ID})
	if err != nil {
		slog.Warn("failed to list client loans", "client", client.ID, "error", err)
	}
	s.Templates.RenderStatus(w, status, "client_detail.html", &clientDetailData{
		PageData: pd,
		Client:   client,
		Form:     form,
		Loans:    loans.Data,
	})
}

// ClientUpdateSubmit handles POST /clients/{id}.
func (s *Server) ClientUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var form validate.ClientForm
	if !bindForm(w, r, &form) {
		return
	}

	in, err := form.Input()
	if errs, ok := validate.AsErrors(err); ok {
		pd := s.page(r, form.FullName)
		pd.Fields = errs
		pd.Error = "Please correct the highlighted fields."
		s.renderClientDetail(w, r, http.StatusBadRequest, pd, model.ClientData{ID: id, FullName: form.FullName}, form)
		return
	}

	if err := gw(r).UpdateClient(r.Context(), id, in); err != nil {
		slog.Error("failed to update client", "client", id, "error", err)
		redirectErr(w, r, clientPath(id), err)
		return
	}

	slog.Info("client updated", "user", claims(r).Email, "client", id)
	redirectOK(w, r, clientPath(id), "Client updated.")
}

// ClientCreditSubmit handles POST /clients/{id}/credit.
func (s *Server) ClientCreditSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var form validate.CreditForm
	if !bindForm(w, r, &form) {
		return
	}
	form.CustomerID = id

	in, err := form.Input()
	if err != nil {
		redirectErr(w, r, clientPath(id), err)
		return
	}
	res, err := gw(r).AddCreditPayment(r.Context(), in)
	if err != nil {
		slog.Error("failed to add credit", "client", id, "error", err)
		redirectErr(w, r, clientPath(id), err)
		return
	}

	slog.Info("credit added", "user", claims(r).Email, "client", id, "amount", in.Amount.String(), "type", in.Type)
	msg := "Credit of " + money(in.Amount) + " added."
	if !res.NewCreditBalance.IsZero() {
		msg += " New balance " + money(res.NewCreditBalance) + "."
	}
	redirectOK(w, r, clientPath(id), msg)
}
