package api

import (
	"net/http"
	"net/url"

	"github.com/erazemk/armory/internal/gateway"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/session"
)

// SearchHandler serves the live search boxes of the dashboard.
type SearchHandler struct{}

func criteriaFrom(q url.Values) gateway.Criteria {
	c := gateway.Criteria{
		FullName:      q.Get("full_name"),
		IDNumber:      q.Get("id_number"),
		QuoteNumber:   q.Get("quote_number"),
		InvoiceNumber: q.Get("invoice_number"),
		SerialNumber:  q.Get("serial_number"),
		StockNumber:   q.Get("stock_number"),
	}
	if c.Term() == "" {
		c.FullName = q.Get("q")
	}
	return c
}

// Loans handles GET /api/search/loans.
func (h *SearchHandler) Loans(w http.ResponseWriter, r *http.Request) {
	g := session.FromContext(r.Context()).Gateway
	loans, err := g.SearchLoans(r.Context(), criteriaFrom(r.URL.Query()))
	if err != nil {
		jsonFailure(w, err)
		return
	}
	if loans == nil {
		loans = []model.LoanData{}
	}
	jsonOK(w, loans)
}

// Clients handles GET /api/search/clients.
func (h *SearchHandler) Clients(w http.ResponseWriter, r *http.Request) {
	g := session.FromContext(r.Context()).Gateway
	clients, err := g.SearchClients(r.Context(), criteriaFrom(r.URL.Query()))
	if err != nil {
		jsonFailure(w, err)
		return
	}
	if clients == nil {
		clients = []model.ClientData{}
	}
	jsonOK(w, clients)
}

// Firearms handles GET /api/search/firearms.
func (h *SearchHandler) Firearms(w http.ResponseWriter, r *http.Request) {
	g := session.FromContext(r.Context()).Gateway
	firearms, err := g.SearchFirearms(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		jsonFailure(w, err)
		return
	}
	jsonOK(w, firearms)
}
