package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/armory/internal/finance"
	"github.com/erazemk/armory/internal/session"
)

// CalcHandler serves previews computed while a form is being filled in.
type CalcHandler struct{}

type loanAmountResponse struct {
	LoanAmount string `json:"loanAmount"`
}

type paidTimeResponse struct {
	Progress        int `json:"progress"`
	PaidMonths      int `json:"paidMonths"`
	PaidDays        int `json:"paidDays"`
	RemainingMonths int `json:"remainingMonths"`
	RemainingDays   int `json:"remainingDays"`
	TotalDays       int `json:"totalDays"`
}

// LoanAmount handles GET /api/calc/loan-amount?firearm_cost=&deposit_amount=.
// An unparseable cost yields an empty amount rather than an error.
func (h *CalcHandler) LoanAmount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jsonOK(w, loanAmountResponse{
		LoanAmount: finance.LoanAmount(q.Get("firearm_cost"), q.Get("deposit_amount")),
	})
}

// PaidTime handles GET /api/calc/paid-time?progress=&duration=.
func (h *CalcHandler) PaidTime(w http.ResponseWriter, r *http.Request) {
	progress, err := strconv.Atoi(r.URL.Query().Get("progress"))
	if err != nil || progress < 0 {
		jsonError(w, http.StatusBadRequest, "progress must be a non-negative integer")
		return
	}
	duration, err := strconv.Atoi(r.URL.Query().Get("duration"))
	if err != nil || duration < 1 {
		jsonError(w, http.StatusBadRequest, "duration must be a positive number of months")
		return
	}

	pt := finance.ProgressToPaidTime(progress, duration)
	months, days := pt.Remaining()
	jsonOK(w, paidTimeResponse{
		Progress:        progress,
		PaidMonths:      pt.Months,
		PaidDays:        pt.Days,
		RemainingMonths: months,
		RemainingDays:   days,
		TotalDays:       pt.TotalDays,
	})
}

// Trends handles GET /api/dashboard/trends.
func (h *CalcHandler) Trends(w http.ResponseWriter, r *http.Request) {
	g := session.FromContext(r.Context()).Gateway
	points, err := g.LoanTrends(r.Context())
	if err != nil {
		jsonFailure(w, err)
		return
	}
	jsonOK(w, points)
}
