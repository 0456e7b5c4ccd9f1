package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/finance"
	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

const loanInclude = "customer,firearm"

// LoanQuery filters the loan list.
type LoanQuery struct {
	Page           int
	Limit          int
	Status         model.LoanStatus
	CustomerSearch string
}

// ListLoans returns one page of loans with their customer and firearm.
func (g *Gateway) ListLoans(ctx context.Context, q LoanQuery) (backend.Page[model.LoanData], error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	path := withQuery("/loans", url.Values{
		"page":            {itoa(q.Page)},
		"limit":           {itoa(q.Limit)},
		"status":          {string(q.Status)},
		"customer_search": {q.CustomerSearch},
		"include":         {loanInclude},
	})
	return g.loanPage(ctx, path, q.Page, q.Limit)
}

// FilterQuery selects loans by status and orders them by start date.
type FilterQuery struct {
	Status    model.LoanStatus
	Page      int
	Limit     int
	DateOrder string
}

// FilterLoans returns loans matching a status filter.
func (g *Gateway) FilterLoans(ctx context.Context, q FilterQuery) (backend.Page[model.LoanData], error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	order := strings.ToLower(q.DateOrder)
	if order != "asc" && order != "desc" {
		order = ""
	}
	path := withQuery("/filters/loan", url.Values{
		"status":     {string(q.Status)},
		"page":       {itoa(q.Page)},
		"limit":      {itoa(q.Limit)},
		"include":    {loanInclude},
		"date_order": {order},
	})
	return g.loanPage(ctx, path, q.Page, q.Limit)
}

func (g *Gateway) loanPage(ctx context.Context, path string, page, limit int) (backend.Page[model.LoanData], error) {
	rows, err := backend.GetPage[mapper.EnrichedLoan](ctx, g.client, path, page, limit)
	if err != nil {
		return backend.EmptyPage[model.LoanData](page, limit), fmt.Errorf("listing loans: %w", err)
	}
	return backend.Page[model.LoanData]{
		Data:       mapper.MapLoans(rows.Data, g.now()),
		Pagination: rows.Pagination,
	}, nil
}

// GetLoan returns a single loan.
func (g *Gateway) GetLoan(ctx context.Context, id string) (model.LoanData, error) {
	if err := requireID("loan", id); err != nil {
		return model.LoanData{}, err
	}
	row, err := backend.Get[mapper.EnrichedLoan](ctx, g.client, "/loans/"+escape(id)+"?include="+loanInclude)
	if err != nil {
		return model.LoanData{}, fmt.Errorf("getting loan: %w", err)
	}
	return mapper.MapLoan(row, g.now()), nil
}

// CreateLoan opens a new loan. New loans always start in Grace.
func (g *Gateway) CreateLoan(ctx context.Context, in model.CreateLoanInput) (string, error) {
	in.Status = model.StatusGrace
	out, err := backend.Post[created](ctx, g.client, "/loans", in)
	if err != nil {
		return "", fmt.Errorf("creating loan: %w", err)
	}
	return string(out.ID), nil
}

// UpdateLoanStatus moves a loan to a new status. Illegal transitions are
// rejected with a *model.TransitionError before anything is sent.
func (g *Gateway) UpdateLoanStatus(ctx context.Context, id string, from, to model.LoanStatus) (model.LoanStatus, error) {
	if err := requireID("loan", id); err != nil {
		return from, err
	}
	next, err := model.Transition(from, to)
	if err != nil {
		return from, err
	}
	if _, err := backend.Put[any](ctx, g.client, "/loans/"+escape(id), map[string]any{"status": next}); err != nil {
		return from, fmt.Errorf("updating loan status: %w", err)
	}
	return next, nil
}

// CancelLoan cancels a loan and returns how its deposit is settled.
func (g *Gateway) CancelLoan(ctx context.Context, loan model.LoanData) (finance.Settlement, error) {
	if err := requireID("loan", loan.LoanID); err != nil {
		return finance.Settlement{}, err
	}
	if _, err := model.Transition(loan.Status, model.StatusCancelled); err != nil {
		return finance.Settlement{}, err
	}
	settlement := g.rules.CancellationSettlement(loan.DepositAmount)
	body := map[string]any{
		"status":         model.StatusCancelled,
		"penalty_amount": settlement.Penalty,
	}
	if _, err := backend.Put[any](ctx, g.client, "/loans/"+escape(loan.LoanID), body); err != nil {
		return finance.Settlement{}, fmt.Errorf("cancelling loan: %w", err)
	}
	return settlement, nil
}

// AssessLoan evaluates the lifecycle rules against a loan's payment history.
func (g *Gateway) AssessLoan(ctx context.Context, loan model.LoanData) (finance.Assessment, error) {
	payments, err := g.LoanPayments(ctx, loan.LoanID)
	if err != nil {
		return finance.Assessment{Current: loan.Status, Suggested: loan.Status}, err
	}
	return g.rules.Assess(loan, paymentDates(payments), mapper.ParseDate(loan.StartDate), g.now()), nil
}

func paymentDates(payments []model.Payment) []time.Time {
	out := make([]time.Time, 0, len(payments))
	for _, p := range payments {
		switch {
		case p.Date != nil:
			out = append(out, *p.Date)
		case p.CreatedAt != nil:
			out = append(out, *p.CreatedAt)
		}
	}
	return out
}
