package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

// RecordLoanPayment records a payment against a loan.
func (g *Gateway) RecordLoanPayment(ctx context.Context, in model.LoanPaymentInput) error {
	if err := requireID("loan", in.LoanID); err != nil {
		return err
	}
	if !in.Amount.IsPositive() {
		return errors.New("payment amount must be positive")
	}
	if _, err := backend.Post[any](ctx, g.client, "/loans/payment", in); err != nil {
		return fmt.Errorf("recording payment: %w", err)
	}
	return nil
}

// PaymentQuery selects a page of the payment history.
type PaymentQuery struct {
	Page           int
	Limit          int
	IncludeLoan    bool
	IncludeProfile bool
	DateOrder      string
}

// PaymentHistory returns one page of loan payments.
func (g *Gateway) PaymentHistory(ctx context.Context, q PaymentQuery) (backend.Page[model.Payment], error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPaymentLimit
	}
	var include []string
	if q.IncludeLoan {
		include = append(include, "loan")
	}
	if q.IncludeProfile {
		include = append(include, "profile")
	}
	order := strings.ToLower(q.DateOrder)
	if order != "asc" && order != "desc" {
		order = ""
	}
	path := withQuery("/loans/payment-history", url.Values{
		"page":       {itoa(q.Page)},
		"limit":      {itoa(q.Limit)},
		"include":    {strings.Join(include, ",")},
		"date_order": {order},
	})

	rows, err := backend.GetPage[mapper.PaymentRow](ctx, g.client, path, q.Page, q.Limit)
	if err != nil {
		return backend.EmptyPage[model.Payment](q.Page, q.Limit), fmt.Errorf("listing payments: %w", err)
	}
	out := backend.Page[model.Payment]{
		Data:       make([]model.Payment, 0, len(rows.Data)),
		Pagination: rows.Pagination,
	}
	for _, r := range rows.Data {
		out.Data = append(out.Data, mapper.MapPayment(r))
	}
	return out, nil
}

// loanPaymentScan is how many history rows are scanned for one loan's payments.
const loanPaymentScan = 1000

// LoanPayments returns the payments recorded against one loan.
func (g *Gateway) LoanPayments(ctx context.Context, loanID string) ([]model.Payment, error) {
	page, err := g.PaymentHistory(ctx, PaymentQuery{Page: 1, Limit: loanPaymentScan, IncludeLoan: true, DateOrder: "asc"})
	if err != nil {
		return nil, err
	}
	var out []model.Payment
	for _, p := range page.Data {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	return out, nil
}

// AddCreditPayment tops up a customer's credit balance.
func (g *Gateway) AddCreditPayment(ctx context.Context, in model.CreditPaymentInput) (model.CreditPaymentResult, error) {
	if err := requireID("customer", in.CustomerID); err != nil {
		return model.CreditPaymentResult{}, err
	}
	if !in.Amount.IsPositive() {
		return model.CreditPaymentResult{}, errors.New("credit amount must be positive")
	}
	res, err := backend.Post[model.CreditPaymentResult](ctx, g.client, "/customers/payment", in)
	if err != nil {
		return model.CreditPaymentResult{}, fmt.Errorf("adding credit: %w", err)
	}
	return res, nil
}
