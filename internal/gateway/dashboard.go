package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

// TrendMonths is the number of monthly buckets in the loan chart.
const TrendMonths = 12

const (
	latestPaymentLimit = 10
	trendScanLimit     = 1000
)

// dashboardRow is a loan as listed for the dashboard. Depending on the
// backend version the row is either flat or a full loan with its customer,
// so both readings are kept.
type dashboardRow struct {
	loan mapper.EnrichedLoan
	flat struct {
		FullName        mapper.Text   `json:"full_name"`
		Amount          mapper.Number `json:"amount"`
		RemainingAmount mapper.Number `json:"remaining_amount"`
		CreatedAt       mapper.Text   `json:"created_at"`
	}
}

func (r *dashboardRow) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &r.loan); err != nil {
		return err
	}
	return json.Unmarshal(b, &r.flat)
}

func (r *dashboardRow) fullName() string {
	if r.flat.FullName != "" {
		return string(r.flat.FullName)
	}
	if r.loan.Customer != nil {
		return string(r.loan.Customer.FullName)
	}
	return ""
}

func (g *Gateway) dashboardRows(ctx context.Context, path string) ([]dashboardRow, error) {
	raw, err := getRaw(ctx, g.client, path)
	if err != nil {
		return nil, err
	}
	rows := make([]dashboardRow, 0, len(raw))
	for _, m := range raw {
		var r dashboardRow
		if err := json.Unmarshal(m, &r); err != nil {
			slog.Warn("skipping malformed dashboard row", "path", path, "error", err)
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// LatestPayments returns the most recently paid loans.
func (g *Gateway) LatestPayments(ctx context.Context) ([]model.LatestPayment, error) {
	path := withQuery("/loans", url.Values{
		"status":  {string(model.StatusPaid)},
		"include": {"customer"},
		"limit":   {itoa(latestPaymentLimit)},
	})
	rows, err := g.dashboardRows(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("listing latest payments: %w", err)
	}
	out := make([]model.LatestPayment, 0, len(rows))
	for _, r := range rows {
		p := model.LatestPayment{
			FullName: r.fullName(),
			Amount:   r.flat.Amount.Or(r.loan.LoanAmount.Decimal()),
		}
		created := r.flat.CreatedAt
		if created == "" {
			created = r.loan.StartDate
		}
		if t := mapper.ParseDate(string(created)); !t.IsZero() {
			p.CreatedAt = &t
		}
		out = append(out, p)
	}
	return out, nil
}

// PendingLoans returns loans awaiting payment.
func (g *Gateway) PendingLoans(ctx context.Context) ([]model.PendingLoan, error) {
	path := withQuery("/loans", url.Values{
		"status":  {string(model.StatusPendingPayment)},
		"include": {"customer"},
	})
	rows, err := g.dashboardRows(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("listing pending loans: %w", err)
	}
	out := make([]model.PendingLoan, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.PendingLoan{
			FullName:        r.fullName(),
			Status:          model.StatusPendingPayment,
			RemainingAmount: r.flat.RemainingAmount.Or(r.loan.RemainAmount.Decimal()),
		})
	}
	return out, nil
}

// LoanTrends counts loans and sums their amounts per start month over the
// last TrendMonths months, oldest first. Loans outside the window or
// without a readable start date are ignored.
func (g *Gateway) LoanTrends(ctx context.Context) ([]model.LoanTrendPoint, error) {
	path := withQuery("/loans", url.Values{
		"include": {loanInclude},
		"limit":   {itoa(trendScanLimit)},
	})
	rows, err := getList[mapper.EnrichedLoan](ctx, g.client, path)
	if err != nil {
		return nil, fmt.Errorf("listing loan trends: %w", err)
	}
	return Trends(rows, g.now()), nil
}

// Trends buckets loans by start month for the TrendMonths months ending
// with now's month.
func Trends(rows []mapper.EnrichedLoan, now time.Time) []model.LoanTrendPoint {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	points := make([]model.LoanTrendPoint, TrendMonths)
	index := make(map[time.Time]int, TrendMonths)
	for i := range points {
		m := first.AddDate(0, i-(TrendMonths-1), 0)
		points[i] = model.LoanTrendPoint{Month: m, TotalLoanValue: decimal.Zero}
		index[m] = i
	}

	for _, r := range rows {
		start := mapper.ParseDate(string(r.StartDate))
		if start.IsZero() {
			continue
		}
		key := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		i, ok := index[key]
		if !ok {
			continue
		}
		points[i].LoanCount++
		points[i].TotalLoanValue = points[i].TotalLoanValue.Add(r.LoanAmount.Decimal())
	}
	return points
}
