package web

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/armory/internal/model"
)

// Dashboard handles GET /. The three panels load concurrently; a failed
// panel shows an error instead of an empty list.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	g := gw(r)
	var (
		latest  []model.LatestPayment
		pending []model.PendingLoan
		trends  []model.LoanTrendPoint

		latestErr, pendingErr, trendsErr error
	)

	var eg errgroup.Group
	eg.Go(func() error {
		latest, latestErr = g.LatestPayments(r.Context())
		return nil
	})
	eg.Go(func() error {
		pending, pendingErr = g.PendingLoans(r.Context())
		return nil
	})
	eg.Go(func() error {
		trends, trendsErr = g.LoanTrends(r.Context())
		return nil
	})
	eg.Wait()

	for name, err := range map[string]error{"latest payments": latestErr, "pending loans": pendingErr, "loan trends": trendsErr} {
		if err != nil {
			slog.Error("failed to load dashboard panel", "panel", name, "error", err)
		}
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		LatestPayments []model.LatestPayment
		PendingLoans   []model.PendingLoan
		Trends         []model.LoanTrendPoint
		LatestFailed   bool
		PendingFailed  bool
		TrendsFailed   bool
	}{
		PageData:       s.page(r, "Dashboard"),
		LatestPayments: latest,
		PendingLoans:   pending,
		Trends:         trends,
		LatestFailed:   latestErr != nil,
		PendingFailed:  pendingErr != nil,
		TrendsFailed:   trendsErr != nil,
	})
}
