package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

// ClientQuery filters the client list. SortCredit is "asc", "desc" or empty.
type ClientQuery struct {
	Page       int
	Limit      int
	Search     string
	SortCredit string
}

// ListClients returns one page of clients with the number of loans each holds.
// Loan counts are best effort: if loans cannot be listed every count is zero.
func (g *Gateway) ListClients(ctx context.Context, q ClientQuery) (backend.Page[model.ClientData], error) {
	if q.Limit <= 0 {
		q.Limit = DefaultClientLimit
	}
	path := withQuery("/customers", url.Values{
		"page":    {itoa(q.Page)},
		"limit":   {itoa(q.Limit)},
		"search":  {q.Search},
		"include": {"address"},
	})

	var (
		customers backend.Page[mapper.CustomerRow]
		loans     []mapper.LoanRef
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		customers, err = backend.GetPage[mapper.CustomerRow](egCtx, g.client, path, q.Page, q.Limit)
		return err
	})
	eg.Go(func() error {
		var err error
		loans, err = getList[mapper.LoanRef](egCtx, g.client, "/loans")
		if err != nil {
			slog.Warn("counting client loans failed", "error", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return backend.EmptyPage[model.ClientData](q.Page, q.Limit), fmt.Errorf("listing clients: %w", err)
	}

	counts := mapper.CountLoans(loans)
	out := backend.Page[model.ClientData]{
		Data:       make([]model.ClientData, 0, len(customers.Data)),
		Pagination: customers.Pagination,
	}
	for _, c := range customers.Data {
		out.Data = append(out.Data, mapper.MapCustomer(c, counts))
	}
	sortByCredit(out.Data, q.SortCredit)
	return out, nil
}

func sortByCredit(clients []model.ClientData, order string) {
	switch order {
	case "asc":
		sort.SliceStable(clients, func(i, j int) bool {
			return clients[i].CreditAmount.LessThan(clients[j].CreditAmount)
		})
	case "desc":
		sort.SliceStable(clients, func(i, j int) bool {
			return clients[i].CreditAmount.GreaterThan(clients[j].CreditAmount)
		})
	}
}

// GetClient returns a single client with their address.
func (g *Gateway) GetClient(ctx context.Context, id string) (model.ClientData, error) {
	if err := requireID("client", id); err != nil {
		return model.ClientData{}, err
	}
	row, err := backend.Get[mapper.CustomerRow](ctx, g.client, "/customers/"+escape(id)+"?include=address")
	if err != nil {
		return model.ClientData{}, fmt.Errorf("getting client: %w", err)
	}
	return mapper.MapCustomer(row, nil), nil
}

// CreateClient creates a client and returns its id.
func (g *Gateway) CreateClient(ctx context.Context, in model.ClientInput) (string, error) {
	out, err := backend.Post[created](ctx, g.client, "/customers", in)
	if err != nil {
		return "", fmt.Errorf("creating client: %w", err)
	}
	return string(out.ID), nil
}

// UpdateClient updates a client's details and address.
func (g *Gateway) UpdateClient(ctx context.Context, id string, in model.ClientInput) error {
	if err := requireID("client", id); err != nil {
		return err
	}
	if _, err := backend.Put[any](ctx, g.client, "/customers/"+escape(id), in); err != nil {
		return fmt.Errorf("updating client: %w", err)
	}
	return nil
}
