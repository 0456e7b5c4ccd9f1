package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

// searchConcurrency bounds the number of lookups in flight for one search.
const searchConcurrency = 8

// Criteria names the identifiers a search term may match. The first
// non-empty field, in declaration order, is the term.
type Criteria struct {
	FullName      string
	IDNumber      string
	QuoteNumber   string
	InvoiceNumber string
	SerialNumber  string
	StockNumber   string
}

// Term returns the trimmed search term.
func (c Criteria) Term() string {
	for _, s := range []string{c.FullName, c.IDNumber, c.QuoteNumber, c.InvoiceNumber, c.SerialNumber, c.StockNumber} {
		if s != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// pointer is a row of the unified search endpoint. It identifies at most
// one loan, firearm or customer.
type pointer struct {
	LoanID     mapper.Text `json:"loan_id"`
	FirearmID  mapper.Text `json:"firearms_id"`
	CustomerID mapper.Text `json:"customer_id"`
}

// lookups are the distinct ids to resolve, partitioned by kind.
type lookups struct {
	loans     []string
	firearms  []string
	customers []string
}

// partition sorts pointers by the most specific id they carry. Ids keep
// their first-seen order and appear once.
func partition(rows []pointer) lookups {
	var l lookups
	seen := make(map[string]bool)
	add := func(list *[]string, kind, id string) {
		if seen[kind+id] {
			return
		}
		seen[kind+id] = true
		*list = append(*list, id)
	}
	for _, r := range rows {
		switch {
		case r.LoanID != "":
			add(&l.loans, "l:", string(r.LoanID))
		case r.FirearmID != "":
			add(&l.firearms, "f:", string(r.FirearmID))
		case r.CustomerID != "":
			add(&l.customers, "c:", string(r.CustomerID))
		}
	}
	return l
}

// SearchLoans resolves a free-text term to loans. The unified search
// endpoint returns pointer rows which are resolved concurrently: loans are
// fetched directly, firearms with their nested loans, customers through a
// loan listing. A failed lookup contributes no loans; only a failure of the
// unified search itself is returned. Loans found more than once appear once.
func (g *Gateway) SearchLoans(ctx context.Context, c Criteria) ([]model.LoanData, error) {
	term := c.Term()
	if term == "" {
		return []model.LoanData{}, nil
	}

	ptrs, err := getList[pointer](ctx, g.client, "/search?q="+url.QueryEscape(term))
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	l := partition(ptrs)

	// Each lookup writes only its own slot.
	results := make([][]mapper.EnrichedLoan, len(l.loans)+len(l.firearms)+len(l.customers))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(searchConcurrency)
	slot := 0
	for _, id := range l.loans {
		i := slot
		eg.Go(func() error {
			results[i] = g.lookupLoan(egCtx, id)
			return nil
		})
		slot++
	}
	for _, id := range l.firearms {
		i := slot
		eg.Go(func() error {
			results[i] = g.lookupFirearmLoans(egCtx, id)
			return nil
		})
		slot++
	}
	for _, id := range l.customers {
		i := slot
		eg.Go(func() error {
			results[i] = g.lookupCustomerLoans(egCtx, id)
			return nil
		})
		slot++
	}
	_ = eg.Wait()

	return mapper.MapLoans(dedupeLoans(results), g.now()), nil
}

// dedupeLoans flattens the lookup results keeping one row per loan id. A
// later row replaces an earlier one but keeps its position. Rows without an
// id are dropped.
func dedupeLoans(results [][]mapper.EnrichedLoan) []mapper.EnrichedLoan {
	var out []mapper.EnrichedLoan
	pos := make(map[string]int)
	for _, rows := range results {
		for _, r := range rows {
			id := string(r.ID)
			if id == "" {
				continue
			}
			if i, ok := pos[id]; ok {
				out[i] = r
				continue
			}
			pos[id] = len(out)
			out = append(out, r)
		}
	}
	return out
}

func (g *Gateway) lookupLoan(ctx context.Context, id string) []mapper.EnrichedLoan {
	row, err := backend.Get[mapper.EnrichedLoan](ctx, g.client, "/loans/"+escape(id)+"?include="+loanInclude)
	if err != nil {
		slog.Warn("search loan lookup failed", "loan", id, "error", err)
		return nil
	}
	return []mapper.EnrichedLoan{row}
}

func (g *Gateway) lookupFirearmLoans(ctx context.Context, id string) []mapper.EnrichedLoan {
	f, err := g.firearmRow(ctx, id, "customers,loans")
	if err != nil {
		slog.Warn("search firearm lookup failed", "firearm", id, "error", err)
		return nil
	}
	out := make([]mapper.EnrichedLoan, 0, len(f.Loans))
	for _, ln := range f.Loans {
		out = append(out, mapper.LoanFromFirearm(f.FirearmRef, ln))
	}
	return out
}

func (g *Gateway) lookupCustomerLoans(ctx context.Context, id string) []mapper.EnrichedLoan {
	path := withQuery("/loans", url.Values{
		"include":         {loanInclude},
		"customer_search": {id},
	})
	rows, err := getList[mapper.EnrichedLoan](ctx, g.client, path)
	if err != nil {
		slog.Warn("search customer lookup failed", "customer", id, "error", err)
		return nil
	}
	return rows
}

// SearchClients finds clients by name or id number.
func (g *Gateway) SearchClients(ctx context.Context, c Criteria) ([]model.ClientData, error) {
	term := c.Term()
	if term == "" {
		return []model.ClientData{}, nil
	}
	page, err := g.ListClients(ctx, ClientQuery{Page: 1, Limit: DefaultClientLimit, Search: term})
	if err != nil {
		return nil, fmt.Errorf("searching clients: %w", err)
	}
	return page.Data, nil
}
