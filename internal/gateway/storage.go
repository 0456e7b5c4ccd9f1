package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

// StorageQuery filters the storage list. Sort is "asc", "desc" or empty.
type StorageQuery struct {
	Page        int
	Limit       int
	Search      string
	StorageType string
	Sort        string
}

// ListStorage returns one page of storage entries with their accrued charge.
func (g *Gateway) ListStorage(ctx context.Context, q StorageQuery) (backend.Page[model.StorageEntry], error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	sortOrder := strings.ToLower(q.Sort)
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = ""
	}
	path := withQuery("/storage", url.Values{
		"page":         {itoa(q.Page)},
		"limit":        {itoa(q.Limit)},
		"search":       {strings.TrimSpace(q.Search)},
		"storage_type": {strings.TrimSpace(q.StorageType)},
		"sort":         {sortOrder},
	})

	rows, err := backend.GetPage[mapper.StorageRow](ctx, g.client, path, q.Page, q.Limit)
	if err != nil {
		return backend.EmptyPage[model.StorageEntry](q.Page, q.Limit), fmt.Errorf("listing storage: %w", err)
	}
	out := backend.Page[model.StorageEntry]{
		Data:       make([]model.StorageEntry, 0, len(rows.Data)),
		Pagination: rows.Pagination,
	}
	for _, r := range rows.Data {
		out.Data = append(out.Data, g.storageEntry(r))
	}
	return out, nil
}

func (g *Gateway) storageEntry(r mapper.StorageRow) model.StorageEntry {
	e := mapper.MapStorage(r)
	if e.BookedInDate != nil {
		e.ChargeDays, e.Charge = g.rules.StorageCharge(*e.BookedInDate, e.BookedOutDate, g.now())
	}
	return e
}

// GetStorage returns a single storage entry.
func (g *Gateway) GetStorage(ctx context.Context, id string) (model.StorageEntry, error) {
	if err := requireID("storage", id); err != nil {
		return model.StorageEntry{}, err
	}
	row, err := backend.Get[mapper.StorageRow](ctx, g.client, "/storage/"+escape(id)+"?include=firearm,customer")
	if err != nil {
		return model.StorageEntry{}, fmt.Errorf("getting storage entry: %w", err)
	}
	return g.storageEntry(row), nil
}

// CreateStorage books a firearm into storage. The created entry is re-read
// so it carries its firearm and customer; if that fails the bare entry is
// returned.
func (g *Gateway) CreateStorage(ctx context.Context, in model.StorageInput) (model.StorageEntry, error) {
	if in.FirearmID == "" || in.CustomerID == "" {
		return model.StorageEntry{}, errors.New("firearm and customer required")
	}
	row, err := backend.Post[mapper.StorageRow](ctx, g.client, "/storage", in)
	if err != nil {
		return model.StorageEntry{}, fmt.Errorf("creating storage entry: %w", err)
	}
	entry := g.storageEntry(row)
	if entry.ID == "" {
		return entry, nil
	}
	full, err := g.GetStorage(ctx, entry.ID)
	if err != nil {
		slog.Warn("reloading storage entry failed", "id", entry.ID, "error", err)
		return entry, nil
	}
	return full, nil
}

// DeleteStorage books a firearm out of storage. bookoutDate is optional.
func (g *Gateway) DeleteStorage(ctx context.Context, id, bookoutDate string) error {
	if err := requireID("storage", id); err != nil {
		return err
	}
	var body any
	if bookoutDate != "" {
		body = map[string]string{"bookout_date": bookoutDate}
	}
	if _, err := backend.Delete[any](ctx, g.client, "/storage/"+escape(id), body); err != nil {
		return fmt.Errorf("deleting storage entry: %w", err)
	}
	return nil
}
