package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/mapper"
	"github.com/erazemk/armory/internal/model"
)

const firearmInclude = "customers,loans,storage"

// FirearmQuery filters the firearm list. A nil BookedOut lists all firearms.
type FirearmQuery struct {
	BookedOut *bool
	Search    string
}

// ListFirearms returns firearms with their owners, loans and storage.
func (g *Gateway) ListFirearms(ctx context.Context, q FirearmQuery) ([]model.Firearm, error) {
	v := url.Values{
		"include": {firearmInclude},
		"search":  {strings.TrimSpace(q.Search)},
	}
	if q.BookedOut != nil {
		v.Set("booked_out", strconv.FormatBool(*q.BookedOut))
	}
	rows, err := getList[mapper.FirearmRow](ctx, g.client, withQuery("/firearms", v))
	if err != nil {
		return nil, fmt.Errorf("listing firearms: %w", err)
	}
	return mapFirearms(rows), nil
}

// SearchFirearms finds firearms matching term. An empty term matches nothing.
func (g *Gateway) SearchFirearms(ctx context.Context, term string) ([]model.Firearm, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.Firearm{}, nil
	}
	return g.ListFirearms(ctx, FirearmQuery{Search: term})
}

// GetFirearm returns a single firearm with its relations.
func (g *Gateway) GetFirearm(ctx context.Context, id string) (model.Firearm, error) {
	row, err := g.firearmRow(ctx, id, firearmInclude)
	if err != nil {
		return model.Firearm{}, err
	}
	return mapper.MapFirearm(row), nil
}

func (g *Gateway) firearmRow(ctx context.Context, id, include string) (mapper.FirearmRow, error) {
	if err := requireID("firearm", id); err != nil {
		return mapper.FirearmRow{}, err
	}
	row, err := backend.Get[mapper.FirearmRow](ctx, g.client, "/firearms/"+escape(id)+"?include="+include)
	if err != nil {
		return mapper.FirearmRow{}, fmt.Errorf("getting firearm: %w", err)
	}
	return row, nil
}

func mapFirearms(rows []mapper.FirearmRow) []model.Firearm {
	out := make([]model.Firearm, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapper.MapFirearm(r))
	}
	return out
}

type firearmCreate struct {
	model.FirearmInput
	BookedOut     bool    `json:"booked_out"`
	BookedOutDate *string `json:"booked_out_date"`
}

// CreateFirearm registers a firearm, optionally linked to a customer and loan.
func (g *Gateway) CreateFirearm(ctx context.Context, in model.FirearmInput) (string, error) {
	if strings.TrimSpace(in.MakeModel) == "" {
		return "", errors.New("make and model required")
	}
	out, err := backend.Post[created](ctx, g.client, "/firearms", firearmCreate{FirearmInput: in})
	if err != nil {
		return "", fmt.Errorf("creating firearm: %w", err)
	}
	return string(out.ID), nil
}

// UpdateFirearm changes a firearm's descriptive fields.
func (g *Gateway) UpdateFirearm(ctx context.Context, id string, in model.FirearmInput) error {
	if err := requireID("firearm", id); err != nil {
		return err
	}
	body := map[string]any{
		"make_model":    in.MakeModel,
		"stock_number":  in.StockNumber,
		"serial_number": in.SerialNumber,
	}
	if _, err := backend.Put[any](ctx, g.client, "/firearms/"+escape(id), body); err != nil {
		return fmt.Errorf("updating firearm: %w", err)
	}
	return nil
}

// DeleteFirearm removes a firearm.
func (g *Gateway) DeleteFirearm(ctx context.Context, id string) error {
	if err := requireID("firearm", id); err != nil {
		return err
	}
	if _, err := backend.Delete[any](ctx, g.client, "/firearms/"+escape(id), nil); err != nil {
		return fmt.Errorf("deleting firearm: %w", err)
	}
	return nil
}

// BookOutFirearm marks a firearm as handed over to its owner under an invoice.
func (g *Gateway) BookOutFirearm(ctx context.Context, id, invoiceNumber string) (model.Firearm, error) {
	if err := requireID("firearm", id); err != nil {
		return model.Firearm{}, err
	}
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return model.Firearm{}, errors.New("invoice number required")
	}
	body := map[string]any{
		"booked_out":      true,
		"booked_out_date": g.now().UTC().Format(time.RFC3339),
		"invoice_number":  invoiceNumber,
	}
	return g.putFirearm(ctx, id, body, "booking out firearm")
}

// BookInFirearm returns a booked out firearm to the premises.
func (g *Gateway) BookInFirearm(ctx context.Context, id string) (model.Firearm, error) {
	if err := requireID("firearm", id); err != nil {
		return model.Firearm{}, err
	}
	body := map[string]any{
		"booked_out":      false,
		"booked_out_date": nil,
	}
	return g.putFirearm(ctx, id, body, "booking in firearm")
}

func (g *Gateway) putFirearm(ctx context.Context, id string, body map[string]any, action string) (model.Firearm, error) {
	r := g.client.Do(ctx, http.MethodPut, "/firearms/"+escape(id), body)
	if err := r.Err(); err != nil {
		return model.Firearm{}, fmt.Errorf("%s: %w", action, err)
	}
	if !r.HasData() {
		return g.GetFirearm(ctx, id)
	}
	var row mapper.FirearmRow
	if err := r.Decode(&row); err != nil {
		return model.Firearm{}, fmt.Errorf("%s: %w", action, err)
	}
	return mapper.MapFirearm(row), nil
}
