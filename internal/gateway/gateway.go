// Package gateway implements the dashboard's operations against the backend.
// Every operation returns a view model and an error; failures coming from the
// backend are *backend.Error values.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/finance"
	"github.com/erazemk/armory/internal/mapper"
)

// Default page sizes.
const (
	DefaultLimit        = 20
	DefaultClientLimit  = 50
	DefaultPaymentLimit = 10
)

// Gateway runs operations for a single session.
type Gateway struct {
	client  *backend.Client
	rules   finance.Rules
	now     func() time.Time
	siteURL string
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock sets the reference clock used for derived dates.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithRules sets the lifecycle rules.
func WithRules(r finance.Rules) Option {
	return func(g *Gateway) { g.rules = r }
}

// WithSiteURL sets the public URL used in invitation links.
func WithSiteURL(u string) Option {
	return func(g *Gateway) { g.siteURL = u }
}

// New creates a gateway on top of an authenticated client.
func New(c *backend.Client, opts ...Option) *Gateway {
	g := &Gateway{
		client: c,
		rules:  finance.DefaultRules(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Now returns the gateway's reference time.
func (g *Gateway) Now() time.Time {
	return g.now()
}

// Rules returns the lifecycle rules in effect.
func (g *Gateway) Rules() finance.Rules {
	return g.rules
}

// withQuery appends q to path. Empty values are dropped.
func withQuery(path string, q url.Values) string {
	for k, vs := range q {
		if len(vs) == 0 || vs[0] == "" {
			delete(q, k)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func escape(id string) string {
	return url.PathEscape(id)
}

// getList fetches path and decodes its payload as a list, accepting a bare
// array or a {data}/{items} object.
func getList[T any](ctx context.Context, c *backend.Client, path string) ([]T, error) {
	r := c.Do(ctx, http.MethodGet, path, nil)
	if err := r.Err(); err != nil {
		return nil, err
	}
	page, err := backend.DecodePage[T](r.Data, 1, 1)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// getRaw fetches path and returns each list element undecoded.
func getRaw(ctx context.Context, c *backend.Client, path string) ([]json.RawMessage, error) {
	return getList[json.RawMessage](ctx, c, path)
}

func requireID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s id required", kind)
	}
	return nil
}

// created is the backend's reply to a create call.
type created struct {
	ID mapper.Text `json:"id"`
}
