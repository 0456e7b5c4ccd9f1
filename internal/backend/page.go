package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Pagination describes one page of a list result.
//
// When the backend returns a bare array the total is unknown. The values are
// then an estimate: a full page implies at least one more page exists.
// Estimated is set so callers never treat such totals as authoritative.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	Estimated  bool `json:"estimated"`
}

// HasNext reports whether a following page may exist.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether a preceding page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// Page is a list result together with its pagination.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// EmptyPage returns a page with no items.
func EmptyPage[T any](page, limit int) Page[T] {
	page, limit = normalize(page, limit)
	return Page[T]{Data: []T{}, Pagination: Pagination{Page: page, Limit: limit}}
}

// EstimatePagination derives pagination for a bare array of n rows fetched
// as the given page.
func EstimatePagination(page, limit, n int) Pagination {
	page, limit = normalize(page, limit)
	p := Pagination{Page: page, Limit: limit, Estimated: true}
	if n == limit {
		p.TotalPages = page + 1
		p.Total = page*limit + 1
	} else {
		p.TotalPages = page
		p.Total = (page-1)*limit + n
	}
	return p
}

// DecodePage decodes a payload that is either a bare array or an object with
// the rows under "data" (or "items") and an optional "pagination" object.
func DecodePage[T any](raw json.RawMessage, page, limit int) (Page[T], error) {
	page, limit = normalize(page, limit)
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return EmptyPage[T](page, limit), nil
	}

	if raw[0] == '[' {
		var rows []T
		if err := json.Unmarshal(raw, &rows); err != nil {
			return Page[T]{}, &Error{Kind: KindDecode, Message: fmt.Sprintf("decoding list: %v", err), Err: err}
		}
		if rows == nil {
			rows = []T{}
		}
		return Page[T]{Data: rows, Pagination: EstimatePagination(page, limit, len(rows))}, nil
	}

	var wrapped struct {
		Data       []T         `json:"data"`
		Items      []T         `json:"items"`
		Pagination *Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return Page[T]{}, &Error{Kind: KindDecode, Message: fmt.Sprintf("decoding page: %v", err), Err: err}
	}

	rows := wrapped.Data
	if rows == nil {
		rows = wrapped.Items
	}
	if rows == nil {
		rows = []T{}
	}

	if wrapped.Pagination != nil {
		p := *wrapped.Pagination
		p.Estimated = false
		if p.Page == 0 {
			p.Page = page
		}
		if p.Limit == 0 {
			p.Limit = limit
		}
		if p.TotalPages == 0 && p.Total > 0 {
			p.TotalPages = (p.Total + p.Limit - 1) / p.Limit
		}
		return Page[T]{Data: rows, Pagination: p}, nil
	}

	return Page[T]{
		Data: rows,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      len(rows),
			TotalPages: (len(rows) + limit - 1) / limit,
			Estimated:  true,
		},
	}, nil
}

// GetPage fetches path and decodes it as a page.
func GetPage[T any](ctx context.Context, c *Client, path string, page, limit int) (Page[T], error) {
	r := c.Do(ctx, http.MethodGet, path, nil)
	if err := r.Err(); err != nil {
		return EmptyPage[T](page, limit), err
	}
	return DecodePage[T](r.Data, page, limit)
}

func normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}
