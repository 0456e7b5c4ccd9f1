package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, StaticToken("tok"), opts...)
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/loans":             "/api/v1/loans",
		"loans":              "/api/v1/loans",
		"/api/v1/loans":      "/api/v1/loans",
		"/api/v1":            "/api/v1",
		"/api/v1?x=1":        "/api/v1?x=1",
		"/api/v10/loans":     "/api/v1/api/v10/loans",
		"/search?q=a%20b":    "/api/v1/search?q=a%20b",
		"/api/payments":      "/api/v1/api/payments",
		"/customers/payment": "/api/v1/customers/payment",
	}
	for in, want := range tests {
		require.Equal(t, want, NormalizePath(in), in)
	}
}

func TestDoSendsHeaders(t *testing.T) {
	var got *http.Request
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"success":true,"data":{"id":"l1"}}`))
	})

	v, err := Post[struct{ ID string }](context.Background(), c, "/loans", map[string]any{"quote_number": "Q1"})
	require.NoError(t, err)
	require.Equal(t, "l1", v.ID)

	require.Equal(t, http.MethodPost, got.Method)
	require.Equal(t, "/api/v1/loans", got.URL.Path)
	require.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	require.Equal(t, "no-store", got.Header.Get("Cache-Control"))
	require.Equal(t, "application/json", got.Header.Get("Content-Type"))
	require.Equal(t, "Q1", body["quote_number"])
}

func TestDoWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	r := New(srv.URL, nil).Do(context.Background(), http.MethodGet, "/loans", nil)
	require.True(t, r.OK)
	require.NoError(t, r.Err())
}

func TestTokenSourceReadPerRequest(t *testing.T) {
	seen := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("Authorization")
	}))
	defer srv.Close()

	n := 0
	c := New(srv.URL, TokenFunc(func(context.Context) (string, error) {
		n++
		if n == 1 {
			return "first", nil
		}
		return "second", nil
	}))
	c.Do(context.Background(), http.MethodGet, "/a", nil)
	c.Do(context.Background(), http.MethodGet, "/b", nil)
	require.Equal(t, "Bearer first", <-seen)
	require.Equal(t, "Bearer second", <-seen)
}

func TestResponseShapes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		ok      bool
		kind    Kind
		errMsg  string
		hasData bool
		data    string
	}{
		{name: "envelope", status: 200, body: `{"success":true,"data":[1,2]}`, ok: true, hasData: true, data: `[1,2]`},
		{name: "bare array", status: 200, body: `[{"id":"a"}]`, ok: true, hasData: true, data: `[{"id":"a"}]`},
		{name: "bare object", status: 200, body: `{"id":"a","full_name":"X"}`, ok: true, hasData: true, data: `{"id":"a","full_name":"X"}`},
		{name: "page object", status: 200, body: `{"data":[],"pagination":{"page":1}}`, ok: true, hasData: true, data: `{"data":[],"pagination":{"page":1}}`},
		{name: "data only", status: 200, body: `{"data":{"id":"a"}}`, ok: true, hasData: true, data: `{"id":"a"}`},
		{name: "empty body", status: 204, body: ``, ok: true},
		{name: "non json", status: 200, body: `OK`, ok: true},
		{name: "success without data", status: 200, body: `{"success":true}`, ok: true},
		{name: "application error", status: 200, body: `{"success":false,"error":"quote exists"}`, kind: KindApplication, errMsg: "quote exists"},
		{name: "application error default", status: 200, body: `{"success":false}`, kind: KindApplication, errMsg: "API request failed"},
		{name: "http error with message", status: 400, body: `{"error":"bad input"}`, kind: KindHTTP, errMsg: "bad input"},
		{name: "http error nested", status: 422, body: `{"error":{"message":"nope"}}`, kind: KindHTTP, errMsg: "nope"},
		{name: "http error fallback", status: 500, body: `<html>oops</html>`, kind: KindHTTP, errMsg: "HTTP 500"},
		{name: "http error empty", status: 404, body: ``, kind: KindHTTP, errMsg: "HTTP 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			r := c.Do(context.Background(), http.MethodGet, "/x", nil)
			require.Equal(t, tt.ok, r.OK)
			require.Equal(t, tt.status, r.Status)
			require.Equal(t, tt.hasData, r.HasData())
			if tt.hasData {
				require.JSONEq(t, tt.data, string(r.Data))
			}
			if tt.ok {
				require.True(t, r.Success)
				require.NoError(t, r.Err())
				return
			}
			require.False(t, r.Success)
			require.Equal(t, tt.errMsg, r.Error)
			var be *Error
			require.True(t, errors.As(r.Err(), &be))
			require.Equal(t, tt.kind, be.Kind)
			require.Equal(t, tt.errMsg, be.Error())
		})
	}
}

func TestTransportErrorNeverPanics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	r := New(url, StaticToken("x")).Do(context.Background(), http.MethodGet, "/loans", nil)
	require.False(t, r.OK)
	require.NotEmpty(t, r.Error)

	var be *Error
	require.True(t, errors.As(r.Err(), &be))
	require.Equal(t, KindTransport, be.Kind)
}

func TestTokenErrorIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	c = c.WithTokens(TokenFunc(func(context.Context) (string, error) {
		return "", errors.New("session expired")
	}))

	_, err := Get[[]int](context.Background(), c, "/loans")
	var be *Error
	require.True(t, errors.As(err, &be))
	require.Equal(t, KindTransport, be.Kind)
	require.Contains(t, be.Error(), "session expired")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	start := time.Now()
	r := c.Do(context.Background(), http.MethodGet, "/slow", nil)
	require.False(t, r.OK)
	require.Less(t, time.Since(start), 5*time.Second)

	var be *Error
	require.True(t, errors.As(r.Err(), &be))
	require.Equal(t, KindTransport, be.Kind)
	require.ErrorIs(t, r.Err(), context.DeadlineExceeded)
}

func TestDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":"not a list"}`))
	})
	_, err := Get[[]int](context.Background(), c, "/loans")

	var be *Error
	require.True(t, errors.As(err, &be))
	require.Equal(t, KindDecode, be.Kind)
}

func TestIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := Get[map[string]any](context.Background(), c, "/loans/missing")
	require.True(t, IsNotFound(err))
	require.False(t, IsNotFound(errors.New("other")))
}

func TestUpload(t *testing.T) {
	var (
		field, filename, ctype string
		content                []byte
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mt, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "multipart/form-data" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		part, err := mr.NextPart()
		if err != nil {
			t.Errorf("reading part: %v", err)
			return
		}
		field = part.FormName()
		filename = part.FileName()
		ctype = part.Header.Get("Content-Type")
		content, _ = io.ReadAll(part)
		w.Write([]byte(`{"success":true,"data":{"url":"https://cdn/logo.png"}}`))
	})

	r := c.Upload(context.Background(), "/admin/settings/upload", "file", "logo.png", "image/png", []byte("PNGDATA"))
	require.True(t, r.OK)

	var out struct{ URL string }
	require.NoError(t, r.Decode(&out))
	require.Equal(t, "https://cdn/logo.png", out.URL)
	require.Equal(t, "file", field)
	require.Equal(t, "logo.png", filename)
	require.Equal(t, "image/png", ctype)
	require.Equal(t, []byte("PNGDATA"), content)
}
