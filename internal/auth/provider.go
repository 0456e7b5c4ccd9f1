package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/armory/internal/model"
)

// ErrInvalidCredentials is returned when the provider rejects a sign-in.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Grant is the result of a successful sign-in.
type Grant struct {
	AccessToken string
	ExpiresAt   time.Time
	Email       string
	Role        string
}

// Provider signs users in against the external session provider with the
// password grant.
type Provider struct {
	url    string
	apiKey string
	http   *http.Client
}

// NewProvider creates a provider client. baseURL is the provider's auth
// root, e.g. https://project.example.com/auth/v1.
func NewProvider(baseURL, apiKey string, hc *http.Client) *Provider {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Provider{url: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: hc}
}

type grantResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   int64  `json:"expires_at"`
	User        struct {
		Email       string         `json:"email"`
		AppMetadata map[string]any `json:"app_metadata"`
	} `json:"user"`
}

// SignIn exchanges an email and password for an access token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Grant, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encoding credentials: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating sign-in request: %w", err)
	}
	p.headers(req, "")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("signing in: provider returned HTTP %d", resp.StatusCode)
	}

	var g grantResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&g); err != nil {
		return nil, fmt.Errorf("decoding grant: %w", err)
	}
	if g.AccessToken == "" {
		return nil, errors.New("signing in: provider returned no access token")
	}

	expires := time.Now().Add(time.Hour)
	switch {
	case g.ExpiresAt > 0:
		expires = time.Unix(g.ExpiresAt, 0)
	case g.ExpiresIn > 0:
		expires = time.Now().Add(time.Duration(g.ExpiresIn) * time.Second)
	}

	if g.User.Email != "" {
		email = g.User.Email
	}
	return &Grant{
		AccessToken: g.AccessToken,
		ExpiresAt:   expires,
		Email:       email,
		Role:        roleOf(g.User.AppMetadata),
	}, nil
}

// UpdatePassword sets a new password for the user owning accessToken.
func (p *Provider) UpdatePassword(ctx context.Context, accessToken, password string) error {
	body, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return fmt.Errorf("encoding password: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.url+"/user", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating password request: %w", err)
	}
	p.headers(req, accessToken)

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("updating password: provider returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (p *Provider) headers(req *http.Request, token string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// roleOf reads the dashboard role from the server-controlled app metadata.
// User metadata is writable by the user and never consulted. Unknown roles
// fall back to staff.
func roleOf(appMeta map[string]any) string {
	s, _ := appMeta["role"].(string)
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range model.Roles {
		if s == r {
			return r
		}
	}
	return model.RoleStaff
}
