// Package directory resuelve usuarios contra el servicio de cuentas por HTTP.
package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"care-journal/internal/platform/httpclient"
	"care-journal/internal/ports/accounts"
)

var (
	ErrNotConfigured = errors.New("accounts directory not configured")
	ErrUserNotFound  = errors.New("user not found")
	ErrUpstream      = errors.New("accounts upstream error")
)

// Config del cliente del directorio de cuentas.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header de la API key. Vacío => "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http.Configured()
}

type userDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Client) UserByID(ctx context.Context, id string) (accounts.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accounts.User{}, ErrUserNotFound
	}
	return c.fetch(ctx, "/v1/users/"+url.PathEscape(id))
}

func (c *Client) UserByEmail(ctx context.Context, email string) (accounts.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return accounts.User{}, ErrUserNotFound
	}
	return c.fetch(ctx, "/v1/users?email="+url.QueryEscape(strings.ToLower(email)))
}

func (c *Client) fetch(ctx context.Context, path string) (accounts.User, error) {
	if !c.IsConfigured() {
		return accounts.User{}, ErrNotConfigured
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers[c.apiKeyHeader] = c.apiKey
	}

	var out userDTO
	err := c.http.GetJSON(ctx, path, headers, &out)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			return accounts.User{}, ErrUserNotFound
		}
		return accounts.User{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if strings.TrimSpace(out.ID) == "" {
		return accounts.User{}, ErrUserNotFound
	}

	return accounts.User{
		ID:    out.ID,
		Name:  out.Name,
		Email: out.Email,
	}, nil
}
