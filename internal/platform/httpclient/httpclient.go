// Package httpclient es el cliente HTTP base que comparten los adapters
// que hablan con servicios externos (hoy: el directorio de cuentas).
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client envuelve *http.Client con una base URL y decode JSON.
type Client struct {
	hc      *http.Client
	baseURL string
}

// New valida la base URL (si viene) y arma el cliente.
// Base URL vacía => cliente no configurado; las llamadas fallan rápido.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL != "" {
		if _, err := url.ParseRequestURI(baseURL); err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		hc:      &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}, nil
}

// Configured indica si hay un upstream al que pegarle.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// StatusError representa una respuesta no-2xx del upstream.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status=%d", e.Status)
	}
	return fmt.Sprintf("upstream status=%d body=%s", e.Status, e.Body)
}

// GetJSON hace GET {baseURL}{path} y decodifica la respuesta en out.
// out == nil ignora el body. Status no-2xx retorna *StatusError.
func (c *Client) GetJSON(ctx context.Context, path string, headers map[string]string, out any) error {
	if !c.Configured() {
		return errors.New("httpclient: no base url")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("httpclient: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		if strings.TrimSpace(k) != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: unmarshal json: %w", err)
	}
	return nil
}
