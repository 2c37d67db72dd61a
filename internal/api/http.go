package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"walletsync/internal/core"
)

// HTTPClient talks JSON to the finance backend. Resources map to
// collection paths: /expenses, /income, /recurring.
type HTTPClient struct {
	base   *url.URL
	client *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("API base URL %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{
		base:   u,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) List(ctx context.Context, r core.Resource) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := c.do(ctx, http.MethodGet, c.resourceURL(r, ""), nil, &out); err != nil {
		return nil, fmt.Errorf("list %s: %w", r, err)
	}
	return out, nil
}

func (c *HTTPClient) Create(ctx context.Context, r core.Resource, tx core.Transaction) (core.Transaction, error) {
	// The server assigns identity; a local id must never leak into the
	// payload.
	tx.ID = ""
	tx.IsPending = false

	var out core.Transaction
	if err := c.do(ctx, http.MethodPost, c.resourceURL(r, ""), tx, &out); err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", r, err)
	}
	return out, nil
}

func (c *HTTPClient) Update(ctx context.Context, r core.Resource, id string, patch core.Patch) error {
	if err := c.do(ctx, http.MethodPatch, c.resourceURL(r, id), patch, nil); err != nil {
		return fmt.Errorf("update %s %s: %w", r, id, err)
	}
	return nil
}

func (c *HTTPClient) Delete(ctx context.Context, r core.Resource, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.resourceURL(r, id), nil, nil); err != nil {
		return fmt.Errorf("delete %s %s: %w", r, id, err)
	}
	return nil
}

func (c *HTTPClient) resourceURL(r core.Resource, id string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + string(r)
	if id != "" {
		u.Path += "/" + url.PathEscape(id)
	}
	return u.String()
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	} else {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	}

	slog.DebugContext(ctx, "API request completed",
		"method", method,
		"url", rawURL,
		"status", resp.StatusCode)

	return nil
}

func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
