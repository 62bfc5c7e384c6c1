// Package store implements the remote contact store adapter: a JSON
// REST client with paged batch calls, an API version gate, and the
// event-sync hook.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Masterminds/semver/v3"

	"github.com/ldellis/rolo/internal/errs"
	"github.com/ldellis/rolo/internal/logging"
)

// Page size bounds for batch endpoints.
const (
	// DefaultPageSize is the number of contacts sent per batch request.
	DefaultPageSize = 100

	// MinPageSize is the smallest allowed page size.
	MinPageSize = 1

	// MaxPageSize is the largest allowed page size.
	MaxPageSize = 1000
)

// removePageConcurrency bounds parallel removal pages.
const removePageConcurrency = 4

// Client configuration errors.
var (
	ErrInvalidPageSize = errors.New("page size must be between 1 and 1000")

	// ErrVersionBelowMinimum is returned by CheckVersion when the
	// server speaks an API version older than the configured minimum.
	ErrVersionBelowMinimum = errors.New("server API version below minimum")
)

// Client is a JSON REST client for the contact store. BaseURL and
// HTTPClient are exported so tests can point the client at a local
// server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// PageSize is the number of contacts per batch request.
	PageSize int

	// MinVersion is the minimum server API version accepted by
	// CheckVersion, as a semver string. Empty disables the gate.
	MinVersion string
}

// NewClient creates a store client for the given base URL. A nil
// httpClient falls back to http.DefaultClient; callers wanting
// timeouts inject their own.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: httpClient,
		PageSize:   DefaultPageSize,
	}
}

// metaResponse is the GET /v1/meta payload.
type metaResponse struct {
	APIVersion string `json:"api_version"`
}

// CheckVersion fetches the server's API version and rejects servers
// below MinVersion. With no MinVersion configured it only verifies
// that the endpoint answers.
func (c *Client) CheckVersion(ctx context.Context) error {
	log := logging.FromContext(ctx)

	var meta metaResponse
	if err := c.getJSON(ctx, "/v1/meta", &meta); err != nil {
		return fmt.Errorf("fetching server meta: %w", err)
	}

	log.Debug().Ctx(ctx).
		Str("component", "store").
		Str("operation", "check_version").
		Str("server_version", meta.APIVersion).
		Str("min_version", c.MinVersion).
		Msg("server meta fetched")

	if c.MinVersion == "" {
		return nil
	}

	minimum, err := semver.NewVersion(c.MinVersion)
	if err != nil {
		return fmt.Errorf("parsing minimum version %q: %w", c.MinVersion, err)
	}
	server, err := semver.NewVersion(meta.APIVersion)
	if err != nil {
		return fmt.Errorf("parsing server version %q: %w", meta.APIVersion, err)
	}

	if server.LessThan(minimum) {
		return fmt.Errorf("%w: server %s, minimum %s", ErrVersionBelowMinimum, server, minimum)
	}
	return nil
}

// Sync acknowledges pending server-side events, letting the store
// reconcile changes made by this client. Implements the engine's
// event-sync hook.
func (c *Client) Sync(ctx context.Context) error {
	if err := c.postJSON(ctx, "/v1/events/ack", nil, nil); err != nil {
		return fmt.Errorf("acknowledging events: %w", err)
	}
	return nil
}

// getJSON performs a GET and decodes a JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

// postJSON performs a POST with a JSON body and decodes the JSON
// response into out. Both body and out may be nil.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

// putJSON performs a PUT with a JSON body and decodes the JSON
// response into out.
func (c *Client) putJSON(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out)
}

// deleteJSON performs a DELETE and decodes the JSON response into out
// when out is non-nil.
func (c *Client) deleteJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// do executes the request, maps error statuses onto application error
// kinds, and decodes a successful JSON body into out when out is
// non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// wireError is the error body the server sends with non-2xx statuses.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusError converts an error response into an application error.
// 409 always maps to the conflict kind so stale-write handling does
// not depend on the server filling the body. Other statuses use the
// body's code when present.
func statusError(status int, body []byte) error {
	var wire wireError
	_ = json.Unmarshal(body, &wire)

	message := wire.Message
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusConflict:
		return errs.Errorf(errs.ECONFLICT, "%s", message)
	case status == http.StatusNotFound:
		return errs.Errorf(errs.ENOTFOUND, "%s", message)
	case wire.Code != "":
		return errs.Errorf(wire.Code, "%s", message)
	default:
		return errs.Errorf(errs.EINTERNAL, "server returned status %d: %s", status, message)
	}
}
