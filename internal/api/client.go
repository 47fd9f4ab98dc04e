// Package api is the transport adapter for the Brokemate backend. It attaches bearer
// credentials, speaks JSON and folds every failure into the common error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a single request when the caller does not configure one.
const DefaultTimeout = 30 * time.Second

// Config holds the settings for a Client.
type Config struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	BaseURL    string
	Timeout    time.Duration
}

// Client issues requests against the backend REST surface. It holds no session state.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", common.ErrMissingConfig)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q must be an absolute http(s) URL", common.ErrInvalidConfig, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     common.OrDefault(cfg.Logger),
	}, nil
}

// Result is a successful response.
type Result struct {
	Body   []byte
	Status int
}

// NoContent reports whether the backend answered without a body.
func (r Result) NoContent() bool {
	return r.Status == http.StatusNoContent || len(bytes.TrimSpace(r.Body)) == 0
}

// Decode unmarshals the body into v. It returns common.ErrNoContent for empty bodies.
func (r Result) Decode(v any) error {
	if r.NoContent() {
		return common.ErrNoContent
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Do sends a request to endpoint. body is encoded as JSON when non-nil and token, when
// non-empty, is sent as a bearer credential. Transport failures come back as
// *common.ConnectionError and non-2xx answers as *common.APIError.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, token string) (Result, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Result{}, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(endpoint), reader)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// An interrupt is the caller's doing; a deadline is a timeout like any other.
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return Result{}, ctxErr
		}
		c.logger.Debug("request failed", "method", method, "path", endpoint, "request_id", requestID, "error", err)
		return Result{}, &common.ConnectionError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &common.ConnectionError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("request completed",
		"method", method,
		"path", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := common.NewAPIError(resp.StatusCode, parseDetail(data))
		apiErr.Authenticated = token != ""
		return Result{}, apiErr
	}

	return Result{Status: resp.StatusCode, Body: data}, nil
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// parseDetail extracts the human readable message from an error payload. The backend
// sends {"detail": "..."} for application errors and {"detail": [{"msg": ...}]} for
// request validation failures. Anything else yields "".
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, item := range items {
		if item.Msg == "" {
			continue
		}
		if field := lastLoc(item.Loc); field != "" {
			msgs = append(msgs, field+": "+item.Msg)
		} else {
			msgs = append(msgs, item.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok {
		return s
	}
	return ""
}

// connectionFailure reports whether err came from the network rather than the backend.
func connectionFailure(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
