package rest

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

	"github.com/google/uuid"

	"github.com/vilafalo/tableside/internal/adapter/logger"
)

const authHeader = "x-auth-token"

// TokenSource supplies the session token attached to every request.
type TokenSource interface {
	Token() string
}

// APIError is any non-2xx response. Message carries the server's
// message field when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// IsNotFound reports whether err is a 404; a targeted re-fetch that
// 404s means the entity was removed server-side.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports a rejected token (401/403).
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// Client is the shared REST transport: base URL, token attachment and
// the global unauthorized hook. Resource fetchers hang off it.
type Client struct {
	base           string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, log logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		log:    log,
	}
}

// OnUnauthorized registers the process-wide 401/403 handler. It runs
// once per rejected request, before the error is returned to the
// caller, regardless of which view made the call.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

type serverError struct {
	Message string `json:"message"`
	Error_  string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	requestID := uuid.NewString()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if token := c.tokens.Token(); token != "" {
		req.Header.Set(authHeader, token)
	}

	c.log.Debug("http_request", fmt.Sprintf("%s %s", method, path), requestID, map[string]interface{}{
		"method": method,
		"path":   path,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("http_failed", "Request failed", requestID, map[string]interface{}{
			"method": method,
			"path":   path,
		}, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("http_response", "Request completed", requestID, map[string]interface{}{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &APIError{Status: resp.StatusCode, Message: readServerMessage(resp.Body)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readServerMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readServerMessage(r io.Reader) string {
	var se serverError
	if err := json.NewDecoder(r).Decode(&se); err != nil {
		return ""
	}
	if se.Message != "" {
		return se.Message
	}
	return se.Error_
}
