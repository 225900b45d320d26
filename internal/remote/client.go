package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client is a thin HTTP client for the reminder backend REST API.
// It handles Bearer token authentication, JSON marshaling, and bounded
// exponential retry on 429 and 5xx responses.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries uint64
}

// NewClient creates a backend client. The baseURL should be the root
// URL of the reminder service; token is sent as a Bearer credential.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// Scope identifies the organizational sector and owner every call in a
// session carries. It is encoded as query parameters.
type Scope struct {
	Sector string
	Owner  string
}

func (s Scope) query() url.Values {
	q := url.Values{}
	if s.Sector != "" {
		q.Set("sector", s.Sector)
	}
	if s.Owner != "" {
		q.Set("owner", s.Owner)
	}
	return q
}

func (c *Client) get(ctx context.Context, path string, scope Scope, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, scope, nil, result)
}

func (c *Client) post(ctx context.Context, path string, scope Scope, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, scope, body, result)
}

func (c *Client) patch(ctx context.Context, path string, scope Scope, body, result interface{}) error {
	return c.do(ctx, http.MethodPatch, path, scope, body, result)
}

func (c *Client) delete(ctx context.Context, path string, scope Scope) error {
	return c.do(ctx, http.MethodDelete, path, scope, nil, nil)
}

// do builds the request, applies auth and scope parameters, and retries
// 429/5xx responses with exponential backoff. Other failures are
// permanent: 401 maps to *AuthError, 404 to ErrNotFound.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	scope Scope,
	body interface{},
	result interface{},
) error {
	u := c.baseURL + path
	if q := scope.query().Encode(); q != "" {
		u += "?" + q
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	attempt := func() error {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("executing request %s %s: %w", method, path, err))
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return backoff.Permanent(fmt.Errorf("reading response body: %w", readErr))
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests,
			resp.StatusCode >= 500:
			return fmt.Errorf(
				"retryable status %d on %s %s", resp.StatusCode, method, path,
			)
		case resp.StatusCode == http.StatusUnauthorized:
			return backoff.Permanent(&AuthError{
				Message: fmt.Sprintf("check your API token for %s", c.baseURL),
			})
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%s %s: %w", method, path, ErrNotFound))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			var apiErr errorResponse
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
				return backoff.Permanent(fmt.Errorf(
					"backend error (%d) on %s %s: %s",
					resp.StatusCode, method, path, apiErr.Message,
				))
			}
			return backoff.Permanent(fmt.Errorf(
				"unexpected status %d on %s %s: %s",
				resp.StatusCode, method, path, string(respBody),
			))
		}

		if result == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding response from %s: %w", path, err))
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)
	return backoff.Retry(attempt, bo)
}

// errorResponse is the backend's JSON error envelope.
type errorResponse struct {
	Message string `json:"message"`
}
