// Package activityclient provides a client for the activities HTTP API.
//
// Example usage:
//
//	client, err := activityclient.New("https://api.example.com", activityclient.WithToken(token))
//	if err != nil {
//		return err
//	}
//	activities, err := client.List(ctx)
package activityclient

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

	"github.com/nomis52/activities/activity"
	"github.com/nomis52/activities/logging"
)

const (
	activitiesPath = "/api/activities"
	defaultTimeout = 30 * time.Second
)

// ErrNotFound is matched by errors returned for a 404 response.
var ErrNotFound = errors.New("activity not found")

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Is reports a 404 StatusError as ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the activities API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout of the underlying http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a Client for the API rooted at baseURL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List returns every activity in the collection.
func (c *Client) List(ctx context.Context) ([]activity.Activity, error) {
	var activities []activity.Activity
	if err := c.do(ctx, http.MethodGet, activitiesPath, nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Details returns the activity with the given id.
func (c *Client) Details(ctx context.Context, id string) (activity.Activity, error) {
	var a activity.Activity
	if err := c.do(ctx, http.MethodGet, activityPath(id), nil, &a); err != nil {
		return activity.Activity{}, err
	}
	return a, nil
}

// Create adds a new activity.
func (c *Client) Create(ctx context.Context, a activity.Activity) error {
	return c.do(ctx, http.MethodPost, activitiesPath, a, nil)
}

// Update replaces the activity with the same id.
func (c *Client) Update(ctx context.Context, a activity.Activity) error {
	return c.do(ctx, http.MethodPut, activityPath(a.ID), a, nil)
}

// Delete removes the activity with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, activityPath(id), nil, nil)
}

func activityPath(id string) string {
	return activitiesPath + "/" + url.PathEscape(id)
}

// do sends a request with an optional JSON body and decodes a JSON response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	resp, err := c.doRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	u, err := c.buildURL(path)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("sending request", "method", method, "url", u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// buildURL resolves path against the base URL, keeping any path prefix of
// the base (e.g. "https://host/backend/").
func (c *Client) buildURL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	base := *c.baseURL
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
		if base.RawPath != "" {
			base.RawPath += "/"
		}
	}
	if strings.HasPrefix(ref.Path, "/") {
		ref.Path = ref.Path[1:]
		ref.RawPath = strings.TrimPrefix(ref.RawPath, "/")
	}
	return base.ResolveReference(ref).String(), nil
}
