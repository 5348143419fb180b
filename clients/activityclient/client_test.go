package activityclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/activities/activity"
)

func TestList(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse string
		status         int
		wantErr        string
		verifyFn       func(t *testing.T, activities []activity.Activity)
	}{
		{
			name: "success",
			serverResponse: `[
				{"id": "a", "title": "Museum", "date": "2020-01-02T10:00:00.000", "category": "culture", "city": "London", "venue": "British Museum"},
				{"id": "b", "title": "Pub", "date": "2020-01-01T09:00:00"}
			]`,
			status: http.StatusOK,
			verifyFn: func(t *testing.T, activities []activity.Activity) {
				require.Len(t, activities, 2)
				assert.Equal(t, "a", activities[0].ID)
				assert.Equal(t, "British Museum", activities[0].Venue)
				assert.Equal(t, "2020-01-02T10:00:00.000", activities[0].Date)
			},
		},
		{
			name:           "empty response",
			serverResponse: `[]`,
			status:         http.StatusOK,
			verifyFn: func(t *testing.T, activities []activity.Activity) {
				assert.Empty(t, activities)
			},
		},
		{
			name:           "invalid json",
			serverResponse: `invalid json`,
			status:         http.StatusOK,
			wantErr:        "failed to unmarshal response",
		},
		{
			name:           "http error",
			serverResponse: "internal server error",
			status:         http.StatusInternalServerError,
			wantErr:        "unexpected status code: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/activities", r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.serverResponse))
			}))
			defer ts.Close()

			client, err := New(ts.URL)
			require.NoError(t, err)

			activities, err := client.List(context.Background())

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				if tt.verifyFn != nil {
					tt.verifyFn(t, activities)
				}
			}
		})
	}
}

func TestDetails(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		wantPath       string
		serverResponse string
		status         int
		wantErr        string
		wantNotFound   bool
	}{
		{
			name:           "success",
			id:             "a",
			wantPath:       "/api/activities/a",
			serverResponse: `{"id": "a", "title": "Museum", "date": "2020-01-02T10:00:00"}`,
			status:         http.StatusOK,
		},
		{
			name:           "id is escaped",
			id:             "a/b",
			wantPath:       "/api/activities/a%2Fb",
			serverResponse: `{"id": "a/b"}`,
			status:         http.StatusOK,
		},
		{
			name:         "not found",
			id:           "missing",
			wantPath:     "/api/activities/missing",
			status:       http.StatusNotFound,
			wantErr:      "unexpected status code: 404",
			wantNotFound: true,
		},
		{
			name:           "invalid json",
			id:             "a",
			wantPath:       "/api/activities/a",
			serverResponse: "invalid",
			status:         http.StatusOK,
			wantErr:        "failed to unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantPath, r.URL.EscapedPath())
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.serverResponse))
			}))
			defer ts.Close()

			client, err := New(ts.URL)
			require.NoError(t, err)

			a, err := client.Details(context.Background(), tt.id)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.wantNotFound, errors.Is(err, ErrNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, a.ID)
		})
	}
}

func TestWrites(t *testing.T) {
	a := activity.Activity{ID: "a", Title: "Museum", Date: "2020-01-02T10:00:00"}

	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
		wantBody   bool
	}{
		{
			name:       "create",
			call:       func(c *Client) error { return c.Create(context.Background(), a) },
			wantMethod: http.MethodPost,
			wantPath:   "/api/activities",
			wantBody:   true,
		},
		{
			name:       "update",
			call:       func(c *Client) error { return c.Update(context.Background(), a) },
			wantMethod: http.MethodPut,
			wantPath:   "/api/activities/a",
			wantBody:   true,
		},
		{
			name:       "delete",
			call:       func(c *Client) error { return c.Delete(context.Background(), "a") },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/activities/a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantMethod, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				if tt.wantBody {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					var got activity.Activity
					require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
					assert.Equal(t, a, got)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer ts.Close()

			client, err := New(ts.URL)
			require.NoError(t, err)
			require.NoError(t, tt.call(client))
		})

		t.Run(tt.name+" http error", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("upstream down"))
			}))
			defer ts.Close()

			client, err := New(ts.URL)
			require.NoError(t, err)

			err = tt.call(client)
			require.Error(t, err)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
			assert.Equal(t, "upstream down", statusErr.Body)
			assert.False(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	client, err := New(url)
	require.NoError(t, err)

	_, err = client.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestNewAndOptions(t *testing.T) {
	t.Run("New with valid URL", func(t *testing.T) {
		client, err := New("https://api.test")
		require.NoError(t, err)
		assert.Equal(t, "https://api.test", client.baseURL.String())
	})

	t.Run("New with invalid URL", func(t *testing.T) {
		client, err := New("::invalid")
		assert.Error(t, err)
		assert.Nil(t, client)
	})

	t.Run("WithToken", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			w.Write([]byte(`[]`))
		}))
		defer ts.Close()

		client, err := New(ts.URL, WithToken("secret"))
		require.NoError(t, err)
		assert.Equal(t, "secret", client.token)

		_, err = client.List(context.Background())
		require.NoError(t, err)
	})

	t.Run("WithLogger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		client, err := New("https://api.test", WithLogger(logger))
		require.NoError(t, err)
		assert.Equal(t, logger, client.logger)
	})

	t.Run("WithTimeout", func(t *testing.T) {
		client, err := New("https://api.test", WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("WithHTTPClient", func(t *testing.T) {
		hc := &http.Client{}
		client, err := New("https://api.test", WithHTTPClient(hc))
		require.NoError(t, err)
		assert.Same(t, hc, client.httpClient)
	})
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		path     string
		expected string
		wantErr  bool
	}{
		{
			name:     "host without trailing slash",
			host:     "https://api.test:5000",
			path:     "/api/activities",
			expected: "https://api.test:5000/api/activities",
		},
		{
			name:     "host with trailing slash",
			host:     "https://api.test:5000/",
			path:     "/api/activities",
			expected: "https://api.test:5000/api/activities",
		},
		{
			name:     "host with path prefix",
			host:     "https://api.test/backend",
			path:     "/api/activities/a",
			expected: "https://api.test/backend/api/activities/a",
		},
		{
			name:     "escaped id survives",
			host:     "https://api.test",
			path:     "/api/activities/a%2Fb",
			expected: "https://api.test/api/activities/a%2Fb",
		},
		{
			name:    "invalid path",
			host:    "https://api.test",
			path:    ":%gh",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.host)
			require.NoError(t, err)

			result, err := client.buildURL(tt.path)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
