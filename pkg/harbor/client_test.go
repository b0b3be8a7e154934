package harbor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client pointed at server and the hook capturing its logs
func newTestClient(t *testing.T, server *httptest.Server, opts ...ClientOption) (*Client, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	opts = append([]ClientOption{WithBaseURL(server.URL), WithLogger(logger)}, opts...)
	client, err := NewClient(opts...)
	require.NoError(t, err)
	return client, hook
}

// TestNewClient tests the creation of a new client
func TestNewClient(t *testing.T) {
	// A host is required
	_, err := NewClient()
	assert.Error(t, err)

	client, err := NewClient(
		WithHostname("harbor.example.com"),
		WithBasicAuth("robot$ci", "secret"),
		WithTimeout(30*time.Second),
		WithUserAgent("TestAgent/1.0"),
	)
	require.NoError(t, err)
	assert.Equal(t, "https://harbor.example.com", client.BaseURL())
	assert.Equal(t, "robot$ci", client.config.Username)
	assert.Equal(t, 30*time.Second, client.config.Timeout)
	assert.Equal(t, "TestAgent/1.0", client.config.UserAgent)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.IsType(t, &loggingTransport{}, client.httpClient.Transport)

	// Custom HTTP client
	httpClient := &http.Client{Timeout: time.Minute}
	client, err = NewClient(WithHostname("harbor.example.com"), WithHTTPClient(httpClient))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, client.httpClient.Timeout)
	assert.Nil(t, httpClient.Transport, "the caller's client must not be modified")

	// Invalid options
	_, err = NewClient(WithHostname(""))
	assert.Error(t, err)

	_, err = NewClient(WithHostname("https://harbor.example.com"))
	assert.Error(t, err)

	_, err = NewClient(WithBaseURL("harbor.example.com"))
	assert.Error(t, err)

	_, err = NewClient(WithHostname("harbor.example.com"), WithTimeout(-time.Second))
	assert.Error(t, err)

	_, err = NewClient(WithHostname("harbor.example.com"), WithUserAgent(""))
	assert.Error(t, err)

	_, err = NewClient(WithHostname("harbor.example.com"), WithHTTPClient(nil))
	assert.Error(t, err)

	_, err = NewClient(WithHostname("harbor.example.com"), WithLogger(nil))
	assert.Error(t, err)
}

// TestBuildURL tests the URL building
func TestBuildURL(t *testing.T) {
	client, err := NewClient(WithHostname("harbor.example.com/"))
	require.NoError(t, err)

	assert.Equal(t, "https://harbor.example.com/api/v2.0/projects", client.buildURL(APIPathProjects))
	assert.Equal(t, "https://harbor.example.com/api/v2.0/projects/library", client.buildURL("projects/library"))
	assert.Equal(t,
		"https://harbor.example.com/api/v2.0/projects/p/repositories/r/artifacts/sha256:abc/additions/vulnerabilities",
		client.resolveLink("/api/v2.0/projects/p/repositories/r/artifacts/sha256:abc/additions/vulnerabilities"))
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server,
		WithBasicAuth("admin", "Harbor12345"),
		WithHeader("X-Request-Source", "tests"),
	)

	_, err := client.get(context.Background(), client.buildURL("/ping"), nil, map[string]string{"X-Extra": "1"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "harborster/1.0", got.Get("User-Agent"))
	assert.Equal(t, "tests", got.Get("X-Request-Source"))
	assert.Equal(t, "1", got.Get("X-Extra"))

	req := &http.Request{Header: got}
	username, password, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "admin", username)
	assert.Equal(t, "Harbor12345", password)
}

func TestRequestWithoutCredentials(t *testing.T) {
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, hasAuth = r.BasicAuth()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	_, err := client.get(context.Background(), client.buildURL("/ping"), nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

// TestHandleResponse tests status mapping and decoding
func TestHandleResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"ok", http.StatusOK, `{"name":"library"}`, nil},
		{"not found", http.StatusNotFound, `{"errors":[{"code":"NOT_FOUND"}]}`, ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, ``, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ``, ErrForbidden},
		{"bad request", http.StatusBadRequest, ``, ErrBadRequest},
		{"server error", http.StatusBadGateway, ``, ErrServerError},
		{"other non-200", http.StatusAccepted, ``, ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := newTestClient(t, server)
			var out struct {
				Name string `json:"name"`
			}
			_, err := client.get(context.Background(), client.buildURL("/x"), nil, nil, &out)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "library", out.Name)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "error %v should wrap %v", err, tt.wantErr)
			assert.True(t, errors.Is(err, ErrUnexpectedStatus))
		})
	}
}

func TestHandleResponseInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server)
	var out map[string]interface{}
	_, err := client.get(context.Background(), client.buildURL("/x"), nil, nil, &out)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "failed to decode response body")
}

func TestConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, _ := newTestClient(t, server)
	server.Close()

	_, err := client.get(context.Background(), client.buildURL("/x"), nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionFailed))
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 100))
	assert.Equal(t, 0, PageCount(-5, 100))
	assert.Equal(t, 0, PageCount(10, 0))
	assert.Equal(t, 1, PageCount(1, 100))
	assert.Equal(t, 1, PageCount(100, 100))
	assert.Equal(t, 2, PageCount(101, 100))
	assert.Equal(t, 3, PageCount(250, 100))
}
