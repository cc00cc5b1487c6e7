package openai_compatible

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func modelsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/models" && r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchModels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		suffix string
		body   string
		expect []string
	}{
		{
			name:   "ids",
			body:   `{"object":"list","data":[{"id":"gpt-4o"},{"id":"o3-mini"}]}`,
			expect: []string{"gpt-4o", "o3-mini"},
		},
		{
			name:   "model-fallback",
			suffix: "/v4",
			body:   `{"data":[{"model":"glm-4"},{"id":"glm-4v","model":"ignored"},{}]}`,
			expect: []string{"glm-4", "glm-4v", ""},
		},
		{
			name:   "missing-data",
			body:   `{"object":"list"}`,
			expect: []string{},
		},
		{
			name:   "data-not-array",
			body:   `{"data":{"id":"x"}}`,
			expect: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := modelsServer(t, http.StatusOK, tc.body)
			provider := testProvider(srv.URL + tc.suffix + "/")

			got, err := NewClient(srv.Client(), nil).FetchModels(context.Background(), provider)
			require.NoError(t, err)
			require.Equal(t, tc.expect, got)
		})
	}
}

func TestFetchModelsHTTPFailure(t *testing.T) {
	t.Parallel()
	srv := modelsServer(t, http.StatusForbidden, `{"error":{"message":"nope"}}`)

	_, err := NewClient(srv.Client(), nil).FetchModels(context.Background(), testProvider(srv.URL))
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	require.Equal(t, "failed to fetch models: Forbidden", err.Error())
}

func TestFetchModelsInvalidJSON(t *testing.T) {
	t.Parallel()
	srv := modelsServer(t, http.StatusOK, `<html>`)

	_, err := NewClient(srv.Client(), nil).FetchModels(context.Background(), testProvider(srv.URL))
	require.Error(t, err)
}

func TestNewHTTPClientProxy(t *testing.T) {
	t.Parallel()

	c, err := NewHTTPClient("")
	require.NoError(t, err)
	require.Zero(t, c.Timeout)

	c, err = NewHTTPClient("http://127.0.0.1:8080")
	require.NoError(t, err)
	transport := c.Transport.(*http.Transport)
	req := httptest.NewRequest(http.MethodGet, "https://api.example.com", nil)
	proxy, err := transport.Proxy(req)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", proxy.Host)

	_, err = NewHTTPClient("://bad")
	require.Error(t, err)
}
