package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/jrsteele09/forecast-dashboard/apiclient"
	"github.com/stretchr/testify/require"
)

// recorder captures the last request seen by the test server.
type recorder struct {
	mu     sync.Mutex
	header http.Header
	path   string
	body   string
}

func (r *recorder) last() (http.Header, string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header, r.path, r.body
}

func newServer(t *testing.T, status int) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.header = r.Header.Clone()
		rec.path = r.URL.Path
		rec.body = string(b)
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestClient_BearerHeader(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK)
	token := ""
	c, err := apiclient.New(srv.URL, func() string { return token })
	require.NoError(t, err)

	t.Run("no token leaves header absent", func(t *testing.T) {
		resp, err := c.Get(context.Background(), "/view-data")
		require.NoError(t, err)
		resp.Body.Close()

		h, path, _ := rec.last()
		require.Equal(t, "/view-data", path)
		require.Empty(t, h.Get("Authorization"))
		require.Equal(t, "application/json", h.Get("Accept"))
		require.Equal(t, "application/json", h.Get("Content-Type"))
		require.NotEmpty(t, h.Get(apiclient.RequestIDHeader))
	})

	t.Run("token is read on every request", func(t *testing.T) {
		token = "T1"
		resp, err := c.Get(context.Background(), "/me")
		require.NoError(t, err)
		resp.Body.Close()
		h, _, _ := rec.last()
		require.Equal(t, "Bearer T1", h.Get("Authorization"))

		token = "T2"
		resp, err = c.Get(context.Background(), "/me")
		require.NoError(t, err)
		resp.Body.Close()
		h, _, _ = rec.last()
		require.Equal(t, "Bearer T2", h.Get("Authorization"))
	})

	t.Run("requests built by other callers are intercepted", func(t *testing.T) {
		token = "T3"
		req, err := http.NewRequest(http.MethodGet, c.URL("/other"), nil)
		require.NoError(t, err)
		resp, err := c.HTTPClient().Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		h, _, _ := rec.last()
		require.Equal(t, "Bearer T3", h.Get("Authorization"))
		require.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
	})
}

func TestClient_PostForm(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK)
	c, err := apiclient.New(srv.URL, func() string { return "" })
	require.NoError(t, err)

	resp, err := c.PostForm(context.Background(), "/token", url.Values{"username": {"a@b.com"}, "password": {"x"}})
	require.NoError(t, err)
	resp.Body.Close()

	h, path, body := rec.last()
	require.Equal(t, "/token", path)
	require.Equal(t, "application/x-www-form-urlencoded", h.Get("Content-Type"))
	form, err := url.ParseQuery(body)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", form.Get("username"))
	require.Equal(t, "x", form.Get("password"))
}

func TestClient_TransportErrorPassesThrough(t *testing.T) {
	boom := errors.New("dial failed")
	c, err := apiclient.New("http://forecast.invalid", func() string { return "T1" },
		apiclient.WithBaseTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, boom
		})))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/me")
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
}

func TestClient_UnauthorizedHook(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized)
	token := ""
	c, err := apiclient.New(srv.URL, func() string { return token })
	require.NoError(t, err)

	var got []string
	c.OnUnauthorized(func(_ context.Context, sent string) { got = append(got, sent) })

	resp, err := c.Get(context.Background(), "/me")
	require.NoError(t, err)
	resp.Body.Close()
	require.Empty(t, got, "no hook without a bearer token")

	token = "T1"
	resp, err = c.Get(context.Background(), "/me")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, []string{"T1"}, got)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNew_Validation(t *testing.T) {
	_, err := apiclient.New("http://x", nil)
	require.Error(t, err)

	_, err = apiclient.New("/relative", func() string { return "" })
	require.Error(t, err)

	c, err := apiclient.New("http://127.0.0.1:8000/api/", func() string { return "" }, apiclient.WithHeader("X-Client", "cli"))
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8000/api/token", c.URL("token"))
	require.Equal(t, "http://127.0.0.1:8000/api/view-data?limit=5", c.URL("/view-data?limit=5"))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
