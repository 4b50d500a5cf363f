package forecast_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/forecast-dashboard/apiclient"
	"github.com/jrsteele09/forecast-dashboard/forecast"
	"github.com/jrsteele09/forecast-dashboard/internal/errors"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, token string, h http.HandlerFunc) *forecast.Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	api, err := apiclient.New(srv.URL, func() string { return token })
	require.NoError(t, err)
	return forecast.NewService(api)
}

func TestService_View(t *testing.T) {
	svc := newService(t, "T1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, forecast.PathViewData, r.URL.Path)
		require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"period":"08:00","date":"2025-01-02","calls_forecast":120,"aht_forecast":310.5,"fte_required":14}]`))
	})

	rows, err := svc.View(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "08:00", rows[0].Period)
	require.Equal(t, 310.5, rows[0].AHTForecast)
}

func TestService_ViewUnauthorized(t *testing.T) {
	svc := newService(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
	})

	_, err := svc.View(context.Background())
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
	var re *forecast.ResponseError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "Not authenticated", re.Detail)
}

func TestService_Upload(t *testing.T) {
	svc := newService(t, "T1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, forecast.PathUploadForecast, r.URL.Path)
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "forecast.csv", hdr.Filename)
		b, _ := io.ReadAll(f)
		require.Equal(t, "period,date\n", string(b))
		_, _ = w.Write([]byte(`{"message":"ok","rows":3}`))
	})

	res, err := svc.Upload(context.Background(), "/tmp/forecast.csv", strings.NewReader("period,date\n"))
	require.NoError(t, err)
	require.Equal(t, 3, res.Rows)
}

func TestService_UploadServerError(t *testing.T) {
	svc := newService(t, "T1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"bad sheet"}`))
	})

	_, err := svc.Upload(context.Background(), "f.csv", strings.NewReader("x"))
	var re *forecast.ResponseError
	require.ErrorAs(t, err, &re)
	require.Equal(t, http.StatusInternalServerError, re.Status)
	require.Contains(t, err.Error(), "bad sheet")
	require.NotErrorIs(t, err, errors.ErrNotAuthenticated)
}

func TestService_ErrorWithoutJSONBody(t *testing.T) {
	svc := newService(t, "T1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := svc.View(context.Background())
	var re *forecast.ResponseError
	require.ErrorAs(t, err, &re)
	require.Equal(t, http.StatusBadGateway, re.Status)
	require.Empty(t, re.Detail)
}
