// Package forecast reads and uploads forecast data through the API client.
package forecast

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/jrsteele09/forecast-dashboard/apiclient"
	"github.com/jrsteele09/forecast-dashboard/apimodel"
	"github.com/jrsteele09/forecast-dashboard/internal/errors"
)

// API paths
const (
	PathViewData       = "/view-data"
	PathUploadForecast = "/upload-forecast"
)

// ResponseError is a non-2xx answer from the forecast API.
type ResponseError struct {
	Status int
	Detail string
}

func (e *ResponseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("forecast api: %d %s: %s", e.Status, http.StatusText(e.Status), e.Detail)
	}
	return fmt.Sprintf("forecast api: %d %s", e.Status, http.StatusText(e.Status))
}

// Is maps 401 onto the shared not-authenticated sentinel.
func (e *ResponseError) Is(target error) bool {
	return target == errors.ErrNotAuthenticated && e.Status == http.StatusUnauthorized
}

// Service issues forecast requests. Authorization is added by the client's interceptor.
type Service struct {
	api *apiclient.Client
}

func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// View returns the latest forecast rows.
func (s *Service) View(ctx context.Context) ([]apimodel.ForecastRow, error) {
	resp, err := s.api.Get(ctx, PathViewData)
	if err != nil {
		return nil, fmt.Errorf("[forecast View] %w", err)
	}
	if !apiclient.IsSuccess(resp) {
		return nil, responseError(resp)
	}
	var rows []apimodel.ForecastRow
	if err := apiclient.DecodeJSON(resp, &rows); err != nil {
		return nil, fmt.Errorf("[forecast View] %w", err)
	}
	return rows, nil
}

// Upload sends a forecast file as multipart field "file".
func (s *Service) Upload(ctx context.Context, filename string, content io.Reader) (apimodel.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return apimodel.UploadResult{}, fmt.Errorf("[forecast Upload] %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return apimodel.UploadResult{}, fmt.Errorf("[forecast Upload] read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return apimodel.UploadResult{}, fmt.Errorf("[forecast Upload] %w", err)
	}

	resp, err := s.api.Post(ctx, PathUploadForecast, mw.FormDataContentType(), &body)
	if err != nil {
		return apimodel.UploadResult{}, fmt.Errorf("[forecast Upload] %w", err)
	}
	if !apiclient.IsSuccess(resp) {
		return apimodel.UploadResult{}, responseError(resp)
	}
	var result apimodel.UploadResult
	if err := apiclient.DecodeJSON(resp, &result); err != nil {
		return apimodel.UploadResult{}, fmt.Errorf("[forecast Upload] %w", err)
	}
	return result, nil
}

// responseError consumes and closes resp's body.
func responseError(resp *http.Response) error {
	var er apimodel.ErrorResponse
	_ = apiclient.DecodeJSON(resp, &er)
	return &ResponseError{Status: resp.StatusCode, Detail: er.Message()}
}
