package apiclient

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// bearerTransport is the outbound interceptor.
type bearerTransport struct {
	base     http.RoundTripper
	tokens   TokenSource
	defaults http.Header

	mu           sync.RWMutex
	unauthorized UnauthorizedHandler
}

func (t *bearerTransport) setUnauthorized(h UnauthorizedHandler) {
	t.mu.Lock()
	t.unauthorized = h
	t.mu.Unlock()
}

func (t *bearerTransport) onUnauthorized() UnauthorizedHandler {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.unauthorized
}

// RoundTrip never mutates the caller's request.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())

	for k, v := range t.defaults {
		if r.Header.Get(k) == "" {
			r.Header[k] = append([]string(nil), v...)
		}
	}
	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.New().String())
	}

	token := t.tokens()
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(r)
	}

	resp, err := t.base.RoundTrip(r)
	if err != nil {
		log.Debug().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get(RequestIDHeader)).
			Msg("request failed")
		return nil, err
	}

	log.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", resp.StatusCode).
		Str("request_id", r.Header.Get(RequestIDHeader)).
		Msg("request")

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		if h := t.onUnauthorized(); h != nil {
			h(context.WithoutCancel(req.Context()), token)
		}
	}
	return resp, nil
}
