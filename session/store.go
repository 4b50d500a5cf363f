// Package session owns the client's authentication state: the bearer token,
// the signed-in user, the in-flight flag and the last sign-in error. It
// exchanges credentials for a token, keeps the durable storage in step with
// memory, and drives navigation on login and logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/jrsteele09/forecast-dashboard/apiclient"
	"github.com/jrsteele09/forecast-dashboard/apimodel"
	"github.com/jrsteele09/forecast-dashboard/internal/utils"
	"github.com/jrsteele09/forecast-dashboard/router"
	"github.com/jrsteele09/forecast-dashboard/storage"
	"github.com/rs/zerolog/log"
)

// API paths used by the store. The form field names are part of the wire contract.
const (
	PathToken = "/token"
	PathMe    = "/me"

	formUsername = "username"
	formPassword = "password"

	maxBodyBytes = 1 << 20
)

// Credentials are what the user typed on the login screen.
type Credentials struct {
	Identifier string
	Secret     string
}

// Navigator moves the application to a route path.
type Navigator interface {
	Navigate(path string)
}

// State is a point-in-time copy of the session.
type State struct {
	Token         string
	User          *apimodel.User
	Loading       bool
	Error         string
	Authenticated bool
}

// tag identifies the session a request was issued against.
type tag struct {
	epoch uint64
	token string
}

// Store is the session store. One Store exists per process; it is safe for
// concurrent use but does not serialize overlapping Login or Logout calls.
type Store struct {
	api          *apiclient.Client
	storage      storage.Store
	nav          Navigator
	profile      ProfileResolver
	fetchProfile bool
	dashboard    string
	login        string

	// persistMu serializes storage writes and epoch changes. mu guards the
	// fields below it and is never held across storage or network I/O.
	// Lock order is persistMu, then mu.
	persistMu sync.Mutex

	mu       sync.RWMutex
	token    string
	user     *apimodel.User
	inFlight int
	lastErr  *Error
	epoch    uint64 // advanced by every login and logout
}

// Option configures a Store.
type Option func(*Store)

// WithProfileResolver sets how the user record is derived at login.
// The default is SynthesizedProfile with DefaultRole.
func WithProfileResolver(p ProfileResolver) Option {
	return func(s *Store) {
		s.profile = p
	}
}

// WithProfileFetch makes Login call FetchUser after the token is stored and
// before navigating.
func WithProfileFetch(enabled bool) Option {
	return func(s *Store) {
		s.fetchProfile = enabled
	}
}

// WithRoutes overrides the dashboard and login paths.
func WithRoutes(dashboard, login string) Option {
	return func(s *Store) {
		s.dashboard = dashboard
		s.login = login
	}
}

// New builds the Store and restores any persisted session from store.
// It registers itself as api's unauthorized handler.
func New(ctx context.Context, api *apiclient.Client, store storage.Store, nav Navigator, options ...Option) (*Store, error) {
	if api == nil {
		return nil, errors.New("[session New] api client is required")
	}
	if store == nil {
		return nil, errors.New("[session New] storage is required")
	}
	if nav == nil {
		return nil, errors.New("[session New] navigator is required")
	}

	s := &Store{
		api:       api,
		storage:   store,
		nav:       nav,
		profile:   SynthesizedProfile{Role: DefaultRole},
		dashboard: router.PathDashboard,
		login:     router.PathLogin,
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.restore(ctx); err != nil {
		return nil, fmt.Errorf("[session New] restore: %w", err)
	}
	api.OnUnauthorized(s.handleUnauthorized)
	return s, nil
}

// Token returns the current bearer token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *apimodel.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated is derived from the token on every call.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Loading reports whether a login or profile request is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// ErrorMessage returns the message of the last login failure, or "".
func (s *Store) ErrorMessage() string {
	if e := s.LastError(); e != nil {
		return e.Message
	}
	return ""
}

// LastError returns the classified last login failure, or nil.
func (s *Store) LastError() *Error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Snapshot returns the whole state at once.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{
		Token:         s.token,
		Loading:       s.inFlight > 0,
		Authenticated: s.token != "",
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Message
	}
	return st
}

// Login exchanges creds for a token. On success the token and user are
// persisted and the app navigates to the dashboard. On failure the error is
// recorded and the session is left as it was, unless the server answered 401
// to the token the request carried. Login never returns an error:
// callers read ErrorMessage and IsAuthenticated.
func (s *Store) Login(ctx context.Context, creds Credentials) {
	s.mu.Lock()
	s.inFlight++
	s.lastErr = nil
	issued := s.epoch
	s.mu.Unlock()
	defer s.done()

	token, failure := s.exchange(ctx, creds)
	if failure != nil {
		s.mu.Lock()
		// Skip only when a newer login has since signed in. A 401 for the
		// token this request carried signs out first and keeps the error.
		if s.epoch == issued || s.token == "" {
			s.lastErr = failure
		}
		s.mu.Unlock()
		log.Warn().Str("kind", failure.Kind.String()).Int("status", failure.Status).Err(failure.Err).Msg("login failed")
		return
	}

	user := s.profile.Resolve(creds.Identifier, token)

	s.persistMu.Lock()
	if s.currentEpoch() != issued {
		s.persistMu.Unlock()
		log.Info().Msg("discarding login response for a session that has since changed")
		return
	}
	if err := s.persist(context.WithoutCancel(ctx), token, user); err != nil {
		s.mu.Lock()
		s.lastErr = newError(KindUnknown, 0, "Unable to save the session", err)
		s.mu.Unlock()
		s.persistMu.Unlock()
		log.Err(err).Msg("failed to persist session")
		return
	}
	s.mu.Lock()
	s.token = token
	s.user = &user
	s.epoch++
	current := tag{epoch: s.epoch, token: token}
	s.mu.Unlock()
	s.persistMu.Unlock()

	log.Info().Str("user", user.Username).Msg("logged in")

	if s.fetchProfile {
		s.FetchUser(ctx)
		if !s.isCurrent(current) {
			return
		}
	}
	s.nav.Navigate(s.dashboard)
}

// FetchUser replaces the user with the server's profile. It does nothing
// without a token. Any failure logs the session out.
func (s *Store) FetchUser(ctx context.Context) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	issued := tag{epoch: s.epoch, token: s.token}
	s.inFlight++
	s.mu.Unlock()
	defer s.done()

	user, err := s.requestProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("profile fetch failed, logging out")
		s.logoutIf(ctx, issued)
		return
	}

	raw, err := json.Marshal(user)
	if err != nil {
		s.logoutIf(ctx, issued)
		return
	}

	s.persistMu.Lock()
	if !s.isCurrent(issued) {
		s.persistMu.Unlock()
		log.Info().Msg("discarding profile response for a session that has since changed")
		return
	}
	if err := s.storage.Set(context.WithoutCancel(ctx), storage.KeyUser, string(raw)); err != nil {
		s.persistMu.Unlock()
		log.Err(err).Msg("failed to persist profile, logging out")
		s.logoutIf(ctx, issued)
		return
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.persistMu.Unlock()
}

// Logout clears the session in memory and storage and navigates to the
// login route. Calling it while signed out only navigates.
func (s *Store) Logout(ctx context.Context) {
	s.persistMu.Lock()
	s.reset(ctx)
	s.persistMu.Unlock()

	log.Info().Msg("logged out")
	s.nav.Navigate(s.login)
}

// logoutIf logs out only when the session is still the one t was issued against.
func (s *Store) logoutIf(ctx context.Context, t tag) {
	s.persistMu.Lock()
	if !s.isCurrent(t) {
		s.persistMu.Unlock()
		return
	}
	s.reset(ctx)
	s.persistMu.Unlock()

	log.Info().Msg("logged out")
	s.nav.Navigate(s.login)
}

// handleUnauthorized is the api client's 401 hook.
func (s *Store) handleUnauthorized(ctx context.Context, sentToken string) {
	s.mu.RLock()
	t := tag{epoch: s.epoch, token: s.token}
	s.mu.RUnlock()

	if t.token == "" || t.token != sentToken {
		return
	}
	log.Warn().Msg("request was unauthorized, ending session")
	s.logoutIf(ctx, t)
}

func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *Store) isCurrent(t tag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch == t.epoch && s.token == t.token
}

func (s *Store) done() {
	s.mu.Lock()
	if s.inFlight > 0 {
		s.inFlight--
	}
	s.mu.Unlock()
}

// exchange posts creds to the token endpoint.
func (s *Store) exchange(ctx context.Context, creds Credentials) (string, *Error) {
	form := url.Values{}
	form.Set(formUsername, creds.Identifier)
	form.Set(formPassword, creds.Secret)

	resp, err := s.api.PostForm(ctx, PathToken, form)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", classifyTransport(err)
	}
	if !apiclient.IsSuccess(resp) {
		return "", classifyResponse(resp.StatusCode, body)
	}

	var tr apimodel.TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", malformedResponse(resp.StatusCode, err)
	}
	if !tr.HasAccessToken() {
		return "", malformedResponse(resp.StatusCode, nil)
	}
	return utils.Value(tr.AccessToken), nil
}

func (s *Store) requestProfile(ctx context.Context) (apimodel.User, error) {
	resp, err := s.api.Get(ctx, PathMe)
	if err != nil {
		return apimodel.User{}, err
	}
	if !apiclient.IsSuccess(resp) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		return apimodel.User{}, classifyResponse(resp.StatusCode, body)
	}

	var user apimodel.User
	if err := apiclient.DecodeJSON(resp, &user); err != nil {
		return apimodel.User{}, err
	}
	if user.Username == "" {
		return apimodel.User{}, malformedResponse(resp.StatusCode, errors.New("profile without username"))
	}
	return user, nil
}
