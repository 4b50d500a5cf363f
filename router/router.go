// Package router holds the dashboard route table and runs the navigation
// guard before every transition.
package router

import (
	"fmt"
	"sync"

	"github.com/jrsteele09/forecast-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

const maxRedirects = 3

// AuthChecker reports the current authentication state.
type AuthChecker interface {
	IsAuthenticated() bool
}

// AuthCheckerFunc adapts a function to AuthChecker.
type AuthCheckerFunc func() bool

func (f AuthCheckerFunc) IsAuthenticated() bool { return f() }

// Router tracks the current route.
type Router struct {
	auth    AuthChecker
	byPath  map[string]Route
	byName  map[string]Route
	mu      sync.RWMutex
	current Route
	history []Route
}

// New builds a Router over routes. Route names and paths must be unique and
// the table must contain the login and dashboard routes.
func New(routes []Route, auth AuthChecker) (*Router, error) {
	if auth == nil {
		return nil, fmt.Errorf("[router New] auth checker is required")
	}
	r := &Router{
		auth:   auth,
		byPath: make(map[string]Route, len(routes)),
		byName: make(map[string]Route, len(routes)),
	}
	for _, rt := range routes {
		if _, dup := r.byPath[rt.Path]; dup {
			return nil, fmt.Errorf("[router New] duplicate path %q", rt.Path)
		}
		if _, dup := r.byName[rt.Name]; dup {
			return nil, fmt.Errorf("[router New] duplicate name %q", rt.Name)
		}
		r.byPath[rt.Path] = rt
		r.byName[rt.Name] = rt
	}
	for _, required := range []string{NameLogin, NameDashboard} {
		if _, ok := r.byName[required]; !ok {
			return nil, fmt.Errorf("[router New] route %q is required", required)
		}
	}
	return r, nil
}

// Push navigates to path, running the guard before each transition and
// following its redirects. It returns the route that was finally entered.
func (r *Router) Push(path string) (Route, error) {
	to, ok := r.lookupPath(path)
	if !ok {
		return Route{}, errors.Wrapf(errors.ErrRouteNotFound, "[router Push] %s", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i <= maxRedirects; i++ {
		decision := Guard(to, r.current, r.auth.IsAuthenticated())
		if decision.Allowed() {
			r.enter(to)
			return to, nil
		}
		log.Debug().Str("from", to.Path).Str("redirect", decision.Redirect).Msg("navigation redirected")
		next, ok := r.byName[decision.Redirect]
		if !ok {
			return Route{}, errors.Wrapf(errors.ErrRouteNotFound, "[router Push] redirect target %s", decision.Redirect)
		}
		to = next
	}
	return Route{}, errors.Wrapf(errors.ErrRedirectLoop, "[router Push] %s", path)
}

// Navigate is Push without a result, used by the session store.
func (r *Router) Navigate(path string) {
	if _, err := r.Push(path); err != nil {
		log.Err(err).Str("path", path).Msg("navigation failed")
	}
}

// Current returns the active route; the zero Route before the first navigation.
func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// History returns the routes entered so far, oldest first.
func (r *Router) History() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Route(nil), r.history...)
}

// Resolve returns the route registered for path.
func (r *Router) Resolve(path string) (Route, bool) {
	return r.lookupPath(path)
}

func (r *Router) lookupPath(path string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.byPath[path]
	return rt, ok
}

// enter must be called with mu held.
func (r *Router) enter(to Route) {
	r.current = to
	r.history = append(r.history, to)
	log.Debug().Str("route", to.Name).Str("path", to.Path).Msg("navigated")
}
