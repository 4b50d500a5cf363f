// Package mockapi is a local stand-in for the forecast backend: form login
// issuing bearer tokens, a profile endpoint, and forecast upload and view.
// It backs development runs of the dashboard and end-to-end tests.
package mockapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/forecast-dashboard/internal/config"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	users     *UserRepo
	tokens    *TokenIssuer
	forecasts *ForecastRepo
}

// New builds the server and seeds the configured admin user.
func New(cfg config.Config) (*Server, error) {
	users := NewUserRepo()
	if err := users.Add(cfg.GetAdminUser(), cfg.GetAdminPassword(), "admin"); err != nil {
		return nil, fmt.Errorf("[mockapi New] failed to seed admin user: %w", err)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		users:     users,
		tokens:    NewTokenIssuer([]byte(cfg.GetJWTSecret()), cfg.GetAccessTokenExpiry()),
		forecasts: NewForecastRepo(),
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Users exposes the user repository so callers can add accounts.
func (s *Server) Users() *UserRepo {
	return s.users
}

// Forecasts exposes the forecast repository.
func (s *Server) Forecasts() *ForecastRepo {
	return s.forecasts
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
