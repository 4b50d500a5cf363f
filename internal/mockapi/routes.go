package mockapi

import (
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.IndexHandler(), s.APIMiddleware()...))

	// LOGIN
	s.RegisterRouteFunc("POST "+RouteToken, ChainMiddleware(s.TokenHandler(), s.APIMiddleware()...))

	// Protected
	s.RegisterRouteFunc("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteViewData, ChainMiddleware(s.ViewDataHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("POST "+RouteUploadForecast, ChainMiddleware(s.UploadForecastHandler(), s.APIMiddleware(s.RequireAuth())...))

	// Preflight for any path
	s.RegisterRouteFunc("OPTIONS /{path...}", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
}

// IndexHandler answers the root health check.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("forecast api running"))
	}
}

// PreflightHandler answers OPTIONS requests that carry no Origin.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
