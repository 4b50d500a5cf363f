// Package app wires the dashboard client together: configuration, durable
// storage, the authenticated API client, the router and the session store.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/forecast-dashboard/apiclient"
	"github.com/jrsteele09/forecast-dashboard/forecast"
	"github.com/jrsteele09/forecast-dashboard/internal/config"
	ierrors "github.com/jrsteele09/forecast-dashboard/internal/errors"
	"github.com/jrsteele09/forecast-dashboard/router"
	"github.com/jrsteele09/forecast-dashboard/session"
	"github.com/jrsteele09/forecast-dashboard/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// App is the composed client.
type App struct {
	Config   config.Config
	Storage  storage.Store
	API      *apiclient.Client
	Router   *router.Router
	Session  *session.Store
	Forecast *forecast.Service

	closers []func() error
}

type options struct {
	store      storage.Store
	apiOptions []apiclient.Option
}

// Option customises New.
type Option func(*options)

// WithStorage uses store instead of the configured driver.
func WithStorage(store storage.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAPIOptions passes extra options to the API client.
func WithAPIOptions(opts ...apiclient.Option) Option {
	return func(o *options) {
		o.apiOptions = append(o.apiOptions, opts...)
	}
}

// New builds the client and restores any persisted session.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{Config: cfg}

	if o.store != nil {
		a.Storage = o.store
	} else {
		store, closer, err := OpenStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.Storage = store
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	// The session store does not exist yet; the closures read it per call.
	var sess *session.Store
	tokens := func() string {
		if sess == nil {
			return ""
		}
		return sess.Token()
	}

	apiOpts := append([]apiclient.Option{apiclient.WithTimeout(cfg.GetHTTPTimeout())}, o.apiOptions...)
	api, err := apiclient.New(cfg.GetAPIBaseURL(), tokens, apiOpts...)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("[app New] api client: %w", err)
	}
	a.API = api

	rt, err := router.New(router.DefaultRoutes(), router.AuthCheckerFunc(func() bool {
		return sess != nil && sess.IsAuthenticated()
	}))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("[app New] router: %w", err)
	}
	a.Router = rt

	sess, err = session.New(ctx, api, a.Storage, rt, sessionOptions(cfg.GetProfileMode())...)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("[app New] session: %w", err)
	}
	a.Session = sess
	a.Forecast = forecast.NewService(api)

	log.Debug().
		Str("api", api.BaseURL()).
		Str("storage", cfg.GetStorageDriver()).
		Str("profile", cfg.GetProfileMode()).
		Bool("authenticated", sess.IsAuthenticated()).
		Msg("app ready")
	return a, nil
}

func sessionOptions(mode string) []session.Option {
	switch mode {
	case config.ProfileClaims:
		return []session.Option{session.WithProfileResolver(session.ClaimsProfile{})}
	case config.ProfileRemote:
		return []session.Option{session.WithProfileFetch(true)}
	case config.ProfileSynthesized, "":
		return nil
	default:
		log.Warn().Str("mode", mode).Msg("unknown profile mode, using synthesized profiles")
		return nil
	}
}

// OpenStorage opens the configured durable store. The returned closer, when
// not nil, releases the store's resources.
func OpenStorage(ctx context.Context, cfg config.Config) (storage.Store, func() error, error) {
	switch driver := cfg.GetStorageDriver(); driver {
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil, nil
	case config.StorageFile, "":
		store, err := storage.NewFileStore(cfg.GetStoragePath())
		if err != nil {
			return nil, nil, fmt.Errorf("[app OpenStorage] %w", err)
		}
		return store, nil, nil
	case config.StorageSQLite:
		store, err := storage.NewSQLiteStore(cfg.GetStoragePath())
		if err != nil {
			return nil, nil, fmt.Errorf("[app OpenStorage] %w", err)
		}
		return store, store.Close, nil
	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("[app OpenStorage] redis %s: %w: %v", cfg.GetRedisAddr(), ierrors.ErrStorageUnavailable, err)
		}
		return storage.NewRedisStore(rdb, cfg.GetRedisPrefix()), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("[app OpenStorage] unknown storage driver %q: %w", driver, ierrors.ErrInvalidInput)
	}
}

// Close releases the storage resources.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
