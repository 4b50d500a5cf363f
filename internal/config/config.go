package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	CorsConfig
	ClientConfig
	MockAPIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type ClientConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
	GetStorageDriver() string
	GetStoragePath() string
	GetRedisAddr() string
	GetRedisPrefix() string
	GetProfileMode() string
}

type MockAPIConfig interface {
	GetPort() string
	GetJWTSecret() string
	GetAdminUser() string
	GetAdminPassword() string
	GetAccessTokenExpiry() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Client
	MockAPI
}

// New returns the environment backed configuration.
func New() Config {
	return mainConfig{}
}

// Load reads the given .env files (".env" when none are given) into the
// process environment and returns the configuration. Missing files are not an error.
func Load(files ...string) Config {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded, using process environment")
	}
	return New()
}
