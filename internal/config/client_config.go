package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	apiBaseURLVar    = "API_BASE_URL"
	httpTimeoutVar   = "HTTP_TIMEOUT"
	storageDriverVar = "STORAGE_DRIVER"
	storagePathVar   = "STORAGE_PATH"
	redisAddrVar     = "REDIS_ADDR"
	redisPrefixVar   = "REDIS_PREFIX"
	profileModeVar   = "PROFILE_MODE"
)

// Storage drivers
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Profile modes
const (
	ProfileSynthesized = "synthesized"
	ProfileClaims      = "claims"
	ProfileRemote      = "remote"
)

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://127.0.0.1:8000")
}

func (Client) GetHTTPTimeout() time.Duration {
	return GetDurationEnv(httpTimeoutVar, 30*time.Second)
}

func (Client) GetStorageDriver() string {
	return GetEnv(storageDriverVar, StorageFile)
}

// GetStoragePath returns the file or database path for the durable store.
// The default lives under the user's home directory.
func (c Client) GetStoragePath() string {
	if p := os.Getenv(storagePathVar); p != "" {
		return p
	}
	name := "storage.json"
	if c.GetStorageDriver() == StorageSQLite {
		name = "storage.db"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".forecast-dashboard", name)
	}
	return filepath.Join(home, ".forecast-dashboard", name)
}

func (Client) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (Client) GetRedisPrefix() string {
	return GetEnv(redisPrefixVar, "forecast-dashboard")
}

func (Client) GetProfileMode() string {
	return GetEnv(profileModeVar, ProfileSynthesized)
}
