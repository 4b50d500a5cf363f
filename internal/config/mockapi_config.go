package config

import (
	"fmt"
	"strings"
	"time"
)

type MockAPI struct{}

var _ MockAPIConfig = MockAPI{}

func (MockAPI) GetPort() string {
	port := GetEnv("PORT", "8000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (MockAPI) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "dev-only-secret")
}

func (MockAPI) GetAdminUser() string {
	return GetEnv("MOCK_ADMIN_USER", "admin")
}

func (MockAPI) GetAdminPassword() string {
	return GetEnv("MOCK_ADMIN_PASSWORD", "changeme")
}

func (MockAPI) GetAccessTokenExpiry() time.Duration {
	return GetDurationEnv("ACCESS_TOKEN_EXPIRY", 7*24*time.Hour)
}
