package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/forecast-dashboard/apimodel"
	"github.com/jrsteele09/forecast-dashboard/internal/utils"
)

// DefaultRole is the role given to synthesized profiles.
const DefaultRole = "admin"

// ProfileResolver derives the user record attached at login, before any
// profile has been fetched from the server. It must not fail.
type ProfileResolver interface {
	Resolve(identifier, token string) apimodel.User
}

// SynthesizedProfile echoes the submitted identifier with a fixed role.
// It stands in for a real profile until the backend returns one.
type SynthesizedProfile struct {
	Role string
}

func (p SynthesizedProfile) Resolve(identifier, _ string) apimodel.User {
	role := p.Role
	if role == "" {
		role = DefaultRole
	}
	return apimodel.User{Username: identifier, Role: role}
}

// ClaimsProfile reads the profile from the access token's claims when the
// token is a JWT. The signature is not checked: the claims only label the
// session locally and the backend remains the authority.
type ClaimsProfile struct {
	Fallback ProfileResolver
}

func (p ClaimsProfile) Resolve(identifier, token string) apimodel.User {
	fallback := p.Fallback
	if fallback == nil {
		fallback = SynthesizedProfile{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback.Resolve(identifier, token)
	}

	username := stringClaim(claims, "username")
	if username == "" {
		username, _ = claims.GetSubject()
	}
	if username == "" {
		return fallback.Resolve(identifier, token)
	}

	role := stringClaim(claims, "role")
	if role == "" {
		if raw, ok := claims["roles"].([]any); ok {
			if roles := utils.ToStringSlice(raw); len(roles) > 0 {
				role = roles[0]
			}
		}
	}
	if role == "" {
		role = fallback.Resolve(identifier, token).Role
	}
	return apimodel.User{Username: username, Role: role}
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}
