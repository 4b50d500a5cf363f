package apimodel

// TokenResponse is the body returned by POST /token.
// The client requires a non-empty AccessToken; everything else is optional.
type TokenResponse struct {
	// AccessToken is the bearer credential.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken *string `json:"access_token,omitempty"`

	// TokenType is always "bearer" for the forecast API.
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds, when the server reports it.
	ExpiresIn int `json:"expires_in,omitempty"`
}

// HasAccessToken reports whether the response carries a usable token.
func (t TokenResponse) HasAccessToken() bool {
	return t.AccessToken != nil && *t.AccessToken != ""
}
