package apimodel

// User is the profile record shared by GET /me and the session store.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
