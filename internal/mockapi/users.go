package mockapi

import (
	"fmt"
	"sync"

	ierrors "github.com/jrsteele09/forecast-dashboard/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// User is an account known to the mock API.
type User struct {
	Username     string
	PasswordHash string
	Role         string
}

// UserRepo is an in-memory user store.
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]User)}
}

// Add stores a user with a bcrypt hash of password, replacing any existing entry.
func (r *UserRepo) Add(username, password, role string) error {
	if username == "" || password == "" {
		return fmt.Errorf("[UserRepo Add] username and password are required: %w", ierrors.ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("[UserRepo Add] %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[username] = User{Username: username, PasswordHash: hash, Role: role}
	return nil
}

// Get returns the user by name.
func (r *UserRepo) Get(username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return User{}, ierrors.ErrNotFound
	}
	return u, nil
}

// Authenticate returns the user when password matches.
func (r *UserRepo) Authenticate(username, password string) (User, error) {
	u, err := r.Get(username)
	if err != nil {
		return User{}, ierrors.ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, u.PasswordHash) {
		return User{}, ierrors.ErrInvalidCredentials
	}
	return u, nil
}

// HashPassword hashes a plain-text password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plain-text password with its hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
