package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jrsteele09/forecast-dashboard/apimodel"
	ierrors "github.com/jrsteele09/forecast-dashboard/internal/errors"
	"github.com/jrsteele09/forecast-dashboard/storage"
	"github.com/rs/zerolog/log"
)

// restore loads the token/user pair. A half-present or undecodable pair is
// removed and the session starts signed out.
func (s *Store) restore(ctx context.Context) error {
	token, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	rawUser, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	switch {
	case token == "" && rawUser == "":
		return nil
	case token == "" || rawUser == "":
		log.Warn().Bool("token", token != "").Bool("user", rawUser != "").Msg("incomplete persisted session, clearing")
		s.persistMu.Lock()
		s.reset(ctx)
		s.persistMu.Unlock()
		return nil
	}

	var user apimodel.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		log.Warn().Err(fmt.Errorf("%w: %v", ierrors.ErrCorruptEntry, err)).Str("key", storage.KeyUser).Msg("clearing session")
		s.persistMu.Lock()
		s.reset(ctx)
		s.persistMu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	log.Debug().Str("user", user.Username).Msg("session restored")
	return nil
}

// persist writes the pair, token first. If the user cannot be written the
// token is removed again so storage never holds half a session.
// Must be called with persistMu held.
func (s *Store) persist(ctx context.Context, token string, user apimodel.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("[session persist] encode user: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyToken, token); err != nil {
		return fmt.Errorf("[session persist] token: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyUser, string(raw)); err != nil {
		if rmErr := s.storage.Remove(ctx, storage.KeyToken); rmErr != nil {
			log.Err(rmErr).Msg("failed to roll back persisted token")
		}
		return fmt.Errorf("[session persist] user: %w", err)
	}
	return nil
}

// reset empties the session in memory, then in storage, and advances the
// epoch so in-flight responses are discarded. Must be called with persistMu held.
func (s *Store) reset(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.lastErr = nil
	s.epoch++
	s.mu.Unlock()

	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		if err := s.storage.Remove(ctx, key); err != nil {
			log.Err(err).Str("key", key).Msg("failed to remove persisted session key")
		}
	}
}
