package store

import (
	"context"
	"fmt"
)

// StateKey is the KV key holding the pending CSRF nonce.
const StateKey = "spotify_auth_state"

// StateStore keeps the nonce of the login attempt in flight. Saving overwrites any previous nonce.
type StateStore struct {
	kv KV
}

// NewStateStore creates a [StateStore] backed by kv.
func NewStateStore(kv KV) *StateStore {
	return &StateStore{kv: kv}
}

// Save stores state, replacing any earlier attempt.
func (s *StateStore) Save(ctx context.Context, state string) error {
	if err := s.kv.Set(ctx, StateKey, []byte(state)); err != nil {
		return fmt.Errorf("failed to store auth state: %w", err)
	}
	return nil
}

// Load returns the stored nonce, or false when none is stored or the backend cannot be read.
func (s *StateStore) Load(ctx context.Context) (string, bool) {
	raw, ok, err := s.kv.Get(ctx, StateKey)
	if err != nil || !ok || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

// Delete removes the stored nonce.
func (s *StateStore) Delete(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StateKey); err != nil {
		return fmt.Errorf("failed to delete auth state: %w", err)
	}
	return nil
}
