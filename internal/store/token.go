package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// TokenKey is the KV key holding the serialized [TokenRecord].
const TokenKey = "spotify_token_data"

// TokenRecord is the persisted token triple. ExpiresAt is absolute, in epoch milliseconds.
type TokenRecord struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// Expiry returns ExpiresAt as a [time.Time].
func (r TokenRecord) Expiry() time.Time {
	return time.UnixMilli(r.ExpiresAt)
}

func (r TokenRecord) complete() bool {
	return r.AccessToken != "" && r.ExpiresAt > 0
}

// TokenStore reads and writes the single active [TokenRecord].
type TokenStore struct {
	kv     KV
	now    func() time.Time
	logger *log.Logger
}

// TokenStoreOption configures a [TokenStore].
type TokenStoreOption func(*TokenStore)

// WithClock overrides the clock used for expiry computation and validity checks.
func WithClock(now func() time.Time) TokenStoreOption {
	return func(s *TokenStore) { s.now = now }
}

// WithLogger sets the logger used to report unreadable records.
func WithLogger(l *log.Logger) TokenStoreOption {
	return func(s *TokenStore) { s.logger = l }
}

// NewTokenStore creates a [TokenStore] backed by kv.
func NewTokenStore(kv KV, opts ...TokenStoreOption) *TokenStore {
	s := &TokenStore{kv: kv, now: time.Now, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the stored record. Backend errors, corrupt JSON and partial records all read as absent.
func (s *TokenStore) Read(ctx context.Context) (TokenRecord, bool) {
	raw, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		s.logger.Warn("failed to read token record", "error", err)
		return TokenRecord{}, false
	}
	if !ok {
		return TokenRecord{}, false
	}

	var rec TokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("discarding unreadable token record", "error", err)
		return TokenRecord{}, false
	}
	if !rec.complete() {
		return TokenRecord{}, false
	}
	return rec, true
}

// Write stores a new record expiring expiresIn seconds from now.
func (s *TokenStore) Write(ctx context.Context, accessToken, refreshToken string, expiresIn int64) error {
	rec := TokenRecord{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().UnixMilli() + expiresIn*1000,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode token record: %w", err)
	}
	if err := s.kv.Set(ctx, TokenKey, data); err != nil {
		return fmt.Errorf("failed to store token record: %w", err)
	}
	return nil
}

// Clear removes the record. Clearing an empty store succeeds.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("failed to clear token record: %w", err)
	}
	return nil
}

// IsValid reports whether a record exists and now is strictly before its expiry.
func (s *TokenStore) IsValid(ctx context.Context) bool {
	rec, ok := s.Read(ctx)
	if !ok {
		return false
	}
	return s.now().UnixMilli() < rec.ExpiresAt
}
