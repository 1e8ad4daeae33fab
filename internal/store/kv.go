package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/desertthunder/moodify/internal/shared"
)

// Backend identifiers accepted by [New].
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// KV is a minimal byte-oriented key-value store.
type KV interface {
	// Get returns the value for key, and false when it does not exist.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// New creates the [KV] backend named by cfg.Backend. db is required for the sqlite backend.
func New(ctx context.Context, cfg shared.SessionConfig, db *sql.DB) (KV, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendSQLite
	}

	switch backend {
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendSQLite:
		if db == nil {
			return nil, fmt.Errorf("sqlite session backend requires a database handle")
		}
		return NewSQLiteKV(db), nil
	case BackendRedis:
		return NewRedisKV(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("%w: unsupported session backend %q", shared.ErrInvalidConfig, backend)
	}
}

// MemoryKV is a process-local [KV].
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty [MemoryKV].
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
