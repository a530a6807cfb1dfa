package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
)

type sessionEntry struct {
	store    *Store
	lastUsed time.Time
}

// Sessions keeps one Store per cart session so that concurrent requests for
// the same session are serialised by that store's lock. Idle stores are
// disposed and dropped; their carts stay in the durable store.
type Sessions struct {
	mu          sync.Mutex
	kv          storage.KeyValueStore
	prefix      string
	idleTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
	lastSweep   time.Time
	entries     map[string]*sessionEntry
}

type SessionsOption func(*Sessions)

func WithSessionsClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) {
		s.now = now
	}
}

func NewSessions(kv storage.KeyValueStore, prefix string, idleTimeout time.Duration, logger *slog.Logger, opts ...SessionsOption) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sessions{
		kv:          kv,
		prefix:      prefix,
		idleTimeout: idleTimeout,
		logger:      logger,
		now:         time.Now,
		entries:     make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the initialised store for sessionID, creating it on first use.
func (s *Sessions) Get(ctx context.Context, sessionID string) *Store {
	s.mu.Lock()

	now := s.now()
	s.sweepLocked(now)

	entry, ok := s.entries[sessionID]
	if !ok {
		store := NewStore(s.kv,
			WithKey(storage.Key(s.prefix, sessionID)),
			WithLogger(s.logger.With(slog.String("cartSession", sessionID))),
		)
		entry = &sessionEntry{store: store}
		s.entries[sessionID] = entry
		metrics.CartSessionsActive.Set(float64(len(s.entries)))
	}
	entry.lastUsed = now
	s.mu.Unlock()

	// loading happens outside the registry lock; the store has its own
	entry.store.Initialize(ctx)
	return entry.store
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) sweepLocked(now time.Time) {
	if s.idleTimeout <= 0 || now.Sub(s.lastSweep) < s.idleTimeout/2 {
		return
	}
	s.lastSweep = now

	for id, entry := range s.entries {
		if now.Sub(entry.lastUsed) > s.idleTimeout {
			entry.store.Dispose()
			delete(s.entries, id)
		}
	}
	metrics.CartSessionsActive.Set(float64(len(s.entries)))
}

// Close disposes every store.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.entries {
		entry.store.Dispose()
		delete(s.entries, id)
	}
	metrics.CartSessionsActive.Set(0)
}
