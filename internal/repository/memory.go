package repository

import (
	"context"
	"sync"
	"time"

	"stayhub/internal/models"
)

type memoryIntent struct {
	intent    models.BookingIntent
	expiresAt time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryIntentStore is the in-process intent store used when redis is
// not configured or unreachable. Reads slide the expiry like redis does.
type MemoryIntentStore struct {
	mu         sync.Mutex
	intents    map[string]memoryIntent
	rateLimits map[string]*rateLimitEntry
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryIntentStore(ttl time.Duration) *MemoryIntentStore {
	return &MemoryIntentStore{
		intents:    make(map[string]memoryIntent),
		rateLimits: make(map[string]*rateLimitEntry),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (r *MemoryIntentStore) GetIntent(_ context.Context, sessionID string) (*models.BookingIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.intents[sessionID]
	if !ok {
		return nil, nil
	}
	if r.ttl > 0 && r.now().After(entry.expiresAt) {
		delete(r.intents, sessionID)
		return nil, nil
	}
	entry.expiresAt = r.now().Add(r.ttl)
	r.intents[sessionID] = entry
	intent := entry.intent
	return &intent, nil
}

func (r *MemoryIntentStore) SetIntent(_ context.Context, intent *models.BookingIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.intents[intent.SessionID] = memoryIntent{
		intent:    *intent,
		expiresAt: r.now().Add(r.ttl),
	}
	return nil
}

func (r *MemoryIntentStore) ClearIntent(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.intents, sessionID)
	return nil
}

func (r *MemoryIntentStore) CheckRateLimit(_ context.Context, sessionID string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.rateLimits[sessionID]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[sessionID] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}

// Sweep drops expired intents and rate limit windows.
func (r *MemoryIntentStore) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, entry := range r.intents {
		if r.ttl > 0 && now.After(entry.expiresAt) {
			delete(r.intents, id)
			removed++
		}
	}
	for id, entry := range r.rateLimits {
		if now.After(entry.expiresAt) {
			delete(r.rateLimits, id)
		}
	}
	return removed
}
