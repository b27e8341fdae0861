package marker

import (
	"context"
	"sync"
	"time"
)

// entry holds the expiry for one marked key.
type entry struct {
	expires time.Time
}

// MemoryStore is a process-local Store backed by a mutex-guarded map with a
// background sweep for expired entries. Suitable for single-instance
// deployments; use RedisStore when multiple instances share the marker state.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore creates a MemoryStore and starts its cleanup goroutine.
// sweepInterval <= 0 defaults to one minute.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	s := &MemoryStore{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go s.sweep(sweepInterval)
	return s
}

// CheckAndMark implements Store. The check and the write happen under one
// lock acquisition so concurrent callers for the same key serialize.
func (s *MemoryStore) CheckAndMark(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		return true, nil
	}
	s.entries[key] = entry{expires: now.Add(ttl)}
	return false, nil
}

func (s *MemoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for k, e := range s.entries {
				if now.After(e.expires) {
					delete(s.entries, k)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
