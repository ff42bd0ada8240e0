package artifact

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joseph-ayodele/resume-analyzer/internal/common"
)

type memoryEntry struct {
	payload  []byte
	deadline time.Time
}

// MemoryStore is an in-process Store with the same expiry contract as the
// Redis one. Entries are reaped lazily on read; the clock is injectable so
// expiry can be tested without sleeping.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the store's clock. Test hook.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryStore) Put(_ context.Context, fileID, kind string, version int, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[Key(fileID, kind, version)] = memoryEntry{
		payload:  cp,
		deadline: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, fileID, kind string, version int) ([]byte, error) {
	key := Key(fileID, kind, version)

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || s.now().After(e.deadline) {
		delete(s.entries, key)
		return nil, fmt.Errorf("%s: %w", key, common.ErrArtifactMissing)
	}
	cp := make([]byte, len(e.payload))
	copy(cp, e.payload)
	return cp, nil
}
