package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the in-process Store used in tests and single-instance
// deployments. Watchers are plain channels signalled on every write.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]*ConfirmationRecord
	watchers map[uuid.UUID][]chan struct{}
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[uuid.UUID]*ConfirmationRecord),
		watchers: make(map[uuid.UUID][]chan struct{}),
	}
}

func (s *MemoryStore) Get(ctx context.Context, conversationId uuid.UUID) (*ConfirmationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[conversationId]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (s *MemoryStore) Set(ctx context.Context, record *ConfirmationRecord) error {
	s.mu.Lock()
	record.UpdatedAt = time.Now()
	copied := *record
	s.records[record.ConversationId] = &copied
	watchers := s.watchers[record.ConversationId]
	s.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- struct{}{}:
		default: // watcher already has a pending signal
		}
	}
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, conversationId uuid.UUID) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers[conversationId] = append(s.watchers[conversationId], ch)
	s.mu.Unlock()

	stop := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		watchers := s.watchers[conversationId]
		for i, w := range watchers {
			if w == ch {
				s.watchers[conversationId] = append(watchers[:i], watchers[i+1:]...)
				break
			}
		}
		if len(s.watchers[conversationId]) == 0 {
			delete(s.watchers, conversationId)
		}
	}
	return ch, stop, nil
}

func (s *MemoryStore) Clear(ctx context.Context, conversationId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, conversationId)
	return nil
}
