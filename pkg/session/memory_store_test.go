package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()

	rec, err := s.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestMemoryStoreSetThenGet(t *testing.T) {
	s := NewMemoryStore()
	id := uuid.New()
	confirmed := true

	err := s.Set(context.Background(), &ConfirmationRecord{
		ConversationId: id,
		Status:         ConfirmationConfirmed,
		Confirmed:      &confirmed,
	})
	if err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	rec, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record, got nil")
	}
	if rec.Status != ConfirmationConfirmed {
		t.Errorf("Status = %s, want confirmed", rec.Status)
	}
	if rec.Confirmed == nil || !*rec.Confirmed {
		t.Error("Confirmed should be true")
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	id := uuid.New()

	_ = s.Set(context.Background(), &ConfirmationRecord{
		ConversationId: id,
		Status:         ConfirmationPending,
	})

	rec, _ := s.Get(context.Background(), id)
	rec.Status = ConfirmationDeclined

	again, _ := s.Get(context.Background(), id)
	if again.Status != ConfirmationPending {
		t.Errorf("mutating a returned record leaked into the store: %s", again.Status)
	}
}

func TestMemoryStoreWatchSignalsOnWrite(t *testing.T) {
	s := NewMemoryStore()
	id := uuid.New()

	ch, stop, err := s.Watch(context.Background(), id)
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	defer stop()

	confirmed := false
	_ = s.Set(context.Background(), &ConfirmationRecord{
		ConversationId: id,
		Status:         ConfirmationDeclined,
		Confirmed:      &confirmed,
	})

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("watcher was not signalled after write")
	}
}

func TestMemoryStoreWatchIgnoresOtherConversations(t *testing.T) {
	s := NewMemoryStore()
	id := uuid.New()

	ch, stop, err := s.Watch(context.Background(), id)
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
	defer stop()

	_ = s.Set(context.Background(), &ConfirmationRecord{
		ConversationId: uuid.New(),
		Status:         ConfirmationConfirmed,
	})

	select {
	case <-ch:
		t.Fatal("watcher signalled for an unrelated conversation")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryStoreClear(t *testing.T) {
	s := NewMemoryStore()
	id := uuid.New()

	_ = s.Set(context.Background(), &ConfirmationRecord{
		ConversationId: id,
		Status:         ConfirmationPending,
	})
	if err := s.Clear(context.Background(), id); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}

	rec, _ := s.Get(context.Background(), id)
	if rec != nil {
		t.Fatalf("expected record removed, got %+v", rec)
	}
}
