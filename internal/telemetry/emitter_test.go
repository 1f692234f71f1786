package telemetry

import (
	"context"
	"testing"
	"time"
)

type recordingStore struct {
	events []Event
}

func (s *recordingStore) AppendEvent(_ context.Context, evt Event) error {
	s.events = append(s.events, evt)
	return nil
}

func TestEmitStampsMissingTimestamp(t *testing.T) {
	store := &recordingStore{}
	emitter := NewEmitter(store)
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	emitter.clock = func() time.Time { return fixed }

	if err := emitter.Emit(context.Background(), Event{Type: EventAccepted, Peer: "127.0.0.1:1234"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	if !store.events[0].Timestamp.Equal(fixed) {
		t.Fatalf("expected stamped timestamp %v, got %v", fixed, store.events[0].Timestamp)
	}
}

func TestEmitKeepsExplicitTimestamp(t *testing.T) {
	store := &recordingStore{}
	emitter := NewEmitter(store)
	explicit := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := emitter.Emit(context.Background(), Event{Type: EventDecodeError, Timestamp: explicit}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !store.events[0].Timestamp.Equal(explicit) {
		t.Fatalf("expected explicit timestamp, got %v", store.events[0].Timestamp)
	}
}

func TestEmitIsNilSafe(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), Event{Type: EventIOError}); err != nil {
		t.Fatalf("nil emitter: %v", err)
	}
	if err := NewEmitter(nil).Emit(context.Background(), Event{Type: EventIOError}); err != nil {
		t.Fatalf("nil store: %v", err)
	}
}
