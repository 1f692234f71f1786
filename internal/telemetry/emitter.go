// Package telemetry records operational events for the echo server.
package telemetry

import (
	"context"
	"time"
)

// EventType describes the kind of operational event.
type EventType string

const (
	// EventAccepted records a new client connection.
	EventAccepted EventType = "ACCEPTED"
	// EventDisconnected records an orderly client disconnect.
	EventDisconnected EventType = "DISCONNECTED"
	// EventConnReset records a peer-initiated connection reset.
	EventConnReset EventType = "CONN_RESET"
	// EventDecodeError records a payload that failed to decode.
	EventDecodeError EventType = "DECODE_ERROR"
	// EventIOError records an unexpected read or write failure.
	EventIOError EventType = "IO_ERROR"
)

// Event is one operational event. Message content is never recorded.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Peer      string
	Detail    string
}

// Store persists telemetry events.
type Store interface {
	AppendEvent(ctx context.Context, evt Event) error
}

// Emitter records operational telemetry events.
type Emitter struct {
	store Store
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store Store) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	return e.store.AppendEvent(ctx, evt)
}
