package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"syscall"

	"github.com/louisbranch/echowire/internal/telemetry"
	"github.com/louisbranch/echowire/internal/wire"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// serveClient runs one client session: a blocking read, decode, echo cycle
// that owns the connection for its entire lifetime.
//
// Framing is a single bounded read per message: the whole received byte
// range is handed to the codec as one unit. A message split across reads,
// or two messages coalesced into one read, is decoded as-is; this matches
// the wire contract and is deliberately not corrected here.
func (s *Server) serveClient(conn net.Conn) {
	defer conn.Close()

	peer := conn.RemoteAddr().String()
	ctx, span := s.tracer.Start(context.Background(), "echowire.session",
		trace.WithAttributes(attribute.String("net.peer.address", peer)))
	defer span.End()

	var messages, decodeErrors int
	defer func() {
		span.SetAttributes(
			attribute.Int("echowire.messages", messages),
			attribute.Int("echowire.decode_errors", decodeErrors),
		)
	}()

	buf := make([]byte, s.cfg.ReadBufferBytes)
	for s.running.Load() {
		n, err := conn.Read(buf)
		if err != nil {
			s.closeSession(ctx, peer, err)
			return
		}
		if n == 0 {
			continue
		}

		msg, err := wire.Decode(buf[:n])
		if err != nil {
			log.Printf("failed to decode message from %s: %v", peer, err)
			s.emit(ctx, telemetry.EventDecodeError, peer, err.Error())
			decodeErrors++
			continue
		}

		log.Printf("received: %s", msg.Content)
		messages++

		if _, err := conn.Write(wire.Encode(msg)); err != nil {
			s.closeSession(ctx, peer, err)
			return
		}
	}
}

// closeSession classifies the terminal error of a session and records it.
// EOF and connection resets are expected disconnections; anything else is
// an unexpected I/O failure.
func (s *Server) closeSession(ctx context.Context, peer string, err error) {
	switch {
	case errors.Is(err, io.EOF):
		log.Printf("client disconnected: %s", peer)
		s.emit(ctx, telemetry.EventDisconnected, peer, "")
	case errors.Is(err, syscall.ECONNRESET):
		log.Printf("client disconnected unexpectedly: %s", peer)
		s.emit(ctx, telemetry.EventConnReset, peer, "")
	case errors.Is(err, net.ErrClosed):
		// Connection torn down locally; nothing to report.
	default:
		log.Printf("error handling client %s: %v", peer, err)
		s.emit(ctx, telemetry.EventIOError, peer, err.Error())
	}
}
