package server

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"time"

	"github.com/louisbranch/echowire/internal/telemetry"
)

// acceptLoop accepts connections until the running flag reads false.
//
// Each accept is bounded by the configured poll interval so the flag is
// rechecked at least that often. Accept errors other than the poll
// deadline are logged and never terminate the loop; a closed listener
// ends it since no further accept can ever succeed.
func (s *Server) acceptLoop() {
	for s.running.Load() {
		if err := s.listener.SetDeadline(time.Now().Add(s.cfg.AcceptPoll)); err != nil {
			log.Printf("set accept deadline: %v", err)
			return
		}

		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				// Poll tick, loop around to recheck the running flag.
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("accept connection: %v", err)
			continue
		}

		peer := conn.RemoteAddr().String()
		log.Printf("new client connected: %s", peer)
		s.emit(context.Background(), telemetry.EventAccepted, peer, "")
		go s.serveClient(conn)
	}
}

// emit records a telemetry event; append failures never affect serving.
func (s *Server) emit(ctx context.Context, eventType telemetry.EventType, peer, detail string) {
	evt := telemetry.Event{Type: eventType, Peer: peer, Detail: detail}
	if err := s.emitter.Emit(ctx, evt); err != nil {
		log.Printf("record telemetry event: %v", err)
	}
}
