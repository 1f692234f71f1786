// Package server implements the concurrent TCP echo server.
package server

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/louisbranch/echowire/internal/platform/errors"
	"github.com/louisbranch/echowire/internal/telemetry"
	"github.com/louisbranch/echowire/internal/telemetry/sqlite"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the echo server configuration.
type Config struct {
	// Addr is the TCP listen address for the echo protocol.
	Addr string `env:"ECHOWIRE_ADDR" envDefault:"127.0.0.1:7400"`
	// AdminAddr enables the gRPC admin endpoint when non-empty.
	AdminAddr string `env:"ECHOWIRE_ADMIN_ADDR"`
	// DBPath enables the SQLite telemetry store when non-empty.
	DBPath string `env:"ECHOWIRE_DB_PATH"`
	// ReadBufferBytes bounds the bytes read per I/O call.
	ReadBufferBytes int `env:"ECHOWIRE_READ_BUFFER_BYTES" envDefault:"512"`
	// AcceptPoll bounds how long an accept blocks before the running
	// flag is rechecked.
	AcceptPoll time.Duration `env:"ECHOWIRE_ACCEPT_POLL" envDefault:"100ms"`
}

// defaultReadBufferBytes matches the wire contract's single-read bound.
const defaultReadBufferBytes = 512

// defaultAcceptPoll bounds shutdown latency for the acceptor.
const defaultAcceptPoll = 100 * time.Millisecond

// Server hosts the echo service.
//
// The running flag is the only state shared for mutation across the
// acceptor and session goroutines; everything else is single-owner.
type Server struct {
	cfg      Config
	listener *net.TCPListener
	running  atomic.Bool
	emitter  *telemetry.Emitter
	store    *sqlite.Store
	admin    *adminServer
	tracer   trace.Tracer
}

// New binds the listener and opens auxiliary resources. The server is
// constructed stopped; call Run to start accepting connections.
func New(cfg Config) (*Server, error) {
	if cfg.ReadBufferBytes <= 0 {
		cfg.ReadBufferBytes = defaultReadBufferBytes
	}
	if cfg.AcceptPoll <= 0 {
		cfg.AcceptPoll = defaultAcceptPoll
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, errors.Wrap(errors.CodeBindFailed, fmt.Sprintf("bind %s", cfg.Addr), err)
	}
	tcpListener, ok := listener.(*net.TCPListener)
	if !ok {
		_ = listener.Close()
		return nil, errors.New(errors.CodeBindFailed, fmt.Sprintf("bind %s: not a TCP listener", cfg.Addr))
	}

	srv := &Server{
		cfg:      cfg,
		listener: tcpListener,
		tracer:   otel.Tracer("github.com/louisbranch/echowire/internal/server"),
	}

	if cfg.DBPath != "" {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				_ = tcpListener.Close()
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			_ = tcpListener.Close()
			return nil, fmt.Errorf("open telemetry store: %w", err)
		}
		srv.store = store
	}
	srv.emitter = telemetry.NewEmitter(srv.store)

	if cfg.AdminAddr != "" {
		admin, err := newAdminServer(cfg.AdminAddr)
		if err != nil {
			_ = tcpListener.Close()
			srv.closeResources()
			return nil, err
		}
		srv.admin = admin
	}

	return srv, nil
}

// Addr returns the listener address for the echo protocol.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// AdminAddr returns the admin endpoint address, or "" when disabled.
func (s *Server) AdminAddr() string {
	if s == nil || s.admin == nil {
		return ""
	}
	return s.admin.addr()
}

// Run sets the running flag and launches the acceptor goroutine, returning
// immediately. Run is not idempotent: calling it twice starts a second
// acceptor on the same listener.
func (s *Server) Run() {
	s.running.Store(true)
	log.Printf("server is running on %s", s.listener.Addr())
	if s.admin != nil {
		s.admin.start()
	}
	go s.acceptLoop()
}

// Stop signals the acceptor and all sessions to exit at their next loop
// iteration and reports whether a shutdown signal was sent. Stop never
// interrupts a blocking read in progress: a session blocked in read exits
// only once that read unblocks, so shutdown latency is bounded by the
// accept poll interval for the acceptor and unbounded for idle sessions.
func (s *Server) Stop() bool {
	if s.running.CompareAndSwap(true, false) {
		log.Printf("shutdown signal sent")
		if s.admin != nil {
			s.admin.markStopped()
		}
		return true
	}
	log.Printf("server was already stopped or not running")
	return false
}

// Close releases the listener, the admin endpoint, and the telemetry store.
// Call after Stop; sessions still draining keep their own connections.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close listener: %w", err))
		}
	}
	s.closeResources()
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (s *Server) closeResources() {
	if s.admin != nil {
		s.admin.close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close telemetry store: %v", err)
		}
	}
}
