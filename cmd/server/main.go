// Package main runs the echowire TCP echo server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/echowire/internal/platform/config"
	"github.com/louisbranch/echowire/internal/platform/otel"
	"github.com/louisbranch/echowire/internal/server"
)

var (
	addr      = flag.String("addr", "", "listen address (overrides ECHOWIRE_ADDR)")
	adminAddr = flag.String("admin-addr", "", "gRPC admin address (overrides ECHOWIRE_ADMIN_ADDR)")
)

func main() {
	flag.Parse()

	var cfg server.Config
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *adminAddr != "" {
		cfg.AdminAddr = *adminAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, "echowire-server")
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}
	srv.Run()

	<-ctx.Done()
	log.Printf("shutdown signal received")
	srv.Stop()
	if err := srv.Close(); err != nil {
		log.Printf("close server: %v", err)
	}
}
