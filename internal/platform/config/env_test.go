package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Addr string        `env:"ECHOWIRE_TEST_ADDR" envDefault:"127.0.0.1:0"`
	Poll time.Duration `env:"ECHOWIRE_TEST_POLL" envDefault:"100ms"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "127.0.0.1:0" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Poll != 100*time.Millisecond {
		t.Fatalf("expected default poll 100ms, got %v", cfg.Poll)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("ECHOWIRE_TEST_POLL", "250ms")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Poll != 250*time.Millisecond {
		t.Fatalf("expected poll 250ms, got %v", cfg.Poll)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("ECHOWIRE_TEST_POLL", "not-a-duration")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
