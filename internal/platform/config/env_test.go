package config

import (
	"strings"
	"testing"
	"time"
)

type scopedTestConfig struct {
	Addr  string        `env:"HTTP_ADDR" envDefault:"localhost:8095"`
	Delay time.Duration `env:"LOAD_DELAY" envDefault:"2s"`
	Watch []string      `env:"WATCH" envSeparator:","`
}

func TestParseEnvScopedReadsPrefixedVariables(t *testing.T) {
	t.Setenv("LOADGUARD_SCOPED_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("LOADGUARD_SCOPED_WATCH", "FETCH_USER,FETCH_SETTINGS")
	t.Setenv("HTTP_ADDR", "ignored:1")

	var cfg scopedTestConfig
	if err := ParseEnvScoped(&cfg, " scoped "); err != nil {
		t.Fatalf("ParseEnvScoped() error = %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, "127.0.0.1:9000")
	}
	if cfg.Delay != 2*time.Second {
		t.Fatalf("Delay = %v, want 2s", cfg.Delay)
	}
	if len(cfg.Watch) != 2 || cfg.Watch[1] != "FETCH_SETTINGS" {
		t.Fatalf("Watch = %v, want [FETCH_USER FETCH_SETTINGS]", cfg.Watch)
	}
}

func TestParseEnvScopedErrorNamesPrefix(t *testing.T) {
	t.Setenv("LOADGUARD_BROKEN_LOAD_DELAY", "soon")

	var cfg scopedTestConfig
	err := ParseEnvScoped(&cfg, "broken")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "LOADGUARD_BROKEN_") {
		t.Fatalf("expected prefix in error, got %v", err)
	}
}
