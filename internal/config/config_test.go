package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("EDIT_PREFILL", "")
	t.Setenv("BACKEND_TIMEOUT", "")
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Server.Port)
	}
	if cfg.App.PrefillFromRecord() {
		t.Fatalf("edit forms should start blank by default")
	}
	if cfg.Backend.Timeout != 0 {
		t.Fatalf("expected no backend timeout by default, got %d", cfg.Backend.Timeout)
	}
	if cfg.Session.Store != "memory" {
		t.Fatalf("expected memory session store, got %q", cfg.Session.Store)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EDIT_PREFILL", "record")
	t.Setenv("BACKEND_FORWARD_COOKIES", "crm_session, XSRF-TOKEN,,")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("REFDATA_CACHE_TTL", "not-a-duration")
	t.Setenv("DEV", "no")
	cfg := Load()
	if !cfg.App.PrefillFromRecord() {
		t.Fatalf("expected record prefill")
	}
	if len(cfg.Backend.ForwardCookies) != 2 || cfg.Backend.ForwardCookies[1] != "XSRF-TOKEN" {
		t.Fatalf("unexpected cookie list %v", cfg.Backend.ForwardCookies)
	}
	if cfg.Session.TTL != 45*time.Minute {
		t.Fatalf("unexpected session ttl %v", cfg.Session.TTL)
	}
	if cfg.RefData.CacheTTL != 24*time.Hour {
		t.Fatalf("invalid duration should fall back to the default, got %v", cfg.RefData.CacheTTL)
	}
	if cfg.App.Dev {
		t.Fatalf("expected dev off")
	}
}
