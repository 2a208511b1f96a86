package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORTAL_ADDR", "")
	t.Setenv("PORTAL_AUTH_SECRET", "s3cret")
	t.Setenv("PORTAL_ACCESS_TTL", "")
	t.Setenv("PORTAL_COOKIE_SECURE", "")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.AccessTTL != 15*time.Minute || cfg.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected TTLs: %v / %v", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if !cfg.CookieSecure {
		t.Fatalf("cookies must default to secure")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORTAL_ACCESS_TTL", "5m")
	t.Setenv("PORTAL_COOKIE_SECURE", "false")
	t.Setenv("PORTAL_SMTP_PORT", "2525")

	cfg := Load()
	if cfg.AccessTTL != 5*time.Minute {
		t.Fatalf("unexpected access TTL: %v", cfg.AccessTTL)
	}
	if cfg.CookieSecure {
		t.Fatalf("expected insecure cookies")
	}
	if cfg.SMTPPort != 2525 {
		t.Fatalf("unexpected smtp port: %d", cfg.SMTPPort)
	}
}

func TestDSNWithTimeout(t *testing.T) {
	cases := map[string]string{
		"": "",
		"postgres://u:p@db/portal":                   "postgres://u:p@db/portal?connect_timeout=20",
		"postgres://u:p@db/portal?sslmode=disable":   "postgres://u:p@db/portal?sslmode=disable&connect_timeout=20",
		"host=db user=u dbname=portal":               "host=db user=u dbname=portal connect_timeout=20",
		"postgres://u:p@db/portal?connect_timeout=5": "postgres://u:p@db/portal?connect_timeout=5",
	}
	for input, want := range cases {
		if got := DSNWithTimeout(input); got != want {
			t.Fatalf("DSNWithTimeout(%q) = %q, want %q", input, got, want)
		}
	}
}
