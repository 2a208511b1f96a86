// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the portal needs at startup. Values are read
// once in Load; nothing here is re-read at runtime.
type Config struct {
	Addr         string
	AuthSecret   string
	PostgresDSN  string
	CookieSecure bool
	AccessTTL    time.Duration
	RefreshTTL   time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// DBConnectTimeout bounds connection establishment; appended to the DSN when
// the operator did not set one explicitly.
const DBConnectTimeout = 20 * time.Second

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid int for %s, using default: %v", key, err)
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid bool for %s, using default: %v", key, err)
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid duration for %s, using default: %v", key, err)
		return def
	}
	return d
}

// Load reads the environment. The signing secret has no default; callers
// must treat an empty AuthSecret as a fatal misconfiguration.
func Load() Config {
	return Config{
		Addr:         getenv("PORTAL_ADDR", ":8080"),
		AuthSecret:   os.Getenv("PORTAL_AUTH_SECRET"),
		PostgresDSN:  os.Getenv("PORTAL_PG_DSN"),
		CookieSecure: getBool("PORTAL_COOKIE_SECURE", true),
		AccessTTL:    getDuration("PORTAL_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:   getDuration("PORTAL_REFRESH_TTL", 7*24*time.Hour),

		SMTPHost: os.Getenv("PORTAL_SMTP_HOST"),
		SMTPPort: getInt("PORTAL_SMTP_PORT", 587),
		SMTPUser: os.Getenv("PORTAL_SMTP_USER"),
		SMTPPass: os.Getenv("PORTAL_SMTP_PASS"),
		SMTPFrom: getenv("PORTAL_SMTP_FROM", "noreply@molsnab.ru"),
	}
}

// DSNWithTimeout appends the default connect timeout when the DSN carries
// none, so pool acquisition stays bounded under load. Both URL and key=value
// DSN forms are handled.
func DSNWithTimeout(dsn string) string {
	if dsn == "" || strings.Contains(dsn, "connect_timeout") {
		return dsn
	}
	seconds := int(DBConnectTimeout.Seconds())
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return fmt.Sprintf("%s%sconnect_timeout=%d", dsn, sep, seconds)
	}
	return fmt.Sprintf("%s connect_timeout=%d", dsn, seconds)
}
