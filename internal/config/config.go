// Package config reads service configuration from the environment once at
// start-up.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// API configures cmd/inkwell.
type API struct {
	Port        string
	DBPath      string
	LogLevel    string
	LogFormat   string
	JWTSecret   string
	JWTExpiry   time.Duration
	WebURL      string
	CORSOrigins []string
	RedisURL    string
	Google      Google
	Backup      Backup
}

type Google struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Enabled reports whether Google sign-in is configured.
func (g Google) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.CallbackURL != ""
}

// Backup configures database snapshots to S3-compatible storage.
type Backup struct {
	Endpoint   string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Prefix     string
	Interval   time.Duration
	Retention  time.Duration
	Passphrase string
}

// Enabled reports whether a bucket and credentials are configured.
func (b Backup) Enabled() bool {
	return b.Bucket != "" && b.AccessKey != "" && b.SecretKey != ""
}

// Web configures cmd/inkwell-web.
type Web struct {
	Port          string
	APIURL        string
	SessionSecret string
	CookieSecure  bool
	LogLevel      string
	LogFormat     string
}

// LoadAPI reads the API configuration. JWT_SECRET is required.
func LoadAPI() (*API, error) {
	expiry, err := ParseExpiry(getenv("JWT_EXPIRES_IN", "1d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	interval, err := ParseExpiry(getenv("INKWELL_BACKUP_INTERVAL", "1d"))
	if err != nil {
		return nil, fmt.Errorf("INKWELL_BACKUP_INTERVAL: %w", err)
	}
	retention, err := ParseExpiry(getenv("INKWELL_BACKUP_RETENTION", "30d"))
	if err != nil {
		return nil, fmt.Errorf("INKWELL_BACKUP_RETENTION: %w", err)
	}

	webURL := strings.TrimRight(getenv("INKWELL_WEB_URL", "http://localhost:3000"), "/")
	cfg := &API{
		Port:        getenv("INKWELL_PORT", "8080"),
		DBPath:      getenv("INKWELL_DB_PATH", "inkwell.db"),
		LogLevel:    getenv("INKWELL_LOG_LEVEL", "info"),
		LogFormat:   getenv("INKWELL_LOG_FORMAT", "text"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   expiry,
		WebURL:      webURL,
		CORSOrigins: splitList(getenv("INKWELL_CORS_ORIGINS", webURL)),
		RedisURL:    os.Getenv("INKWELL_REDIS_URL"),
		Google: Google{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			CallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		},
		Backup: Backup{
			Endpoint:   os.Getenv("INKWELL_BACKUP_ENDPOINT"),
			Bucket:     os.Getenv("INKWELL_BACKUP_BUCKET"),
			Region:     getenv("INKWELL_BACKUP_REGION", "us-east-1"),
			AccessKey:  os.Getenv("INKWELL_BACKUP_ACCESS_KEY"),
			SecretKey:  os.Getenv("INKWELL_BACKUP_SECRET_KEY"),
			Prefix:     getenv("INKWELL_BACKUP_PREFIX", "inkwell/"),
			Interval:   interval,
			Retention:  retention,
			Passphrase: os.Getenv("INKWELL_BACKUP_PASSPHRASE"),
		},
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadWeb reads the web frontend configuration. SESSION_SECRET_KEY is required.
func LoadWeb() (*Web, error) {
	secure, err := strconv.ParseBool(getenv("INKWELL_COOKIE_SECURE", "true"))
	if err != nil {
		return nil, fmt.Errorf("INKWELL_COOKIE_SECURE: %w", err)
	}
	cfg := &Web{
		Port:          getenv("INKWELL_WEB_PORT", "3000"),
		APIURL:        strings.TrimRight(getenv("INKWELL_API_URL", "http://localhost:8080"), "/"),
		SessionSecret: os.Getenv("SESSION_SECRET_KEY"),
		CookieSecure:  secure,
		LogLevel:      getenv("INKWELL_LOG_LEVEL", "info"),
		LogFormat:     getenv("INKWELL_LOG_FORMAT", "text"),
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET_KEY is required")
	}
	return cfg, nil
}

// ParseExpiry accepts Go durations ("90m", "12h") and whole days ("7d").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive, got %q", s)
	}
	return d, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
