package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	BaseURL    string

	API struct {
		BaseURL string
		Timeout time.Duration
	}

	Session struct {
		Secret string
		TTL    time.Duration
	}

	// DraftTTL bounds how long an idle browser workspace (staged drafts and
	// cached lists) is kept in memory.
	DraftTTL time.Duration

	MaxUploadBytes  int64
	DisplayLocation *time.Location

	PrometheusEnabled bool
	TrustedProxies    []string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}

	cfg.ListenAddr = getenvDefault("APP_LISTEN_ADDR", ":8080")
	cfg.BaseURL = getenvDefault("APP_BASE_URL", "http://localhost:8080")
	cfg.API.BaseURL = getenvDefault("APP_API_BASE_URL", "http://localhost:5000/api")
	cfg.Session.Secret = os.Getenv("APP_SESSION_SECRET")
	cfg.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", false)
	cfg.TrustedProxies = getenvList("APP_TRUSTED_PROXIES")

	var err error
	if cfg.API.Timeout, err = getenvDuration("APP_API_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Session.TTL, err = getenvDuration("APP_SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DraftTTL, err = getenvDuration("APP_DRAFT_TTL", 2*time.Hour); err != nil {
		return nil, err
	}

	maxMB := getenvDefault("APP_MAX_UPLOAD_MB", "32")
	mb, err := strconv.ParseInt(maxMB, 10, 64)
	if err != nil || mb <= 0 {
		return nil, fmt.Errorf("APP_MAX_UPLOAD_MB must be a positive integer (got %q)", maxMB)
	}
	cfg.MaxUploadBytes = mb << 20

	tz := getenvDefault("APP_DISPLAY_TIMEZONE", "Local")
	if cfg.DisplayLocation, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("APP_DISPLAY_TIMEZONE: %w", err)
	}

	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("APP_API_BASE_URL must be an absolute URL (got %q)", cfg.API.BaseURL)
	}
	if cfg.Session.Secret == "" {
		return nil, errors.New("APP_SESSION_SECRET is required")
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("APP_SESSION_SECRET must be at least 32 characters long (got %d)", len(cfg.Session.Secret))
	}

	if len(cfg.TrustedProxies) == 0 {
		fmt.Println("WARNING: No APP_TRUSTED_PROXIES configured. campusdesk will trust all proxies - Not recommended for public environments.")
	}

	return cfg, nil
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	base, err := url.Parse(c.BaseURL)
	return err != nil || base.Scheme == "https"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 30s or 2h (got %q)", key, v)
	}
	return d, nil
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
