package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	apiPath = "/api/weblarek"
	cdnPath = "/content/weblarek"
)

// Config holds runtime configuration. Values come from defaults, then the
// optional YAML file named by CONFIG_FILE, then environment variables.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	APIOrigin       string        `yaml:"api_origin"`
	APIURL          string        `yaml:"api_url"`
	CDNURL          string        `yaml:"cdn_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	MaxSessions     int           `yaml:"max_sessions"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	LogLevel        string        `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		HTTPAddr:        ":8080",
		APIOrigin:       "http://localhost:3000",
		ShutdownTimeout: 10 * time.Second,
		SessionTTL:      30 * time.Minute,
		MaxSessions:     10000,
		LogLevel:        "info",
	}
}

// Load builds Config from defaults, the CONFIG_FILE overlay and the
// environment, in that order, and validates it.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	cfg.derive()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the backend URLs are absolute.
func (c Config) Validate() error {
	var errs []error
	for name, raw := range map[string]string{"api url": c.APIURL, "cdn url": c.CDNURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s %q is not an absolute URL", name, raw))
		}
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.MaxSessions < 0 {
		errs = append(errs, errors.New("max sessions must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = envOrDefault("HTTP_ADDR", c.HTTPAddr)
	c.APIOrigin = envOrDefault("API_ORIGIN", c.APIOrigin)
	c.APIURL = envOrDefault("API_URL", c.APIURL)
	c.CDNURL = envOrDefault("CDN_URL", c.CDNURL)
	c.ShutdownTimeout = envDuration("SHUTDOWN_TIMEOUT_SECONDS", c.ShutdownTimeout)
	c.SessionTTL = envMinutes("SESSION_TTL_MINUTES", c.SessionTTL)
	c.MaxSessions = envInt("MAX_SESSIONS", c.MaxSessions)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
}

// derive fills the backend URLs left unset from the API origin.
func (c *Config) derive() {
	origin := strings.TrimRight(c.APIOrigin, "/")
	if c.APIURL == "" {
		c.APIURL = origin + apiPath
	}
	if c.CDNURL == "" {
		c.CDNURL = origin + cdnPath
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func envMinutes(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		minutes, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
