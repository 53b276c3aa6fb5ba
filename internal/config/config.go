package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// TLS is optional; both must be set to enable it.
	TLSCertFile string `yaml:"tls_cert_file"`
	TLSKeyFile  string `yaml:"tls_key_file"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`

	// DevMode relaxes origin checks and allows identity from query params.
	DevMode     bool     `yaml:"dev_mode"`
	CORSOrigins []string `yaml:"cors_origins"`

	// JWTSecret enables token-based identity on /ws (?token=). Empty means
	// identity comes from query params (dev/testing only).
	JWTSecret string `yaml:"jwt_secret"`

	Heartbeat  time.Duration `yaml:"heartbeat"`
	WSReadBuf  int           `yaml:"ws_read_buf"`
	WSWriteBuf int           `yaml:"ws_write_buf"`
	WSMaxMsg   int64         `yaml:"ws_max_msg"`

	// Rate limiting, per client IP.
	RateLimitingEnabled bool    `yaml:"rate_limiting_enabled"`
	WSConnRatePerSec    float64 `yaml:"ws_conn_rate_per_sec"`
	WSConnBurst         int     `yaml:"ws_conn_burst"`
	HTTPRatePerSec      float64 `yaml:"http_rate_per_sec"`
	HTTPBurst           int     `yaml:"http_burst"`

	// MaxRoomSize bounds growth of a room via add-user / invites.
	MaxRoomSize int `yaml:"max_room_size"`

	// InviteTTL bounds how long a direct invite stays redeemable.
	InviteTTL time.Duration `yaml:"invite_ttl"`

	MetricsRoute string `yaml:"metrics_route"`
	LogLevel     string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8080,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		Heartbeat:         20 * time.Second,
		WSReadBuf:         64 << 10,
		WSWriteBuf:        64 << 10,
		WSMaxMsg:          1 << 20,
		WSConnRatePerSec:  5,
		WSConnBurst:       10,
		HTTPRatePerSec:    20,
		HTTPBurst:         40,
		MaxRoomSize:       10,
		InviteTTL:         2 * time.Minute,
		MetricsRoute:      "/metrics",
		LogLevel:          "info",
	}
}

// Load reads an optional YAML file, then applies env-var overrides on top.
// A missing file is not an error; defaults + env apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Host = getenv("HOST", c.Host)
	c.Port = getenvInt("PORT", c.Port)
	c.TLSCertFile = getenv("TLS_CERT_FILE", c.TLSCertFile)
	c.TLSKeyFile = getenv("TLS_KEY_FILE", c.TLSKeyFile)
	c.JWTSecret = getenv("JWT_SECRET", c.JWTSecret)
	c.DevMode = getenvBool("DEV_MODE", c.DevMode)
	c.Heartbeat = getenvDur("HEARTBEAT", c.Heartbeat)
	c.MaxRoomSize = getenvInt("MAX_ROOM_SIZE", c.MaxRoomSize)
	c.InviteTTL = getenvDur("INVITE_TTL", c.InviteTTL)
	c.MetricsRoute = getenv("METRICS_ROUTE", c.MetricsRoute)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
}

func (c Config) BindAddr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in (0, 65535], got %d", c.Port)
	}
	if c.Heartbeat <= 0 {
		return fmt.Errorf("heartbeat must be > 0")
	}
	if c.WSMaxMsg <= 0 {
		return fmt.Errorf("ws_max_msg must be > 0")
	}
	if c.MaxRoomSize < 2 {
		return fmt.Errorf("max_room_size must be >= 2, got %d", c.MaxRoomSize)
	}
	if c.InviteTTL <= 0 {
		return fmt.Errorf("invite_ttl must be > 0")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("tls_cert_file and tls_key_file must both be set when one is set")
	}
	if c.RateLimitingEnabled {
		if c.WSConnRatePerSec <= 0 || c.WSConnBurst <= 0 {
			return fmt.Errorf("ws rate limit values must be > 0 when rate limiting is enabled")
		}
		if c.HTTPRatePerSec <= 0 || c.HTTPBurst <= 0 {
			return fmt.Errorf("http rate limit values must be > 0 when rate limiting is enabled")
		}
	}
	if !c.DevMode && c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required outside dev_mode")
	}
	return nil
}

// env helpers

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		return v == "1" || v == "true"
	}
	return def
}

func getenvDur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
