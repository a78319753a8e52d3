package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Terminal  TerminalConfig
	Shells    ShellConfig
	Stream    StreamConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"127.0.0.1"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// TerminalConfig holds session and PTY settings.
type TerminalConfig struct {
	Rows           uint16        `envconfig:"TERM_ROWS" default:"24"`
	Cols           uint16        `envconfig:"TERM_COLS" default:"80"`
	ReadBufferSize int           `envconfig:"TERM_READ_BUFFER" default:"4096"`
	MaxSessions    int           `envconfig:"TERM_MAX_SESSIONS" default:"0"`
	CloseTimeout   time.Duration `envconfig:"TERM_CLOSE_TIMEOUT" default:"3s"`
}

// ShellConfig controls shell discovery.
type ShellConfig struct {
	ShellsFile   string   `envconfig:"SHELLS_FILE" default:"/etc/shells"`
	CatalogFile  string   `envconfig:"SHELL_CATALOG"`
	IncludeLogin bool     `envconfig:"SHELL_INCLUDE_LOGIN" default:"true"`
	Exclude      []string `envconfig:"SHELL_EXCLUDE"`
	Term         string   `envconfig:"SHELL_TERM" default:"xterm-256color"`
}

// StreamConfig holds WebSocket settings.
type StreamConfig struct {
	SendBuffer      int      `envconfig:"WS_SEND_BUFFER" default:"256"`
	MaxMessageBytes int64    `envconfig:"WS_MAX_MESSAGE" default:"1048576"`
	AllowedOrigins  []string `envconfig:"WS_ALLOWED_ORIGINS"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds allowed origins for the REST API.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the terminal core cannot run with.
func (c *Config) Validate() error {
	if c.Terminal.Rows == 0 || c.Terminal.Cols == 0 {
		return fmt.Errorf("invalid terminal geometry %dx%d", c.Terminal.Cols, c.Terminal.Rows)
	}
	if c.Terminal.ReadBufferSize <= 0 {
		return fmt.Errorf("invalid read buffer size %d", c.Terminal.ReadBufferSize)
	}
	if c.Terminal.MaxSessions < 0 {
		return fmt.Errorf("invalid max sessions %d", c.Terminal.MaxSessions)
	}
	if c.Stream.SendBuffer <= 0 {
		return fmt.Errorf("invalid websocket send buffer %d", c.Stream.SendBuffer)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "127.0.0.1",
			ShutdownTimeout: 10 * time.Second,
		},
		Terminal: TerminalConfig{
			Rows:           24,
			Cols:           80,
			ReadBufferSize: 4096,
			MaxSessions:    0,
			CloseTimeout:   3 * time.Second,
		},
		Shells: ShellConfig{
			ShellsFile:   "/etc/shells",
			IncludeLogin: true,
			Term:         "xterm-256color",
		},
		Stream: StreamConfig{
			SendBuffer:      256,
			MaxMessageBytes: 1 << 20,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}
