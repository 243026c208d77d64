// Package config loads the storefinder server configuration.
//
// A configuration file is either JSON or HCL, chosen by extension. Every
// field is optional; the Get* accessors fall back to the defaults below so
// partial files are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

const (
	DefaultListen            = ":8080"
	DefaultDBPath            = "storefinder.db"
	DefaultSolveTimeout      = 10 * time.Second
	DefaultMaxBodyBytes      = 10 << 20
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 15 * time.Minute

	maxFileSize = 1 * 1024 * 1024 // 1MB
)

// ServerConfig is the root configuration for the storefinder server.
type ServerConfig struct {
	Listen       *string          `json:"listen,omitempty" hcl:"listen,optional"`
	DBPath       *string          `json:"db_path,omitempty" hcl:"db_path,optional"`
	Migrations   *bool            `json:"migrations,omitempty" hcl:"migrations,optional"`
	SolveTimeout *string          `json:"solve_timeout,omitempty" hcl:"solve_timeout,optional"` // duration string like "10s"
	MaxBodyBytes *int64           `json:"max_body_bytes,omitempty" hcl:"max_body_bytes,optional"`
	RateLimit    *RateLimitConfig `json:"rate_limit,omitempty" hcl:"rate_limit,block"`
}

// RateLimitConfig bounds how many requests a single client IP may make per
// window. Requests of zero disables limiting.
type RateLimitConfig struct {
	Requests *int    `json:"requests,omitempty" hcl:"requests,optional"`
	Window   *string `json:"window,omitempty" hcl:"window,optional"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrBool(v bool) *bool       { return &v }
func ptrInt(v int) *int          { return &v }
func ptrInt64(v int64) *int64    { return &v }

// EmptyConfig returns a ServerConfig with all fields unset.
func EmptyConfig() *ServerConfig {
	return &ServerConfig{}
}

// DefaultConfig returns a ServerConfig with every field set to its default.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Listen:       ptrString(DefaultListen),
		DBPath:       ptrString(DefaultDBPath),
		Migrations:   ptrBool(true),
		SolveTimeout: ptrString(DefaultSolveTimeout.String()),
		MaxBodyBytes: ptrInt64(DefaultMaxBodyBytes),
		RateLimit: &RateLimitConfig{
			Requests: ptrInt(DefaultRateLimitRequests),
			Window:   ptrString(DefaultRateLimitWindow.String()),
		},
	}
}

// LoadConfig loads a ServerConfig from a .json or .hcl file.
// The file must be under 1MB. The result is validated before it is returned.
func LoadConfig(path string) (*ServerConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".hcl" {
		return nil, fmt.Errorf("config file must have .json or .hcl extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *ServerConfig
	if ext == ".hcl" {
		cfg, err = parseHCL(data, cleanPath)
	} else {
		cfg, err = parseJSON(data)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseJSON(data []byte) (*ServerConfig, error) {
	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

func parseHCL(data []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	cfg := EmptyConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *ServerConfig) Validate() error {
	if c.Listen != nil && *c.Listen == "" {
		return fmt.Errorf("listen must not be empty")
	}

	if c.SolveTimeout != nil && *c.SolveTimeout != "" {
		d, err := time.ParseDuration(*c.SolveTimeout)
		if err != nil {
			return fmt.Errorf("invalid solve_timeout '%s': %w", *c.SolveTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("solve_timeout must be positive, got %s", d)
		}
	}

	if c.MaxBodyBytes != nil && *c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", *c.MaxBodyBytes)
	}

	if rl := c.RateLimit; rl != nil {
		if rl.Requests != nil && *rl.Requests < 0 {
			return fmt.Errorf("rate_limit.requests must be non-negative, got %d", *rl.Requests)
		}
		if rl.Window != nil && *rl.Window != "" {
			d, err := time.ParseDuration(*rl.Window)
			if err != nil {
				return fmt.Errorf("invalid rate_limit.window '%s': %w", *rl.Window, err)
			}
			if d <= 0 {
				return fmt.Errorf("rate_limit.window must be positive, got %s", d)
			}
		}
	}

	return nil
}

// GetListen returns the listen address or the default.
func (c *ServerConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return DefaultListen
	}
	return *c.Listen
}

// GetDBPath returns the database path or the default. An explicitly empty
// path is kept: it runs the server without query history.
func (c *ServerConfig) GetDBPath() string {
	if c.DBPath == nil {
		return DefaultDBPath
	}
	return *c.DBPath
}

// GetMigrations reports whether pending migrations are applied at startup.
func (c *ServerConfig) GetMigrations() bool {
	if c.Migrations == nil {
		return true
	}
	return *c.Migrations
}

// GetSolveTimeout parses and returns SolveTimeout as a time.Duration.
func (c *ServerConfig) GetSolveTimeout() time.Duration {
	if c.SolveTimeout == nil || *c.SolveTimeout == "" {
		return DefaultSolveTimeout
	}
	d, err := time.ParseDuration(*c.SolveTimeout)
	if err != nil || d <= 0 {
		return DefaultSolveTimeout
	}
	return d
}

// GetMaxBodyBytes returns the request body cap or the default.
func (c *ServerConfig) GetMaxBodyBytes() int64 {
	if c.MaxBodyBytes == nil || *c.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return *c.MaxBodyBytes
}

// GetRateLimitRequests returns the per-window request budget or the default.
func (c *ServerConfig) GetRateLimitRequests() int {
	if c.RateLimit == nil || c.RateLimit.Requests == nil {
		return DefaultRateLimitRequests
	}
	return *c.RateLimit.Requests
}

// GetRateLimitWindow returns the rate limit window or the default.
func (c *ServerConfig) GetRateLimitWindow() time.Duration {
	if c.RateLimit == nil || c.RateLimit.Window == nil || *c.RateLimit.Window == "" {
		return DefaultRateLimitWindow
	}
	d, err := time.ParseDuration(*c.RateLimit.Window)
	if err != nil || d <= 0 {
		return DefaultRateLimitWindow
	}
	return d
}
