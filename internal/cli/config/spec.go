// Package config defines the CLI configuration structure.
package config

import (
	"fmt"
	"time"
)

// CLIConfig is the configuration for calcmesh-cli.
type CLIConfig struct {
	// Server is the expression protocol address (host:port or unix://path).
	Server string `yaml:"server"`
	// HTTPServer is the ops HTTP address.
	HTTPServer string `yaml:"http_server"`
	// Output is text, json or yaml.
	Output  string        `yaml:"output"`
	Timeout time.Duration `yaml:"timeout"`

	TLS TLSConfig `yaml:"tls"`

	HistoryFile string `yaml:"history_file"`
	HistorySize int    `yaml:"history_size"`
}

// TLSConfig configures the client side of TLS connections.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled"`
	CAFile             string `yaml:"ca_file"`
	ServerName         string `yaml:"server_name"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      "localhost:7070",
		HTTPServer:  "localhost:7080",
		Output:      "text",
		Timeout:     10 * time.Second,
		HistorySize: 1000,
	}
}

// Validate checks field values.
func (c *CLIConfig) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server must not be empty")
	}
	switch c.Output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output %q must be one of text, json, yaml", c.Output)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("history_size must not be negative, got %d", c.HistorySize)
	}
	return nil
}
