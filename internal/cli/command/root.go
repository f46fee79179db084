// Package command provides CLI command definitions for calcmesh-cli.
package command

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/calcmesh-go/internal/cli/config"
	"github.com/yndnr/calcmesh-go/internal/cli/connection"
	"github.com/yndnr/calcmesh-go/internal/cli/output"
	"github.com/yndnr/calcmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/calcmesh-go/internal/infra/tlsroots"
)

const settingsKey = "settings"

// App creates the CLI application.
func App() *cli.App {
	info := buildinfo.Get()
	app := &cli.App{
		Name:    "calcmesh-cli",
		Usage:   "Evaluate arithmetic expressions on a calcmesh server",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			EvalCommand(),
			REPLCommand(),
			PingCommand(),
			HealthCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			s, err := loadSettings(c)
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[settingsKey] = s
			return nil
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI settings file",
			EnvVars: []string{"CALCMESH_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Expression server address (host:port or unix:///path)",
			EnvVars: []string{"CALCMESH_SERVER"},
		},
		&cli.StringFlag{
			Name:    "http-server",
			Usage:   "Ops HTTP server address",
			EnvVars: []string{"CALCMESH_HTTP_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
		},
		&cli.BoolFlag{
			Name:  "tls",
			Usage: "Use TLS for the expression protocol",
		},
		&cli.StringFlag{
			Name:  "tls-ca",
			Usage: "PEM file with CA certificates to trust",
		},
		&cli.BoolFlag{
			Name:  "tls-insecure",
			Usage: "Skip server certificate verification",
		},
	}
}

// Settings are the effective options of one invocation.
type Settings struct {
	ConfigPath string        `json:"config_path" yaml:"config_path"`
	Server     string        `json:"server" yaml:"server"`
	HTTPServer string        `json:"http_server" yaml:"http_server"`
	Output     output.Format `json:"output" yaml:"output"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	TLS        bool          `json:"tls" yaml:"tls"`

	HistoryFile string `json:"history_file" yaml:"history_file"`
	HistorySize int    `json:"history_size" yaml:"history_size"`

	tlsConfig *tls.Config
}

// loadSettings merges the settings file with flags and environment.
func loadSettings(c *cli.Context) (*Settings, error) {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if c.IsSet("server") {
		cfg.Server = c.String("server")
	}
	if c.IsSet("http-server") {
		cfg.HTTPServer = c.String("http-server")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("tls") {
		cfg.TLS.Enabled = c.Bool("tls")
	}
	if c.IsSet("tls-ca") {
		cfg.TLS.CAFile = c.String("tls-ca")
	}
	if c.IsSet("tls-insecure") {
		cfg.TLS.InsecureSkipVerify = c.Bool("tls-insecure")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		ConfigPath:  path,
		Server:      cfg.Server,
		HTTPServer:  cfg.HTTPServer,
		Output:      format,
		Timeout:     cfg.Timeout,
		TLS:         cfg.TLS.Enabled,
		HistoryFile: cfg.HistoryFile,
		HistorySize: cfg.HistorySize,
	}
	if s.HistoryFile == "" {
		s.HistoryFile = defaultHistoryFile()
	}

	if cfg.TLS.Enabled {
		s.tlsConfig, err = clientTLS(cfg.TLS)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func clientTLS(c config.TLSConfig) (*tls.Config, error) {
	tc := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
	if c.CAFile != "" {
		pool, err := tlsroots.LoadCAFile(c.CAFile)
		if err != nil {
			return nil, err
		}
		tc.RootCAs = pool.Pool()
	}
	return tc, nil
}

// GetSettings retrieves the settings resolved by the Before hook.
func GetSettings(c *cli.Context) (*Settings, error) {
	if s, ok := c.App.Metadata[settingsKey].(*Settings); ok {
		return s, nil
	}
	return nil, errors.New("settings not initialized")
}

// newClient creates an expression protocol client from the settings.
func (s *Settings) newClient() *connection.Client {
	opts := []connection.Option{connection.WithTimeout(s.Timeout)}
	if s.tlsConfig != nil {
		opts = append(opts, connection.WithTLS(s.tlsConfig))
	}
	return connection.NewClient(s.Server, opts...)
}

func (s *Settings) newHTTPClient() *connection.HTTPClient {
	return connection.NewHTTPClient(s.HTTPServer, s.Timeout)
}

// write formats data in the configured output format.
func (s *Settings) write(w io.Writer, data any) error {
	return output.NewFormatter(s.Output).Format(w, data)
}
