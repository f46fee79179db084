// Package main provides the entry point for calcmesh-server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/calcmesh-go/internal/core/service"
	"github.com/yndnr/calcmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/calcmesh-go/internal/infra/confloader"
	"github.com/yndnr/calcmesh-go/internal/infra/shutdown"
	"github.com/yndnr/calcmesh-go/internal/server/config"
	"github.com/yndnr/calcmesh-go/internal/server/exprserver"
	"github.com/yndnr/calcmesh-go/internal/server/httpserver"
	"github.com/yndnr/calcmesh-go/internal/telemetry/logger"
	"github.com/yndnr/calcmesh-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	info := buildinfo.Get()
	return &cli.App{
		Name:      "calcmesh-server",
		Usage:     "exact decimal arithmetic over TCP",
		ArgsUsage: "[PORT]",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"CALCMESH_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reload the log level when the configuration file changes",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Action: run,
	}
}

// options holds everything taken from the command line.
type options struct {
	configFile string
	watch      bool
	flags      map[string]any
	port       int
	hasPort    bool
}

func parseOptions(c *cli.Context) (*options, error) {
	opts := &options{
		configFile: c.String("config"),
		watch:      c.Bool("watch"),
		flags:      make(map[string]any),
	}

	if c.IsSet("log-level") {
		opts.flags["log.level"] = c.String("log-level")
	}

	switch c.NArg() {
	case 0:
	case 1:
		port, err := strconv.Atoi(c.Args().First())
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", c.Args().First(), err)
		}
		opts.port = port
		opts.hasPort = true
	default:
		return nil, fmt.Errorf("expected at most one argument (PORT), got %d", c.NArg())
	}

	if opts.watch && opts.configFile == "" {
		return nil, errors.New("--watch requires --config")
	}
	return opts, nil
}

func run(c *cli.Context) error {
	opts, err := parseOptions(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting calcmesh-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", opts.configFile)

	metrics := metric.NewRegistry()
	metrics.MustRegister(metric.NewCollector(info.Version, info.Commit))

	svc := service.NewEvalService(&service.EvalServiceConfig{
		DivisionScale: cfg.Interp.DivisionScale,
	}, metrics)

	exprSrv := exprserver.New(exprConfig(&cfg.Server.Expr), svc, metrics, slogLogger)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	if err := exprSrv.Start(ctx); err != nil {
		return fmt.Errorf("start expression server: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	// Hooks run in reverse order: HTTP first, then the expression server.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down expression server")
		return exprSrv.Shutdown(ctx)
	})

	if cfg.Server.HTTP.Enabled {
		httpSrv := startHTTP(ctx, cfg, svc, metrics, exprSrv, shutdownHandler, slogLogger)
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down HTTP server")
			return httpSrv.Shutdown(ctx)
		})
	}

	if opts.watch {
		w, err := watchConfig(opts, slogLogger)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		shutdownHandler.OnShutdown(func(context.Context) error {
			return w.Stop()
		})
	}

	log.Info("server started, press Ctrl+C to stop",
		"expr_addr", exprSrv.Addr().String())
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully", "reason", string(shutdownHandler.Reason()))
	return nil
}

// loadConfig layers file, environment and flags over the defaults, then
// applies the positional port and validates the result.
func loadConfig(opts *options) (*config.ServerConfig, error) {
	cfg := config.Default()

	var loaderOpts []confloader.Option
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, confloader.WithConfigFile(opts.configFile))
	}
	loader := confloader.NewLoader(loaderOpts...)

	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if len(opts.flags) > 0 {
		if err := loader.LoadMap(opts.flags); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal flags: %w", err)
		}
	}

	if opts.hasPort {
		if err := cfg.Server.Expr.SetPort(opts.port); err != nil {
			return nil, err
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func exprConfig(c *config.ExprConfig) *exprserver.Config {
	return &exprserver.Config{
		Address:         c.Addr,
		Network:         c.Network,
		TLSEnabled:      c.TLSEnabled,
		TLSAddress:      c.TLSAddr,
		TLSCertFile:     c.TLSCertFile,
		TLSKeyFile:      c.TLSKeyFile,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		IdleTimeout:     c.IdleTimeout,
		DrainTimeout:    c.DrainTimeout,
		ReadBufferSize:  c.ReadBufferSize,
		MaxRequestBytes: c.MaxRequestBytes,
		RateLimit:       c.RateLimit,
	}
}

// startHTTP serves the ops endpoints in the background. A listener
// failure triggers shutdown of the whole process.
func startHTTP(
	ctx context.Context,
	cfg *config.ServerConfig,
	svc *service.EvalService,
	metrics *metric.Registry,
	exprSrv *exprserver.Server,
	sh *shutdown.Handler,
	log *slog.Logger,
) *httpserver.Server {
	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Evaluator = svc
	routerCfg.Metrics = metrics
	routerCfg.Logger = log
	routerCfg.Ready = exprSrv.Running
	routerCfg.MaxBodyBytes = int64(cfg.Server.Expr.MaxRequestBytes)
	routerCfg.Version = buildinfo.Get().Version
	routerCfg.GlobalRateLimit = cfg.Server.HTTP.RateLimit
	routerCfg.EnableAudit = cfg.Server.HTTP.Audit
	routerCfg.Context = ctx

	httpCfg := cfg.Server.HTTP
	srv := httpserver.New(httpCfg.Addr, httpserver.NewRouter(routerCfg))

	go func() {
		log.Info("HTTP server listening", "addr", httpCfg.Addr)

		var err error
		if httpCfg.TLSCertFile != "" && httpCfg.TLSKeyFile != "" {
			err = srv.ListenAndServeTLS(httpCfg.TLSCertFile, httpCfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			sh.Trigger()
		}
	}()

	return srv
}

// watchConfig reloads the log level whenever the configuration file
// changes. Other settings need a restart.
func watchConfig(opts *options, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(opts.configFile); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		level, err := reloadLogLevel(opts)
		if err != nil {
			log.Warn("configuration reload failed", "path", path, "error", err)
			return
		}
		if level == logger.GetLevel() {
			return
		}
		logger.SetLevel(level)
		log.Info("log level reloaded", "level", level)
	})

	w.StartAsync()
	return w, nil
}

func reloadLogLevel(opts *options) (string, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return "", err
	}
	return cfg.Log.Level, nil
}
