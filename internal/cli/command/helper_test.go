package command

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/calcmesh-go/internal/core/service"
	"github.com/yndnr/calcmesh-go/internal/server/exprserver"
	"github.com/yndnr/calcmesh-go/internal/server/httpserver"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// startExprServer runs a real expression server on a loopback port.
func startExprServer(t *testing.T) string {
	t.Helper()

	cfg := exprserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := exprserver.New(cfg, service.NewEvalService(nil, nil), nil, discardLogger)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// startHTTPServer runs the ops router behind httptest.
func startHTTPServer(t *testing.T) string {
	t.Helper()

	cfg := httpserver.DefaultRouterConfig()
	cfg.Evaluator = service.NewEvalService(nil, nil)
	cfg.Logger = discardLogger
	cfg.Version = "test"
	ts := httptest.NewServer(httpserver.NewRouter(cfg))
	t.Cleanup(ts.Close)
	return ts.URL
}

// runApp runs calcmesh-cli with an isolated home directory.
func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{"CALCMESH_SERVER", "CALCMESH_HTTP_SERVER", "CALCMESH_CLI_CONFIG"} {
		// An empty variable still counts as set for the flag.
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(append([]string{"calcmesh-cli"}, args...))
	return stdout.String(), err
}
