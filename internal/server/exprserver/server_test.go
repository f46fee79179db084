package exprserver

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"io"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/calcmesh-go/internal/telemetry/metric"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	cfg.IdleTimeout = 2 * time.Second
	cfg.DrainTimeout = 50 * time.Millisecond
	return cfg
}

func startServer(t *testing.T, cfg *Config, reg *metric.Registry) *Server {
	t.Helper()
	srv := New(cfg, newTestEvaluator(), reg, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

// query sends expr over a fresh connection, half-closing when
// halfClose is set, and returns everything the server wrote.
func query(t *testing.T, network, addr, expr string, halfClose bool) string {
	t.Helper()
	conn, err := net.DialTimeout(network, addr, time.Second)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(3 * time.Second))

	if _, err := io.WriteString(conn, expr); err != nil {
		t.Fatalf("write: %v", err)
	}
	if halfClose {
		if cw, ok := conn.(interface{ CloseWrite() error }); ok {
			if err := cw.CloseWrite(); err != nil {
				t.Fatalf("CloseWrite: %v", err)
			}
		}
	}
	got, _ := io.ReadAll(conn)
	return string(got)
}

func TestServer_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Address != "127.0.0.1:7070" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if cfg.Network != "tcp" {
		t.Errorf("Network = %q, want tcp", cfg.Network)
	}
	if cfg.TLSEnabled {
		t.Error("TLS should be disabled by default")
	}
	if cfg.DrainTimeout <= 0 || cfg.IdleTimeout <= 0 || cfg.ReadBufferSize <= 0 {
		t.Errorf("timeouts and sizes must be positive: %+v", cfg)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("RateLimit = %d, want 0 (disabled)", cfg.RateLimit)
	}
}

func TestServer_AddrBeforeStart(t *testing.T) {
	srv := New(nil, newTestEvaluator(), nil, nil)
	if srv.Addr() != nil {
		t.Errorf("Addr() = %v before Start, want nil", srv.Addr())
	}
}

func TestServer_EndToEnd(t *testing.T) {
	srv := startServer(t, testConfig(), nil)
	addr := srv.Addr().String()

	tests := []struct {
		expr      string
		halfClose bool
		want      string
	}{
		{"3 + 5", true, "8\n"},
		{"3 + 5", false, "8\n"},
		{"2 * (3 + 4)", false, "14\n"},
		{"10 / 4", true, "2.5000000000\n"},
		{"1.00000000000/3", true, "0.33333333333\n"},
		{"3/0", true, ""},
		{"3/0.00", false, ""},
		{"3 +", true, ""},
		{"", true, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q/halfclose=%v", tt.expr, tt.halfClose), func(t *testing.T) {
			if got := query(t, "tcp", addr, tt.expr, tt.halfClose); got != tt.want {
				t.Errorf("response = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServer_Concurrent(t *testing.T) {
	srv := startServer(t, testConfig(), nil)
	addr := srv.Addr().String()

	const clients = 32
	var wg sync.WaitGroup
	errs := make(chan error, clients)

	for i := range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := net.DialTimeout("tcp", addr, time.Second)
			if err != nil {
				errs <- err
				return
			}
			defer conn.Close()
			_ = conn.SetDeadline(time.Now().Add(3 * time.Second))

			if _, err := fmt.Fprintf(conn, "%d * 2", i); err != nil {
				errs <- err
				return
			}
			got, _ := io.ReadAll(conn)
			if want := fmt.Sprintf("%d\n", i*2); string(got) != want {
				errs <- fmt.Errorf("client %d: got %q, want %q", i, got, want)
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	reg := metric.NewRegistry()
	srv := startServer(t, cfg, reg)
	addr := srv.Addr().String()

	if got := query(t, "tcp", addr, "1+1", false); got != "2\n" {
		t.Fatalf("first connection response = %q, want %q", got, "2\n")
	}

	// The bucket holds one token per second; the next connection is refused.
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	got, _ := io.ReadAll(conn)
	if len(got) != 0 {
		t.Errorf("rate limited connection got %q, want nothing", got)
	}

	deadline := time.Now().Add(time.Second)
	for testutil.ToFloat64(reg.RequestsTotal.WithLabelValues(metric.OutcomeRateLimited)) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("rate limited connection was not counted")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if n := srv.limiters.Len(); n != 1 {
		t.Errorf("limiter registry has %d entries, want 1", n)
	}
}

func TestServer_Unix(t *testing.T) {
	dir, err := os.MkdirTemp("", "calcmesh")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "calc.sock")

	// A leftover socket file must not prevent startup.
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Network = "unix"
	cfg.Address = path
	startServer(t, cfg, nil)

	if got := query(t, "unix", path, "-(2 + 3)", true); got != "-5\n" {
		t.Errorf("response = %q, want %q", got, "-5\n")
	}
}

func TestServer_TLS(t *testing.T) {
	certFile, keyFile, pool := writeTestCert(t)

	cfg := testConfig()
	cfg.TLSEnabled = true
	cfg.TLSAddress = "127.0.0.1:0"
	cfg.TLSCertFile = certFile
	cfg.TLSKeyFile = keyFile
	srv := startServer(t, cfg, nil)

	conn, err := tls.Dial("tcp", srv.TLSAddr().String(), &tls.Config{
		RootCAs:    pool,
		ServerName: "127.0.0.1",
	})
	if err != nil {
		t.Fatalf("tls dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(3 * time.Second))

	if _, err := io.WriteString(conn, "0.1 + 0.2"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, _ := io.ReadAll(conn)
	if string(got) != "0.3\n" {
		t.Errorf("response = %q, want %q", got, "0.3\n")
	}
}

func TestServer_TLSMissingCert(t *testing.T) {
	cfg := testConfig()
	cfg.TLSEnabled = true
	cfg.TLSAddress = "127.0.0.1:0"
	cfg.TLSCertFile = filepath.Join(t.TempDir(), "missing.pem")
	cfg.TLSKeyFile = cfg.TLSCertFile

	srv := New(cfg, newTestEvaluator(), nil, nil)
	if err := srv.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail without a certificate")
	}
	if srv.Addr() != nil {
		t.Error("plain listener should not stay open after a failed Start")
	}
}

func TestServer_Shutdown(t *testing.T) {
	srv := New(testConfig(), newTestEvaluator(), nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	addr := srv.Addr().String()

	// A connected but silent client holds a session open until shutdown
	// waits it out through the idle timeout.
	idle, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer idle.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		conn.Close()
		t.Error("dial after Shutdown succeeded")
	}
}

func TestServer_ShutdownTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTimeout = 5 * time.Second
	srv := New(cfg, newTestEvaluator(), nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	idle, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer idle.Close()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(ctx); err != context.DeadlineExceeded {
		t.Errorf("Shutdown() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRemoteIP(t *testing.T) {
	tests := []struct {
		addr net.Addr
		want string
	}{
		{&net.TCPAddr{IP: net.ParseIP("10.0.0.1"), Port: 5000}, "10.0.0.1"},
		{&net.TCPAddr{IP: net.ParseIP("::1"), Port: 5000}, "::1"},
		{&net.UnixAddr{Name: "@", Net: "unix"}, "unix"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := remoteIP(tt.addr); got != tt.want {
			t.Errorf("remoteIP(%v) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func writeTestCert(t *testing.T) (certFile, keyFile string, pool *x509.CertPool) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "calcmesh-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		IsCA:         true,

		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(certFile, certPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}

	pool = x509.NewCertPool()
	pool.AppendCertsFromPEM(certPEM)
	return certFile, keyFile, pool
}
