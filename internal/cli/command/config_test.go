package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calcmesh", "cli.yaml")

	out, err := runApp(t, "", "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if out != "wrote "+path+"\n" {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := runApp(t, "", "--config", path, "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := runApp(t, "", "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestConfigTest(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.yaml")
	if err := os.WriteFile(valid, []byte("server:\n  expr:\n    addr: 0.0.0.0:7070\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("server:\n  expr:\n    read_buffer_size: 0\nlog:\n  level: loud\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	out, err := runApp(t, "", "config", "test", valid)
	if err != nil {
		t.Fatalf("config test error = %v", err)
	}
	if !strings.Contains(out, "is valid (expr tcp/0.0.0.0:7070") {
		t.Errorf("output = %q", out)
	}

	_, err = runApp(t, "", "config", "test", invalid)
	if err == nil {
		t.Fatal("config test of invalid file expected error")
	}
	for _, want := range []string{"read_buffer_size", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}

	if _, err := runApp(t, "", "config", "test"); err == nil {
		t.Error("config test without FILE expected error")
	}
}
