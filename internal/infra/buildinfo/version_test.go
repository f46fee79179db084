package buildinfo

import (
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	tests := []struct {
		name  string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"BuildTime", info.BuildTime},
		{"GoVersion", info.GoVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Errorf("%s field should not be empty", tt.name)
			}
		})
	}

	if info.Version != Version {
		t.Errorf("Version = %q, want ldflags value %q", info.Version, Version)
	}
}

func TestString(t *testing.T) {
	info := Get()
	expected := info.Version + " (" + info.Commit + ") built at " + info.BuildTime
	if s := String(); s != expected {
		t.Errorf("String() = %q, want %q", s, expected)
	}
}

func TestShortCommit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0123456789abcdef0123", "0123456789ab"},
		{"abc123", "abc123"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := shortCommit(tt.in); got != tt.want {
				t.Errorf("shortCommit(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
