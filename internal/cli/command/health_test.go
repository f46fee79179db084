package command

import (
	"testing"
)

func TestHealth(t *testing.T) {
	url := startHTTPServer(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"health", []string{"health"}, "healthy\n"},
		{"ready", []string{"health", "--ready"}, "ready\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, "", append([]string{"--http-server", url}, tt.args...)...)
			if err != nil {
				t.Fatalf("health error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}
