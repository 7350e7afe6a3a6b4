package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnv(t *testing.T) {
	env := map[string]string{
		"CONTROL_URL": "http://plotter.local:4628",
		"HOOK_TOKEN":  "secret",
		"EMPTY":       "",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set", "url: ${CONTROL_URL}", "url: http://plotter.local:4628"},
		{"unset", "url: ${NOPE}", "url: "},
		{"default when unset", "art: ${NOPE:-lines}", "art: lines"},
		{"default ignored when set", "url: ${CONTROL_URL:-http://localhost:4628}", "url: http://plotter.local:4628"},
		{"default when empty", "poll_interval: ${EMPTY:-1s}", "poll_interval: 1s"},
		{"several", "${HOOK_TOKEN}@${CONTROL_URL}", "secret@http://plotter.local:4628"},
		{"escaped", "template: $${HOOK_TOKEN}", "template: ${HOOK_TOKEN}"},
		{"not a reference", "cost: $5 {x}", "cost: $5 {x}"},
		{"no vars", "art: lines\n", "art: lines\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnv(tt.in, lookup); got != tt.want {
				t.Errorf("expandEnv(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("HOOK_URL", "https://hooks.example.com/plot")
	t.Setenv("LIVEDRAW_ART", "")

	path := filepath.Join(t.TempDir(), "livedraw.yaml")
	doc := `art: ${LIVEDRAW_ART:-lines}
adapter:
  type: webhook
  url: ${HOOK_URL}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Art != "lines" {
		t.Errorf("art = %q, want lines", cfg.Art)
	}
	if cfg.Adapter.URL != "https://hooks.example.com/plot" {
		t.Errorf("adapter url = %q", cfg.Adapter.URL)
	}
}
