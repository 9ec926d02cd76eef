package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/orbit/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Prefix != "o-" {
		t.Errorf("Prefix = %q, want o-", cfg.Prefix)
	}
	if cfg.Serve.Port != DefaultPort {
		t.Errorf("Serve.Port = %d, want %d", cfg.Serve.Port, DefaultPort)
	}
	if cfg.Compute.Engine != "expr" {
		t.Errorf("Compute.Engine = %q, want expr", cfg.Compute.Engine)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if code := errors.Code(err); code != "E040" {
		t.Fatalf("missing config code = %q, want E040", code)
	}

	configJSON := `{
  "prefix": "x-",
  "compute": {"engine": "cel", "allow": ["count * 2"]},
  "serve": {"port": 8080}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Prefix != "x-" {
		t.Errorf("Prefix = %q, want x-", cfg.Prefix)
	}
	if diff := cmp.Diff([]string{"count * 2"}, cfg.Compute.Allow); diff != "" {
		t.Errorf("Allow mismatch (-want +got):\n%s", diff)
	}
	if cfg.Serve.Port != 8080 {
		t.Errorf("Serve.Port = %d, want 8080", cfg.Serve.Port)
	}
	// Defaults fill what the file leaves out.
	if cfg.Serve.Host != DefaultHost {
		t.Errorf("Serve.Host = %q, want %q", cfg.Serve.Host, DefaultHost)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `prefix: v-
log:
  level: debug
  format: json
metrics:
  namespace: playground
`
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLConfigFileName), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Prefix != "v-" {
		t.Errorf("Prefix = %q, want v-", cfg.Prefix)
	}
	if cfg.Metrics.Namespace != "playground" {
		t.Errorf("Metrics.Namespace = %q, want playground", cfg.Metrics.Namespace)
	}

	var buf bytes.Buffer
	cfg.Logger(&buf).Debug("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected a JSON debug record, got %q", buf.String())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    string
	}{
		{"malformed json", ConfigFileName, `{"prefix":`, "E042"},
		{"malformed yaml", YAMLConfigFileName, "prefix: [", "E042"},
		{"bad prefix", ConfigFileName, `{"prefix":"orbit"}`, "E041"},
		{"bad engine", ConfigFileName, `{"compute":{"engine":"lua"}}`, "E041"},
		{"bad level", ConfigFileName, `{"log":{"level":"loud"}}`, "E041"},
		{"bad format", ConfigFileName, `{"log":{"format":"xml"}}`, "E041"},
		{"bad port", ConfigFileName, `{"serve":{"port":70000}}`, "E041"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tmpDir, tt.file), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(tmpDir)
			if code := errors.Code(err); code != tt.code {
				t.Errorf("code = %q, want %s (err: %v)", code, tt.code, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := New()
			cfg.Prefix = "x-"
			cfg.Compute.Allow = []string{"a + b"}
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if diff := cmp.Diff(cfg, loaded, cmp.AllowUnexported(Config{})); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	found, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	want, _ := filepath.Abs(root)
	if found != want {
		t.Errorf("FindProjectRoot = %q, want %q", found, want)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Address() != "localhost:4000" {
		t.Errorf("Address() = %q, want localhost:4000", cfg.Address())
	}
}

func TestEvaluator(t *testing.T) {
	cfg := New()
	cfg.Compute.Engine = "cel"
	e, err := cfg.Evaluator()
	if err != nil {
		t.Fatalf("Evaluator: %v", err)
	}
	got, err := e.Evaluate("a * 2", map[string]any{"a": 21})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != 42 {
		t.Errorf("a * 2 = %v, want 42", got)
	}
}
