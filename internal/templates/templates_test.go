package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/orbit/internal/config"
	"github.com/vango-dev/orbit/internal/errors"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"minimal", false},
		{"demo", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				if code := errors.Code(err); code != "E052" {
					t.Errorf("code = %q, want E052", code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tmpl.Name != tt.name {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.name)
			}
		})
	}
}

func TestList(t *testing.T) {
	if diff := cmp.Diff([]string{"demo", "minimal"}, List()); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tmpl, _ := Get(name)
			if err := tmpl.Create(dir, Config{ProjectName: "shop"}); err != nil {
				t.Fatalf("Create: %v", err)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				t.Fatalf("generated config does not load: %v", err)
			}
			page, err := os.ReadFile(cfg.PagePath())
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if !strings.Contains(string(page), "<title>shop</title>") {
				t.Error("page title not substituted")
			}
			if !strings.Contains(string(page), `o-scope="toggle"`) {
				t.Error("page has no toggle scope")
			}
		})
	}
}

func TestCreateRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "index.html")
	if err := os.WriteFile(existing, []byte("mine"), 0644); err != nil {
		t.Fatal(err)
	}

	tmpl, _ := Get("minimal")
	err := tmpl.Create(dir, Config{})
	if code := errors.Code(err); code != "E053" {
		t.Fatalf("code = %q, want E053", code)
	}
	if data, _ := os.ReadFile(existing); string(data) != "mine" {
		t.Error("existing file was modified")
	}
	if _, err := os.Stat(filepath.Join(dir, "orbit.json")); err == nil {
		t.Error("orbit.json written despite the conflict")
	}

	if err := tmpl.Create(dir, Config{Force: true}); err != nil {
		t.Fatalf("Create with Force: %v", err)
	}
	if data, _ := os.ReadFile(existing); string(data) == "mine" {
		t.Error("Force did not overwrite")
	}
}

func TestRenderPrefix(t *testing.T) {
	tmpl, _ := Get("demo")
	data, err := tmpl.Render("index.html", Config{Prefix: "x-"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	page := string(data)
	if strings.Contains(page, " o-") {
		t.Error("default prefix leaked into a page rendered with x-")
	}
	if !strings.Contains(page, `x-scope="counter"`) {
		t.Error("counter scope missing")
	}

	if _, err := tmpl.Render("missing.txt", Config{}); err == nil {
		t.Error("expected an error for a missing file")
	}
}
