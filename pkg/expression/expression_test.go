package expression

import (
	"testing"

	oerrors "github.com/vango-dev/orbit/internal/errors"
)

func TestEvaluators(t *testing.T) {
	env := map[string]any{
		"count": 3,
		"name":  "Ada",
		"items": []any{"a", "b", "c"},
		"user":  map[string]any{"admin": true},
	}

	tests := []struct {
		engine string
		expr   string
		want   any
	}{
		{EngineExpr, "count * 2", 6},
		{EngineExpr, "name + '!'", "Ada!"},
		{EngineExpr, "len(items)", 3},
		{EngineExpr, "user.admin ? 'yes' : 'no'", "yes"},
		{EngineExpr, "missing == nil", true},
		{EngineCEL, "count * 2", 6},
		{EngineCEL, "name + '!'", "Ada!"},
		{EngineCEL, "size(items)", 3},
		{EngineCEL, "user.admin ? 'yes' : 'no'", "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.engine+"/"+tt.expr, func(t *testing.T) {
			ev, err := New(Config{Engine: tt.engine})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, err := ev.Evaluate(tt.expr, env)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestAllowList(t *testing.T) {
	ev := NewExpr(WithAllow("count + 1", "  "))

	if got, err := ev.Evaluate(" count + 1 ", map[string]any{"count": 1}); err != nil || got != 2 {
		t.Errorf("allowed expression = %v, %v", got, err)
	}

	_, err := ev.Evaluate("count - 1", map[string]any{"count": 1})
	if code := oerrors.Code(err); code != "E020" {
		t.Errorf("code = %q, want E020 (err %v)", code, err)
	}
}

func TestEvaluationErrors(t *testing.T) {
	for _, engine := range []string{EngineExpr, EngineCEL} {
		ev, _ := New(Config{Engine: engine})

		_, err := ev.Evaluate("count +", map[string]any{"count": 1})
		if code := oerrors.Code(err); code != "E021" {
			t.Errorf("%s: compile error code = %q, want E021 (err %v)", engine, code, err)
		}

		_, err = ev.Evaluate("", nil)
		if code := oerrors.Code(err); code != "E021" {
			t.Errorf("%s: empty expression code = %q, want E021", engine, code)
		}
	}
}

func TestUnknownEngine(t *testing.T) {
	_, err := New(Config{Engine: "javascript"})
	if code := oerrors.Code(err); code != "E022" {
		t.Errorf("code = %q, want E022", code)
	}
}

func TestProgramCache(t *testing.T) {
	cache := NewCache()
	ev := NewExpr(WithCache(cache))

	for i := 0; i < 3; i++ {
		if _, err := ev.Evaluate("count + 1", map[string]any{"count": i}); err != nil {
			t.Fatal(err)
		}
	}
	if cache.Len() != 1 {
		t.Errorf("cached programs = %d, want 1", cache.Len())
	}

	cel := NewCEL(WithCache(cache))
	cel.Evaluate("count + 1", map[string]any{"count": 1})
	cel.Evaluate("count + 1", map[string]any{"count": 2})
	cel.Evaluate("count + 1", map[string]any{"count": 2, "other": 1})
	if cache.Len() != 3 {
		t.Errorf("cached programs = %d, want 3", cache.Len())
	}
}
