package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "scope error",
			code:    "E001",
			wantMsg: "Unknown scope name",
			wantCat: CategoryScope,
		},
		{
			name:    "binding error",
			code:    "E002",
			wantMsg: "Structural directive requires a template element",
			wantCat: CategoryBinding,
		},
		{
			name:    "hydration error",
			code:    "E030",
			wantMsg: "Malformed props payload",
			wantCat: CategoryHydration,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "page.html")
	if err.Message != `file "page.html" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestError_Error(t *testing.T) {
	err := New("E002").WithAttribute("o-if", "open")
	want := `E002: Structural directive requires a template element (o-if="open")`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := New("E010").Wrap(fmt.Errorf("boom"))
	if !strings.HasSuffix(wrapped.Error(), ": boom") {
		t.Errorf("Error() = %q, want wrapped cause", wrapped.Error())
	}
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("network down")
	err := fmt.Errorf("loading: %w", New("E010").Wrap(cause))

	if !stderrors.Is(err, New("E010")) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New("E011")) {
		t.Error("errors.Is should not match a different code")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
	if Code(err) != "E010" {
		t.Errorf("Code() = %q, want E010", Code(err))
	}
	if Code(cause) != "" {
		t.Errorf("Code() of plain error = %q, want empty", Code(cause))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil) should return nil")
	}

	orig := New("E005")
	if FromError(orig, "E001") != orig {
		t.Error("FromError should return existing *Error unchanged")
	}

	plain := fmt.Errorf("plain")
	got := FromError(plain, "E021")
	if got.Code != "E021" || got.Wrapped != plain {
		t.Errorf("FromError = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E002").
		WithAttribute("o-for", "items").
		WithScope("todo").
		WithSuggestion("Use a <template> element")

	out := err.Format()
	for _, want := range []string{
		"ERROR E002: Structural directive requires a template element",
		"scope todo",
		`o-for="items"`,
		"Hint: Use a <template> element",
		"Learn more: https://orbit.vango.dev/docs/errors/E002",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E005").WithScope("counter").WithAttribute("o-checked", "done")
	want := `counter: E005: Property assignment failed [o-checked="done"]`
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestRegistry(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) missing", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s incomplete: %+v", code, tmpl)
		}
		if !strings.HasSuffix(tmpl.DocURL, code) {
			t.Errorf("template %s has DocURL %q", code, tmpl.DocURL)
		}
	}

	Register("E900", ErrorTemplate{Category: CategoryCLI, Message: "custom"})
	if New("E900").Message != "custom" {
		t.Error("Register did not add template")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six seven" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText of empty string should be nil")
	}
}
