package directive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/orbit/pkg/dom"
	"github.com/vango-dev/orbit/pkg/store"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(NewVocabulary(""))

	tests := []struct {
		attr  string
		kind  string
		known bool
		inert bool
	}{
		{"o-text", KindText, true, false},
		{"o-scope", "", true, true},
		{"o-scope-props", "", true, true},
		{"o-load", "", true, true},
		{"o-teleport-target", "", true, true},
		{"o-onclick-prevent", KindEvent, true, false},
		{"o-bind-href", KindAttribute, true, false},
		{"o-value", KindProperty, true, false},
		{"o-text-content", KindProperty, true, false},
		{"class", "", false, false},
		{"as", "", false, false},
		{"o-", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			h, kind, ok := r.Lookup(tt.attr)
			if ok != tt.known {
				t.Fatalf("known = %v, want %v", ok, tt.known)
			}
			if kind != tt.kind {
				t.Errorf("kind = %q, want %q", kind, tt.kind)
			}
			if ok && (h == nil) != tt.inert {
				t.Errorf("inert = %v, want %v", h == nil, tt.inert)
			}
		})
	}
}

func TestCustomPrefixAndDirective(t *testing.T) {
	vocab := NewVocabulary("x-")
	r := NewRegistry(vocab)
	r.Register("x-upper", "upper", func(b *Binding) error {
		el := b.Element
		b.Subscribe(b.Path(), func(v any) {
			el.SetText(store.Stringify(v) + "!")
		})
		return nil
	})

	doc := dom.MustParseFragment(`<p id="p" x-upper="word" o-text="word"></p>`)
	s := store.New()
	s.Init(map[string]any{"word": "hey"})

	b := NewBinder(Config{Store: s, Document: doc, Registry: r})
	p := doc.ElementByID("p")
	b.Bind(p)

	if got := p.Text(); got != "hey!" {
		t.Errorf("text = %q, want hey!", got)
	}
	if diff := cmp.Diff("x-scope", b.Vocabulary().Scope); diff != "" {
		t.Errorf("vocabulary mismatch (-want +got):\n%s", diff)
	}
}

func TestItemContextResolve(t *testing.T) {
	outer := &itemContext{alias: "g", path: "groups[1]"}
	inner := &itemContext{alias: "$", path: "groups[1].tags[0]", parent: outer}

	tests := map[string]string{
		"$":         "groups[1].tags[0]",
		"$.label":   "groups[1].tags[0].label",
		"$[2]":      "groups[1].tags[0][2]",
		"g.name":    "groups[1].name",
		"g":         "groups[1]",
		"gname":     "gname",
		"$other":    "$other",
		"unrelated": "unrelated",
	}
	for in, want := range tests {
		if got := inner.resolve(in); got != want {
			t.Errorf("resolve(%q) = %q, want %q", in, got, want)
		}
	}

	var none *itemContext
	if got := none.resolve("a.b"); got != "a.b" {
		t.Errorf("nil context resolve = %q", got)
	}
}
