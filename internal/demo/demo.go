// Package demo holds the behaviors used by the orbit CLI and playground.
package demo

import (
	"context"
	"fmt"
	"strings"

	"github.com/vango-dev/orbit"
	"github.com/vango-dev/orbit/pkg/host"
)

// Scope names.
const (
	CounterScope  = "counter"
	TodoScope     = "todo"
	ToggleScope   = "toggle"
	GreetingScope = "greeting"
)

// Register defines every demo behavior on rt.
func Register(rt *orbit.Runtime) {
	rt.Define(CounterScope, Counter)
	rt.Define(TodoScope, Todo)
	rt.Define(ToggleScope, Toggle)
	rt.Lazy(GreetingScope, loadGreeting)
}

// Counter counts clicks. Props: count (start value) and computed (an
// expression rendered by the "computed" entry).
func Counter(ctx orbit.Ctx, props map[string]any) func() {
	start := 0
	if v, ok := props["count"].(float64); ok {
		start = int(v)
	}
	expr, _ := props["computed"].(string)

	ctx.State(map[string]any{
		"count":    start,
		"step":     1,
		"disabled": false,
		"input":    "",
		"items":    []any{"item1", "item2", "item3"},

		"computed": orbit.Computed(func(this *orbit.Object) any {
			if expr == "" {
				return this.Int("count") * 2
			}
			return ctx.Compute(expr)
		}),
		"tone": orbit.Computed(func(this *orbit.Object) any {
			if this.Int("count") > 10 {
				return "text-red-500"
			}
			return "text-blue-500"
		}),

		"increase": orbit.Action(func(this *orbit.Object, _ ...any) any {
			this.Set("count", this.Int("count")+this.Int("step"))
			this.Set("input", fmt.Sprintf("item1 #%d", this.Int("count")))
			return nil
		}),
		"reset": orbit.Action(func(this *orbit.Object, _ ...any) any {
			this.Set("count", 0)
			return nil
		}),
	}, orbit.StateHooks{
		"input": func(this *orbit.Object, value any) {
			this.Array("items").Set(0, value)
		},
	})
	return nil
}

// Todo keeps a list of items with a draft input.
func Todo(ctx orbit.Ctx, props map[string]any) func() {
	var items []any
	if initial, ok := props["items"].([]any); ok {
		for _, title := range initial {
			items = append(items, map[string]any{"title": fmt.Sprint(title), "done": false})
		}
	}
	if items == nil {
		items = []any{}
	}

	ctx.State(map[string]any{
		"items": items,
		"draft": "",

		"remaining": orbit.Computed(func(this *orbit.Object) any {
			list := this.Array("items")
			n := 0
			for i := 0; i < list.Len(); i++ {
				if item, ok := list.At(i).(*orbit.Object); ok && !item.Bool("done") {
					n++
				}
			}
			return n
		}),
		"empty": orbit.Computed(func(this *orbit.Object) any {
			return this.Array("items").Len() == 0
		}),

		"add": orbit.Action(func(this *orbit.Object, _ ...any) any {
			title := strings.TrimSpace(this.String("draft"))
			if title == "" {
				return nil
			}
			this.Array("items").Push(map[string]any{"title": title, "done": false})
			this.Set("draft", "")
			return nil
		}),
		"clear": orbit.Action(func(this *orbit.Object, _ ...any) any {
			list := this.Array("items")
			for i := list.Len() - 1; i >= 0; i-- {
				if item, ok := list.At(i).(*orbit.Object); ok && item.Bool("done") {
					list.Splice(i, 1)
				}
			}
			return nil
		}),
	})

	ctx.Ref(orbit.RefHooks{
		"draft": func(el host.Element, _ context.Context) func() {
			el.SetAttr("placeholder", "What needs doing?")
			return func() { el.RemoveAttr("placeholder") }
		},
	})
	return nil
}

// Toggle shows and hides a panel.
func Toggle(ctx orbit.Ctx, props map[string]any) func() {
	open, _ := props["open"].(bool)
	ctx.State(map[string]any{
		"open": open,
		"label": orbit.Computed(func(this *orbit.Object) any {
			if this.Bool("open") {
				return "Hide"
			}
			return "Show"
		}),
		"toggle": orbit.Action(func(this *orbit.Object, _ ...any) any {
			this.Set("open", !this.Bool("open"))
			return nil
		}),
	})

	logger := ctx.Logger()
	return func() { logger.Debug("toggle unmounted") }
}

// loadGreeting stands in for a behavior fetched on demand.
func loadGreeting(ctx context.Context) (orbit.Behavior, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return orbit.MountFunc(func(ctx orbit.Ctx, props map[string]any) func() {
		name, _ := props["name"].(string)
		if name == "" {
			name = "world"
		}
		ctx.State(map[string]any{"message": "Hello, " + name + "!"})
		return nil
	}), nil
}
