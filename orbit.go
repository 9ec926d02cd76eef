// Package orbit provides the public API for the Orbit reactive page runtime.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/orbit"
//
// Usage:
//
//	rt := orbit.New(doc)
//	rt.Define("counter", func(ctx orbit.Ctx, props map[string]any) func() {
//	    ctx.State(map[string]any{
//	        "count": 0,
//	        "inc": orbit.Action(func(this *orbit.Object, _ ...any) any {
//	            this.Set("count", this.Int("count")+1)
//	            return nil
//	        }),
//	    })
//	    return nil
//	})
//	if err := rt.Start(); err != nil {
//	    log.Fatal(err)
//	}
package orbit

import (
	"github.com/vango-dev/orbit/pkg/directive"
	"github.com/vango-dev/orbit/pkg/scope"
	"github.com/vango-dev/orbit/pkg/store"
)

// =============================================================================
// Behaviors (re-export from pkg/scope)
// =============================================================================

// Ctx is what a behavior sees of its scope.
type Ctx = scope.Ctx

type Behavior = scope.Behavior
type Loader = scope.Loader
type MountFunc = scope.MountFunc
type LoaderFunc = scope.LoaderFunc
type StateHooks = scope.StateHooks
type RefHook = scope.RefHook
type RefHooks = scope.RefHooks
type Refs = scope.Refs
type Scope = scope.Scope

// ParseProps decodes a props payload into an object.
var ParseProps = scope.ParseProps

// =============================================================================
// State (re-export from pkg/store)
// =============================================================================

type Object = store.Object
type Array = store.Array

// Computed is a derived, read-only state entry.
type Computed = store.Computed

// Action is a callable state entry, the target of event directives.
type Action = store.Action

// =============================================================================
// Directives (re-export from pkg/directive)
// =============================================================================

type Binding = directive.Binding
type Handler = directive.Handler
type Registry = directive.Registry
type Vocabulary = directive.Vocabulary

// DefaultPrefix is the attribute prefix used when none is configured.
const DefaultPrefix = directive.DefaultPrefix
