// Package directive binds declarative element attributes to a state store.
//
// A Registry maps attribute names to Handlers. A Binder walks the attributes
// of one element at a time, installs the matching handlers and records
// everything they acquire (store subscriptions, event listeners, inserted
// clones) on a per-element controller, so that Unbind revokes it as a unit.
//
// The default vocabulary, with the "o-" prefix:
//
//	o-scope, o-scope-props, o-load    scope markers, ignored by the binder
//	o-ref="name"                      element capture
//	o-text="path", o-html="path"      content projection
//	o-model="path"                    two-way form binding
//	o-show="path"                     toggles the hidden attribute
//	o-if="path"                       conditional template
//	o-for="path" as="item"            list template (alias defaults to "$")
//	o-teleport="#id|name"             renders a template elsewhere
//	o-on<type>[-prevent|-stop|-capture|-once|-passive]="path"
//	o-bind-<attr>="path"              attribute passthrough
//	o-<prop>="path"                   property passthrough
//
// Clones created by o-for carry an item context: paths that start with the
// alias resolve to the indexed item of the source list. Contexts chain, so
// nested lists can refer to the aliases of enclosing lists.
package directive
