// Package scope manages one interactive region of a page.
//
// A Scope owns a root element, a state store, a directive binder and a
// tree observer confined to the root. Its behavior is resolved either
// immediately (MountFunc) or on a goroutine (LoaderFunc); in the second
// case the continuation is posted back to the host task queue, so every
// binding still happens on the host's thread.
//
// Lifecycle:
//
//	created -> resolving -> ready -> destroyed
//	                  \_______________/
//
// Any state may move to destroyed. Dispose is idempotent and a scope that
// is disposed while resolving never installs a binding.
package scope
