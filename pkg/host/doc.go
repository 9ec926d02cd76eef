// Package host defines the element tree that the runtime binds against.
//
// The runtime never talks to a concrete document. Everything it needs from
// the host environment goes through Element and Document: attribute access,
// structural edits, template content, property assignment, event listeners,
// and the two asynchronous notification sources (tree mutations and
// visibility). Package dom provides an in-memory implementation.
//
// Implementations are used from a single logical thread. The one exception
// is Document.Post, which may be called from any goroutine and schedules a
// task back onto that thread.
package host
