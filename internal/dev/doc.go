// Package dev provides the playground server behind "orbit serve".
//
// The playground runs the runtime on the server. Every browser connection
// gets its own Session: a parsed copy of the page, an orbit.Runtime with the
// configured behaviors, and a goroutine that owns both. The browser sends
// the events it sees and receives the re-rendered body after every step.
//
// # Architecture
//
//   - Watcher: polls the page and the configuration file for changes
//   - Hub: tracks connected sessions and broadcasts to them
//   - Session: owns one document and runtime, applies events, renders
//   - Server: serves the page, the session socket, /metrics and /healthz
//
// # Usage
//
//	srv, err := dev.NewServer(dev.ServerOptions{
//	    Config: cfg,
//	    Setup:  demo.Register,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
//
// # Session Protocol
//
// The browser connects to /_orbit/session via WebSocket. Messages are
// JSON-encoded:
//
//	{"type": "render", "html": "..."}                      // server: replace the body
//	{"type": "error", "error": "..."}                      // server: show a diagnostic
//	{"type": "reload"}                                     // server: the page changed on disk
//	{"type": "event", "oid": "o3", "event": "click"}       // client: an event on an element
//	{"type": "event", "oid": "o4", "event": "input", "value": "hi"}
//
// Rendered elements carry a data-oid attribute that the client echoes back
// to address them.
package dev
