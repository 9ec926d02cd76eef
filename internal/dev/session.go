package dev

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/vango-dev/orbit"
	"github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/dom"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	// Page is the HTML page the session runs.
	Page []byte

	// Setup registers behaviors on the session's runtime.
	Setup func(*orbit.Runtime)

	// Options are passed to orbit.New.
	Options []orbit.Option

	// Logger receives session and runtime logs.
	Logger *slog.Logger
}

// Session is one running copy of the page. The document and runtime are
// only touched by the goroutine that calls Run.
type Session struct {
	id     string
	doc    *dom.Document
	rt     *orbit.Runtime
	logger *slog.Logger

	inbox   chan Message
	notices chan Message
	done    chan struct{}
	once    sync.Once

	errs []error
	last string
}

// NewSession parses the page and prepares a runtime for it.
func NewSession(cfg SessionConfig) (*Session, error) {
	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id)

	doc, err := dom.Parse(bytes.NewReader(cfg.Page), dom.WithLogger(logger))
	if err != nil {
		return nil, errors.New("E051").Wrap(err)
	}

	s := &Session{
		id:      id,
		doc:     doc,
		logger:  logger,
		inbox:   make(chan Message, 16),
		notices: make(chan Message, 8),
		done:    make(chan struct{}),
	}

	opts := []orbit.Option{orbit.WithLogger(logger)}
	opts = append(opts, cfg.Options...)
	opts = append(opts, orbit.WithErrorHandler(s.collect))
	s.rt = orbit.New(doc, opts...)
	if cfg.Setup != nil {
		cfg.Setup(s.rt)
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Prerender starts the runtime, renders the settled page and stops again.
func (s *Session) Prerender() ([]byte, error) {
	if err := s.rt.Start(); err != nil {
		return nil, err
	}
	defer s.rt.Stop()
	s.doc.Flush()

	var b bytes.Buffer
	if err := s.doc.Render(&b, dom.RenderOptions{}); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Run starts the runtime and serves the session until ctx is done, the
// session is closed, or send fails. Every step that changes the body ends
// with a render message.
func (s *Session) Run(ctx context.Context, send func(Message) error) error {
	defer s.Close()

	if err := s.rt.Start(); err != nil {
		return err
	}
	defer s.rt.Stop()

	s.logger.Debug("session started", "scopes", len(s.rt.Scopes()))

	for {
		s.doc.Flush()
		if err := s.publish(send); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case msg := <-s.notices:
			if err := send(msg); err != nil {
				return err
			}
		case msg := <-s.inbox:
			s.apply(msg)
		case <-s.doc.Wake():
		}
	}
}

// Deliver queues a client message. It reports false once the session is
// gone.
func (s *Session) Deliver(ctx context.Context, msg Message) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.inbox <- msg:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Notify queues a server message for the client. Messages are dropped when
// the session is not keeping up.
func (s *Session) Notify(msg Message) {
	select {
	case s.notices <- msg:
	case <-s.done:
	default:
		s.logger.Warn("session notice dropped", "type", msg.Type)
	}
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Session) collect(err error) {
	s.errs = append(s.errs, err)
}

// publish sends collected errors and the body if it changed.
func (s *Session) publish(send func(Message) error) error {
	errs := s.errs
	s.errs = nil
	for _, err := range errs {
		if err := send(Message{Type: MessageError, Error: err.Error()}); err != nil {
			return err
		}
	}

	var b strings.Builder
	if err := s.doc.Body().RenderInner(&b, dom.RenderOptions{IDs: true}); err != nil {
		return err
	}
	html := b.String()
	if html == s.last {
		return nil
	}
	s.last = html
	return send(Message{Type: MessageRender, HTML: html})
}

// apply replays a browser event on the session's document.
func (s *Session) apply(msg Message) {
	el := s.doc.ElementByOID(msg.OID)
	if el == nil {
		s.logger.Debug("event for unknown element", "oid", msg.OID, "event", msg.Event)
		return
	}

	switch msg.Event {
	case "input":
		dom.Input(el, msg.Value)
	case "change":
		if isToggle(el) {
			dom.Check(el, msg.Checked)
		} else {
			dom.Change(el, msg.Value)
		}
	case "":
		s.logger.Debug("event without a type", "oid", msg.OID)
	default:
		dom.Dispatch(el, dom.NewEvent(msg.Event))
	}
}

func isToggle(el *dom.Element) bool {
	if el.Tag() != "input" {
		return false
	}
	t, _ := el.Attr("type")
	return t == "checkbox" || t == "radio"
}
