package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/logging"
)

// DefaultTimeout bounds the wait for a response.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when no response arrived in time.
	ErrTimeout = errors.New("relay: response timeout")
	// ErrNoHandler is reported back for actions nobody handles.
	ErrNoHandler = errors.New("relay: no handler for action")
	// ErrRemote wraps failures reported by the responding side.
	ErrRemote = errors.New("relay: remote failure")
	// ErrDuplicateID is returned when a correlation id is already awaiting a response.
	ErrDuplicateID = errors.New("relay: correlation id already in flight")
)

// Handler answers a request. The returned value is sent back as the
// response payload; a non-nil error is sent back as the response error.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

// EventHandler receives event notifications.
type EventHandler func(ctx context.Context, payload json.RawMessage)

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithTimeout sets the response timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Endpoint) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithIDGenerator replaces the UUID correlation id source.
func WithIDGenerator(gen port.IDGenerator) Option {
	return func(e *Endpoint) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithLogger sets the logger handed to handlers through their context.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Endpoint) {
		e.logger = logger
	}
}

// Endpoint is one side of a relay. It sends correlated requests, answers
// requests addressed to it, and fans out event notifications.
type Endpoint struct {
	port    port.MessagePort
	timeout time.Duration
	newID   port.IDGenerator
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	pending  map[string]chan entity.RelayMessage
	handlers map[string]Handler
	events   map[string][]EventHandler
}

// NewEndpoint attaches an endpoint to p.
func NewEndpoint(p port.MessagePort, opts ...Option) *Endpoint {
	e := &Endpoint{
		port:     p,
		timeout:  DefaultTimeout,
		newID:    uuid.NewString,
		logger:   zerolog.Nop(),
		pending:  make(map[string]chan entity.RelayMessage),
		handlers: make(map[string]Handler),
		events:   make(map[string][]EventHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ctx, e.cancel = context.WithCancel(logging.WithContext(context.Background(), e.logger))
	p.OnMessage(e.receive)
	return e
}

// NewID returns a fresh correlation id.
func (e *Endpoint) NewID() string {
	return e.newID()
}

// Timeout returns the configured response timeout.
func (e *Endpoint) Timeout() time.Duration {
	return e.timeout
}

// Send issues a request with a fresh correlation id and decodes the response
// payload into out when out is non-nil.
func (e *Endpoint) Send(ctx context.Context, action string, payload, out any) error {
	return e.Call(ctx, e.newID(), action, payload, out)
}

// Call issues a request under the given correlation id. It returns after the
// first matching response, the timeout, or ctx cancellation, whichever comes
// first. Responses arriving later are dropped.
func (e *Endpoint) Call(ctx context.Context, id, action string, payload, out any) error {
	raw, err := encode(payload)
	if err != nil {
		return fmt.Errorf("relay %s: %w", action, err)
	}

	ch := make(chan entity.RelayMessage, 1)
	e.mu.Lock()
	if e.ctx.Err() != nil {
		e.mu.Unlock()
		return ErrClosed
	}
	if _, exists := e.pending[id]; exists {
		e.mu.Unlock()
		return fmt.Errorf("relay %s %s: %w", action, id, ErrDuplicateID)
	}
	e.pending[id] = ch
	e.mu.Unlock()
	defer e.forget(id)

	msg := entity.RelayMessage{
		Kind:          entity.MessageRequest,
		CorrelationID: id,
		Action:        action,
		Payload:       raw,
	}
	if err := e.port.PostMessage(ctx, msg); err != nil {
		return fmt.Errorf("relay %s: post request: %w", action, err)
	}

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return fmt.Errorf("relay %s: %w: %s", action, ErrRemote, resp.Error)
		}
		if out != nil && len(resp.Payload) > 0 {
			if err := json.Unmarshal(resp.Payload, out); err != nil {
				return fmt.Errorf("relay %s: decode response: %w", action, err)
			}
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("relay %s after %s: %w", action, e.timeout, ErrTimeout)
	case <-ctx.Done():
		return ctx.Err()
	case <-e.ctx.Done():
		return ErrClosed
	}
}

// Notify posts an event notification. Events have no response.
func (e *Endpoint) Notify(ctx context.Context, action string, payload any) error {
	raw, err := encode(payload)
	if err != nil {
		return fmt.Errorf("relay %s: %w", action, err)
	}
	return e.port.PostMessage(ctx, entity.RelayMessage{
		Kind:          entity.MessageEvent,
		CorrelationID: e.newID(),
		Action:        action,
		Payload:       raw,
	})
}

// Handle registers the responder for action, replacing any previous one.
func (e *Endpoint) Handle(action string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[action] = h
}

// OnEvent subscribes to event notifications for action.
func (e *Endpoint) OnEvent(action string, h EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events[action] = append(e.events[action], h)
}

// InFlight returns how many requests are awaiting a response.
func (e *Endpoint) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Close fails waiting calls and closes the underlying port.
func (e *Endpoint) Close() error {
	e.cancel()
	return e.port.Close()
}

func (e *Endpoint) forget(id string) {
	e.mu.Lock()
	delete(e.pending, id)
	e.mu.Unlock()
}

func (e *Endpoint) receive(msg entity.RelayMessage) {
	switch msg.Kind {
	case entity.MessageResponse:
		e.resolve(msg)
	case entity.MessageRequest:
		go e.respond(msg)
	case entity.MessageEvent:
		e.dispatchEvent(msg)
	default:
		e.logger.Debug().Str("kind", string(msg.Kind)).Msg("relay: ignoring message of unknown kind")
	}
}

func (e *Endpoint) resolve(msg entity.RelayMessage) {
	e.mu.Lock()
	ch, ok := e.pending[msg.CorrelationID]
	if ok {
		delete(e.pending, msg.CorrelationID)
	}
	e.mu.Unlock()

	if !ok {
		e.logger.Debug().
			Str("correlation_id", msg.CorrelationID).
			Str("action", msg.Action).
			Msg("relay: dropping late or duplicate response")
		return
	}
	ch <- msg
}

func (e *Endpoint) respond(req entity.RelayMessage) {
	ctx := logging.WithCorrelationID(e.ctx, req.CorrelationID)
	reply := entity.RelayMessage{
		Kind:          entity.MessageResponse,
		CorrelationID: req.CorrelationID,
		Action:        req.Action,
	}

	e.mu.Lock()
	h, ok := e.handlers[req.Action]
	e.mu.Unlock()

	if !ok {
		reply.Error = fmt.Sprintf("%s: %s", ErrNoHandler, req.Action)
	} else if result, err := safeHandle(ctx, h, req.Payload); err != nil {
		reply.Error = err.Error()
	} else if raw, err := encode(result); err != nil {
		reply.Error = err.Error()
	} else {
		reply.Payload = raw
	}

	if err := e.port.PostMessage(ctx, reply); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Str("action", req.Action).Msg("relay: response not delivered")
	}
}

func (e *Endpoint) dispatchEvent(msg entity.RelayMessage) {
	e.mu.Lock()
	handlers := append([]EventHandler(nil), e.events[msg.Action]...)
	e.mu.Unlock()

	for _, h := range handlers {
		h(e.ctx, msg.Payload)
	}
}

func safeHandle(ctx context.Context, h Handler, payload json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, payload)
}

func encode(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}
