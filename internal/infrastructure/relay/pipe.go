// Package relay carries messages between execution contexts and correlates
// requests with their responses.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
)

// ErrClosed is returned when posting on a closed pipe or endpoint.
var ErrClosed = errors.New("relay: channel closed")

const pipeBuffer = 64

// NewPipe returns the two ends of an asynchronous channel. A message posted on
// one end is serialized, queued, and delivered on a separate goroutine to the
// listeners of the other end. Nothing is shared between the ends except bytes.
func NewPipe() (port.MessagePort, port.MessagePort) {
	a := newPipeEnd()
	b := newPipeEnd()
	a.peer, b.peer = b, a
	go a.deliver()
	go b.deliver()
	return a, b
}

type pipeEnd struct {
	peer *pipeEnd

	mu        sync.Mutex
	listeners []func(entity.RelayMessage)
	closed    bool

	inbox chan []byte
	done  chan struct{}
	once  sync.Once
}

func newPipeEnd() *pipeEnd {
	return &pipeEnd{
		inbox: make(chan []byte, pipeBuffer),
		done:  make(chan struct{}),
	}
}

func (p *pipeEnd) PostMessage(ctx context.Context, msg entity.RelayMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode relay message: %w", err)
	}

	select {
	case <-p.done:
		return ErrClosed
	case <-p.peer.done:
		return ErrClosed
	default:
	}

	select {
	case p.peer.inbox <- data:
		return nil
	case <-p.peer.done:
		return ErrClosed
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd) OnMessage(fn func(msg entity.RelayMessage)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.done)
	})
	return nil
}

func (p *pipeEnd) deliver() {
	for {
		select {
		case <-p.done:
			return
		case data := <-p.inbox:
			var msg entity.RelayMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			p.mu.Lock()
			listeners := make([]func(entity.RelayMessage), len(p.listeners))
			copy(listeners, p.listeners)
			p.mu.Unlock()
			for _, fn := range listeners {
				fn(msg)
			}
		}
	}
}
