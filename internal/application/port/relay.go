package port

import (
	"context"

	"github.com/bnema/gregify/internal/domain/entity"
)

// MessagePort is one end of a one-way asynchronous message channel between
// execution contexts.
type MessagePort interface {
	PostMessage(ctx context.Context, msg entity.RelayMessage) error
	OnMessage(fn func(msg entity.RelayMessage))
	Close() error
}

// SuggestionRelay issues a suggestion request to the background context.
// The call blocks until the matching response arrives or the relay gives up;
// it never hangs past the relay timeout.
type SuggestionRelay interface {
	RequestSuggestion(ctx context.Context, correlationID string, req entity.SuggestionRequest) (entity.SuggestionResponse, error)
}

// IDGenerator returns unique correlation ids.
type IDGenerator func() string
