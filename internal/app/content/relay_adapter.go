package content

import (
	"context"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/relay"
)

// SuggestionRelay sends suggestion requests to the background over a relay
// endpoint, under the correlation id chosen by the pipeline.
type SuggestionRelay struct {
	endpoint *relay.Endpoint
}

var _ port.SuggestionRelay = (*SuggestionRelay)(nil)

// NewSuggestionRelay wraps endpoint.
func NewSuggestionRelay(endpoint *relay.Endpoint) *SuggestionRelay {
	return &SuggestionRelay{endpoint: endpoint}
}

// RequestSuggestion blocks until the background answers or the endpoint
// times out.
func (r *SuggestionRelay) RequestSuggestion(
	ctx context.Context,
	correlationID string,
	req entity.SuggestionRequest,
) (entity.SuggestionResponse, error) {
	var resp entity.SuggestionResponse
	if err := r.endpoint.Call(ctx, correlationID, entity.ActionGetSuggestion, req, &resp); err != nil {
		return entity.SuggestionResponse{}, err
	}
	return resp, nil
}
