package port

import "context"

// SuggestionProvider is the external prompt service reached from the
// background context.
type SuggestionProvider interface {
	// Suggest returns a fast completion/improvement of prompt.
	Suggest(ctx context.Context, prompt string) (string, error)

	// Enhance returns a fully enhanced prompt.
	Enhance(ctx context.Context, prompt string) (string, error)
}
