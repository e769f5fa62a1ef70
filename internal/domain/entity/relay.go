package entity

import "encoding/json"

// MessageKind tags a RelayMessage.
type MessageKind string

const (
	MessageRequest  MessageKind = "request"
	MessageResponse MessageKind = "response"
	MessageEvent    MessageKind = "event"
)

// Relay actions understood by the engine and the background coordinator.
const (
	ActionGetSuggestion       = "getAutocompleteSuggestion"
	ActionInjectPrompt        = "injectPrompt"
	ActionPopulatePrompt      = "populatePrompt"
	ActionEnhancedPromptReady = "enhancedPromptReady"
	ActionContentScriptLoaded = "contentScriptLoaded"
	ActionEnhancePrompt       = "enhancePrompt"
)

// RelayMessage is the envelope exchanged between execution contexts.
// A response carries the correlation id of its request.
type RelayMessage struct {
	Kind          MessageKind     `json:"kind"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Action        string          `json:"action"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// SuggestionRequest asks the background for a suggestion.
type SuggestionRequest struct {
	InputText string `json:"inputText"`
}

// SuggestionResponse is the background's reply. A missing response is
// treated exactly like Success=false.
type SuggestionResponse struct {
	Success        bool   `json:"success"`
	SuggestionText string `json:"suggestionText,omitempty"`
}

// InjectionCommand writes text into the bound surface immediately.
// Prompt and EnhancedPrompt are the field names older senders used.
type InjectionCommand struct {
	Action         string `json:"action,omitempty"`
	Text           string `json:"text,omitempty"`
	Prompt         string `json:"prompt,omitempty"`
	EnhancedPrompt string `json:"enhancedPrompt,omitempty"`
}

// Body returns the text to inject.
func (c InjectionCommand) Body() string {
	switch {
	case c.Text != "":
		return c.Text
	case c.Prompt != "":
		return c.Prompt
	default:
		return c.EnhancedPrompt
	}
}

// InjectionResult acknowledges an injection command.
type InjectionResult struct {
	Success bool `json:"success"`
}

// EnhancedPromptReady is sent by the settings panel once a prompt was enhanced.
type EnhancedPromptReady struct {
	EnhancedPrompt string `json:"enhancedPrompt"`
}

// ContentScriptLoaded announces an engine to the background.
type ContentScriptLoaded struct {
	URL string `json:"url"`
}

// EnhanceRequest asks the background to run a full prompt enhancement.
type EnhanceRequest struct {
	Prompt string `json:"prompt"`
}

// EnhanceResponse carries the enhanced prompt.
type EnhanceResponse struct {
	Success        bool   `json:"success"`
	EnhancedPrompt string `json:"enhancedPrompt,omitempty"`
}

// DeliveryResult reports how an enhanced prompt reached the host tab.
type DeliveryResult struct {
	Success  bool   `json:"success"`
	TabID    TabID  `json:"tabId,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
