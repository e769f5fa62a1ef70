package entity

import "strings"

// SurfaceCandidateSpec is one structural hypothesis about where the host page
// keeps its prompt input. Specs are tried in slice order.
type SurfaceCandidateSpec struct {
	Name     string `mapstructure:"name" json:"name" toml:"name"`
	Selector string `mapstructure:"selector" json:"selector" toml:"selector"`
}

// DeepScanSelector is recorded as BoundSurface.Selector when the fallback scan
// found the surface.
const DeepScanSelector = "deep-scan"

// PromptTextareaID is the id the chat host uses for its prompt input.
const PromptTextareaID = "prompt-textarea"

// DefaultCandidateSpecs returns the built-in ordered hypotheses.
func DefaultCandidateSpecs() []SurfaceCandidateSpec {
	return []SurfaceCandidateSpec{
		{Name: "prompt-textarea-data-id", Selector: `textarea[data-id="prompt-textarea"]`},
		{Name: "prompt-textarea-editable", Selector: `div[contenteditable="true"]#prompt-textarea`},
		{Name: "prompt-textarea-paragraph", Selector: `#prompt-textarea > p`},
		{Name: "prompt-textarea", Selector: `#prompt-textarea`},
		{Name: "send-message-placeholder", Selector: `textarea[placeholder*="Send a message"]`},
		{Name: "editable-div", Selector: `div[contenteditable="true"]`},
		{Name: "lexical-editor", Selector: `[data-lexical-editor]`},
		{Name: "slate-editor", Selector: `[data-slate-editor]`},
		{Name: "prosemirror", Selector: `.ProseMirror`},
		{Name: "textarea", Selector: `textarea`},
		{Name: "role-textbox", Selector: `[role="textbox"]`},
		{Name: "playground-textarea", Selector: `.chat-pg-box textarea`},
	}
}

// skippedScanTags never host an editable surface.
var skippedScanTags = map[string]bool{
	"script": true,
	"style":  true,
	"meta":   true,
	"link":   true,
	"br":     true,
	"hr":     true,
	"head":   true,
	"title":  true,
}

// AttrReader is the read-only view of an element the deep scan needs.
type AttrReader interface {
	TagName() string
	Attr(name string) (string, bool)
}

// IsEditableMarker reports whether an element exhibits editable-surface markers:
// an editability flag, an interactive text role, the prompt id, or a
// tab-reachable generic container.
func IsEditableMarker(el AttrReader) bool {
	tag := strings.ToLower(el.TagName())
	if skippedScanTags[tag] {
		return false
	}

	if v, ok := el.Attr("contenteditable"); ok {
		switch strings.ToLower(v) {
		case "", "true", "plaintext-only":
			return true
		}
	}
	if v, _ := el.Attr("role"); v == "textbox" {
		return true
	}
	if v, _ := el.Attr("data-id"); v == PromptTextareaID {
		return true
	}
	if v, _ := el.Attr("id"); v == PromptTextareaID {
		return true
	}
	if tag == "div" {
		if v, _ := el.Attr("data-content-editable-leaf"); v == "true" {
			return true
		}
		if v, _ := el.Attr("tabindex"); v == "0" {
			return true
		}
	}
	return false
}
