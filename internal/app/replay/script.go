// Package replay drives an engine through a scripted user session on a
// virtual clock and records what the user would see.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bnema/gregify/internal/app/content"
	pageurl "github.com/bnema/gregify/internal/domain/url"
)

// ErrInvalidScript is returned for scripts that cannot be run.
var ErrInvalidScript = errors.New("invalid replay script")

// Script is a replay scenario.
type Script struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// HTML is the host page; empty uses the bundled chat page.
	HTML string `yaml:"html"`
	// HostScript runs in the page before the engine starts.
	HostScript string `yaml:"host_script"`

	Suggestion SuggestionSettings `yaml:"suggestion"`
	Injection  InjectionSettings  `yaml:"injection"`
	Backend    []BackendRule      `yaml:"backend"`
	Steps      []Step             `yaml:"steps"`
}

// SuggestionSettings override the pipeline defaults.
type SuggestionSettings struct {
	Disabled  bool          `yaml:"disabled"`
	Debounce  time.Duration `yaml:"debounce"`
	MinLength int           `yaml:"min_length"`
	AcceptKey string        `yaml:"accept_key"`
}

// InjectionSettings override the injection defaults.
type InjectionSettings struct {
	AutoSubmit bool `yaml:"auto_submit"`
}

// BackendRule answers suggestion requests whose input equals Prompt.
type BackendRule struct {
	Prompt     string        `yaml:"prompt"`
	Suggestion string        `yaml:"suggestion"`
	Delay      time.Duration `yaml:"delay"`
	Fail       bool          `yaml:"fail"`
}

// Step is one user or page action. Exactly one action field is set.
type Step struct {
	Type   *string       `yaml:"type,omitempty"`
	Key    string        `yaml:"key,omitempty"`
	Blur   bool          `yaml:"blur,omitempty"`
	Click  string        `yaml:"click,omitempty"`
	Wait   time.Duration `yaml:"wait,omitempty"`
	Remove string        `yaml:"remove,omitempty"`
	Append *AppendStep   `yaml:"append,omitempty"`
	Inject *string       `yaml:"inject,omitempty"`
	Expect *Expectation  `yaml:"expect,omitempty"`

	// Target overrides the element for type, key and blur.
	Target string `yaml:"target,omitempty"`
}

// AppendStep inserts markup into the page.
type AppendStep struct {
	To   string `yaml:"to"`
	HTML string `yaml:"html"`
}

// Expectation checks the engine after the previous step. Unset fields are
// not checked.
type Expectation struct {
	State    string  `yaml:"state,omitempty"`
	Binding  string  `yaml:"binding,omitempty"`
	Epoch    *uint64 `yaml:"epoch,omitempty"`
	Ghost    *string `yaml:"ghost,omitempty"`
	Value    *string `yaml:"value,omitempty"`
	Requests *int    `yaml:"requests,omitempty"`
}

// Parse decodes a script, rejecting unknown fields.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay script: %w", err)
	}
	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Script) validate() error {
	if s.URL == "" {
		s.URL = "https://chatgpt.com/"
	}
	s.URL = pageurl.Normalize(s.URL)
	for i, st := range s.Steps {
		if n := st.actions(); n != 1 {
			return fmt.Errorf("%w: step %d sets %d actions, want exactly one", ErrInvalidScript, i+1, n)
		}
		if st.Append != nil && st.Append.To == "" {
			return fmt.Errorf("%w: step %d: append needs a target", ErrInvalidScript, i+1)
		}
	}
	return nil
}

func (st Step) actions() int {
	n := 0
	for _, set := range []bool{
		st.Type != nil,
		st.Key != "",
		st.Blur,
		st.Click != "",
		st.Wait > 0,
		st.Remove != "",
		st.Append != nil,
		st.Inject != nil,
		st.Expect != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Options maps the script's settings onto engine options.
func (s *Script) Options() content.Options {
	opts := content.DefaultOptions()
	opts.Suggest.Enabled = !s.Suggestion.Disabled
	if s.Suggestion.Debounce > 0 {
		opts.Suggest.Debounce = s.Suggestion.Debounce
	}
	if s.Suggestion.MinLength > 0 {
		opts.Suggest.MinLength = s.Suggestion.MinLength
	}
	if s.Suggestion.AcceptKey != "" {
		opts.Suggest.AcceptKey = s.Suggestion.AcceptKey
	}
	opts.Inject.AutoSubmit = s.Injection.AutoSubmit
	return opts
}

func (s *Script) rule(prompt string) (BackendRule, bool) {
	for _, r := range s.Backend {
		if r.Prompt == prompt {
			return r, true
		}
	}
	return BackendRule{}, false
}
