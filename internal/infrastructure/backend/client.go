// Package backend is the HTTP client for the prompt service reached from the
// background context.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/logging"
)

const (
	fastPromptPath   = "/fast-prompt"
	normalPromptPath = "/normal-prompt"

	defaultTimeout = 15 * time.Second

	// Responses larger than this are treated as garbage.
	maxResponseSize = 1 << 20
)

// ErrUnavailable is returned when the service cannot produce a prompt.
var ErrUnavailable = errors.New("prompt service unavailable")

// Options configures a Client.
type Options struct {
	BaseURL    string
	Model      string
	Role       string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

type fastPromptRequest struct {
	SessionID string `json:"sessionId"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	Role      string `json:"role"`
}

type fastPromptResponse struct {
	Success        bool   `json:"success"`
	ImprovedPrompt string `json:"improved_prompt"`
}

type normalPromptRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Role   string `json:"role"`
}

type normalPromptResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Error    string `json:"error"`
}

// serviceError is the error body the service sends with non-2xx statuses.
type serviceError struct {
	Detail string `json:"detail"`
}

// Client implements port.SuggestionProvider over the prompt service.
// Concurrent suggestion calls for the same prompt share one request.
type Client struct {
	baseURL    string
	model      string
	role       string
	apiKey     string
	sessionID  string
	maxRetries int

	http      *http.Client
	group     singleflight.Group
	randInt63 func(n int64) int64
	sleep     func(ctx context.Context, d time.Duration) error
}

var _ port.SuggestionProvider = (*Client)(nil)

// New creates a client. The session id sent with fast prompts is generated
// once per client.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		model:      opts.Model,
		role:       opts.Role,
		apiKey:     opts.APIKey,
		sessionID:  uuid.NewString(),
		maxRetries: retries,
		http:       httpClient,
		randInt63:  rand.Int63n,
		sleep:      waitForBackoff,
	}
}

// SessionID returns the id sent with fast prompts.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Suggest asks the fast endpoint for an improved version of prompt.
func (c *Client) Suggest(ctx context.Context, prompt string) (string, error) {
	v, err, shared := c.group.Do(prompt, func() (any, error) {
		var out fastPromptResponse
		body := fastPromptRequest{SessionID: c.sessionID, Prompt: prompt, Model: c.model, Role: c.role}
		if err := c.post(ctx, fastPromptPath, body, &out); err != nil {
			return "", err
		}
		if !out.Success || strings.TrimSpace(out.ImprovedPrompt) == "" {
			return "", fmt.Errorf("%w: no improved prompt", ErrUnavailable)
		}
		return out.ImprovedPrompt, nil
	})
	if shared {
		logging.FromContext(ctx).Trace().Msg("suggestion request coalesced")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Enhance runs the single-agent enhancement of prompt.
func (c *Client) Enhance(ctx context.Context, prompt string) (string, error) {
	var out normalPromptResponse
	body := normalPromptRequest{Prompt: prompt, Model: c.model, Role: c.role}
	if err := c.post(ctx, normalPromptPath, body, &out); err != nil {
		return "", err
	}
	if !out.Success {
		reason := out.Error
		if reason == "" {
			reason = "enhancement failed"
		}
		return "", fmt.Errorf("%w: %s", ErrUnavailable, reason)
	}
	return out.Response, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	log := logging.FromContext(ctx)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.baseURL + path
	start := time.Now()
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "gregify")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("prompt service responded")

	if resp.StatusCode != http.StatusOK {
		var se serviceError
		if json.Unmarshal(data, &se) == nil && se.Detail != "" {
			return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, se.Detail)
		}
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrUnavailable, err)
	}
	return nil
}
