package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/gregify/internal/app/content"
	"github.com/bnema/gregify/internal/app/session"
	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/dom"
	"github.com/bnema/gregify/internal/infrastructure/hostscript"
	"github.com/bnema/gregify/internal/infrastructure/mainloop"
	"github.com/bnema/gregify/internal/infrastructure/relay"
	"github.com/bnema/gregify/internal/logging"
)

const (
	// tick is the virtual clock resolution of wait steps.
	tick = 10 * time.Millisecond
	// settleTimeout bounds real-time waits for relay traffic.
	settleTimeout = 2 * time.Second

	defaultTarget = "#prompt-textarea"
)

// Epoch is the virtual start time of every replay.
var Epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// ErrExpectation is returned when an expect step does not hold.
var ErrExpectation = errors.New("replay expectation failed")

// heldCall is a suggestion request parked at the fake backend until the
// virtual clock reaches its due time.
type heldCall struct {
	n       int
	prompt  string
	rule    BackendRule
	matched bool
	due     time.Time
	release chan struct{}
}

// Runner executes one script.
type Runner struct {
	script *Script
	ctx    context.Context

	loop    *mainloop.Manual
	doc     *dom.Document
	page    *hostscript.Runtime
	engine  *content.Engine
	engineE *relay.Endpoint
	backE   *relay.Endpoint

	arrived chan *heldCall
	calls   int
	held    []*heldCall
	focus   *dom.Element

	out strings.Builder
}

// Run executes script and returns its transcript. The transcript is
// returned up to the failing step when an error occurs.
func Run(ctx context.Context, script *Script) (string, error) {
	r := &Runner{
		script:  script,
		ctx:     logging.WithComponent(ctx, "replay"),
		arrived: make(chan *heldCall, 64),
	}
	defer r.close()

	if err := r.open(); err != nil {
		return r.out.String(), err
	}
	for i, st := range script.Steps {
		if err := r.step(st); err != nil {
			return r.out.String(), fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return r.out.String(), nil
}

func (r *Runner) open() error {
	r.loop = mainloop.NewManual(Epoch)

	html := r.script.HTML
	hostSrc := r.script.HostScript
	if html == "" {
		page := session.ChatPage("replay", r.script.URL)
		html = page.HTML
		if hostSrc == "" {
			hostSrc = page.Scripts[0].Source
		}
	}

	doc, err := dom.ParseString(r.script.URL, html, r.loop.Post)
	if err != nil {
		return err
	}
	r.doc = doc

	if hostSrc != "" {
		r.page, err = hostscript.New(r.ctx, doc)
		if err != nil {
			return err
		}
		if err := r.page.Run("host.js", hostSrc); err != nil {
			return err
		}
	}

	a, b := relay.NewPipe()
	r.engineE = relay.NewEndpoint(a, relay.WithTimeout(settleTimeout))
	r.backE = relay.NewEndpoint(b)
	r.backE.Handle(entity.ActionGetSuggestion, r.answer)

	r.engine = content.New(doc, r.loop, r.engineE, r.script.Options())
	r.engine.Start(r.ctx)
	r.loop.RunPending()

	r.record("open %s", r.script.URL)
	return nil
}

func (r *Runner) close() {
	for _, c := range r.held {
		close(c.release)
	}
	r.held = nil
	if r.engine != nil {
		r.engine.Stop()
	}
	if r.page != nil {
		r.page.Close()
	}
	if r.engineE != nil {
		_ = r.engineE.Close()
		_ = r.backE.Close()
	}
}

// answer is the fake backend. It runs on relay goroutines and blocks until
// the runner releases the call.
func (r *Runner) answer(ctx context.Context, payload json.RawMessage) (any, error) {
	var req entity.SuggestionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, err
	}
	rule, ok := r.script.rule(req.InputText)
	call := &heldCall{prompt: req.InputText, rule: rule, matched: ok, release: make(chan struct{})}
	r.arrived <- call

	select {
	case <-call.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if rule.Fail {
		return nil, errors.New("backend unavailable")
	}
	if !ok {
		return entity.SuggestionResponse{Success: false}, nil
	}
	return entity.SuggestionResponse{Success: true, SuggestionText: rule.Suggestion}, nil
}

func (r *Runner) step(st Step) error {
	switch {
	case st.Type != nil:
		el, err := r.target(st.Target, false)
		if err != nil {
			return err
		}
		if err := r.doc.Type(el, *st.Type); err != nil {
			return err
		}
		r.focus = el
		r.loop.RunPending()
		r.record("type %q", *st.Type)

	case st.Key != "":
		el, err := r.target(st.Target, true)
		if err != nil {
			return err
		}
		prevented, err := r.doc.KeyDown(el, st.Key)
		if err != nil {
			return err
		}
		r.loop.RunPending()
		outcome := "passed"
		if prevented {
			outcome = "consumed"
		}
		r.record("key %s (%s)", st.Key, outcome)

	case st.Blur:
		el, err := r.target(st.Target, true)
		if err != nil {
			return err
		}
		if err := r.doc.Blur(el); err != nil {
			return err
		}
		r.loop.RunPending()
		r.record("blur")

	case st.Click != "":
		el, err := r.find(st.Click)
		if err != nil {
			return err
		}
		if err := r.doc.Click(el); err != nil {
			return err
		}
		r.loop.RunPending()
		r.record("click %s", st.Click)

	case st.Wait > 0:
		if err := r.wait(st.Wait); err != nil {
			return err
		}
		r.record("wait %s", st.Wait)

	case st.Remove != "":
		el, err := r.find(st.Remove)
		if err != nil {
			return err
		}
		if err := r.doc.Remove(el); err != nil {
			return err
		}
		r.loop.RunPending()
		r.record("remove %s", st.Remove)

	case st.Append != nil:
		parent, err := r.find(st.Append.To)
		if err != nil {
			return err
		}
		if _, err := r.doc.AppendHTML(parent, st.Append.HTML); err != nil {
			return err
		}
		r.loop.RunPending()
		r.record("append %s", st.Append.To)

	case st.Inject != nil:
		res := r.engine.Inject(*st.Inject)
		r.loop.RunPending()
		outcome := "failed"
		if res.Success {
			outcome = "ok"
		}
		r.record("inject %q (%s)", *st.Inject, outcome)

	case st.Expect != nil:
		return r.expect(*st.Expect)
	}
	return nil
}

// wait advances the virtual clock in ticks, handing requests to the fake
// backend as they are issued and answering them when they fall due.
func (r *Runner) wait(d time.Duration) error {
	for elapsed := time.Duration(0); elapsed < d; {
		step := min(tick, d-elapsed)
		r.loop.Advance(step)
		elapsed += step

		if err := r.collectArrivals(); err != nil {
			return err
		}
		if err := r.releaseDue(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) collectArrivals() error {
	timeout := time.NewTimer(settleTimeout)
	defer timeout.Stop()

	for r.calls < r.engine.Issued() {
		select {
		case c := <-r.arrived:
			r.calls++
			c.n = r.calls
			c.due = r.loop.Now().Add(c.rule.Delay)
			r.held = append(r.held, c)
			r.event("backend request #%d %q", c.n, c.prompt)
		case <-timeout.C:
			return fmt.Errorf("suggestion request #%d never reached the backend", r.calls+1)
		}
	}
	return nil
}

func (r *Runner) releaseDue() error {
	now := r.loop.Now()
	kept := r.held[:0]
	var due []*heldCall
	for _, c := range r.held {
		if c.due.After(now) {
			kept = append(kept, c)
			continue
		}
		due = append(due, c)
	}
	r.held = kept

	for _, c := range due {
		r.loop.RunPending()
		before := r.loop.Ran()
		close(c.release)
		if !r.loop.RunUntil(func() bool { return r.loop.Ran() > before }, settleTimeout) {
			return fmt.Errorf("response #%d never reached the engine", c.n)
		}
		switch {
		case c.rule.Fail:
			r.event("backend failure #%d", c.n)
		case !c.matched:
			r.event("backend no suggestion #%d", c.n)
		default:
			r.event("backend reply #%d %q", c.n, c.rule.Suggestion)
		}
	}
	return nil
}

func (r *Runner) expect(e Expectation) error {
	snap := r.snapshot()
	var problems []string
	if e.State != "" && e.State != string(snap.state) {
		problems = append(problems, fmt.Sprintf("state %s, want %s", snap.state, e.State))
	}
	if e.Binding != "" && e.Binding != string(snap.binding) {
		problems = append(problems, fmt.Sprintf("binding %s, want %s", snap.binding, e.Binding))
	}
	if e.Epoch != nil && *e.Epoch != uint64(snap.epoch) {
		problems = append(problems, fmt.Sprintf("epoch %d, want %d", snap.epoch, *e.Epoch))
	}
	if e.Ghost != nil && *e.Ghost != snap.ghost {
		problems = append(problems, fmt.Sprintf("ghost %q, want %q", snap.ghost, *e.Ghost))
	}
	if e.Value != nil && *e.Value != snap.value {
		problems = append(problems, fmt.Sprintf("value %q, want %q", snap.value, *e.Value))
	}
	if e.Requests != nil && *e.Requests != r.engine.Issued() {
		problems = append(problems, fmt.Sprintf("%d requests, want %d", r.engine.Issued(), *e.Requests))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrExpectation, strings.Join(problems, "; "))
	}
	return nil
}

// target resolves the element for type, key and blur. Without an explicit
// selector, key and blur go to the element last typed into, even when it
// was detached since.
func (r *Runner) target(selector string, focused bool) (*dom.Element, error) {
	if selector == "" && focused && r.focus != nil {
		return r.focus, nil
	}
	if selector == "" {
		selector = defaultTarget
	}
	return r.find(selector)
}

func (r *Runner) find(selector string) (*dom.Element, error) {
	el, err := r.doc.Find(selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return el, nil
}

type snapshot struct {
	state   entity.PipelineState
	binding entity.BindingState
	epoch   entity.BindingEpoch
	ghost   string
	value   string
}

func (r *Runner) snapshot() snapshot {
	s := snapshot{state: r.engine.State()}
	s.binding, s.epoch = r.engine.Binding()
	if ov := r.engine.Overlay(); ov.Visible() {
		s.ghost = ov.Text()
	}
	if bound, ok := r.engine.Bound(); ok {
		if el, ok := bound.Element.(port.Element); ok {
			s.value = r.doc.Value(el)
		}
	}
	return s
}

func (r *Runner) elapsed() int64 {
	return r.loop.Now().Sub(Epoch).Milliseconds()
}

func (r *Runner) record(format string, args ...any) {
	s := r.snapshot()
	fmt.Fprintf(&r.out, "+%dms %s -> state=%s binding=%s epoch=%d ghost=%q value=%q\n",
		r.elapsed(), fmt.Sprintf(format, args...), s.state, s.binding, s.epoch, s.ghost, s.value)
}

func (r *Runner) event(format string, args ...any) {
	fmt.Fprintf(&r.out, "+%dms   %s\n", r.elapsed(), fmt.Sprintf(format, args...))
}
