// Package workflow owns the three step summarize-review-share flow and all of
// its data. Every user action is a method on Controller.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/hal9000y/meetnotes/internal/prompt"
	"github.com/hal9000y/meetnotes/internal/recipient"
	"github.com/hal9000y/meetnotes/internal/summarize"
)

// Step is a workflow state, numbered the way progress is displayed.
type Step int

const (
	StepInput Step = iota + 1
	StepReview
	StepShare
)

func (s Step) String() string {
	switch s {
	case StepInput:
		return "input"
	case StepReview:
		return "review"
	case StepShare:
		return "share"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Trigger names a user action that may move the workflow.
type Trigger string

const (
	TriggerGenerate   Trigger = "generate"
	TriggerRegenerate Trigger = "regenerate"
	TriggerContinue   Trigger = "continue"
	TriggerBack       Trigger = "back"
	TriggerSend       Trigger = "send"
)

var (
	ErrBusy            = errors.New("another request is already in progress")
	ErrEmptySummary    = errors.New("summary is empty")
	ErrStaleResult     = errors.New("result arrived after reset and was discarded")
	ErrUnreachableStep = errors.New("step is not reachable yet")
)

// TransitionError reports a trigger fired from a step that does not accept it.
type TransitionError struct {
	From    Step
	Trigger Trigger
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s is not available from the %s step", e.Trigger, e.From)
}

type transitionKey struct {
	from    Step
	trigger Trigger
}

// transitions lists the step each accepted trigger leads to once its guard
// and side effect succeed.
var transitions = map[transitionKey]Step{
	{StepInput, TriggerGenerate}:    StepReview,
	{StepReview, TriggerRegenerate}: StepReview,
	{StepReview, TriggerContinue}:   StepShare,
	{StepReview, TriggerBack}:       StepInput,
	{StepShare, TriggerBack}:        StepReview,
	{StepShare, TriggerSend}:        StepShare,
}

type summarizer interface {
	Summarize(ctx context.Context, transcript, instruction string) (string, error)
}

type sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// State is a point-in-time copy of everything the controller owns.
type State struct {
	Step        Step
	Transcript  string
	Instruction string
	Summary     string
	Recipients  string
	Subject     string

	Generating bool
	Sending    bool
	// Sent is true after a successful send until the summary, recipients or
	// subject change.
	Sent bool

	// ValidationError is the recipient problem from the last send attempt.
	ValidationError error
	// LastError is the last failure worth surfacing to the user.
	LastError error
}

// Busy reports whether any provider call is in flight.
func (s State) Busy() bool {
	return s.Generating || s.Sending
}

// NewController creates a controller at the input step with the default
// instruction.
func NewController(s summarizer, d sender) *Controller {
	return &Controller{
		s:           s,
		d:           d,
		step:        StepInput,
		instruction: prompt.DefaultInstruction,
	}
}

// Controller is safe for concurrent use. The mutex is never held while a
// provider call is running.
type Controller struct {
	s summarizer
	d sender

	mu          sync.Mutex
	step        Step
	transcript  string
	instruction string
	summary     string
	recipients  string
	subject     string
	generated   bool
	sent        bool
	generating  bool
	sending     bool
	validation  error
	lastErr     error
	// epoch increases on every reset so results of calls started before it
	// can be recognised and dropped.
	epoch uint64
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Step:            c.step,
		Transcript:      c.transcript,
		Instruction:     c.instruction,
		Summary:         c.summary,
		Recipients:      c.recipients,
		Subject:         c.subject,
		Generating:      c.generating,
		Sending:         c.sending,
		Sent:            c.sent,
		ValidationError: c.validation,
		LastError:       c.lastErr,
	}
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller) SetTranscript(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = v
}

func (c *Controller) SetInstruction(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instruction = v
}

// SetSummary replaces the summary with a user edit.
func (c *Controller) SetSummary(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = v
	c.sent = false
}

// SetRecipients stores the raw comma-separated list and clears any previous
// validation error.
func (c *Controller) SetRecipients(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recipients = v
	c.validation = nil
	c.sent = false
}

// SetSubject sets the email subject. Blank means the dispatch default.
func (c *Controller) SetSubject(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subject = v
	c.sent = false
}

// DismissError clears the surfaced provider error.
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

// Generate summarizes the transcript from the input step and moves to review
// on success. A failure leaves the step unchanged.
func (c *Controller) Generate(ctx context.Context) error {
	return c.summarize(ctx, TriggerGenerate)
}

// Regenerate summarizes again from the review step, replacing the summary.
func (c *Controller) Regenerate(ctx context.Context) error {
	return c.summarize(ctx, TriggerRegenerate)
}

func (c *Controller) summarize(ctx context.Context, trigger Trigger) error {
	c.mu.Lock()

	next, err := c.transitionLocked(trigger)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if c.generating {
		c.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(c.transcript) == "" {
		c.lastErr = summarize.ErrEmptyTranscript
		c.mu.Unlock()
		return summarize.ErrEmptyTranscript
	}

	c.generating = true
	epoch, from := c.epoch, c.step
	transcript, instruction := c.transcript, c.instruction
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.generating = false
		c.mu.Unlock()
	}()

	// A reset while this call runs does not cancel it. The result is dropped
	// below when the epoch no longer matches.
	summary, err := c.s.Summarize(ctx, transcript, instruction)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		log.Printf("Discarding %s result started before reset, err: %v", trigger, err)
		return ErrStaleResult
	}
	if err != nil {
		c.lastErr = err
		return fmt.Errorf("s.Summarize failed: %w", err)
	}

	c.summary = summary
	c.generated = true
	c.sent = false
	c.lastErr = nil
	// navigation while the call ran wins over the transition
	if c.step == from {
		c.step = next
	}

	return nil
}

// Continue moves from review to share when the summary is not empty.
func (c *Controller) Continue() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.transitionLocked(TriggerContinue)
	if err != nil {
		return err
	}
	if strings.TrimSpace(c.summary) == "" {
		return ErrEmptySummary
	}

	c.step = next
	return nil
}

// Back returns to the previous step without touching any data.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.transitionLocked(TriggerBack)
	if err != nil {
		return err
	}

	c.step = next
	return nil
}

// Send validates the recipients and emails the summary. It stays on the share
// step whatever the outcome.
func (c *Controller) Send(ctx context.Context) error {
	c.mu.Lock()

	if _, err := c.transitionLocked(TriggerSend); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.sending {
		c.mu.Unlock()
		return ErrBusy
	}

	to, err := recipient.Validate(c.recipients)
	if err != nil {
		c.validation = err
		c.mu.Unlock()
		return err
	}
	c.validation = nil
	if strings.TrimSpace(c.summary) == "" {
		c.mu.Unlock()
		return ErrEmptySummary
	}

	c.sending = true
	epoch := c.epoch
	subject, body := c.subject, c.summary
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	// Not cancelled by reset either, see summarize.
	err = c.d.Send(ctx, to, subject, body)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		log.Printf("Discarding send result started before reset, err: %v", err)
		return ErrStaleResult
	}
	if err != nil {
		c.lastErr = err
		return fmt.Errorf("d.Send failed: %w", err)
	}

	c.sent = true
	c.lastErr = nil

	return nil
}

// Reset returns to the input step and clears all data. In-flight calls keep
// running and their results are discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.step = StepInput
	c.transcript = ""
	c.instruction = prompt.DefaultInstruction
	c.summary = ""
	c.recipients = ""
	c.subject = ""
	c.generated = false
	c.sent = false
	c.validation = nil
	c.lastErr = nil
	c.epoch++
}

// GoTo jumps to any reachable step without changing data.
func (c *Controller) GoTo(step Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.reachableLocked(step) {
		return fmt.Errorf("%w: %s", ErrUnreachableStep, step)
	}

	c.step = step
	return nil
}

// Reachable lists the steps GoTo accepts, in order.
func (c *Controller) Reachable() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	var steps []Step
	for _, s := range []Step{StepInput, StepReview, StepShare} {
		if c.reachableLocked(s) {
			steps = append(steps, s)
		}
	}
	return steps
}

func (c *Controller) reachableLocked(step Step) bool {
	switch step {
	case StepInput:
		return true
	case StepReview:
		return c.generated || strings.TrimSpace(c.summary) != ""
	case StepShare:
		return strings.TrimSpace(c.summary) != ""
	default:
		return false
	}
}

func (c *Controller) transitionLocked(trigger Trigger) (Step, error) {
	next, ok := transitions[transitionKey{from: c.step, trigger: trigger}]
	if !ok {
		return 0, &TransitionError{From: c.step, Trigger: trigger}
	}
	return next, nil
}
