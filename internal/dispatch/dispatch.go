// Package dispatch delivers meeting summaries by email through a pluggable
// transport.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hal9000y/meetnotes/internal/format"
	"github.com/hal9000y/meetnotes/internal/provider"
)

// DefaultSubject is used when the caller passes a blank subject.
const DefaultSubject = "Meeting Summary"

var (
	ErrNoRecipients = errors.New("no recipients")
	ErrEmptyBody    = errors.New("empty body")
)

// Message is a fully prepared summary email.
type Message struct {
	From    string
	To      []string
	Subject string
	// Text is the summary exactly as the caller passed it.
	Text string
	// HTML embeds Text in the presentational wrapper.
	HTML string
	Date time.Time
}

type transport interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// NewClient creates a dispatch client sending as from.
func NewClient(t transport, from string) *Client {
	return &Client{
		t:    t,
		from: from,
		now:  time.Now,
	}
}

// Client sends one email per call. Addresses are not re-validated here; the
// caller runs the recipient validator first.
type Client struct {
	t    transport
	from string
	now  func() time.Time
}

// Send delivers body to every address in to. Any transport failure is
// returned as a provider error, no retry is attempted.
func (c *Client) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	if strings.TrimSpace(c.from) == "" {
		return provider.Missing("FROM_EMAIL")
	}
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}

	msg, err := c.compose(to, sanitizeHeader(subject), body)
	if err != nil {
		return fmt.Errorf("compose failed: %w", err)
	}

	if err := c.t.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("%s.Deliver failed: %w", c.t.Name(), provider.Wrap(c.t.Name(), err))
	}

	return nil
}

func (c *Client) compose(to []string, subject, body string) (Message, error) {
	date := c.now()

	htmlBody, err := format.SummaryHTML(subject, date, body)
	if err != nil {
		return Message{}, fmt.Errorf("format.SummaryHTML failed: %w", err)
	}

	rcpts := make([]string, len(to))
	for i, addr := range to {
		rcpts[i] = sanitizeHeader(addr)
	}

	return Message{
		From:    sanitizeHeader(c.from),
		To:      rcpts,
		Subject: subject,
		Text:    body,
		HTML:    htmlBody,
		Date:    date,
	}, nil
}

func sanitizeHeader(v string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(v))
}
