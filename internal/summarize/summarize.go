// Package summarize turns meeting transcripts into structured summaries.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hal9000y/meetnotes/internal/prompt"
	"github.com/hal9000y/meetnotes/internal/provider"
)

// ErrEmptyTranscript is returned before any provider call for a blank transcript.
var ErrEmptyTranscript = errors.New("missing transcript")

type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewClient creates a summarization client on top of a completion provider.
func NewClient(c completer) *Client {
	return &Client{c: c}
}

// Client makes exactly one completion call per Summarize; there is no retry.
type Client struct {
	c completer
}

// Summarize returns the trimmed summary of transcript. A provider reply
// without content produces an empty summary, not an error.
func (s *Client) Summarize(ctx context.Context, transcript, instruction string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}

	p := prompt.Compose(transcript, instruction)

	out, err := s.c.Complete(ctx, p.System, p.User)
	if err != nil {
		return "", fmt.Errorf("c.Complete failed: %w", provider.Wrap("completion", err))
	}

	return strings.TrimSpace(out), nil
}
