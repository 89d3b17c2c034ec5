package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/meetnotes/internal/recipient"
)

type sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

func NewSendSummaryEmail(d sender) *SendSummaryEmail {
	return &SendSummaryEmail{d: d}
}

type SendSummaryEmail struct {
	d sender
}

func (t *SendSummaryEmail) SendSummaryEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendSummaryEmailRequest,
) (*mcp.CallToolResult, SendSummaryEmailResponse, error) {
	if strings.TrimSpace(input.Body) == "" {
		return nil, SendSummaryEmailResponse{}, fmt.Errorf("body is required")
	}

	to, err := recipient.Validate(input.To)
	if err != nil {
		return nil, SendSummaryEmailResponse{}, fmt.Errorf("recipient.Validate failed: %w", err)
	}

	if err := t.d.Send(ctx, to, input.Subject, input.Body); err != nil {
		return nil, SendSummaryEmailResponse{}, fmt.Errorf("d.Send failed: %w", err)
	}

	return nil, SendSummaryEmailResponse{Success: true}, nil
}
