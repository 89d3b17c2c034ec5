package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type summarizer interface {
	Summarize(ctx context.Context, transcript, instruction string) (string, error)
}

func NewSummarizeTranscript(s summarizer) *SummarizeTranscript {
	return &SummarizeTranscript{s: s}
}

type SummarizeTranscript struct {
	s summarizer
}

func (t *SummarizeTranscript) SummarizeTranscript(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeTranscriptRequest,
) (*mcp.CallToolResult, SummarizeTranscriptResponse, error) {
	summary, err := t.s.Summarize(ctx, input.Transcript, input.Prompt)
	if err != nil {
		return nil, SummarizeTranscriptResponse{}, fmt.Errorf("s.Summarize failed: %w", err)
	}

	return nil, SummarizeTranscriptResponse{Summary: summary}, nil
}
