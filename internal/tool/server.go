package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server exposing summarization and dispatch.
func NewServer(s summarizer, d sender) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "meetnotes", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_transcript",
		Description: "Summarize a meeting transcript into overview, key points, decisions and action items",
	}, NewSummarizeTranscript(s).SummarizeTranscript)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_summary_email",
		Description: "Email a meeting summary to a comma-separated list of recipients",
	}, NewSendSummaryEmail(d).SendSummaryEmail)

	return server
}
