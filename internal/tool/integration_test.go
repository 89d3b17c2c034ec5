package tool_test

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/meetnotes/internal/dispatch"
	"github.com/hal9000y/meetnotes/internal/gservice"
	"github.com/hal9000y/meetnotes/internal/summarize"
	"github.com/hal9000y/meetnotes/internal/tool"
	"github.com/hal9000y/meetnotes/internal/transcript"
)

func TestIntegrationMeetnotesMCP(t *testing.T) {
	transcriptFile := os.Getenv("MEETNOTES_TRANSCRIPT_FILE")
	envFile := os.Getenv("ENV_FILE")

	if transcriptFile == "" {
		t.Skip("Skipping integration test: MEETNOTES_TRANSCRIPT_FILE env var must be set")
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			t.Logf("Warning: could not load env file %s: %v", envFile, err)
		}
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY must be set")
	}

	text, err := transcript.Load(transcriptFile)
	require.NoError(t, err, "Failed to load transcript")

	session := setupMCPSession(t, apiKey)
	defer session.Close()

	summary := callSummarize(session.ctx, t, session.client, text)

	t.Logf("\n=== TRANSCRIPT ===")
	t.Logf("File: %s", transcriptFile)
	t.Logf("Size: %d bytes (~%d tokens)", len(text), estimateTokens(text))
	t.Logf("Preview: %s", truncateString(text, 200))

	t.Logf("\n=== SUMMARY ===")
	t.Logf("Size: %d bytes (~%d tokens)", len(summary), estimateTokens(summary))
	t.Logf("%s", summary)

	result, err := session.client.CallTool(session.ctx, &mcp.CallToolParams{
		Name: "send_summary_email",
		Arguments: tool.SendSummaryEmailRequest{
			To:   "integration@example.com",
			Body: summary,
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "Send failed: %v", result.Content)

	entries, err := os.ReadDir(session.mailDir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

type mcpSession struct {
	ctx     context.Context
	client  *mcp.ClientSession
	server  *mcp.ServerSession
	mailDir string
}

func (s *mcpSession) Close() {
	s.client.Close()
	s.server.Close()
}

func setupMCPSession(t *testing.T, apiKey string) *mcpSession {
	gemini := gservice.NewGemini(gservice.GeminiOptions{
		APIKey: apiKey,
		Model:  os.Getenv("GEMINI_MODEL"),
	})

	mailDir := t.TempDir()
	sender := dispatch.NewClient(dispatch.NewDevTransport(mailDir), "meetnotes@example.com")
	server := tool.NewServer(summarize.NewClient(gemini), sender)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	return &mcpSession{
		ctx:     ctx,
		client:  clientSession,
		server:  serverSession,
		mailDir: mailDir,
	}
}

func callSummarize(ctx context.Context, t *testing.T, client *mcp.ClientSession, text string) string {
	result, err := client.CallTool(ctx, &mcp.CallToolParams{
		Name:      "summarize_transcript",
		Arguments: tool.SummarizeTranscriptRequest{Transcript: text},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.False(t, result.IsError, "Summarize failed: %v", result.Content)

	var response tool.SummarizeTranscriptResponse
	require.NoError(t, json.Unmarshal(
		[]byte(result.Content[0].(*mcp.TextContent).Text),
		&response,
	))

	return response.Summary
}

func truncateString(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")

	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func estimateTokens(text string) int {
	return len(text) / 4
}
