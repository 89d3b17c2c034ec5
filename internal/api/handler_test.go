package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/meetnotes/internal/api"
	"github.com/hal9000y/meetnotes/internal/provider"
)

type summarizerMock struct {
	SummarizeFunc func(ctx context.Context, transcript, instruction string) (string, error)
	calls         int
}

func (m *summarizerMock) Summarize(ctx context.Context, transcript, instruction string) (string, error) {
	m.calls++
	return m.SummarizeFunc(ctx, transcript, instruction)
}

type senderMock struct {
	SendFunc func(ctx context.Context, to []string, subject, body string) error
	calls    int
}

func (m *senderMock) Send(ctx context.Context, to []string, subject, body string) error {
	m.calls++
	return m.SendFunc(ctx, to, subject, body)
}

func newServer(t *testing.T, s *summarizerMock, d *senderMock) *httptest.Server {
	mux := http.NewServeMux()
	api.NewHandler(s, d).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (int, map[string]any) {
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		name         string
		body         string
		reply        string
		replyErr     error
		expectStatus int
		expectBody   map[string]any
		expectCalls  int
	}{
		{
			name:         "success",
			body:         `{"transcript":"we agreed to ship","prompt":"be brief"}`,
			reply:        "- ship",
			expectStatus: http.StatusOK,
			expectBody:   map[string]any{"summary": "- ship"},
			expectCalls:  1,
		},
		{
			name:         "missing transcript",
			body:         `{"prompt":"be brief"}`,
			expectStatus: http.StatusBadRequest,
			expectBody:   map[string]any{"error": "Missing transcript"},
		},
		{
			name:         "blank transcript",
			body:         `{"transcript":"  \n "}`,
			expectStatus: http.StatusBadRequest,
			expectBody:   map[string]any{"error": "Missing transcript"},
		},
		{
			name:         "invalid json",
			body:         `{"transcript":`,
			expectStatus: http.StatusBadRequest,
			expectBody:   map[string]any{"error": "Invalid request body"},
		},
		{
			name:         "provider failure",
			body:         `{"transcript":"t"}`,
			replyErr:     &provider.Error{Provider: "gemini", Err: errors.New("quota")},
			expectStatus: http.StatusInternalServerError,
			expectBody:   map[string]any{"error": "Summarization failed"},
			expectCalls:  1,
		},
		{
			name:         "missing configuration",
			body:         `{"transcript":"t"}`,
			replyErr:     provider.Missing("GEMINI_API_KEY"),
			expectStatus: http.StatusInternalServerError,
			expectBody:   map[string]any{"error": "Summarization failed"},
			expectCalls:  1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &summarizerMock{SummarizeFunc: func(_ context.Context, transcript, instruction string) (string, error) {
				return tc.reply, tc.replyErr
			}}
			srv := newServer(t, s, &senderMock{})

			status, body := post(t, srv.URL+"/api/summarize", tc.body)
			assert.Equal(t, tc.expectStatus, status)
			assert.Equal(t, tc.expectBody, body)
			assert.Equal(t, tc.expectCalls, s.calls)
		})
	}
}

func TestSummarizePassesPrompt(t *testing.T) {
	var gotTranscript, gotInstruction string
	s := &summarizerMock{SummarizeFunc: func(_ context.Context, transcript, instruction string) (string, error) {
		gotTranscript, gotInstruction = transcript, instruction
		return "ok", nil
	}}
	srv := newServer(t, s, &senderMock{})

	status, _ := post(t, srv.URL+"/api/summarize", `{"transcript":"hello","prompt":"action items only"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", gotTranscript)
	assert.Equal(t, "action items only", gotInstruction)
}

func TestSendEmail(t *testing.T) {
	cases := []struct {
		name         string
		body         string
		sendErr      error
		expectStatus int
		expectBody   map[string]any
		expectTo     []string
		expectCalls  int
	}{
		{
			name:         "success",
			body:         `{"to":"a@b.com, c@d.org","subject":"Weekly","body":"- x"}`,
			expectStatus: http.StatusOK,
			expectBody:   map[string]any{"success": true},
			expectTo:     []string{"a@b.com", "c@d.org"},
			expectCalls:  1,
		},
		{
			name:         "missing to",
			body:         `{"body":"- x"}`,
			expectStatus: http.StatusBadRequest,
			expectBody:   map[string]any{"error": "Missing fields"},
		},
		{
			name:         "missing body",
			body:         `{"to":"a@b.com"}`,
			expectStatus: http.StatusBadRequest,
			expectBody:   map[string]any{"error": "Missing fields"},
		},
		{
			name:         "malformed address",
			body:         `{"to":"a@b.com, not-an-email, x","body":"- x"}`,
			expectStatus: http.StatusBadRequest,
			expectBody:   map[string]any{"error": "Invalid email format: not-an-email"},
		},
		{
			name:         "provider failure",
			body:         `{"to":"a@b.com","body":"- x"}`,
			sendErr:      &provider.Error{Provider: "postmark", Err: errors.New("inactive recipient")},
			expectStatus: http.StatusInternalServerError,
			expectBody:   map[string]any{"error": "Email failed"},
			expectTo:     []string{"a@b.com"},
			expectCalls:  1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotTo []string
			d := &senderMock{SendFunc: func(_ context.Context, to []string, subject, body string) error {
				gotTo = to
				return tc.sendErr
			}}
			srv := newServer(t, &summarizerMock{}, d)

			status, body := post(t, srv.URL+"/api/send-email", tc.body)
			assert.Equal(t, tc.expectStatus, status)
			assert.Equal(t, tc.expectBody, body)
			assert.Equal(t, tc.expectCalls, d.calls)
			assert.Equal(t, tc.expectTo, gotTo)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newServer(t, &summarizerMock{}, &senderMock{})

	resp, err := http.Get(srv.URL + "/api/summarize")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
