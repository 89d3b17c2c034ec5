// Package apiclient calls the meetnotes HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	summarizePath = "/api/summarize"
	sendEmailPath = "/api/send-email"
)

// ResponseError is a non-2xx reply. Message is the server's error string, or
// a generic one when the body carried none.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return e.Message
}

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Network error occurred while %s", e.Op)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError means the server answered with a success status but the
// exchange could not be encoded or decoded.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("Unexpected response while %s", e.Op)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewClient creates a client for the API rooted at baseURL. A nil hc uses a
// client with a two minute timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
	}
}

type Client struct {
	baseURL string
	hc      *http.Client
}

type summarizeRequest struct {
	Transcript string `json:"transcript"`
	Prompt     string `json:"prompt"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

type sendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendEmailResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Summarize asks the server for a summary of transcript.
func (c *Client) Summarize(ctx context.Context, transcript, instruction string) (string, error) {
	var out summarizeResponse

	err := c.post(ctx, summarizePath, summarizeRequest{Transcript: transcript, Prompt: instruction}, &out)
	if err != nil {
		return "", c.classify(err, "generating summary", out.Error, "Failed to generate summary")
	}

	return out.Summary, nil
}

// Send asks the server to email body to every address in to.
func (c *Client) Send(ctx context.Context, to []string, subject, body string) error {
	var out sendEmailResponse

	err := c.post(ctx, sendEmailPath, sendEmailRequest{To: strings.Join(to, ", "), Subject: subject, Body: body}, &out)
	if err != nil {
		return c.classify(err, "sending email", out.Error, "Failed to send email")
	}

	return nil
}

type statusError int

func (s statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", int(s))
}

// transportError marks failures where no complete HTTP response arrived.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }

func (c *Client) classify(err error, op, serverMsg, fallback string) error {
	var status statusError
	var tErr *transportError

	switch {
	case errors.As(err, &status):
		msg := serverMsg
		if msg == "" {
			msg = fallback
		}
		return &ResponseError{Status: int(status), Message: msg}
	case errors.As(err, &tErr):
		return &NetworkError{Op: op, Err: tErr.err}
	default:
		return &ProtocolError{Op: op, Err: err}
	}
}

// post sends in as JSON and decodes the reply into out, for error replies
// too. A non-2xx status is reported as statusError.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("json.Marshal failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return &transportError{err: fmt.Errorf("hc.Do failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transportError{err: fmt.Errorf("io.ReadAll failed: %w", err)}
	}

	decodeErr := json.Unmarshal(body, out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("json.Unmarshal failed: %w", decodeErr)
	}

	return nil
}
