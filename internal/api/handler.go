// Package api exposes summarization and email dispatch over HTTP. Every
// failure is answered with a {"error": string} body.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/hal9000y/meetnotes/internal/recipient"
	"github.com/hal9000y/meetnotes/internal/summarize"
)

const maxBodyBytes = 10 << 20

type summarizer interface {
	Summarize(ctx context.Context, transcript, instruction string) (string, error)
}

type sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	Transcript string `json:"transcript"`
	Prompt     string `json:"prompt,omitempty"`
}

// SummarizeResponse is returned on success.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// SendEmailRequest is the body of POST /api/send-email. To is comma-separated.
type SendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// SendEmailResponse is returned on success.
type SendEmailResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the API handler.
func NewHandler(s summarizer, d sender) *Handler {
	return &Handler{s: s, d: d}
}

type Handler struct {
	s summarizer
	d sender
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/summarize", h.Summarize)
	mux.HandleFunc("POST /api/send-email", h.SendEmail)
}

func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "Missing transcript")
		return
	}

	summary, err := h.s.Summarize(r.Context(), req.Transcript, req.Prompt)
	if errors.Is(err, summarize.ErrEmptyTranscript) {
		writeError(w, http.StatusBadRequest, "Missing transcript")
		return
	}
	if err != nil {
		log.Println("h.s.Summarize failed", err)
		writeError(w, http.StatusInternalServerError, "Summarization failed")
		return
	}

	writeJSON(w, http.StatusOK, SummarizeResponse{Summary: summary})
}

func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req SendEmailRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	to, err := recipient.Validate(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if err := h.d.Send(r.Context(), to, req.Subject, req.Body); err != nil {
		log.Println("h.d.Send failed", err)
		writeError(w, http.StatusInternalServerError, "Email failed")
		return
	}

	writeJSON(w, http.StatusOK, SendEmailResponse{Success: true})
}

// validationMessage renders recipient errors the way the form shows them.
func validationMessage(err error) string {
	var malformed *recipient.MalformedAddressError
	if errors.As(err, &malformed) {
		return "Invalid email format: " + malformed.Address
	}
	return "Please enter at least one email address"
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("json.Encode failed", err)
	}
}
