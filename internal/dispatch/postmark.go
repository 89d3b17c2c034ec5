package dispatch

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/hal9000y/meetnotes/internal/provider"
)

// NewPostmarkTransport creates a Postmark-backed transport. Empty tokens are
// accepted here and reported as missing configuration on Deliver.
func NewPostmarkTransport(serverToken, accountToken string) *PostmarkTransport {
	return &PostmarkTransport{
		client:      postmark.NewClient(serverToken, accountToken),
		serverToken: serverToken,
	}
}

// PostmarkTransport sends through Postmark's transactional API.
type PostmarkTransport struct {
	client      *postmark.Client
	serverToken string
}

func (p *PostmarkTransport) Name() string { return "postmark" }

func (p *PostmarkTransport) Deliver(ctx context.Context, msg Message) error {
	if p.serverToken == "" {
		return provider.Missing("POSTMARK_SERVER_TOKEN")
	}

	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     msg.From,
		To:       strings.Join(msg.To, ","),
		Subject:  msg.Subject,
		TextBody: msg.Text,
		HTMLBody: msg.HTML,
		Tag:      "meeting-summary",
	})
	if err != nil {
		return fmt.Errorf("client.SendEmail failed: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}

	log.Printf("Summary sent via postmark to %d recipient(s), message id %s", len(msg.To), resp.MessageID)

	return nil
}
