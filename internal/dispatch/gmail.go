package dispatch

import (
	"context"
	"fmt"
	"log"
)

type rawSender interface {
	SendRaw(ctx context.Context, raw []byte) (string, error)
}

// NewGmailTransport delivers through the Gmail API account behind svc.
func NewGmailTransport(svc rawSender) *GmailTransport {
	return &GmailTransport{svc: svc}
}

// GmailTransport sends MIME-encoded messages with Gmail.
type GmailTransport struct {
	svc rawSender
}

func (g *GmailTransport) Name() string { return "gmail" }

func (g *GmailTransport) Deliver(ctx context.Context, msg Message) error {
	raw, err := BuildMIME(msg)
	if err != nil {
		return fmt.Errorf("BuildMIME failed: %w", err)
	}

	id, err := g.svc.SendRaw(ctx, raw)
	if err != nil {
		return fmt.Errorf("svc.SendRaw failed: %w", err)
	}

	log.Printf("Summary sent via gmail to %d recipient(s), message id %s", len(msg.To), id)

	return nil
}
