// Package gservice wraps the Google services the summarizer talks to: Gemini
// for completions and Gmail for delivering summaries.
package gservice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hal9000y/meetnotes/internal/auth"
	"github.com/hal9000y/meetnotes/internal/provider"
)

const gmailUserID = "me"

type oauthToken interface {
	OAuthToken() (*oauth2.Token, error)
}

// NewGmail creates a Gmail sender acting as the account behind tok.
func NewGmail(cfg *oauth2.Config, tok oauthToken, opts ...option.ClientOption) *GMail {
	return &GMail{
		cfg:  cfg,
		tok:  tok,
		opts: opts,
	}
}

// GMail sends prepared RFC 2822 messages through the Gmail API.
type GMail struct {
	cfg  *oauth2.Config
	tok  oauthToken
	opts []option.ClientOption
}

// SendRaw delivers an already encoded message and returns the Gmail message ID.
func (m *GMail) SendRaw(ctx context.Context, raw []byte) (string, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return "", fmt.Errorf("newSvc failed: %w", err)
	}

	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	sent, err := svc.Users.Messages.Send(gmailUserID, msg).Context(ctx).Do()
	if err != nil {
		return "", provider.Wrap("gmail", fmt.Errorf("messages.Send failed: %w", err))
	}

	return sent.Id, nil
}

func (m *GMail) newSvc(ctx context.Context) (*gmail.Service, error) {
	if m.cfg == nil || m.cfg.ClientID == "" || m.cfg.ClientSecret == "" {
		return nil, provider.Missing("OAUTH_GOOGLE_CLIENT_ID/OAUTH_GOOGLE_CLIENT_SECRET")
	}

	t, err := m.tok.OAuthToken()
	if errors.Is(err, auth.ErrTokenNotSet) {
		return nil, fmt.Errorf("%w: gmail sender account is not authorized, visit /oauth", provider.ErrMissingConfiguration)
	}
	if err != nil {
		return nil, fmt.Errorf("tok.OAuthToken failed: %w", err)
	}

	clt := m.cfg.Client(ctx, t)

	opts := append([]option.ClientOption{option.WithHTTPClient(clt)}, m.opts...)

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, provider.Wrap("gmail", fmt.Errorf("gmail.NewService failed: %w", err))
	}

	return svc, nil
}
