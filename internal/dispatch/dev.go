package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// NewDevTransport writes messages to dir instead of sending them.
func NewDevTransport(dir string) *DevTransport {
	return &DevTransport{dir: dir}
}

// DevTransport stores every message as .html, .txt and .json files, for local
// development without an email provider.
type DevTransport struct {
	dir string
}

type devMetadata struct {
	Timestamp string   `json:"timestamp"`
	From      string   `json:"from"`
	To        []string `json:"to"`
	Subject   string   `json:"subject"`
}

func (d *DevTransport) Name() string { return "dev" }

func (d *DevTransport) Deliver(_ context.Context, msg Message) error {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll failed: %w", err)
	}

	base := filepath.Join(d.dir, fmt.Sprintf("%s_%s", msg.Date.Format("2006_01_02_150405"), safeName(msg.Subject)))

	meta, err := json.MarshalIndent(devMetadata{
		Timestamp: msg.Date.Format(time.RFC3339),
		From:      msg.From,
		To:        msg.To,
		Subject:   msg.Subject,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent failed: %w", err)
	}

	files := map[string][]byte{
		base + ".html": []byte(msg.HTML),
		base + ".txt":  []byte(msg.Text),
		base + ".json": meta,
	}
	for path, data := range files {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("os.WriteFile(%s) failed: %w", path, err)
		}
	}

	log.Printf("Summary for %d recipient(s) written to %s.*", len(msg.To), base)

	return nil
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func safeName(s string) string {
	s = unsafeName.ReplaceAllString(strings.ReplaceAll(s, " ", "_"), "")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
