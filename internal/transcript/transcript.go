// Package transcript reads meeting transcripts from files in the formats
// meeting tools commonly export.
package transcript

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hal9000y/meetnotes/internal/format"
)

// ErrUnsupportedFormat is returned for file extensions Load cannot read.
var ErrUnsupportedFormat = errors.New("unsupported transcript format")

const maxSize = 10 << 20

var reCueTiming = regexp.MustCompile(`^(\d{2}:)?\d{2}:\d{2}[.,]\d{3}\s+-->\s+`)

// Load reads the file at path and returns its transcript text.
func Load(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("os.Open failed: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(filepath.Base(path), f)
}

// Read decodes a transcript named name from r. The extension of name selects
// the decoder: .txt/.md are kept verbatim, .html/.htm are reduced to text,
// .srt/.vtt lose cue numbers, timings and consecutive repeated lines.
func Read(name string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return "", fmt.Errorf("io.ReadAll failed: %w", err)
	}
	if len(raw) > maxSize {
		return "", fmt.Errorf("transcript %s exceeds %d bytes", name, maxSize)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", "":
		return string(raw), nil
	case ".html", ".htm":
		return format.HTMLToText(raw)
	case ".srt", ".vtt":
		return stripCues(string(raw)), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// stripCues walks caption blocks. A block is a run of non-blank lines; it is
// a header (WEBVTT), a comment or style block (NOTE, STYLE, REGION) or a cue:
// optional identifier, timing line, then text. Only cue text is kept.
func stripCues(content string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var out []string
	last := ""
	blockStart := true
	skipBlock := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			blockStart, skipBlock = true, false
			continue
		}
		if skipBlock {
			continue
		}

		if blockStart {
			blockStart = false
			if isHeaderBlock(trimmed) {
				skipBlock = true
				continue
			}
			// cue identifier, SRT numbers included
			if !reCueTiming.MatchString(trimmed) && i+1 < len(lines) && reCueTiming.MatchString(strings.TrimSpace(lines[i+1])) {
				continue
			}
		}

		if reCueTiming.MatchString(trimmed) {
			continue
		}
		// captions often repeat a line across adjacent cues
		if trimmed == last {
			continue
		}
		out = append(out, trimmed)
		last = trimmed
	}

	return strings.Join(out, "\n")
}

func isHeaderBlock(line string) bool {
	for _, kw := range []string{"WEBVTT", "NOTE", "STYLE", "REGION"} {
		if line == kw || strings.HasPrefix(line, kw+" ") || strings.HasPrefix(line, kw+"\t") {
			return true
		}
	}
	return false
}
