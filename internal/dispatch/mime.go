package dispatch

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"
)

// BuildMIME encodes msg as a multipart/alternative RFC 2822 message with the
// text part first, so clients that cannot render HTML show the summary as is.
func BuildMIME(msg Message) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{contentType: "text/plain", content: msg.Text},
		{contentType: "text/html", content: msg.HTML},
	}

	for _, p := range parts {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType + `; charset="utf-8"`},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, fmt.Errorf("mw.CreatePart failed: %w", err)
		}

		qw := quotedprintable.NewWriter(w)
		if _, err := qw.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("qw.Write failed: %w", err)
		}
		if err := qw.Close(); err != nil {
			return nil, fmt.Errorf("qw.Close failed: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("mw.Close failed: %w", err)
	}

	var out bytes.Buffer
	writeHeader(&out, "From", msg.From)
	writeHeader(&out, "To", strings.Join(msg.To, ", "))
	writeHeader(&out, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&out, "Date", msg.Date.Format(time.RFC1123Z))
	writeHeader(&out, "MIME-Version", "1.0")
	writeHeader(&out, "Content-Type", fmt.Sprintf(`multipart/alternative; boundary="%s"`, mw.Boundary()))
	out.WriteString("\r\n")
	out.Write(body.Bytes())

	return out.Bytes(), nil
}

func writeHeader(b *bytes.Buffer, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}
