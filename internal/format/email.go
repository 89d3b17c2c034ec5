package format

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

var summaryTmpl = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="margin:0;padding:24px;background:#f5f7fb;font-family:Arial,Helvetica,sans-serif;color:#1f2937;">
<table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width:640px;margin:0 auto;background:#ffffff;border-radius:8px;">
<tr><td style="padding:24px 24px 8px 24px;">
<h1 style="margin:0;font-size:20px;">{{.Title}}</h1>
<p style="margin:4px 0 0 0;font-size:13px;color:#6b7280;">Meeting date: {{.Date}}</p>
</td></tr>
<tr><td style="padding:16px 24px 24px 24px;">
<pre style="white-space:pre-wrap;word-wrap:break-word;font-family:inherit;font-size:14px;line-height:1.5;margin:0;">{{.Body}}</pre>
</td></tr>
</table>
</body>
</html>
`))

// DateLayout is how the meeting date is stamped on rendered summaries.
const DateLayout = "Monday, January 2, 2006"

// SummaryHTML renders body inside the email wrapper. Body is HTML-escaped and
// otherwise kept as is.
func SummaryHTML(title string, date time.Time, body string) (string, error) {
	var sb strings.Builder
	err := summaryTmpl.Execute(&sb, struct {
		Title string
		Date  string
		Body  string
	}{
		Title: title,
		Date:  date.Format(DateLayout),
		Body:  body,
	})
	if err != nil {
		return "", fmt.Errorf("summaryTmpl.Execute failed: %w", err)
	}

	return sb.String(), nil
}
