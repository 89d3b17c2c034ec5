// Package format converts transcript documents to plain text and renders
// summaries for email.
package format

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "blockquote": true, "pre": true,
}

var skipTags = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true,
}

// HTMLToText extracts readable text from an HTML document such as an exported
// meeting transcript. Single-column layout tables are flattened, data tables
// keep one line per row with cells separated by " | ".
func HTMLToText(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("html.Parse failed: %w", err)
	}

	w := &textWriter{}
	w.walk(doc)

	return w.String(), nil
}

type textWriter struct {
	lines []string
	cur   strings.Builder
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		if skipTags[n.Data] {
			return
		}
		if n.Data == "table" && isDataTable(n) {
			w.dataTable(n)
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if n.Type == html.ElementNode && blockTags[n.Data] {
		w.breakLine()
	}
}

func (w *textWriter) text(s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return
	}
	if w.cur.Len() > 0 {
		w.cur.WriteByte(' ')
	}
	w.cur.WriteString(strings.Join(fields, " "))
}

func (w *textWriter) breakLine() {
	if w.cur.Len() == 0 {
		return
	}
	w.lines = append(w.lines, w.cur.String())
	w.cur.Reset()
}

func (w *textWriter) dataTable(table *html.Node) {
	w.breakLine()
	eachElement(table, "tr", func(row *html.Node) {
		var cells []string
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, strings.Join(strings.Fields(nodeText(c)), " "))
			}
		}
		if len(cells) > 0 {
			w.lines = append(w.lines, strings.Join(cells, " | "))
		}
	})
}

func (w *textWriter) String() string {
	w.breakLine()
	return strings.Join(w.lines, "\n")
}

// isDataTable tells tables holding tabular data apart from layout tables:
// header cells or more than one column mean data.
func isDataTable(table *html.Node) bool {
	data := false
	eachElement(table, "th", func(*html.Node) { data = true })
	if data {
		return true
	}

	eachElement(table, "tr", func(row *html.Node) {
		cols := 0
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "td" {
				cols++
			}
		}
		if cols > 1 {
			data = true
		}
	})

	return data
}

func eachElement(n *html.Node, tag string, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			fn(c)
			continue
		}
		// nested tables belong to their own cell
		if c.Type == html.ElementNode && c.Data == "table" {
			continue
		}
		eachElement(c, tag, fn)
	}
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
		sb.WriteByte(' ')
	}
	return sb.String()
}
