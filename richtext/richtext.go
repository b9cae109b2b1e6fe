// Package richtext renders the CMS's structured text fields as HTML and
// plain text.
package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// Block types emitted by the CMS.
const (
	Paragraph    = "paragraph"
	Heading1     = "heading1"
	Heading2     = "heading2"
	Heading3     = "heading3"
	Heading4     = "heading4"
	Heading5     = "heading5"
	Heading6     = "heading6"
	Preformatted = "preformatted"
	ListItem     = "list-item"
	OListItem    = "o-list-item"
	Image        = "image"
	Embed        = "embed"
)

// Span types.
const (
	Strong    = "strong"
	Em        = "em"
	Hyperlink = "hyperlink"
	Label     = "label"
)

// SpanData carries the target of hyperlink spans and the name of labels.
type SpanData struct {
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	LinkType string `json:"link_type,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Span marks up Text[Start:End], counted in runes.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// Block is one element of a rich text field. Text may contain inline HTML.
type Block struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Spans []Span `json:"spans,omitempty"`
	URL   string `json:"url,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// RichText is an ordered list of blocks.
type RichText []Block

// AsText joins the text of every text-bearing block with sep. Markup inside
// block text is stripped.
func AsText(rt RichText, sep string) string {
	parts := make([]string, 0, len(rt))
	for _, b := range rt {
		if b.Type == Image || b.Type == Embed {
			continue
		}
		parts = append(parts, PlainText(b.Text))
	}
	return strings.Join(parts, sep)
}

// Text is AsText with a single space separator.
func (rt RichText) Text() string {
	return AsText(rt, " ")
}

// Component returns a templ.Component writing the sanitised HTML of rt.
func Component(rt RichText, s *Sanitizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s.Sanitize(HTML(rt)))
		return err
	})
}

// HTML renders rt. The result is not sanitised; pass it through a
// Sanitizer before sending it to a browser.
func HTML(rt RichText) string {
	var buf bytes.Buffer
	inList := false
	inOrderedList := false

	flushList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}
	flushOrderedList := func() {
		if inOrderedList {
			buf.WriteString("</ol>")
			inOrderedList = false
		}
	}

	for _, b := range rt {
		switch b.Type {
		case ListItem:
			flushOrderedList()
			if !inList {
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(applySpans(b.Text, b.Spans))
			buf.WriteString("</li>")
			continue
		case OListItem:
			flushList()
			if !inOrderedList {
				buf.WriteString("<ol>")
				inOrderedList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(applySpans(b.Text, b.Spans))
			buf.WriteString("</li>")
			continue
		}

		flushList()
		flushOrderedList()

		switch b.Type {
		case Heading1, Heading2, Heading3, Heading4, Heading5, Heading6:
			tag := "h" + b.Type[len(b.Type)-1:]
			buf.WriteString("<" + tag + ">")
			buf.WriteString(applySpans(b.Text, b.Spans))
			buf.WriteString("</" + tag + ">")
		case Preformatted:
			buf.WriteString("<pre>")
			buf.WriteString(html.EscapeString(b.Text))
			buf.WriteString("</pre>")
		case Image:
			if b.URL == "" {
				continue
			}
			buf.WriteString(`<p class="block-img"><img src="`)
			buf.WriteString(html.EscapeString(b.URL))
			buf.WriteString(`" alt="`)
			buf.WriteString(html.EscapeString(b.Alt))
			buf.WriteString(`" loading="lazy"></p>`)
		case Embed:
			// Embeds need third-party scripts the CSP does not allow.
		default:
			buf.WriteString("<p>")
			buf.WriteString(applySpans(b.Text, b.Spans))
			buf.WriteString("</p>")
		}
	}
	flushList()
	flushOrderedList()
	return buf.String()
}

type boundary struct {
	pos   int
	open  bool
	order int
	span  Span
}

// applySpans inserts span markup into text at rune offsets. Overlapping
// spans are closed in reverse opening order at shared positions.
func applySpans(text string, spans []Span) string {
	if len(spans) == 0 {
		return text
	}
	runes := []rune(text)
	var bounds []boundary
	for i, s := range spans {
		if s.Start < 0 || s.End > len(runes) || s.Start >= s.End {
			continue
		}
		if openTag(s) == "" {
			continue
		}
		bounds = append(bounds,
			boundary{pos: s.Start, open: true, order: i, span: s},
			boundary{pos: s.End, open: false, order: i, span: s},
		)
	}
	sort.SliceStable(bounds, func(i, j int) bool {
		a, b := bounds[i], bounds[j]
		if a.pos != b.pos {
			return a.pos < b.pos
		}
		if a.open != b.open {
			return !a.open
		}
		if a.open {
			return a.order < b.order
		}
		return a.order > b.order
	})

	var b strings.Builder
	next := 0
	for i, r := range runes {
		for next < len(bounds) && bounds[next].pos == i {
			writeBoundary(&b, bounds[next])
			next++
		}
		b.WriteRune(r)
	}
	for ; next < len(bounds); next++ {
		writeBoundary(&b, bounds[next])
	}
	return b.String()
}

func writeBoundary(b *strings.Builder, bd boundary) {
	if bd.open {
		b.WriteString(openTag(bd.span))
		return
	}
	b.WriteString(closeTag(bd.span))
}

func openTag(s Span) string {
	switch s.Type {
	case Strong:
		return "<strong>"
	case Em:
		return "<em>"
	case Hyperlink:
		if s.Data == nil || s.Data.URL == "" {
			return ""
		}
		if s.Data.Target != "" {
			return `<a href="` + html.EscapeString(s.Data.URL) + `" target="` + html.EscapeString(s.Data.Target) + `">`
		}
		return `<a href="` + html.EscapeString(s.Data.URL) + `">`
	case Label:
		if s.Data == nil || s.Data.Label == "" {
			return ""
		}
		return `<span class="` + html.EscapeString(s.Data.Label) + `">`
	}
	return ""
}

func closeTag(s Span) string {
	switch s.Type {
	case Strong:
		return "</strong>"
	case Em:
		return "</em>"
	case Hyperlink:
		return "</a>"
	case Label:
		return "</span>"
	}
	return ""
}
