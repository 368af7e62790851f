package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)<\s*(html|body|div|p|ul|ol|li|br|h[1-6]|span|section|article|table)\b[^>]*>`)

// IsHTML reports whether content contains block-level HTML markup.
func IsHTML(content string) bool {
	return htmlTag.MatchString(content)
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "tr": true, "blockquote": true,
}

// HTMLToText extracts readable text from HTML. Headings become Markdown headings and
// list items become "- " bullets so CleanText can keep the structure.
func HTMLToText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var sb strings.Builder
	root.Contents().Each(func(_ int, s *goquery.Selection) {
		writeNode(&sb, s)
	})
	return sb.String(), nil
}

func writeNode(sb *strings.Builder, s *goquery.Selection) {
	name := goquery.NodeName(s)
	switch {
	case name == "#text":
		text := whitespaceRun.ReplaceAllString(s.Text(), " ")
		if strings.TrimSpace(text) == "" {
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteString(" ")
			}
			return
		}
		sb.WriteString(text)
		return
	case strings.HasPrefix(name, "#"):
		return
	case name == "br":
		sb.WriteString("\n")
		return
	case name == "li":
		ensureNewline(sb)
		sb.WriteString("- ")
		sb.WriteString(inlineText(s))
		sb.WriteString("\n")
		return
	case len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6':
		sb.WriteString("\n\n")
		sb.WriteString(strings.Repeat("#", int(name[1]-'0')))
		sb.WriteString(" ")
		sb.WriteString(inlineText(s))
		sb.WriteString("\n\n")
		return
	}

	block := blockElements[name]
	if block {
		sb.WriteString("\n\n")
	}
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		writeNode(sb, child)
	})
	if block {
		sb.WriteString("\n\n")
	}
}

func inlineText(s *goquery.Selection) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s.Text(), " "))
}

func ensureNewline(sb *strings.Builder) {
	if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
		sb.WriteString("\n")
	}
}
