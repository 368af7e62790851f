// Package ingestion normalizes resume and job posting text before it reaches the scoring pipeline.
// Input may be plain text, Markdown, or HTML pasted from a job board or an upstream extractor.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	excessiveBlanks = regexp.MustCompile(`\n\n\n+`)
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = excessiveBlanks.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	// Bullets keep their indentation; unicode bullets become "- "
	if isBulletLine(trimmed) {
		indent := len(line) - len(trimmed)
		for _, b := range []string{"• ", "· "} {
			if strings.HasPrefix(trimmed, b) {
				trimmed = "- " + strings.TrimPrefix(trimmed, b)
			}
		}
		return strings.Repeat(" ", indent) + trimmed
	}

	leadingSpace := len(line) - len(trimmed)
	content := whitespaceRun.ReplaceAllString(strings.TrimSpace(line), " ")
	if leadingSpace > 0 {
		return strings.Repeat(" ", leadingSpace) + content
	}
	return content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// NormalizeDocument converts HTML to text when needed and cleans the result.
func NormalizeDocument(content string) string {
	if IsHTML(content) {
		if text, err := HTMLToText(content); err == nil {
			return CleanText(text)
		}
	}
	return CleanText(content)
}

// IngestFromFile reads a resume or job posting, normalizes it, and returns the text with metadata
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	raw := string(content)
	format := FormatText
	if IsHTML(raw) {
		format = FormatHTML
	}
	cleanedText := NormalizeDocument(raw)
	if cleanedText == "" {
		return "", nil, fmt.Errorf("file %s has no text content", path)
	}

	metadata := NewMetadata(cleanedText, path)
	metadata.Format = format
	return cleanedText, metadata, nil
}
