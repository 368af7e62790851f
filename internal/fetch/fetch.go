// Package fetch retrieves job postings from the web and turns them into plain text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/applicant-tracker/internal/ingestion"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ApplicantTracker/1.0)"

// maxPageBytes bounds how much of a page is read.
const maxPageBytes = 5 << 20

// Result holds the raw content of a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// Render retries pages whose text is too short in a headless browser.
	Render bool
}

// DefaultOptions returns the defaults used when nil Options are passed.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// IsURL reports whether s is an absolute http(s) URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// URL retrieves HTML content from a URL. On a non-200 status the partial result is returned
// together with the error.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if !IsURL(urlStr) {
		return nil, &Error{URL: urlStr, Message: "invalid URL"}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return result, nil
}

// ExtractMainText returns the readable text of the first element matching contentSelectors,
// or of the body when none match. Noise such as navigation and application forms is removed
// first. Headings and list items keep their structure.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .sidebar, .cookie-banner, .popup").Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var main *goquery.Selection
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	inner, err := main.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render content: %w", err)
	}
	text, err := ingestion.HTMLToText("<body>" + inner + "</body>")
	if err != nil {
		return "", err
	}
	return ingestion.CleanText(text), nil
}

// PageTitle returns the first <h1>, falling back to <title>.
func PageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return strings.Join(strings.Fields(h1), " ")
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}

// JobPostingSelectors returns selectors for job pages on unknown boards.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}
