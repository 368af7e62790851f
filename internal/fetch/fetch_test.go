package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, "text/html", result.ContentType)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_CustomHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "en-US", r.Header.Get("Accept-Language"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, &Options{
		UserAgent: "custom-agent",
		Headers:   map[string]string{"Accept-Language": "en-US"},
	})
	require.NoError(t, err)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, raw := range []string{"not-a-valid-url", "ftp://example.com/job", ""} {
		t.Run(raw, func(t *testing.T) {
			_, err := URL(context.Background(), raw, nil)
			require.Error(t, err)

			var fetchErr *Error
			assert.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, err.Error(), "invalid URL")
		})
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := URL(ctx, server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://boards.greenhouse.io/acme/jobs/1", true},
		{"http://localhost:8080/job", true},
		{"job.txt", false},
		{"/tmp/job.md", false},
		{"https:///nohost", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsURL(tt.in))
		})
	}
}

func TestExtractMainText(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		selectors   []string
		noise       []string
		contains    []string
		notContains []string
	}{
		{
			name: "main element",
			html: `<html><body>
				<nav>Navigation</nav>
				<main><h1>Main Content</h1><p>Body text.</p></main>
				<footer>Footer</footer>
			</body></html>`,
			selectors:   JobPostingSelectors(),
			contains:    []string{"# Main Content", "Body text."},
			notContains: []string{"Navigation", "Footer"},
		},
		{
			name: "first matching selector wins",
			html: `<html><body>
				<div class="content">Generic</div>
				<div class="job-description"><ul><li>Figma</li><li>Prototyping</li></ul></div>
			</body></html>`,
			selectors:   JobPostingSelectors(),
			contains:    []string{"- Figma", "- Prototyping"},
			notContains: []string{"Generic"},
		},
		{
			name:        "falls back to body",
			html:        `<html><body><p>Only a paragraph.</p><script>var x = 1;</script></body></html>`,
			selectors:   []string{".missing"},
			contains:    []string{"Only a paragraph."},
			notContains: []string{"var x"},
		},
		{
			name: "noise selectors are removed",
			html: `<html><body><main>
				<p>Design systems.</p>
				<div class="application--wrapper">Upload resume</div>
			</main></body></html>`,
			selectors:   []string{"main"},
			noise:       []string{".application--wrapper"},
			contains:    []string{"Design systems."},
			notContains: []string{"Upload resume"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html, tt.selectors, tt.noise...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Design Engineer", PageTitle(`<html><head><title>Jobs at Acme</title></head><body><h1> Design
		Engineer </h1></body></html>`))
	assert.Equal(t, "Jobs at Acme", PageTitle(`<html><head><title>Jobs at Acme</title></head><body></body></html>`))
	assert.Empty(t, PageTitle(`<p>nothing</p>`))
}

func TestError_Unwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &Error{URL: "https://example.com", Message: "HTTP request failed", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "fetch error for https://example.com: HTTP request failed: context deadline exceeded", err.Error())
}
