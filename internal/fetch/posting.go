package fetch

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/applicant-tracker/internal/cache"
	"github.com/jonathan/applicant-tracker/internal/ingestion"
	"github.com/jonathan/applicant-tracker/internal/logger"
)

// DefaultPostingTTL is how long an imported posting stays cached.
const DefaultPostingTTL = 24 * time.Hour

// DefaultRenderTimeout bounds a headless browser render.
const DefaultRenderTimeout = 45 * time.Second

// Posting is a job posting imported from a job board.
type Posting struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
	Title    string   `json:"title"`
	// Text is the whole readable posting.
	Text string `json:"text"`
	// Requirements is the qualifications section, or Text when none could be located.
	Requirements string `json:"requirements"`
	Hash         string `json:"hash"`
	Rendered     bool   `json:"rendered"`
}

// renderFunc loads a page in a browser and returns its HTML.
type renderFunc func(ctx context.Context, url string, timeout time.Duration) (string, error)

// Importer fetches postings and caches them by URL.
type Importer struct {
	cache  cache.Cache
	ttl    time.Duration
	opts   *Options
	render renderFunc
}

// NewImporter creates an Importer. A nil cache disables caching and nil opts uses DefaultOptions.
func NewImporter(c cache.Cache, ttl time.Duration, opts *Options) *Importer {
	if c == nil {
		c = cache.Nop{}
	}
	if ttl <= 0 {
		ttl = DefaultPostingTTL
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Importer{cache: c, ttl: ttl, opts: opts, render: Render}
}

func postingKey(url string) string {
	return "posting:" + ingestion.ContentHash(url)
}

// Fetch imports the posting at url, serving a cached copy when present.
func (i *Importer) Fetch(ctx context.Context, url string) (*Posting, error) {
	log := logger.FromContext(ctx)
	key := postingKey(url)

	var cached Posting
	hit, err := i.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("posting cache read failed")
	}
	if hit {
		log.Debug().Str("url", url).Msg("posting served from cache")
		return &cached, nil
	}

	res, err := URL(ctx, url, i.opts)
	if err != nil {
		return nil, err
	}

	platform := DetectPlatform(url)
	posting, err := buildPosting(url, platform, res.HTML)
	if err != nil {
		return nil, err
	}

	if i.opts.Render && ShouldUseBrowser(posting.Text) {
		log.Info().Str("url", url).Int("chars", len(posting.Text)).Msg("posting text too short, rendering in browser")
		html, rerr := i.render(ctx, url, DefaultRenderTimeout)
		if rerr != nil {
			log.Warn().Err(rerr).Str("url", url).Msg("browser render failed, keeping static content")
		} else if rendered, berr := buildPosting(url, platform, html); berr == nil && len(rendered.Text) > len(posting.Text) {
			rendered.Rendered = true
			posting = rendered
		}
	}

	if strings.TrimSpace(posting.Text) == "" {
		return nil, &Error{URL: url, Message: "page has no readable content"}
	}

	if err := i.cache.SetJSON(ctx, key, posting, i.ttl); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("posting cache write failed")
	}
	return posting, nil
}

func buildPosting(url string, platform Platform, html string) (*Posting, error) {
	text, err := ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, fmt.Errorf("failed to extract posting from %s: %w", url, err)
	}
	requirements := RequirementsSection(text)
	if requirements == "" {
		requirements = text
	}
	return &Posting{
		URL:          url,
		Platform:     platform,
		Title:        PageTitle(html),
		Text:         text,
		Requirements: requirements,
		Hash:         ingestion.ContentHash(text),
	}, nil
}

var (
	requirementsHeading = regexp.MustCompile(`(?i)^(#+\s*)?(requirements|qualifications|minimum qualifications|basic qualifications|preferred qualifications|what you.ll need|what we.re looking for|who you are|you have|skills)\s*:?\s*$`)
	otherHeading        = regexp.MustCompile(`(?i)^(#+\s*)?(benefits|perks|compensation|salary|about us|about the company|how to apply|equal opportunity|what we offer|why join)\b.*$`)
)

// RequirementsSection returns the lines under requirement headings up to the next unrelated
// heading. It returns "" when the text has no such heading.
func RequirementsSection(text string) string {
	var out []string
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case requirementsHeading.MatchString(trimmed):
			inSection = true
			out = append(out, trimmed)
		case otherHeading.MatchString(trimmed) || (inSection && strings.HasPrefix(trimmed, "#")):
			inSection = false
		case inSection && trimmed != "":
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
