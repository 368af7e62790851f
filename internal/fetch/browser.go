package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/applicant-tracker/internal/logger"
)

// MinContentLength is the shortest extracted text accepted from a plain HTTP fetch. Shorter
// text usually means the board renders the posting with JavaScript.
const MinContentLength = 500

// ShouldUseBrowser reports whether extracted text is too short to be a real posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Render loads a page in headless Chrome and returns the rendered HTML.
// Chrome or Chromium must be installed.
func Render(ctx context.Context, url string, timeout time.Duration) (string, error) {
	log := logger.FromContext(ctx)
	log.Debug().Str("url", url).Msg("rendering page in headless browser")

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// client-side boards fill the description after load
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	log.Debug().Int("bytes", len(html)).Msg("page rendered")
	return html, nil
}
