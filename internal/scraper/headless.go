package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// lookupIndustryHeadless renders the company page in headless chrome and
// pulls the industry label out of the live DOM.
func (s *IndustryScraper) lookupIndustryHeadless(ctx context.Context, pageURL, selector string) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(s.userAgent),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, s.timeout)
	defer reqCancel()

	var texts []string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(fmt.Sprintf(
			`Array.from(document.querySelectorAll(%q)).map(n => n.textContent)`, selector), &texts),
	)
	if err != nil {
		return "", err
	}

	for _, t := range texts {
		if v := strings.TrimSpace(t); v != "" {
			return v, nil
		}
	}
	return "", nil
}
