package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"persona-match/internal/repository"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// IndustryTarget describes a company directory we can resolve industries
// from: a lookup URL pattern plus the CSS selector that holds the industry
// label on the company page.
type IndustryTarget struct {
	SourceName       string
	LookupURL        string // %s is replaced with the url-escaped company name
	IndustrySelector string
}

// IndustryScraper resolves a declared industry per company on users'
// profiles and writes it into social_profiles. The match job only ever reads
// the stored signal; a scrape failure just leaves the previous value alone.
type IndustryScraper struct {
	social repository.SocialRepository
	logger *zap.Logger

	userAgent string
	timeout   time.Duration
}

func NewIndustryScraper(social repository.SocialRepository, logger *zap.Logger) *IndustryScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndustryScraper{
		social:    social,
		logger:    logger,
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		timeout:   20 * time.Second,
	}
}

// Scrape fetches each distinct company once and fans the lookups out over
// the worker pool. Returns the number of users whose signal was refreshed.
func (s *IndustryScraper) Scrape(ctx context.Context, target IndustryTarget, workers int) (int, error) {
	if s == nil || s.social == nil {
		return 0, fmt.Errorf("nil scraper/social repository")
	}
	if strings.TrimSpace(target.LookupURL) == "" {
		return 0, fmt.Errorf("empty lookup url")
	}
	if strings.TrimSpace(target.IndustrySelector) == "" {
		target.IndustrySelector = ".industry"
	}
	if workers <= 0 {
		workers = 4
	}

	byCompany, err := s.social.ListUsersByCompany(ctx)
	if err != nil {
		return 0, err
	}
	if len(byCompany) == 0 {
		return 0, nil
	}

	pool := NewWorkerPool(workers, len(byCompany), 2)
	updated := make(chan int, len(byCompany))

	for company, userIDs := range byCompany {
		company, userIDs := company, userIDs
		pool.Submit(func(ctx context.Context) error {
			industry, err := s.lookupIndustry(ctx, target, company)
			if err != nil {
				s.logger.Warn("industry lookup failed",
					zap.String("company", company),
					zap.String("source", target.SourceName),
					zap.Error(err))
				return err
			}
			if industry == "" {
				return nil
			}

			n := 0
			for _, id := range userIDs {
				if err := s.social.UpsertDeclaredIndustry(ctx, id, industry, target.SourceName); err != nil {
					s.logger.Warn("industry signal write failed",
						zap.String("user_id", id.String()), zap.Error(err))
					continue
				}
				n++
			}
			updated <- n
			return nil
		})
	}
	pool.Close()

	for range pool.Run(ctx) {
	}
	close(updated)

	total := 0
	for n := range updated {
		total += n
	}
	return total, nil
}

func (s *IndustryScraper) lookupIndustry(ctx context.Context, target IndustryTarget, company string) (string, error) {
	pageURL := fmt.Sprintf(target.LookupURL, url.QueryEscape(company))

	var industry string
	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnHTML(target.IndustrySelector, func(e *colly.HTMLElement) {
		if industry == "" {
			industry = strings.TrimSpace(e.Text)
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return "", err
	}
	c.Wait()

	// Directories rendering the industry badge client-side come back empty
	// from a plain fetch; retry through a headless browser.
	if industry == "" {
		return s.lookupIndustryHeadless(ctx, pageURL, target.IndustrySelector)
	}
	return industry, nil
}
