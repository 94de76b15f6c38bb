package suumo

import (
	"context"
	"errors"

	"suumo-scraper/models"
	"suumo-scraper/utils"
)

// Scraper walks the result pages of one search, one page at a time.
type Scraper struct {
	fetcher   Fetcher
	extractor Extractor
	pacer     *utils.Pacer
	logger    *utils.Logger
	maxPages  int
}

// Options configures a Scraper.
type Options struct {
	// RateLimitMs is the pause between two page requests.
	RateLimitMs int
	// MaxPages stops after that many pages; 0 means until an empty page.
	MaxPages int
}

// New creates a Scraper. A nil extractor selects CassetteExtractor.
func New(fetcher Fetcher, extractor Extractor, opts Options, logger *utils.Logger) *Scraper {
	if extractor == nil {
		extractor = CassetteExtractor{}
	}
	return &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
		pacer:     utils.NewPacer(opts.RateLimitMs),
		logger:    logger,
		maxPages:  opts.MaxPages,
	}
}

// Scrape fetches page 1, 2, ... of searchURL until a page has no listings
// (the normal end) or a page cannot be fetched or parsed. In the latter
// case result.Err is set and the listings from earlier pages are kept.
func (s *Scraper) Scrape(ctx context.Context, searchURL string) *models.ScrapeResult {
	result := &models.ScrapeResult{}

	for page := 1; s.maxPages == 0 || page <= s.maxPages; page++ {
		if err := s.pacer.Wait(ctx); err != nil {
			result.Err = err
			break
		}

		pageURL := PageURL(searchURL, page)
		s.logger.Debug("[suumo] Fetching page %d: %s", page, pageURL)
		pr := models.PageResult{Page: page, URL: pageURL}

		markup, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			var fe *models.FetchError
			if errors.As(err, &fe) {
				fe.Page = page
			} else {
				err = &models.FetchError{URL: pageURL, Page: page, Err: err}
			}
			s.logger.Error("[suumo] Page %d fetch failed, stopping: %v", page, err)
			pr.Err = err
			result.Pages = append(result.Pages, pr)
			result.Err = err
			break
		}

		rows, err := s.extractor.Extract(page, markup)
		if err != nil {
			s.logger.Error("[suumo] Page %d could not be parsed, stopping: %v", page, err)
			pr.Err = err
			result.Pages = append(result.Pages, pr)
			result.Err = err
			break
		}

		for _, row := range rows {
			if row.Err != nil {
				s.logger.Warn("[suumo] Skipping row: %v", row.Err)
				pr.Skipped++
				continue
			}
			result.Listings = append(result.Listings, row.Listing)
			pr.Rows++
		}
		result.Skipped += pr.Skipped
		result.Pages = append(result.Pages, pr)

		if pr.Rows == 0 {
			s.logger.Info("[suumo] Page %d returned 0 listings, end of results", page)
			break
		}

		s.logger.Info("[suumo] Page %d processed: %d listings (%d skipped), %d so far",
			page, pr.Rows, pr.Skipped, len(result.Listings))
	}

	return result
}
