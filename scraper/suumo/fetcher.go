package suumo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"suumo-scraper/models"
	"suumo-scraper/utils"
)

// Fetcher retrieves the markup of one index page.
// Failures are reported as *models.FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// HTTPFetcher fetches pages with a plain HTTP client. Suumo rejects
// requests that do not carry a browser User-Agent, so one is always set.
type HTTPFetcher struct {
	client *resty.Client
	retry  *utils.RetryConfig
}

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// MaxAttempts above 1 enables retries of transport errors, 429 and 5xx.
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *utils.Logger
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 2 * time.Second
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeaders(map[string]string{
		"User-Agent":      opts.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "ja,en-US;q=0.7,en;q=0.3",
	})

	return &HTTPFetcher{
		client: client,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxAttempts,
			BaseDelay:   opts.BaseDelay,
			Logger:      opts.Logger,
			Retryable:   retryableFetch,
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	var body []byte
	err := f.retry.Do(ctx, "fetch "+pageURL, func() error {
		res, err := f.client.R().
			SetContext(ctx).
			Get(pageURL)
		if err != nil {
			return &models.FetchError{URL: pageURL, Err: err}
		}
		if !res.IsSuccess() {
			return &models.FetchError{
				URL:        pageURL,
				StatusCode: res.StatusCode(),
				Err:        errors.New(res.Status()),
			}
		}
		body = res.Body()
		return nil
	})
	if err != nil {
		var fe *models.FetchError
		if !errors.As(err, &fe) {
			// context cancelled while backing off
			return nil, &models.FetchError{URL: pageURL, Err: err}
		}
		return nil, err
	}
	return body, nil
}

func retryableFetch(err error) bool {
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		return false
	}
	if fe.StatusCode == 0 {
		return !errors.Is(fe.Err, context.Canceled)
	}
	return fe.StatusCode == http.StatusTooManyRequests || fe.StatusCode >= 500
}
