package suumo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"suumo-scraper/models"
)

// BrowserFetcher renders pages in headless Chrome and returns the final
// document markup. Slower than HTTPFetcher, but passes bot checks that
// reject plain HTTP clients.
type BrowserFetcher struct {
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
	timeout     time.Duration
	started     bool
}

// BrowserOptions configures a BrowserFetcher.
type BrowserOptions struct {
	ChromeBin string
	UserAgent string
	Timeout   time.Duration
}

// NewBrowserFetcher starts a browser allocator. Call Close to shut it down.
func NewBrowserFetcher(opts BrowserOptions) *BrowserFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	if bin := findChromeBinary(opts.ChromeBin); bin != "" {
		execOpts = append(execOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), execOpts...)
	// Suppress chromedp log noise
	browserCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &BrowserFetcher{
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		cancelTab:   cancelTab,
		timeout:     opts.Timeout,
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if !f.started {
		// tabs created before the browser runs would each launch their own
		if err := chromedp.Run(f.browserCtx); err != nil {
			return nil, &models.FetchError{URL: pageURL, Err: fmt.Errorf("chromedp start: %w", err)}
		}
		f.started = true
	}

	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	res, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(pageURL))
	if err != nil {
		return nil, &models.FetchError{URL: pageURL, Err: fmt.Errorf("chromedp navigate: %w", err)}
	}
	if res != nil && (res.Status < 200 || res.Status > 299) {
		return nil, &models.FetchError{
			URL:        pageURL,
			StatusCode: int(res.Status),
			Err:        fmt.Errorf("%d %s", res.Status, res.StatusText),
		}
	}

	var markup string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return nil, &models.FetchError{URL: pageURL, Err: fmt.Errorf("chromedp outer html: %w", err)}
	}
	return []byte(markup), nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() error {
	f.cancelTab()
	f.cancelAlloc()
	return nil
}

// findChromeBinary locates a Chrome/Chromium binary, preferring explicit.
// An empty result lets chromedp use its own lookup.
func findChromeBinary(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
