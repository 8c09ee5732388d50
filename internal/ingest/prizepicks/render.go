package prizepicks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/fortuna/propline/internal/logger"
	"go.uber.org/zap"
)

// PageFetcher returns the HTML of a page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// ChromeFetcher renders pages in headless Chrome, for boards that are built
// client side by JavaScript.
type ChromeFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	settle   time.Duration
	log      *logger.Logger
}

// NewChromeFetcher starts a headless browser allocator. Close releases it.
func NewChromeFetcher(userAgent string, timeout time.Duration, log *logger.Logger) *ChromeFetcher {
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromeFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
		settle:   time.Second,
		log:      log.Named("chrome"),
	}
}

// Close releases the browser allocator.
func (f *ChromeFetcher) Close() {
	if f.cancel != nil {
		f.cancel()
	}
}

// FetchPage navigates to url and returns the rendered document.
func (f *ChromeFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(f.allocCtx)
	defer cancel()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, f.timeout)
	defer cancelTimeout()

	// chromedp contexts do not inherit the caller's cancellation
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	f.log.Debug("rendering page", zap.String("url", url))

	var page string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML(`html`, &page, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}
	if page == "" {
		return "", errors.New("empty HTML content returned")
	}
	return page, nil
}
