// Package browser renders JavaScript-heavy listing pages with playwright.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/SURENDHAR-1925/Job-Track/internal/logger"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

const defaultTimeout = 30 * time.Second

type Options struct {
	Headless bool
	// CookiesDir holds exported cookies-*.json files loaded into the context.
	CookiesDir string
	UserAgent  string
	// DebugDir receives a screenshot whenever a page fails to render.
	DebugDir string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Renderer is a page fetcher backed by one browser context. It is not
// safe for concurrent use; the pipeline fetches sequentially.
type Renderer struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	opts    Options
	log     *zap.Logger
	shots   *screenshots
}

// NewRenderer starts playwright, launches chromium and opens a context with
// the configured cookies.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	log := logger.OrNop(opts.Logger).Named("browser")

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		Locale:   playwright.String("en-IN"),
		Viewport: &playwright.Size{Width: 1366, Height: 900},
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	bctx, err := b.NewContext(ctxOpts)
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(hideWebdriver)}); err != nil {
		log.Warn("⚠️ init script not installed", zap.Error(err))
	}

	cookies, err := LoadCookieDir(opts.CookiesDir)
	if err != nil {
		log.Warn("⚠️ could not load cookies, continuing without", zap.String("dir", opts.CookiesDir), zap.Error(err))
	} else if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			log.Warn("⚠️ could not add cookies", zap.Error(err))
		} else {
			log.Info("🍪 cookies loaded", zap.Int("count", len(cookies)))
		}
	}

	return &Renderer{
		pw:      pw,
		browser: b,
		bctx:    bctx,
		opts:    opts,
		log:     log,
		shots:   newScreenshots(opts.DebugDir, log),
	}, nil
}

// Fetch loads req.URL in a fresh page and returns the rendered HTML.
// Navigation errors and HTTP statuses >= 400 wrap scraper.ErrTransport.
func (r *Renderer) Fetch(ctx context.Context, req scraper.Request) (*scraper.RawResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", scraper.ErrTransport, err)
	}
	timeout := r.timeout(ctx)

	page, err := r.bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: new page: %v", scraper.ErrTransport, err)
	}
	defer page.Close()
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))

	resp, err := page.Goto(req.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		r.shots.capture(page, "goto")
		return nil, fmt.Errorf("%w: goto %s: %v", scraper.ErrTransport, req.URL, err)
	}

	status := http.StatusOK
	if resp != nil {
		status = resp.Status()
	}

	if req.WaitSelector != "" && status < 400 {
		// Missing cards are the adapter's call, not a transport failure.
		if _, err := page.WaitForSelector(req.WaitSelector, playwright.PageWaitForSelectorOptions{
			Timeout: playwright.Float(float64(timeout.Milliseconds()) / 2),
		}); err != nil {
			r.log.Debug("wait selector not found", zap.String("selector", req.WaitSelector), zap.Error(err))
		}
	}
	if err := MouseJiggle(ctx, page); err != nil {
		r.log.Debug("mouse move failed", zap.Error(err))
	}
	if err := HumanScroll(ctx, page); err != nil && !errors.Is(err, context.Canceled) {
		r.log.Debug("scroll failed", zap.Error(err))
	}

	html, err := page.Content()
	if err != nil {
		r.shots.capture(page, "content")
		return nil, fmt.Errorf("%w: read content: %v", scraper.ErrTransport, err)
	}

	raw := &scraper.RawResponse{
		URL:         page.URL(),
		StatusCode:  status,
		ContentType: "text/html",
		Body:        []byte(html),
		FetchedAt:   time.Now(),
	}
	if status >= 400 {
		r.shots.capture(page, fmt.Sprintf("status_%d", status))
		return raw, fmt.Errorf("%w: status %d", scraper.ErrTransport, status)
	}
	return raw, nil
}

func (r *Renderer) timeout(ctx context.Context) time.Duration {
	t := r.opts.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < t {
			t = left
		}
	}
	if t < time.Second {
		t = time.Second
	}
	return t
}

// Close shuts the context, the browser and the playwright driver.
func (r *Renderer) Close() error {
	var errs []error
	if r.bctx != nil {
		errs = append(errs, r.bctx.Close())
	}
	if r.browser != nil {
		errs = append(errs, r.browser.Close())
	}
	if r.pw != nil {
		errs = append(errs, r.pw.Stop())
	}
	return errors.Join(errs...)
}
