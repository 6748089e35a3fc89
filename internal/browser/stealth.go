package browser

import (
	"context"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// hideWebdriver runs before any page script.
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// RandomDelay waits between min and max milliseconds, or until ctx ends.
func RandomDelay(ctx context.Context, min, max int) {
	d := min
	if max > min {
		d = rand.Intn(max-min+1) + min
	}
	t := time.NewTimer(time.Duration(d) * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// HumanScroll scrolls down in steps to trigger lazy-loaded cards, then
// back up a little.
func HumanScroll(ctx context.Context, page playwright.Page) error {
	for i := 0; i < 4; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight / 2)"); err != nil {
			return err
		}
		RandomDelay(ctx, 300, 800)
	}
	_, err := page.Evaluate("window.scrollBy(0, -200)")
	return err
}

// MouseJiggle moves the mouse to a few random points in the viewport.
func MouseJiggle(ctx context.Context, page playwright.Page) error {
	vp := page.ViewportSize()
	if vp == nil || vp.Width <= 0 || vp.Height <= 0 {
		return nil
	}
	for i := 0; i < 3; i++ {
		if err := page.Mouse().Move(float64(rand.Intn(vp.Width)), float64(rand.Intn(vp.Height))); err != nil {
			return err
		}
		RandomDelay(ctx, 100, 300)
	}
	return nil
}
