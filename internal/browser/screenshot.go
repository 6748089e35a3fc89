package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// screenshots saves full-page captures of failed renders.
type screenshots struct {
	dir string
	log *zap.Logger
}

func newScreenshots(debugDir string, log *zap.Logger) *screenshots {
	if debugDir == "" {
		return &screenshots{log: log}
	}
	return &screenshots{dir: filepath.Join(debugDir, "screenshots"), log: log}
}

func (s *screenshots) path(name string, at time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.png", name, at.Format("2006-01-02_15-04-05")))
}

func (s *screenshots) capture(page playwright.Page, name string) {
	if s.dir == "" {
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Warn("⚠️ screenshot dir", zap.Error(err))
		return
	}
	path := s.path(name, time.Now())
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.log.Warn("⚠️ failed to capture screenshot", zap.Error(err))
		return
	}
	s.log.Info("📸 screenshot saved", zap.String("path", path))
}
