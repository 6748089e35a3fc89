package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

const cookiesJSON = `[
  {"name":"li_at","value":"abc","domain":".linkedin.com","path":"/","expires":1893456000,"httpOnly":true,"secure":true,"sameSite":"None"},
  {"name":"lang","value":"en","domain":".linkedin.com","sameSite":"Lax"},
  {"name":"","value":"skipped","domain":".linkedin.com"}
]`

func TestLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies-linkedin.json")
	require.NoError(t, os.WriteFile(path, []byte(cookiesJSON), 0o644))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	first := cookies[0]
	assert.Equal(t, "li_at", first.Name)
	assert.Equal(t, ".linkedin.com", *first.Domain)
	assert.Equal(t, "/", *first.Path)
	assert.Equal(t, 1893456000.0, *first.Expires)
	assert.True(t, *first.HttpOnly)
	assert.True(t, *first.Secure)
	assert.Equal(t, playwright.SameSiteAttributeNone, first.SameSite)

	second := cookies[1]
	assert.Equal(t, "/", *second.Path)
	assert.Nil(t, second.Expires)
	assert.Nil(t, second.HttpOnly)
	assert.Equal(t, playwright.SameSiteAttributeLax, second.SameSite)
}

func TestLoadCookies_Errors(t *testing.T) {
	_, err := LoadCookies(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadCookies(bad)
	assert.Error(t, err)
}

func TestLoadCookieDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cookies-linkedin.json"), []byte(cookiesJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cookies-naukri.json"),
		[]byte(`[{"name":"nauk","value":"1","domain":".naukri.com"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	cookies, err := LoadCookieDir(dir)
	require.NoError(t, err)
	assert.Len(t, cookies, 3)

	none, err := LoadCookieDir(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, none)

	none, err = LoadCookieDir("")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestScreenshotPath(t *testing.T) {
	s := newScreenshots("api_debug", nil)
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("api_debug", "screenshots", "goto_2026-10-19_09-30-00.png"), s.path("goto", at))

	assert.Empty(t, newScreenshots("", nil).dir)
}

func TestRandomDelay_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	RandomDelay(ctx, 5000, 6000)
	assert.Less(t, time.Since(start), time.Second)
}

// integration: needs installed playwright browsers
func TestRenderer_Fetch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("<html><body>gone</body></html>"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><ul class="jobs"><li>Fresher QA</li></ul></body></html>`))
	}))
	defer srv.Close()

	r, err := NewRenderer(Options{Headless: true, Timeout: 10 * time.Second})
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	defer r.Close()

	raw, err := r.Fetch(context.Background(), scraper.Request{Kind: scraper.KindPage, URL: srv.URL + "/jobs", WaitSelector: "ul.jobs"})
	require.NoError(t, err)
	assert.Equal(t, 200, raw.StatusCode)
	assert.Contains(t, string(raw.Body), "Fresher QA")

	raw, err = r.Fetch(context.Background(), scraper.Request{Kind: scraper.KindPage, URL: srv.URL + "/gone"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scraper.ErrTransport))
	require.NotNil(t, raw)
	assert.Equal(t, 404, raw.StatusCode)
}
