package notify

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	name string
	err  error
	got  []Message
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Send(_ context.Context, msg Message) error {
	r.got = append(r.got, msg)
	return r.err
}

func TestFanout_SendsToAllAndJoinsErrors(t *testing.T) {
	a := &recordingNotifier{name: "a", err: errors.New("smtp down")}
	b := &recordingNotifier{name: "b"}

	err := Fanout{a, b}.Send(context.Background(), Message{Subject: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: smtp down")
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}

func TestCombine(t *testing.T) {
	assert.Equal(t, Nop{}, Combine())
	a := &recordingNotifier{name: "a"}
	assert.Same(t, a, Combine(a))
	assert.IsType(t, Fanout{}, Combine(a, a))
	assert.NoError(t, Nop{}.Send(context.Background(), Message{}))
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmail_Build(t *testing.T) {
	e, err := NewEmail(EmailOptions{Host: "smtp.example.com", From: "bot@example.com", To: []string{"me@example.com"}})
	require.NoError(t, err)

	csvPath := writeFile(t, "accepted_jobs.csv", "title,company,location,snippet,link,source\n")
	m, err := e.build(Message{
		Subject:     "Job-Track: 2 jobs found",
		Body:        "1. Fresher QA @ Acme",
		Attachments: []string{csvPath, filepath.Join(t.TempDir(), "missing.csv")},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Job-Track: 2 jobs found")
	assert.Contains(t, raw, "me@example.com")
	assert.Contains(t, raw, "bot@example.com")
	assert.Contains(t, raw, "accepted_jobs.csv")
	assert.NotContains(t, raw, "missing.csv")
}

func TestEmail_Validation(t *testing.T) {
	_, err := NewEmail(EmailOptions{Host: "smtp.example.com"})
	assert.Error(t, err)

	e, err := NewEmail(EmailOptions{Host: "smtp.example.com", From: "not an address", To: []string{"me@example.com"}})
	require.NoError(t, err)
	_, err = e.build(Message{})
	assert.Error(t, err)
}

func TestEmail_SendUnreachable(t *testing.T) {
	e, err := NewEmail(EmailOptions{
		Host:    "127.0.0.1",
		Port:    1,
		From:    "bot@example.com",
		To:      []string{"me@example.com"},
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Error(t, e.Send(context.Background(), Message{Subject: "s", Body: "b"}))
}

type fakeBotAPI struct {
	mu        sync.Mutex
	texts     []string
	documents []string
}

func (f *fakeBotAPI) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"jobtrack","username":"jobtrack_bot"}}`))
		return
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.mu.Lock()
		f.texts = append(f.texts, r.FormValue("text"))
		f.mu.Unlock()
	case strings.HasSuffix(r.URL.Path, "/sendDocument"):
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for _, fh := range r.MultipartForm.File["document"] {
				f.mu.Lock()
				f.documents = append(f.documents, fh.Filename)
				f.mu.Unlock()
			}
		}
	}
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
}

func TestTelegram_Send(t *testing.T) {
	fake := &fakeBotAPI{}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	defer srv.Close()

	tg, err := NewTelegram(TelegramOptions{Token: "123:abc", ChatID: 42, Endpoint: srv.URL + "/bot%s/%s"})
	require.NoError(t, err)

	csvPath := writeFile(t, "accepted_jobs.csv", "title\n")
	err = tg.Send(context.Background(), Message{
		Subject:     "Job-Track: 1 job found",
		Body:        "1. Fresher QA @ Acme (Chennai)",
		Attachments: []string{csvPath},
	})
	require.NoError(t, err)

	require.Len(t, fake.texts, 1)
	assert.Contains(t, fake.texts[0], "*Job\\-Track: 1 job found*")
	assert.Contains(t, fake.texts[0], "1\\. Fresher QA @ Acme \\(Chennai\\)")
	assert.Equal(t, []string{"accepted_jobs.csv"}, fake.documents)
}

func TestChunkLines(t *testing.T) {
	assert.Equal(t, []string{""}, chunkLines("", 10))
	assert.Equal(t, []string{"ab\ncd", "ef"}, chunkLines("ab\ncd\nef\n", 5))
	assert.Equal(t, []string{"abcde", "fg"}, chunkLines("abcdefg", 5))

	for _, c := range chunkLines("ééééé", 3) {
		assert.True(t, len(c) <= 3)
		assert.NotContains(t, c, "�")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "a\\_b \\(c\\)\\.", escapeMarkdown("a_b (c)."))
}
