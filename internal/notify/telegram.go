package notify

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramChunk bounds one message's unescaped text; escaping can grow it,
// and Telegram rejects messages over 4096 characters.
const telegramChunk = 1800

type TelegramOptions struct {
	Token  string
	ChatID int64
	// Endpoint overrides the Bot API URL format, e.g. for tests.
	Endpoint string
	Client   *http.Client
}

// Telegram posts the summary to a chat and uploads the CSVs as documents.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(opts TelegramOptions) (*Telegram, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Telegram{api: api, chatID: opts.ChatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, msg Message) error {
	for i, chunk := range chunkLines(msg.Body, telegramChunk) {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := escapeMarkdown(chunk)
		if i == 0 {
			text = "📋 *" + escapeMarkdown(msg.Subject) + "*\n\n" + text
		}
		m := tgbotapi.NewMessage(t.chatID, text)
		m.ParseMode = tgbotapi.ModeMarkdownV2
		m.DisableWebPagePreview = true
		if _, err := t.api.Send(m); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}

	for _, path := range msg.Attachments {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(path))
		if _, err := t.api.Send(doc); err != nil {
			return fmt.Errorf("send %s: %w", path, err)
		}
	}
	return nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// chunkLines splits text on line boundaries into pieces of at most max
// bytes. A single longer line is cut hard.
func chunkLines(text string, max int) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return []string{""}
	}
	var chunks []string
	var cur strings.Builder
	for _, line := range strings.Split(text, "\n") {
		for len(line) > max {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			cut := max
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > max {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
