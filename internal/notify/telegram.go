package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultTelegramAPIBase = "https://api.telegram.org"

// TelegramChannel delivers messages via the Telegram Bot API sendMessage
// endpoint. The target address is the chat id.
type TelegramChannel struct {
	token   string
	apiBase string
	client  *http.Client
	logger  *zap.Logger
}

// NewTelegramChannel constructs a TelegramChannel. An empty token makes
// every Send a logged failure rather than a startup error, matching the
// scrape-only deployment mode.
func NewTelegramChannel(token string, logger *zap.Logger) *TelegramChannel {
	return &TelegramChannel{
		token:   token,
		apiBase: defaultTelegramAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// WithAPIBase overrides the API host, for tests.
func (t *TelegramChannel) WithAPIBase(base string) *TelegramChannel {
	t.apiBase = base
	return t
}

// Send posts the message text to the chat. Returns delivery success.
func (t *TelegramChannel) Send(ctx context.Context, target string, msg Message) bool {
	if t.token == "" {
		t.logger.Warn("telegram token not configured, dropping notification")
		return false
	}

	body, err := json.Marshal(map[string]any{
		"chat_id":                  target,
		"text":                     string(msg),
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	})
	if err != nil {
		t.logger.Warn("telegram payload marshal failed", zap.Error(err))
		return false
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.logger.Warn("telegram request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn("telegram notification error", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.logger.Warn("telegram api error",
			zap.Int("status", resp.StatusCode),
			zap.String("chat_id", target),
		)
		return false
	}
	t.logger.Debug("telegram notification sent", zap.String("chat_id", target))
	return true
}
