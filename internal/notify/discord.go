package notify

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DiscordChannel delivers messages by POSTing the formatted payload to a
// webhook URL. The target address is the webhook URL itself.
type DiscordChannel struct {
	client *http.Client
	logger *zap.Logger
}

// NewDiscordChannel constructs a DiscordChannel.
func NewDiscordChannel(logger *zap.Logger) *DiscordChannel {
	return &DiscordChannel{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Send posts the payload to the webhook. Returns delivery success.
func (d *DiscordChannel) Send(ctx context.Context, target string, msg Message) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(msg))
	if err != nil {
		d.logger.Warn("discord request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("discord notification error", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		d.logger.Warn("discord webhook failed", zap.Int("status", resp.StatusCode))
		return false
	}
	d.logger.Debug("discord notification sent")
	return true
}
