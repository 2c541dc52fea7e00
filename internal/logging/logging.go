// Package logging builds the zap loggers used across the service.
package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger, or a colored console logger when
// development is true.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	return zap.NewProduction()
}

// WithAlerts attaches a hook that forwards error-level entries to a
// Discord webhook, so operators hear about failures without tailing logs.
// An empty webhook URL returns the logger unchanged.
func WithAlerts(logger *zap.Logger, webhookURL string) *zap.Logger {
	if webhookURL == "" {
		return logger
	}
	a := &alerter{
		url:    webhookURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	return logger.WithOptions(zap.Hooks(a.hook))
}

type alerter struct {
	url    string
	client *http.Client
}

// hook fires on every log entry; only Error and above alert. Posting is
// asynchronous so a slow webhook never stalls the caller.
func (a *alerter) hook(entry zapcore.Entry) error {
	if entry.Level < zapcore.ErrorLevel {
		return nil
	}
	go a.post(entry)
	return nil
}

func (a *alerter) post(entry zapcore.Entry) {
	payload := map[string]any{
		"username": "First Monitor",
		"embeds": []map[string]any{{
			"title":       "CRITICAL ERROR",
			"description": "```" + entry.Message + "```",
			"color":       0xFF0000,
			"fields": []map[string]any{
				{"name": "Level", "value": entry.Level.CapitalString(), "inline": true},
				{"name": "Logger", "value": loggerName(entry), "inline": true},
				{"name": "Caller", "value": entry.Caller.TrimmedPath(), "inline": true},
			},
			"timestamp": entry.Time.UTC().Format(time.RFC3339),
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	resp, err := a.client.Post(a.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
}

func loggerName(entry zapcore.Entry) string {
	if entry.LoggerName == "" {
		return "root"
	}
	return entry.LoggerName
}
