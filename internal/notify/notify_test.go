package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var sampleRecord = jobs.JobRecord{
	ExternalID:            "42",
	Link:                  "https://mostaql.com/project/42-logo",
	Title:                 "Logo design",
	Budget:                "$50.00 - $100.00",
	Duration:              "5 Days",
	OwnerName:             "Ahmed",
	OwnerRegistrationDate: "2020-03-12",
	OwnerEmploymentRate:   "80%",
	NumberOfBids:          3,
}

func TestFormatTelegram(t *testing.T) {
	t.Parallel()

	f := NewFormatter(fixedClock{now: time.Unix(1700000000, 0)})
	msg, err := f.Format(jobs.PlatformTelegram, "design", sampleRecord)
	require.NoError(t, err)

	text := string(msg)
	require.Contains(t, text, "*New Job Alert*")
	require.Contains(t, text, "*Logo design*")
	require.Contains(t, text, "[View Project](https://mostaql.com/project/42-logo)")
	require.Contains(t, text, "Budget: $50.00 - $100.00")
	require.Contains(t, text, "Bids: 3")
	require.Contains(t, text, "Category: design")
}

func TestFormatDiscord(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	f := NewFormatter(fixedClock{now: now})
	msg, err := f.Format(jobs.PlatformDiscord, "design", sampleRecord)
	require.NoError(t, err)

	var payload struct {
		Username string `json:"username"`
		Embeds   []struct {
			Title     string `json:"title"`
			Timestamp string `json:"timestamp"`
			Fields    []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"fields"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(msg, &payload))
	require.Equal(t, "First", payload.Username)
	require.Len(t, payload.Embeds, 2)
	require.Equal(t, "Logo design", payload.Embeds[0].Title)
	require.Equal(t, "2024-01-15T12:00:00Z", payload.Embeds[1].Timestamp)
	require.Equal(t, "Category", payload.Embeds[0].Fields[1].Name)
	require.Equal(t, "design", payload.Embeds[0].Fields[1].Value)
}

func TestFormatMissingFieldsRenderNA(t *testing.T) {
	t.Parallel()

	f := NewFormatter(fixedClock{now: time.Unix(0, 0)})
	msg, err := f.Format(jobs.PlatformTelegram, "design", jobs.JobRecord{ExternalID: "7"})
	require.NoError(t, err)
	require.Contains(t, string(msg), "Budget: N/A")
	require.Contains(t, string(msg), "Owner: N/A")
}

func TestFormatUnknownPlatform(t *testing.T) {
	t.Parallel()

	f := NewFormatter(fixedClock{now: time.Unix(0, 0)})
	_, err := f.Format(jobs.PlatformUnknown, "design", sampleRecord)
	require.Error(t, err)
}

func TestTelegramChannelSend(t *testing.T) {
	t.Parallel()

	var got struct {
		ChatID    string `json:"chat_id"`
		Text      string `json:"text"`
		ParseMode string `json:"parse_mode"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := NewTelegramChannel("test-token", zap.NewNop()).WithAPIBase(srv.URL)
	ok := ch.Send(context.Background(), "12345", Message("hello"))
	require.True(t, ok)
	require.Equal(t, "12345", got.ChatID)
	require.Equal(t, "hello", got.Text)
	require.Equal(t, "Markdown", got.ParseMode)
}

func TestTelegramChannelWithoutToken(t *testing.T) {
	t.Parallel()

	ch := NewTelegramChannel("", zap.NewNop())
	require.False(t, ch.Send(context.Background(), "12345", Message("hello")))
}

func TestDiscordChannelSend(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := NewDiscordChannel(zap.NewNop())
	require.True(t, ch.Send(context.Background(), srv.URL, Message(`{"embeds":[]}`)))
}

func TestDiscordChannelFailureStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ch := NewDiscordChannel(zap.NewNop())
	require.False(t, ch.Send(context.Background(), srv.URL, Message(`{}`)))
}

type recordingChannel struct{ sent int }

func (c *recordingChannel) Send(context.Context, string, Message) bool {
	c.sent++
	return true
}

func TestDispatcherRoutesByPlatform(t *testing.T) {
	t.Parallel()

	tg := &recordingChannel{}
	dc := &recordingChannel{}
	d := NewDispatcher(tg, dc, zap.NewNop())

	require.True(t, d.Send(context.Background(), jobs.PlatformTelegram, "chat", Message("x")))
	require.True(t, d.Send(context.Background(), jobs.PlatformDiscord, "hook", Message("y")))
	require.False(t, d.Send(context.Background(), jobs.PlatformUnknown, "?", Message("z")))
	require.Equal(t, 1, tg.sent)
	require.Equal(t, 1, dc.sent)
}
