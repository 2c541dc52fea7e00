package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alshabili/first-backend/internal/jobs"
)

const (
	botName    = "First"
	botAvatar  = "https://alshabili.site/logo.png"
	embedColor = 0x800080
)

// discordEmbed mirrors the subset of the webhook embed schema we emit.
type discordEmbed struct {
	Title     string         `json:"title,omitempty"`
	URL       string         `json:"url,omitempty"`
	Color     int            `json:"color"`
	Fields    []discordField `json:"fields"`
	Footer    *discordFooter `json:"footer,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url"`
}

type discordWebhookPayload struct {
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url"`
	Embeds    []discordEmbed `json:"embeds"`
}

// StandardFormatter renders the alert layouts used in production: a
// two-embed Discord payload and a Markdown Telegram message.
type StandardFormatter struct {
	clock Clock
}

// NewFormatter constructs a StandardFormatter.
func NewFormatter(clock Clock) *StandardFormatter {
	return &StandardFormatter{clock: clock}
}

// Format renders the record for the given platform.
func (f *StandardFormatter) Format(platform jobs.Platform, category string, record jobs.JobRecord) (Message, error) {
	switch platform {
	case jobs.PlatformTelegram:
		return f.telegram(category, record), nil
	case jobs.PlatformDiscord:
		return f.discord(category, record)
	case jobs.PlatformUnknown:
		fallthrough
	default:
		return nil, fmt.Errorf("format: unknown platform %q", platform.String())
	}
}

func (f *StandardFormatter) telegram(category string, record jobs.JobRecord) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "*New Job Alert*\n\n")
	fmt.Fprintf(&b, "*%s*\n", orNA(record.Title))
	fmt.Fprintf(&b, "[View Project](%s)\n\n", record.Link)
	fmt.Fprintf(&b, "━━ Project Overview ━━\n")
	fmt.Fprintf(&b, "Category: %s\n", category)
	fmt.Fprintf(&b, "Budget: %s\n", orNA(record.Budget))
	fmt.Fprintf(&b, "Duration: %s\n", orNA(record.Duration))
	fmt.Fprintf(&b, "Bids: %d\n\n", record.NumberOfBids)
	fmt.Fprintf(&b, "━━ Client Information ━━\n")
	fmt.Fprintf(&b, "Owner: %s\n", orNA(record.OwnerName))
	fmt.Fprintf(&b, "Employment Rate: %s\n", orNA(record.OwnerEmploymentRate))
	fmt.Fprintf(&b, "Member Since: %s\n\n", orNA(record.OwnerRegistrationDate))
	fmt.Fprintf(&b, "_Powered by %s_", botName)
	return Message(b.String())
}

func (f *StandardFormatter) discord(category string, record jobs.JobRecord) (Message, error) {
	payload := discordWebhookPayload{
		Username:  botName,
		AvatarURL: botAvatar,
		Embeds: []discordEmbed{
			{
				Title: orNA(record.Title),
				URL:   record.Link,
				Color: embedColor,
				Fields: []discordField{
					{Name: "━━━━━━━━━━ Project Overview ━━━━━━━━━━", Value: "​"},
					{Name: "Category", Value: category},
					{Name: "Budget", Value: orNA(record.Budget)},
					{Name: "Duration", Value: orNA(record.Duration)},
					{Name: "Bids", Value: fmt.Sprintf("%d", record.NumberOfBids)},
				},
			},
			{
				Color: embedColor,
				Fields: []discordField{
					{Name: "━━━━━━━━━━ Client Information ━━━━━━━━━━", Value: "​"},
					{Name: "Owner Name", Value: orNA(record.OwnerName)},
					{Name: "Owner Employment Rate", Value: orNA(record.OwnerEmploymentRate)},
					{Name: "Member Since", Value: orNA(record.OwnerRegistrationDate)},
				},
				Footer:    &discordFooter{Text: "Powered by " + botName, IconURL: botAvatar},
				Timestamp: f.clock.Now().UTC().Format(time.RFC3339),
			},
		},
	}
	blob, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal discord payload: %w", err)
	}
	return Message(blob), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
