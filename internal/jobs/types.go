// Package jobs defines the core domain types shared by the ingestion and
// notification sides of the pipeline.
package jobs

import "fmt"

// JobRef identifies a job candidate discovered on a listing page, before
// its detail page has been scraped. Refs are ephemeral: they exist only
// between the listing scrape and the dedup check.
type JobRef struct {
	Category   string
	ExternalID string
	URL        string
}

// JobRecord is the canonical job entity. ExternalID is globally unique
// and immutable once created; a record is created exactly once per
// distinct job, enforced by the seen-set check that precedes detail
// scraping (the database uniqueness constraint is a backstop only).
type JobRecord struct {
	// Category is carried alongside the record in the queue envelope,
	// not inside the wire record map.
	Category string `json:"-"`

	ExternalID            string `json:"project_id"`
	Link                  string `json:"project_link"`
	Title                 string `json:"project_title"`
	Details               string `json:"project_details"`
	PublishedAt           string `json:"project_date_published"`
	Budget                string `json:"project_budget"`
	Duration              string `json:"project_duration"`
	OwnerName             string `json:"project_owner_name"`
	OwnerRegistrationDate string `json:"project_owner_registration_date"`
	OwnerEmploymentRate   string `json:"project_owner_employment_rate"`
	NumberOfBids          int    `json:"project_number_of_bids"`
}

// Platform is the notification channel a subscription targets.
type Platform int

const (
	// PlatformUnknown is the zero value; it never appears in valid data.
	PlatformUnknown Platform = iota
	// PlatformTelegram targets a Telegram chat via the Bot API.
	PlatformTelegram
	// PlatformDiscord targets a Discord webhook URL.
	PlatformDiscord
)

// String returns the stable lowercase name used in storage and config.
func (p Platform) String() string {
	switch p {
	case PlatformTelegram:
		return "telegram"
	case PlatformDiscord:
		return "discord"
	default:
		return "unknown"
	}
}

// ParsePlatform maps a stored platform name to its Platform value.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "telegram":
		return PlatformTelegram, nil
	case "discord":
		return PlatformDiscord, nil
	default:
		return PlatformUnknown, fmt.Errorf("unknown platform %q", s)
	}
}

// Subscription is a read-only view of one user's active interest in a
// category. The pipeline never mutates subscriptions; it only reads the
// active ones matching a job's category.
type Subscription struct {
	UserID        int64
	Category      string
	Platform      Platform
	TargetAddress string
	IsActive      bool
}
