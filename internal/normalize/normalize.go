// Package normalize contains the pure transforms applied to raw scraped
// job fields before they are published. Every function here is
// deterministic and side-effect free.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alshabili/first-backend/internal/jobs"
)

// arabicMonths maps the localized month names that appear in scraped
// publish dates to their two-digit numeric form.
var arabicMonths = map[string]string{
	"يناير":  "01",
	"فبراير": "02",
	"مارس":   "03",
	"أبريل":  "04",
	"مايو":   "05",
	"يونيو":  "06",
	"يوليو":  "07",
	"أغسطس":  "08",
	"سبتمبر": "09",
	"أكتوبر": "10",
	"نوفمبر": "11",
	"ديسمبر": "12",
}

var digitRun = regexp.MustCompile(`\d+`)

// Record normalizes the publish date and duration of a raw scraped
// record. All other fields pass through untouched.
func Record(raw jobs.JobRecord) jobs.JobRecord {
	out := raw
	out.PublishedAt = Date(raw.PublishedAt)
	out.Duration = Duration(raw.Duration)
	return out
}

// Date converts a "DD <arabic month> YYYY" string to ISO-8601. Input
// that cannot be parsed is returned unchanged; empty input yields "N/A".
func Date(s string) string {
	if s == "" {
		return "N/A"
	}
	replaced := s
	for name, num := range arabicMonths {
		if strings.Contains(replaced, name) {
			replaced = strings.Replace(replaced, name, num, 1)
			break
		}
	}
	parsed, err := time.Parse("2 01 2006", replaced)
	if err != nil {
		return s
	}
	return parsed.Format("2006-01-02T15:04:05")
}

// Duration extracts the first run of digits from a free-text duration
// and renders it as "N Days" ("1 Day" singular). Text without digits
// yields "0 Days".
func Duration(s string) string {
	days := 0
	if match := digitRun.FindString(s); match != "" {
		if n, err := strconv.Atoi(match); err == nil {
			days = n
		}
	}
	if days == 1 {
		return "1 Day"
	}
	return fmt.Sprintf("%d Days", days)
}
