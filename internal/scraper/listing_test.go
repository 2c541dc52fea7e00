package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
)

func TestRefFromHref(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		href   string
		wantID string
		ok     bool
	}{
		{
			name:   "absolute project link",
			href:   "https://mostaql.com/project/123456-logo-design",
			wantID: "123456",
			ok:     true,
		},
		{
			name:   "slug with several dashes",
			href:   "https://mostaql.com/project/98765-build-me-a-web-app",
			wantID: "98765",
			ok:     true,
		},
		{
			name:   "id without slug",
			href:   "https://mostaql.com/project/42",
			wantID: "42",
			ok:     true,
		},
		{
			name: "not a project link",
			href: "https://mostaql.com/projects?category=design",
			ok:   false,
		},
		{
			name: "non numeric id",
			href: "https://mostaql.com/project/abc-def",
			ok:   false,
		},
		{
			name: "empty segment",
			href: "https://mostaql.com/project/",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ref, ok := refFromHref("design", tt.href)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.wantID, ref.ExternalID)
				require.Equal(t, "design", ref.Category)
				require.Equal(t, tt.href, ref.URL)
			}
		})
	}
}

func listingHTML(count int) string {
	page := "<html><body><table>"
	for i := 0; i < count; i++ {
		page += fmt.Sprintf(
			`<tr class="project-row"><td><h2><a href="/project/%d-sample-project">Project %d</a></h2></td></tr>`,
			1000+i, i,
		)
	}
	return page + "</table></body></html>"
}

func TestListing_ScrapeNewest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "latest", r.URL.Query().Get("sort"))
		switch r.URL.Query().Get("category") {
		case "design":
			fmt.Fprint(w, listingHTML(3))
		case "development":
			http.Error(w, "upstream down", http.StatusBadGateway)
		default:
			fmt.Fprint(w, listingHTML(0))
		}
	}))
	defer srv.Close()

	s := NewListing(ListingConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil, zap.NewNop())

	got := s.ScrapeNewest(context.Background(), []string{"design", "development"})

	require.Len(t, got["design"], 3)
	require.Equal(t, jobs.JobRef{
		Category:   "design",
		ExternalID: "1000",
		URL:        srv.URL + "/project/1000-sample-project",
	}, got["design"][0])

	// the failed category is absent, not empty
	_, ok := got["development"]
	require.False(t, ok)
}

func TestListing_LimitCapsRows(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingHTML(25))
	}))
	defer srv.Close()

	s := NewListing(ListingConfig{BaseURL: srv.URL, Limit: 10}, nil, zap.NewNop())

	got := s.ScrapeNewest(context.Background(), []string{"writing-translation"})
	require.Len(t, got["writing-translation"], 10)
}

func TestListing_SkipsUnparsableLinks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table>
			<tr class="project-row"><td><h2><a href="/projects?page=2">next</a></h2></td></tr>
			<tr class="project-row"><td><h2><a href="/project/555-real-one">real</a></h2></td></tr>
		</table></body></html>`)
	}))
	defer srv.Close()

	s := NewListing(ListingConfig{BaseURL: srv.URL}, nil, zap.NewNop())

	got := s.ScrapeNewest(context.Background(), []string{"design"})
	require.Len(t, got["design"], 1)
	require.Equal(t, "555", got["design"][0].ExternalID)
}

func TestListing_CancelledContextStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewListing(ListingConfig{BaseURL: "http://127.0.0.1:0"}, nil, zap.NewNop())
	got := s.ScrapeNewest(ctx, []string{"design"})
	require.Empty(t, got)
}
