package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
)

// DetailConfig configures the headless detail scraper.
type DetailConfig struct {
	UserAgent string
	// NavTimeout bounds a single detail page visit, navigation and
	// extraction included.
	NavTimeout time.Duration
}

// Details scrapes project detail pages with a shared headless browser.
// Each ref gets its own tab; the browser process is reused across cycles.
type Details struct {
	cfg           DetailConfig
	limiter       waiter
	logger        *zap.Logger
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewDetails launches the browser and returns a ready scraper. Callers
// must Close it to shut the browser down.
func NewDetails(cfg DetailConfig, limiter waiter, logger *zap.Logger) (*Details, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 45 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// launch up front so the first scrape does not pay the startup cost
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &Details{
		cfg:           cfg,
		limiter:       limiter,
		logger:        logger,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// Close shuts the browser down.
func (s *Details) Close() {
	s.browserCancel()
	s.allocCancel()
}

// ScrapeDetails fetches a full record for each ref. Refs that fail are
// logged and dropped from the result; the caller is responsible for
// unmarking their seen-set entries so they retry on a later cycle.
func (s *Details) ScrapeDetails(ctx context.Context, refs []jobs.JobRef) []jobs.JobRecord {
	records := make([]jobs.JobRecord, 0, len(refs))
	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx, ref.URL); err != nil {
				break
			}
		}
		record, err := s.scrapeOne(ctx, ref)
		if err != nil {
			s.logger.Warn("detail scrape failed",
				zap.String("category", ref.Category),
				zap.String("external_id", ref.ExternalID),
				zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records
}

func (s *Details) scrapeOne(ctx context.Context, ref jobs.JobRef) (jobs.JobRecord, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.cfg.NavTimeout)
	defer cancelTimeout()

	// stop the parent ctx from outliving the tab unnoticed
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	blockHeavyRequests(tabCtx)

	var payload detailPayload
	err := chromedp.Run(tabCtx,
		fetch.Enable(),
		chromedp.Navigate(ref.URL),
		chromedp.WaitVisible(titleSelector, chromedp.ByQuery),
		chromedp.Evaluate(extractScript, &payload),
	)
	if err != nil {
		return jobs.JobRecord{}, fmt.Errorf("visit %s: %w", ref.URL, err)
	}

	return jobs.JobRecord{
		Category:              ref.Category,
		ExternalID:            ref.ExternalID,
		Link:                  ref.URL,
		Title:                 payload.Title,
		Details:               payload.Details,
		PublishedAt:           payload.Published,
		Budget:                payload.Budget,
		Duration:              payload.Duration,
		OwnerName:             payload.OwnerName,
		OwnerRegistrationDate: payload.OwnerRegistration,
		OwnerEmploymentRate:   payload.OwnerEmployment,
		NumberOfBids:          payload.Bids,
	}, nil
}

// blockHeavyRequests fails image, media, font, and stylesheet requests on
// the tab. Detail extraction is text only; skipping assets cuts page load
// time and bandwidth.
func blockHeavyRequests(tabCtx context.Context) {
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		pause, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			c := chromedp.FromContext(tabCtx)
			execCtx := cdp.WithExecutor(tabCtx, c.Target)
			switch pause.ResourceType {
			case network.ResourceTypeImage,
				network.ResourceTypeMedia,
				network.ResourceTypeFont,
				network.ResourceTypeStylesheet:
				_ = fetch.FailRequest(pause.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
			default:
				_ = fetch.ContinueRequest(pause.RequestID).Do(execCtx)
			}
		}()
	})
}
