// Package ingest orchestrates one scrape cycle: listing scrape, seen-set
// dedup, detail scrape, normalization, and publication.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
	"github.com/alshabili/first-backend/internal/normalize"
	"github.com/alshabili/first-backend/internal/publisher"
	"github.com/alshabili/first-backend/internal/seenset"
)

// ListingScraper produces the newest job refs per category. Categories
// that fail to scrape are logged by the implementation and simply absent
// from the result; the rest proceed.
type ListingScraper interface {
	ScrapeNewest(ctx context.Context, categories []string) map[string][]jobs.JobRef
}

// DetailScraper fetches full records for staged refs. Refs that fail
// individually are dropped from the result; the caller rolls their
// seen-set entries back.
type DetailScraper interface {
	ScrapeDetails(ctx context.Context, refs []jobs.JobRef) []jobs.JobRecord
}

// Ingestor runs the dedup-and-publish half of the pipeline.
type Ingestor struct {
	listing    ListingScraper
	details    DetailScraper
	seen       seenset.Store
	publisher  *publisher.Publisher
	categories []string
	logger     *zap.Logger
}

// New constructs an Ingestor.
func New(
	listing ListingScraper,
	details DetailScraper,
	seen seenset.Store,
	pub *publisher.Publisher,
	categories []string,
	logger *zap.Logger,
) *Ingestor {
	return &Ingestor{
		listing:    listing,
		details:    details,
		seen:       seen,
		publisher:  pub,
		categories: categories,
		logger:     logger,
	}
}

// Cycle executes one full scrape cycle. It returns an error only for
// failures that invalidate the whole cycle (seen-set unreachable);
// per-category and per-job failures are logged and skipped.
func (in *Ingestor) Cycle(ctx context.Context) error {
	newest := in.listing.ScrapeNewest(ctx, in.categories)

	staged, err := in.stageUnknown(ctx, newest)
	if err != nil {
		return err
	}
	if len(staged) == 0 {
		in.logger.Info("scrape cycle: no new jobs")
		return nil
	}
	in.logger.Info("staging new jobs for detail scrape", zap.Int("count", len(staged)))

	records := in.details.ScrapeDetails(ctx, staged)
	in.rollbackFailed(ctx, staged, records)

	published := 0
	for category, batch := range groupByCategory(records) {
		published += in.publisher.PublishBatch(ctx, category, batch)
	}
	in.logger.Info("scrape cycle complete",
		zap.Int("staged", len(staged)),
		zap.Int("scraped", len(records)),
		zap.Int("published", published),
	)
	return nil
}

// stageUnknown checks each category's batch against the seen-set and
// marks the unknown ids known immediately, before detail scraping. The
// early mark biases toward missing a job over double-notifying it;
// rollback paths undo it when detail scrape or publish fails.
func (in *Ingestor) stageUnknown(ctx context.Context, newest map[string][]jobs.JobRef) ([]jobs.JobRef, error) {
	var staged []jobs.JobRef
	for _, category := range in.categories {
		refs := dedupeWithinBatch(newest[category])
		if len(refs) == 0 {
			continue
		}
		ids := make([]string, len(refs))
		for i, ref := range refs {
			ids[i] = ref.ExternalID
		}

		known, err := in.seen.AreKnown(ctx, category, ids)
		if err != nil {
			return nil, fmt.Errorf("seen-set check %s: %w", category, err)
		}

		var newIDs []string
		for i, ref := range refs {
			if known[i] {
				continue
			}
			staged = append(staged, ref)
			newIDs = append(newIDs, ref.ExternalID)
		}
		if len(newIDs) == 0 {
			continue
		}
		if err := in.seen.MarkKnown(ctx, category, newIDs); err != nil {
			return nil, fmt.Errorf("seen-set mark %s: %w", category, err)
		}
	}
	return staged, nil
}

// rollbackFailed unmarks every staged ref that did not come back from the
// detail scrape so it can be retried on a future cycle.
func (in *Ingestor) rollbackFailed(ctx context.Context, staged []jobs.JobRef, records []jobs.JobRecord) {
	scraped := make(map[string]struct{}, len(records))
	for _, r := range records {
		scraped[r.Category+"/"+r.ExternalID] = struct{}{}
	}
	failedByCategory := make(map[string][]string)
	for _, ref := range staged {
		if _, ok := scraped[ref.Category+"/"+ref.ExternalID]; !ok {
			failedByCategory[ref.Category] = append(failedByCategory[ref.Category], ref.ExternalID)
		}
	}
	for category, ids := range failedByCategory {
		in.logger.Warn("detail scrape failed, rolling back seen-set entries",
			zap.String("category", category),
			zap.Strings("ids", ids),
		)
		if err := in.seen.Unmark(ctx, category, ids); err != nil {
			in.logger.Error("seen-set rollback failed",
				zap.String("category", category),
				zap.Error(err),
			)
		}
	}
}

func dedupeWithinBatch(refs []jobs.JobRef) []jobs.JobRef {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(refs))
	out := refs[:0:0]
	for _, ref := range refs {
		if _, dup := seen[ref.ExternalID]; dup {
			continue
		}
		seen[ref.ExternalID] = struct{}{}
		out = append(out, ref)
	}
	return out
}

func groupByCategory(records []jobs.JobRecord) map[string][]jobs.JobRecord {
	grouped := make(map[string][]jobs.JobRecord)
	for _, r := range records {
		grouped[r.Category] = append(grouped[r.Category], normalize.Record(r))
	}
	return grouped
}
