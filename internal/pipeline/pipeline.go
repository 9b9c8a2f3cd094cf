package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"litoralnorte/imovelworker/internal/property"
	"litoralnorte/imovelworker/internal/scraper"
	"litoralnorte/imovelworker/logger"
	"litoralnorte/imovelworker/services/lock"
	"litoralnorte/imovelworker/services/store"
)

// runLockName keys the leased mutex guarding against overlapping runs
const runLockName = "imovelworker:pipeline:run"

// runLockTTL bounds a run that dies without releasing the lease
const runLockTTL = 2 * time.Hour

// SourceScraper is the pipeline's view of one portal scraper
type SourceScraper interface {
	Name() string
	Scrape(ctx context.Context, filters scraper.Filters) ([]property.Property, error)
}

// Runner is the trigger surface's view of the pipeline
type Runner interface {
	Run(ctx context.Context, req Request) (*Summary, error)
}

// Request selects which sources to scrape and narrows the target cities.
// The zero value means all sources, default cities.
type Request struct {
	Sources []string        `json:"sources,omitempty"`
	Filters scraper.Filters `json:"filters,omitempty"`
}

// Summary aggregates one pipeline run
type Summary struct {
	Processed int            `json:"processed"`
	Saved     int            `json:"saved"`
	Inserted  int            `json:"inserted"`
	Updated   int            `json:"updated"`
	BySource  map[string]int `json:"by_source"`
}

// Pipeline runs the portal scrapers strictly sequentially and upserts the
// collected records one at a time. Sequential on purpose: fanning out
// across portals multiplies the chance of correlated anti-bot blocking.
type Pipeline struct {
	scrapers []SourceScraper
	store    store.Store
	locker   lock.Locker
	log      *logger.Logger
}

// New creates a pipeline. locker may be nil, in which case concurrent
// invocations are not coordinated.
func New(scrapers []SourceScraper, st store.Store, locker lock.Locker) *Pipeline {
	return &Pipeline{
		scrapers: scrapers,
		store:    st,
		locker:   locker,
		log:      logger.ForPipeline(),
	}
}

// Run executes one stateless pipeline invocation and returns its summary.
// Scraper and record failures are logged and skipped; only an unusable
// request or a refused run lock surface as an error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Summary, error) {
	if p.locker != nil {
		release, err := p.locker.Acquire(ctx, runLockName, runLockTTL)
		switch {
		case errors.Is(err, lock.ErrAlreadyHeld):
			return nil, fmt.Errorf("pipeline run already in progress: %w", err)
		case err != nil:
			p.log.Warn().Err(err).Msg("Run lock unavailable, continuing unguarded")
		default:
			defer release()
		}
	}

	selected, err := p.selectScrapers(req.Sources)
	if err != nil {
		return nil, err
	}

	p.log.Info().
		Int("sources", len(selected)).
		Strs("cities", req.Filters.Cities).
		Msg("Starting pipeline run")

	start := time.Now()
	summary := &Summary{BySource: make(map[string]int)}

	var collected []property.Property
	for _, sc := range selected {
		records, err := sc.Scrape(ctx, req.Filters)
		if err != nil {
			// Partial results still count; the scraper's own loops
			// already contained everything recoverable
			p.log.Error().Err(err).Str("source", sc.Name()).Msg("Scraper finished with error")
		}
		summary.BySource[sc.Name()] = len(records)
		collected = append(collected, records...)

		if ctx.Err() != nil {
			break
		}
	}

	p.save(ctx, collected, summary)

	p.log.Info().
		Int("processed", summary.Processed).
		Int("saved", summary.Saved).
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Dur("elapsed", time.Since(start)).
		Msg("Pipeline run finished")

	return summary, nil
}

// save upserts every record individually; a failing record is logged and
// skipped, never aborting the batch
func (p *Pipeline) save(ctx context.Context, records []property.Property, summary *Summary) {
	for _, rec := range records {
		summary.Processed++

		res, err := p.store.Upsert(ctx, rec)
		if err != nil {
			p.log.Error().Err(err).
				Str("external_id", rec.ExternalID).
				Msg("Failed to upsert record")
			continue
		}

		summary.Saved++
		if res.Inserted {
			summary.Inserted++
		} else {
			summary.Updated++
		}
	}
}

// selectScrapers resolves requested source names; empty means all, in
// the fixed configured order
func (p *Pipeline) selectScrapers(sources []string) ([]SourceScraper, error) {
	if len(sources) == 0 {
		return p.scrapers, nil
	}

	byName := make(map[string]SourceScraper, len(p.scrapers))
	for _, sc := range p.scrapers {
		byName[sc.Name()] = sc
	}

	var selected []SourceScraper
	for _, name := range sources {
		sc, ok := byName[name]
		if !ok {
			p.log.Warn().Str("source", name).Msg("Unknown source requested, skipping")
			continue
		}
		selected = append(selected, sc)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("no valid sources in %v", sources)
	}
	return selected, nil
}
