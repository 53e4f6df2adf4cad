package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/artsindex/internal/logger"
	"github.com/pfrederiksen/artsindex/internal/record"
)

// Metric names
const (
	MetricRegions     = "regions"
	MetricRecords     = "records"
	MetricNoData      = "no_data"
	MetricStates      = "states"
	MetricScrapeTime  = "county.scrape"
	MetricRunTime     = "run"
	MetricWorkerGauge = "workers"
)

// Source fetches counties and their records
type Source interface {
	FetchRegions(ctx context.Context, state string) ([]record.Region, error)
	ScrapeCounty(ctx context.Context, region record.Region) (record.County, error)
}

// Pipeline orchestrates region enumeration, county scraping and accumulation
type Pipeline struct {
	source  Source
	workers int
	clock   clockwork.Clock
	log     *logger.Logger
	metrics *logger.Metrics
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithWorkers sets how many counties are scraped at once
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithClock sets the clock used for timings
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithMetrics sets the metrics tracker
func WithMetrics(m *logger.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New creates a Pipeline reading from source
func New(source Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:  source,
		workers: 1,
		clock:   clockwork.NewRealClock(),
		log:     logger.Default(),
		metrics: logger.NewMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run scrapes every county of the given states, in order
func (p *Pipeline) Run(ctx context.Context, states []string) (record.Dataset, error) {
	start := p.clock.Now()
	log := p.log.With(logger.Fields{"run_id": uuid.NewString()})
	p.metrics.SetGauge(MetricWorkerGauge, float64(p.workers))

	groups := make([][]record.Record, 0, len(states))
	for _, state := range states {
		records, err := p.runState(ctx, log, state)
		if err != nil {
			log.Error("run aborted", logger.Fields{"state": state}, err)
			return record.Dataset{}, err
		}
		groups = append(groups, records...)
		p.metrics.IncrCounter(MetricStates)
	}

	ds := record.NewDataset(groups...)
	p.metrics.RecordTiming(MetricRunTime, p.clock.Since(start))
	log.Info("run complete", logger.Fields{
		"states":  len(states),
		"records": ds.Len(),
	})
	return ds, nil
}

// runState returns one record slice per county, in server order
func (p *Pipeline) runState(ctx context.Context, log *logger.Logger, state string) ([][]record.Record, error) {
	regions, err := p.source.FetchRegions(ctx, state)
	if err != nil {
		return nil, err
	}
	log.Info("fetched counties", logger.Fields{"state": state, "counties": len(regions)})

	results := make([][]record.Record, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, region := range regions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := p.scrapeCounty(gctx, log, region)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scraping %s: %w", state, err)
	}
	return results, nil
}

func (p *Pipeline) scrapeCounty(ctx context.Context, log *logger.Logger, region record.Region) ([]record.Record, error) {
	log.Info("getting data", logger.Fields{
		"fips":   region.FIPS,
		"county": region.Name,
		"state":  region.State,
	})

	start := p.clock.Now()
	county, err := p.source.ScrapeCounty(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("county %s: %w", region, err)
	}
	p.metrics.RecordTiming(MetricScrapeTime, p.clock.Since(start))
	p.metrics.IncrCounter(MetricRegions)
	p.metrics.AddCounter(MetricRecords, int64(len(county.Records)))
	p.metrics.AddCounter(MetricNoData, int64(county.NoData))

	log.Debug("county done", logger.Fields{
		"fips":    region.FIPS,
		"records": len(county.Records),
		"no_data": county.NoData,
	})
	return county.Records, nil
}
