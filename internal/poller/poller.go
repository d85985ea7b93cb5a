// Package poller drives the fetch-normalize-merge-persist loop.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/trafficpulse/waze-incident-service/internal/accumulator"
	"github.com/trafficpulse/waze-incident-service/internal/domain"
	"github.com/trafficpulse/waze-incident-service/internal/observability"
)

// BatchFetcher retrieves one batch of raw records from the feed.
type BatchFetcher interface {
	FetchBatch(ctx context.Context) ([]domain.RawRecord, error)
}

// Persister durably stores the master and latest views.
type Persister interface {
	Save(ctx context.Context, master, latest []domain.Incident) error
}

// Announcer publishes incidents newly admitted to the master set.
type Announcer interface {
	Announce(ctx context.Context, added []domain.Incident) error
}

// Poller runs one cycle per interval: fetch, normalize, merge, persist,
// announce. Cycles are strictly sequential: a slow cycle defers the next
// tick rather than overlapping it, because the loop is a single goroutine
// that only listens for the ticker between cycles.
type Poller struct {
	fetcher   BatchFetcher
	store     *accumulator.Store
	persister Persister
	announcer Announcer // nil disables announcements
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	interval  time.Duration
	ready     atomic.Bool
}

// New creates a Poller. Pass a nil clock for real time; tests inject a fake.
// The announcer may be nil.
func New(
	fetcher BatchFetcher,
	store *accumulator.Store,
	persister Persister,
	announcer Announcer,
	logger *slog.Logger,
	metrics *observability.Metrics,
	interval time.Duration,
	clock clockwork.Clock,
) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		fetcher:   fetcher,
		store:     store,
		persister: persister,
		announcer: announcer,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		interval:  interval,
	}
}

// CheckReadiness returns nil once at least one cycle has fetched and merged.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no poll cycle has completed yet")
	}
	return nil
}

// Run executes the poll loop until the context is cancelled. The first cycle
// runs immediately so a fresh deployment has data before the first interval
// elapses.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval, "existing_incidents", p.store.Size())
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	p.runCycle(ctx)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.runCycle(ctx)
		}
	}
}

// Flush performs a final save of the current views, used on shutdown.
func (p *Poller) Flush(ctx context.Context) error {
	return p.persister.Save(ctx, p.store.MasterView(), p.store.LatestView())
}

// runCycle performs one fetch-normalize-merge-persist pass. A fetch failure
// skips the cycle entirely, leaving the store and the published views
// untouched. A save failure is reported but does not undo the merge: the
// in-memory store runs ahead of durable state and the next successful save
// catches up.
func (p *Poller) runCycle(ctx context.Context) {
	start := time.Now()

	records, err := p.fetcher.FetchBatch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("fetch failed, skipping cycle", "error", err)
		p.metrics.FetchCycles.WithLabelValues("fetch_error").Inc()
		return
	}
	p.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	p.metrics.IncidentsFetched.Add(float64(len(records)))

	batch := make([]domain.Incident, 0, len(records))
	for _, rec := range records {
		inc, err := domain.NormalizeRecord(rec)
		if err != nil {
			p.logger.Warn("skipping malformed record", "error", err)
			p.metrics.MalformedRecords.Inc()
			continue
		}
		batch = append(batch, inc)
	}

	report, added := p.store.Merge(batch)
	p.metrics.IncidentsAdded.Add(float64(report.Added))
	p.metrics.IncidentsDuplicate.Add(float64(report.Duplicates))
	p.metrics.StoreSize.Set(float64(report.Total))
	p.ready.Store(true)

	if err := p.persister.Save(ctx, p.store.MasterView(), p.store.LatestView()); err != nil {
		p.logger.Error("save failed, in-memory store is ahead of durable state", "error", err)
		p.metrics.SaveFailures.Inc()
		p.metrics.FetchCycles.WithLabelValues("save_error").Inc()
	} else {
		p.metrics.FetchCycles.WithLabelValues("success").Inc()
		p.metrics.LastSuccess.Set(float64(time.Now().Unix()))
	}

	if p.announcer != nil && len(added) > 0 {
		if err := p.announcer.Announce(ctx, added); err != nil {
			p.logger.Warn("announce failed", "error", err, "incidents", len(added))
			p.metrics.AnnounceFailures.Inc()
		}
	}

	p.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("cycle complete",
		"fetched", len(records),
		"added", report.Added,
		"duplicates", report.Duplicates,
		"total", report.Total,
	)
}
