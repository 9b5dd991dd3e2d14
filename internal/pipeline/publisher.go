package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/river-radar-sim/internal/domain"
	"github.com/couchcryptid/river-radar-sim/internal/observability"
)

// ReadingSource exposes the most recent engine reading.
type ReadingSource interface {
	Latest() (domain.Reading, bool)
}

// Sink delivers batches of sampled readings to a destination.
type Sink interface {
	Name() string
	Publish(ctx context.Context, records []domain.ReadingRecord) error
}

// PublisherOptions configures sampling and batching.
type PublisherOptions struct {
	SessionID string
	Interval  time.Duration
	BatchSize int
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// pendingFactor bounds each sink queue at this many batches.
	pendingFactor = 4

	shutdownFlushTimeout = 5 * time.Second
)

// sinkQueue buffers records for one sink so a failing sink neither blocks
// nor duplicates deliveries to the others.
type sinkQueue struct {
	sink    Sink
	pending []domain.ReadingRecord
	backoff time.Duration
	retryAt time.Time
}

// Publisher samples the latest reading on a fixed interval and ships the
// samples to every sink in batches.
type Publisher struct {
	source   ReadingSource
	queues   []*sinkQueue
	opts     PublisherOptions
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	lastTick uint64
}

// NewPublisher creates a Publisher reading from source.
func NewPublisher(source ReadingSource, sinks []Sink, opts PublisherOptions, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	queues := make([]*sinkQueue, 0, len(sinks))
	for _, s := range sinks {
		queues = append(queues, &sinkQueue{sink: s, backoff: initialBackoff})
	}
	return &Publisher{
		source:  source,
		queues:  queues,
		opts:    opts,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Run samples and publishes until the context is cancelled, then makes a
// final attempt to flush whatever is still queued.
func (p *Publisher) Run(ctx context.Context) error {
	if len(p.queues) == 0 {
		p.logger.Info("no reading sinks configured, publisher idle")
		<-ctx.Done()
		return nil
	}

	p.logger.Info("publisher started",
		"session_id", p.opts.SessionID,
		"interval", p.opts.Interval,
		"batch_size", p.opts.BatchSize,
		"sinks", len(p.queues),
	)

	ticker := p.clock.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			p.drain(ctx)
			return nil
		case <-ticker.Chan():
			p.sample()
			p.flushReady(ctx)
		}
	}
}

// sample appends the latest reading to every queue unless it was already
// taken on a previous interval.
func (p *Publisher) sample() {
	r, ok := p.source.Latest()
	if !ok || r.Tick == p.lastTick {
		return
	}
	p.lastTick = r.Tick

	rec := domain.ReadingRecord{SessionID: p.opts.SessionID, Reading: r}
	limit := p.opts.BatchSize * pendingFactor
	for _, q := range p.queues {
		q.pending = append(q.pending, rec)
		if over := len(q.pending) - limit; over > 0 {
			q.pending = q.pending[over:]
			p.metrics.RecordsDropped.Add(float64(over))
		}
	}
}

func (p *Publisher) flushReady(ctx context.Context) {
	now := p.clock.Now()
	for _, q := range p.queues {
		if len(q.pending) < p.opts.BatchSize || now.Before(q.retryAt) {
			continue
		}
		p.flush(ctx, q)
	}
}

// drain empties every queue batch by batch, ignoring backoff. A queue is
// abandoned on its first failed publish or when the flush deadline passes.
func (p *Publisher) drain(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
	defer cancel()
	for _, q := range p.queues {
		for len(q.pending) > 0 && flushCtx.Err() == nil {
			if !p.flush(flushCtx, q) {
				break
			}
		}
		if n := len(q.pending); n > 0 {
			p.metrics.RecordsDropped.Add(float64(n))
			p.logger.Warn("readings left undelivered at shutdown", "sink", q.sink.Name(), "count", n)
		}
	}
}

// flush publishes one batch from q and reports whether it was delivered.
func (p *Publisher) flush(ctx context.Context, q *sinkQueue) bool {
	n := min(len(q.pending), p.opts.BatchSize)
	batch := q.pending[:n]

	if err := q.sink.Publish(ctx, batch); err != nil {
		p.metrics.PublishErrors.WithLabelValues(q.sink.Name()).Inc()
		p.logger.Error("publish batch failed",
			"sink", q.sink.Name(),
			"error", err,
			"batch_size", n,
			"retry_in", q.backoff,
		)
		q.retryAt = p.clock.Now().Add(q.backoff)
		q.backoff = nextBackoff(q.backoff, maxBackoff)
		return false
	}

	q.pending = q.pending[n:]
	q.backoff = initialBackoff
	q.retryAt = time.Time{}
	p.metrics.RecordsPublished.Add(float64(n))
	p.metrics.PublishBatchSize.Observe(float64(n))
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
