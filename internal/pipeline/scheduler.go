package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/river-radar-sim/internal/domain"
	"github.com/couchcryptid/river-radar-sim/internal/observability"
)

// Scheduler drives the engine from a single goroutine. Operator input is
// queued and applied between ticks, so the engine itself needs no locking.
type Scheduler struct {
	engine   *domain.Engine
	clock    clockwork.Clock
	interval time.Duration
	inputs   chan domain.InputPatch
	logger   *slog.Logger
	metrics  *observability.Metrics

	latest  atomic.Pointer[domain.Reading]
	current atomic.Pointer[domain.Inputs]
	ready   atomic.Bool
	lastHit domain.HitType
}

// NewScheduler creates a Scheduler that ticks engine every interval.
func NewScheduler(engine *domain.Engine, clock clockwork.Clock, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	s := &Scheduler{
		engine:   engine,
		clock:    clock,
		interval: interval,
		inputs:   make(chan domain.InputPatch, 16),
		logger:   logger,
		metrics:  metrics,
	}
	in := engine.Inputs()
	s.current.Store(&in)
	return s
}

// CheckReadiness returns nil once the engine has produced a reading.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("scheduler has not produced a reading yet")
	}
	return nil
}

// Latest returns the most recent reading, if any.
func (s *Scheduler) Latest() (domain.Reading, bool) {
	r := s.latest.Load()
	if r == nil {
		return domain.Reading{}, false
	}
	return *r, true
}

// Inputs returns the operator inputs most recently applied to the engine.
func (s *Scheduler) Inputs() domain.Inputs {
	return *s.current.Load()
}

// Submit queues an operator input change. The patch is validated here, at
// the input boundary; clamping happens when it is applied.
func (s *Scheduler) Submit(ctx context.Context, patch domain.InputPatch) error {
	if err := patch.Validate(); err != nil {
		s.metrics.InputsRejected.Inc()
		return err
	}
	select {
	case s.inputs <- patch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes the tick loop until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.step()
	for {
		if s.engine.Quiescent() {
			if !s.suspend(ctx) {
				return nil
			}
			ticker.Reset(s.interval)
			s.step()
			continue
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case patch := <-s.inputs:
			s.apply(patch)
		case <-ticker.Chan():
			s.step()
		}
	}
}

// suspend parks the loop until the next input arrives. Returns false if the
// context was cancelled instead.
func (s *Scheduler) suspend(ctx context.Context) bool {
	s.logger.Info("engine quiescent, suspending tick loop")
	s.metrics.Quiescent.Set(1)
	defer s.metrics.Quiescent.Set(0)

	select {
	case <-ctx.Done():
		s.logger.Info("scheduler stopping", "reason", ctx.Err())
		return false
	case patch := <-s.inputs:
		s.apply(patch)
		s.logger.Info("input received, resuming tick loop")
		return true
	}
}

func (s *Scheduler) apply(patch domain.InputPatch) {
	in, err := patch.ApplyTo(s.engine.Inputs())
	if err != nil {
		s.logger.Warn("input rejected", "error", err)
		s.metrics.InputsRejected.Inc()
		return
	}
	s.engine.Apply(in)
	s.current.Store(&in)
	s.metrics.InputsApplied.Inc()
	s.logger.Info("inputs applied",
		"rain_level", in.RainLevel,
		"river_width_m", in.RiverWidthM,
		"beam_angle_deg", in.BeamAngleDeg,
		"threshold", in.Threshold,
		"base_flow_speed", in.BaseFlowSpeed,
	)
}

func (s *Scheduler) step() {
	start := s.clock.Now()
	r := s.engine.Tick()
	s.metrics.TickDuration.Observe(s.clock.Since(start).Seconds())

	s.metrics.TicksTotal.Inc()
	s.metrics.HitTypes.WithLabelValues(string(r.HitType)).Inc()
	if !r.Detected {
		s.metrics.DetectionLost.Inc()
	}
	s.metrics.Velocity.Set(r.Velocity)
	s.metrics.Discharge.Set(r.DischargeM3s)
	s.metrics.Depth.Set(r.DepthM)
	s.metrics.SignalStrength.Set(r.SignalStrengthPercent)

	if r.HitType != s.lastHit {
		s.logger.Info("beam target changed", "from", s.lastHit, "to", r.HitType, "beam_length", r.BeamLength)
		s.lastHit = r.HitType
	}

	s.latest.Store(&r)
	s.ready.Store(true)
}
