package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/river-radar-sim/internal/domain"
	"github.com/couchcryptid/river-radar-sim/internal/observability"
	"github.com/couchcryptid/river-radar-sim/internal/pipeline"
)

const tickInterval = time.Second / 45

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

type harness struct {
	sched   *pipeline.Scheduler
	clock   *clockwork.FakeClock
	metrics *observability.Metrics
	cancel  context.CancelFunc
	done    chan error
	once    sync.Once
}

// startScheduler runs a scheduler on a fake clock and waits for its ticker.
func startScheduler(t *testing.T, in domain.Inputs) *harness {
	t.Helper()
	clock := clockwork.NewFakeClock()
	metrics := observability.NewMetricsForTesting()
	engine := domain.NewEngine(in, domain.WithSeed(11), domain.WithClock(clock))
	sched := pipeline.NewScheduler(engine, clock, tickInterval, discardLogger(), metrics)

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{sched: sched, clock: clock, metrics: metrics, cancel: cancel, done: make(chan error, 1)}
	go func() { h.done <- sched.Run(ctx) }()
	t.Cleanup(h.stop)

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	return h
}

func (h *harness) stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}

func (h *harness) latestTick() uint64 {
	r, _ := h.sched.Latest()
	return r.Tick
}

func TestScheduler_NotReadyBeforeRun(t *testing.T) {
	engine := domain.NewEngine(domain.DefaultInputs(), domain.WithSeed(1))
	sched := pipeline.NewScheduler(engine, clockwork.NewFakeClock(), tickInterval, discardLogger(), observability.NewMetricsForTesting())

	require.Error(t, sched.CheckReadiness(context.Background()))
	_, ok := sched.Latest()
	assert.False(t, ok)
}

func TestScheduler_FirstTickOnStart(t *testing.T) {
	h := startScheduler(t, domain.DefaultInputs())

	require.Eventually(t, func() bool { return h.latestTick() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, h.sched.CheckReadiness(context.Background()))
	assert.InDelta(t, 1.0, testutil.ToFloat64(h.metrics.SchedulerRunning), 0)
}

func TestScheduler_TicksFollowClock(t *testing.T) {
	h := startScheduler(t, domain.DefaultInputs())
	require.Eventually(t, func() bool { return h.latestTick() == 1 }, time.Second, 5*time.Millisecond)

	for want := uint64(2); want <= 4; want++ {
		h.clock.Advance(tickInterval)
		require.Eventually(t, func() bool { return h.latestTick() == want }, time.Second, 5*time.Millisecond)
	}
	assert.InDelta(t, 4.0, testutil.ToFloat64(h.metrics.TicksTotal), 0)
	assert.InDelta(t, 4.0, testutil.ToFloat64(h.metrics.HitTypes.WithLabelValues("WATER")), 0)
}

func TestScheduler_TickDurationUsesInjectedClock(t *testing.T) {
	h := startScheduler(t, domain.DefaultInputs())
	require.Eventually(t, func() bool { return h.latestTick() == 1 }, time.Second, 5*time.Millisecond)

	var m dto.Metric
	require.NoError(t, h.metrics.TickDuration.Write(&m))
	require.NotNil(t, m.GetHistogram())
	assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
	// The fake clock does not move during a tick.
	assert.Zero(t, m.GetHistogram().GetSampleSum())
}

func TestScheduler_SubmitAppliesBetweenTicks(t *testing.T) {
	h := startScheduler(t, domain.DefaultInputs())
	require.Eventually(t, func() bool { return h.latestTick() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.sched.Submit(context.Background(), domain.InputPatch{BeamAngleDeg: ptr(2)}))
	require.Eventually(t, func() bool { return h.sched.Inputs().BeamAngleDeg == 2 }, time.Second, 5*time.Millisecond)

	h.clock.Advance(tickInterval)
	require.Eventually(t, func() bool { return h.latestTick() == 2 }, time.Second, 5*time.Millisecond)

	r, ok := h.sched.Latest()
	require.True(t, ok)
	assert.Equal(t, domain.HitStationary, r.HitType)
	assert.Zero(t, r.Velocity)
	assert.InDelta(t, 1.0, testutil.ToFloat64(h.metrics.InputsApplied), 0)
}

func TestScheduler_SubmitClampsOutOfRange(t *testing.T) {
	h := startScheduler(t, domain.DefaultInputs())

	require.NoError(t, h.sched.Submit(context.Background(), domain.InputPatch{RainLevel: ptr(400)}))
	require.Eventually(t, func() bool { return h.sched.Inputs().RainLevel == 100 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_SubmitRejectsNaN(t *testing.T) {
	engine := domain.NewEngine(domain.DefaultInputs(), domain.WithSeed(1))
	metrics := observability.NewMetricsForTesting()
	sched := pipeline.NewScheduler(engine, clockwork.NewFakeClock(), tickInterval, discardLogger(), metrics)

	err := sched.Submit(context.Background(), domain.InputPatch{Threshold: ptr(math.NaN())})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.InputsRejected), 0)
}

func TestScheduler_SuspendsWhenQuiescent(t *testing.T) {
	still := domain.Inputs{RainLevel: 0, RiverWidthM: 5, BeamAngleDeg: 30, Threshold: 30, BaseFlowSpeed: 0}
	h := startScheduler(t, still)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(h.metrics.Quiescent) == 1
	}, time.Second, 5*time.Millisecond)

	// Ticks are ignored while suspended.
	h.clock.Advance(10 * tickInterval)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, uint64(1), h.latestTick())

	require.NoError(t, h.sched.Submit(context.Background(), domain.InputPatch{RainLevel: ptr(60)}))
	require.Eventually(t, func() bool { return h.latestTick() >= 2 }, time.Second, 5*time.Millisecond)
	assert.InDelta(t, 0.0, testutil.ToFloat64(h.metrics.Quiescent), 0)

	r, _ := h.sched.Latest()
	assert.Positive(t, r.FlowSpeed)
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	engine := domain.NewEngine(domain.DefaultInputs(), domain.WithSeed(1))
	metrics := observability.NewMetricsForTesting()
	sched := pipeline.NewScheduler(engine, clockwork.NewFakeClock(), tickInterval, discardLogger(), metrics)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, sched.Run(ctx))
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.SchedulerRunning), 0)
}
