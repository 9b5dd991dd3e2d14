package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the simulation service.
type Metrics struct {
	TicksTotal       prometheus.Counter
	TickDuration     prometheus.Histogram
	HitTypes         *prometheus.CounterVec // labels: hit_type={AIR,WATER,STATIONARY}
	DetectionLost    prometheus.Counter
	SchedulerRunning prometheus.Gauge
	Quiescent        prometheus.Gauge

	// Latest reading.
	Velocity       prometheus.Gauge
	Discharge      prometheus.Gauge
	Depth          prometheus.Gauge
	SignalStrength prometheus.Gauge

	// Operator input.
	InputsApplied  prometheus.Counter
	InputsRejected prometheus.Counter

	// Publication.
	RecordsPublished prometheus.Counter
	RecordsDropped   prometheus.Counter
	PublishErrors    *prometheus.CounterVec // labels: sink
	PublishBatchSize prometheus.Histogram
}

const namespace = "radar_sim"

// NewMetrics creates and registers all simulation metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total engine ticks executed.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent inside a single engine tick.",
			Buckets:   []float64{0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
		HitTypes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "beam_hits_total",
			Help:      "Ticks by beam hit classification.",
		}, []string{"hit_type"}),
		DetectionLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detection_lost_total",
			Help:      "Ticks where signal amplitude fell below the detection threshold.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 when the tick loop is active, 0 when shut down.",
		}),
		Quiescent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quiescent",
			Help:      "1 while the tick loop is suspended waiting for input.",
		}),
		Velocity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "velocity_meters_per_second",
			Help:      "Estimated surface velocity from the latest reading.",
		}),
		Discharge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discharge_cubic_meters_per_second",
			Help:      "Discharge from the latest reading.",
		}),
		Depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "depth_meters",
			Help:      "Water depth from the latest reading.",
		}),
		SignalStrength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signal_strength_percent",
			Help:      "Reported signal strength from the latest reading.",
		}),
		InputsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_applied_total",
			Help:      "Operator input changes applied to the engine.",
		}),
		InputsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_rejected_total",
			Help:      "Operator input changes rejected at the input boundary.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Sampled readings delivered to all sinks.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Sampled readings discarded because sinks fell behind.",
		}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed batch deliveries by sink.",
		}, []string{"sink"}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_size",
			Help:      "Number of records per published batch.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.TicksTotal,
		m.TickDuration,
		m.HitTypes,
		m.DetectionLost,
		m.SchedulerRunning,
		m.Quiescent,
		m.Velocity,
		m.Discharge,
		m.Depth,
		m.SignalStrength,
		m.InputsApplied,
		m.InputsRejected,
		m.RecordsPublished,
		m.RecordsDropped,
		m.PublishErrors,
		m.PublishBatchSize,
	}
}
