package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Run outcomes used as the status label
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// Run metrics
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runsInFlight prometheus.Gauge

	// Simulation metrics
	simulatedDays *prometheus.CounterVec
	rebalances    *prometheus.CounterVec
	tradedLegs    *prometheus.CounterVec
	skippedAssets *prometheus.CounterVec

	// Data metrics
	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec

	// Analysis metrics
	analysesTotal *prometheus.CounterVec
	gradeScore    *prometheus.GaugeVec
	finalReturn   *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
// Runtime collectors are added only when withRuntime is true, so that exported
// textfiles can be limited to simulation telemetry.
func NewRegistry(withRuntime bool) *Registry {
	reg := prometheus.NewRegistry()

	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	r := &Registry{
		Registry: reg,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_runs_total",
				Help: "Total number of simulation runs",
			},
			[]string{"strategy", "status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prism_run_duration_seconds",
				Help:    "Simulation run duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"strategy"},
		),

		runsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "prism_runs_in_flight",
				Help: "Number of simulation runs currently executing",
			},
		),
	}

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.runsInFlight)

	// Simulation metrics
	r.simulatedDays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_simulated_days_total",
			Help: "Total number of trading days simulated",
		},
		[]string{"strategy"},
	)
	r.rebalances = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_rebalances_total",
			Help: "Total number of rebalance events",
		},
		[]string{"strategy", "cadence"},
	)
	r.tradedLegs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_traded_legs_total",
			Help: "Total number of asset legs traded at rebalances",
		},
		[]string{"strategy"},
	)
	r.skippedAssets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_skipped_assets_total",
			Help: "Policy assets skipped because no prices were available",
		},
		[]string{"symbol"},
	)

	// Data metrics
	r.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prism_provider_fetch_duration_seconds",
			Help:    "Price history fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	r.fetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_provider_fetch_errors_total",
			Help: "Total number of failed price history fetches",
		},
		[]string{"provider"},
	)

	// Analysis metrics
	r.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_analyses_total",
			Help: "Total number of metric analyses by grade",
		},
		[]string{"grade"},
	)
	r.gradeScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prism_grade_score",
			Help: "Composite grade score of the latest run per strategy",
		},
		[]string{"strategy"},
	)
	r.finalReturn = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prism_total_return_ratio",
			Help: "Total return of the latest run per strategy as a fraction",
		},
		[]string{"strategy"},
	)

	reg.MustRegister(r.simulatedDays)
	reg.MustRegister(r.rebalances)
	reg.MustRegister(r.tradedLegs)
	reg.MustRegister(r.skippedAssets)
	reg.MustRegister(r.fetchDuration)
	reg.MustRegister(r.fetchErrors)
	reg.MustRegister(r.analysesTotal)
	reg.MustRegister(r.gradeScore)
	reg.MustRegister(r.finalReturn)

	return r
}

// RecordRun records a finished run.
func (r *Registry) RecordRun(strategy, status string, duration float64) {
	r.runsTotal.WithLabelValues(strategy, status).Inc()
	r.runDuration.WithLabelValues(strategy).Observe(duration)
}

// InFlightInc increments in-flight runs.
func (r *Registry) InFlightInc() {
	r.runsInFlight.Inc()
}

// InFlightDec decrements in-flight runs.
func (r *Registry) InFlightDec() {
	r.runsInFlight.Dec()
}

// RecordSimulation records the size of a completed simulation.
func (r *Registry) RecordSimulation(strategy, cadence string, days, rebalances, legs int) {
	r.simulatedDays.WithLabelValues(strategy).Add(float64(days))
	r.rebalances.WithLabelValues(strategy, cadence).Add(float64(rebalances))
	r.tradedLegs.WithLabelValues(strategy).Add(float64(legs))
}

// RecordSkippedAsset records a policy asset without price data.
func (r *Registry) RecordSkippedAsset(symbol string) {
	r.skippedAssets.WithLabelValues(symbol).Inc()
}

// RecordFetch records one provider call.
func (r *Registry) RecordFetch(provider string, duration float64, err error) {
	r.fetchDuration.WithLabelValues(provider).Observe(duration)
	if err != nil {
		r.fetchErrors.WithLabelValues(provider).Inc()
	}
}

// RecordAnalysis records a completed analysis and its headline numbers.
func (r *Registry) RecordAnalysis(strategy, grade string, score, totalReturn float64) {
	r.analysesTotal.WithLabelValues(grade).Inc()
	r.gradeScore.WithLabelValues(strategy).Set(score)
	r.finalReturn.WithLabelValues(strategy).Set(totalReturn)
}

// WriteTextfile writes the current state in the Prometheus text format, for
// the node_exporter textfile collector. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
