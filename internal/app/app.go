package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/prism/internal/analytics"
	"github.com/newthinker/prism/internal/backtest"
	"github.com/newthinker/prism/internal/collector"
	"github.com/newthinker/prism/internal/collector/csvfeed"
	"github.com/newthinker/prism/internal/collector/synthetic"
	"github.com/newthinker/prism/internal/config"
	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/metrics"
	"github.com/newthinker/prism/internal/portfolio"
	"github.com/newthinker/prism/internal/storage/archive"
)

// App wires configuration into providers, strategies, analytics and the
// backtester. It is built once per command invocation.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	providers  *collector.Registry
	provider   collector.Provider
	catalog    *portfolio.Catalog
	analyzer   *analytics.Analyzer
	metrics    *metrics.Registry
	backtester *backtest.Backtester
}

// New validates cfg and builds an App
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry(cfg.Metrics.Runtime)
	}

	providers := collector.NewRegistry()

	gen := synthetic.New(cfg.Data.Seed)
	for _, a := range cfg.Data.Assets {
		params := synthetic.Params{Drift: a.Drift, Volatility: a.Volatility, InitialPrice: a.InitialPrice}
		if err := gen.Register(a.Symbol, params); err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
	}
	providers.Register(gen)

	if cfg.Data.Source == config.SourceCSV {
		src, err := archive.Open(archive.Config{
			Kind: cfg.Data.Archive.Type,
			Path: cfg.Data.Archive.Path,
			S3: archive.S3Config{
				Bucket:    cfg.Data.Archive.S3.Bucket,
				Endpoint:  cfg.Data.Archive.S3.Endpoint,
				Region:    cfg.Data.Archive.S3.Region,
				AccessKey: cfg.Data.Archive.S3.AccessKey,
				SecretKey: cfg.Data.Archive.S3.SecretKey,
				Prefix:    cfg.Data.Archive.S3.Prefix,
			},
		})
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		providers.Register(csvfeed.New(src, cfg.Data.Archive.Dir, logger.Named("csv")))
		logger.Debug("price archive opened", zap.String("location", src.Location()))
	}

	provider, err := providers.Resolve(cfg.Data.Source)
	if err != nil {
		return nil, err
	}

	analyzer := analytics.NewAnalyzer(cfg.Analytics.RiskFreeRate, logger.Named("analytics"))

	return &App{
		cfg:        cfg,
		logger:     logger,
		providers:  providers,
		provider:   provider,
		catalog:    portfolio.NewCatalog(cfg.Policies()),
		analyzer:   analyzer,
		metrics:    reg,
		backtester: backtest.New(provider, analyzer, reg, logger.Named("backtest")),
	}, nil
}

// Catalog returns the strategy catalog
func (a *App) Catalog() *portfolio.Catalog {
	return a.catalog
}

// Analyzer returns the configured analyzer
func (a *App) Analyzer() *analytics.Analyzer {
	return a.analyzer
}

// Provider returns the active price provider
func (a *App) Provider() collector.Provider {
	return a.provider
}

// Metrics returns the metrics registry, or nil when metrics are disabled
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Request builds a simulation request for a named strategy using the
// simulation defaults from configuration.
func (a *App) Request(strategy string, start, end time.Time) (backtest.Request, error) {
	policy, err := a.catalog.Get(strategy)
	if err != nil {
		return backtest.Request{}, err
	}
	cadence, err := core.ParseCadence(a.cfg.Simulation.Cadence)
	if err != nil {
		return backtest.Request{}, err
	}
	return backtest.Request{
		Strategy:       strategy,
		Policy:         policy,
		Start:          start,
		End:            end,
		InitialCapital: a.cfg.Simulation.InitialCapital,
		Cadence:        cadence,
		CostPerLeg:     a.cfg.Simulation.CostPerLeg,
		Benchmark:      a.cfg.Simulation.Benchmark,
		SectorWeights:  a.cfg.SectorWeights(),
	}, nil
}

// Simulate runs every named strategy over [start, end]. Several strategies run
// concurrently, bounded by the configured parallelism.
func (a *App) Simulate(ctx context.Context, strategies []string, start, end time.Time) ([]*backtest.Result, error) {
	if len(strategies) == 0 {
		return nil, core.Invalidf("no strategy selected")
	}

	reqs := make([]backtest.Request, 0, len(strategies))
	for _, name := range strategies {
		req, err := a.Request(name, start, end)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}

	if len(reqs) == 1 {
		res, err := a.backtester.Run(ctx, reqs[0])
		if err != nil {
			return nil, err
		}
		return []*backtest.Result{res}, nil
	}
	return a.backtester.RunMany(ctx, reqs, a.cfg.Simulation.Parallelism)
}

// Analyze runs the analytics suite over externally supplied return series
func (a *App) Analyze(returns, benchmark []float64, frequency string) (*analytics.Report, error) {
	if frequency == "" {
		frequency = a.cfg.Analytics.Frequency
	}
	report, err := a.analyzer.Analyze(analytics.Input{
		Returns:        returns,
		Benchmark:      benchmark,
		PeriodsPerYear: core.PeriodsPerYear(frequency),
		SectorWeights:  a.cfg.SectorWeights(),
	})
	if err != nil {
		return nil, err
	}
	if a.metrics != nil {
		a.metrics.RecordAnalysis("external", report.Grade.Letter, report.Grade.Score, report.Returns.TotalReturn)
	}
	return report, nil
}

// Close writes the metrics textfile when one is configured
func (a *App) Close() error {
	if a.metrics == nil || a.cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	a.logger.Debug("metrics written", zap.String("path", a.cfg.Metrics.Textfile))
	return nil
}
