package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/newthinker/prism/internal/analytics"
	"github.com/newthinker/prism/internal/collector"
	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/metrics"
	"github.com/newthinker/prism/internal/portfolio"
)

// Backtester loads prices, simulates an allocation policy and analyzes the
// resulting daily return series.
type Backtester struct {
	provider collector.Provider
	analyzer *analytics.Analyzer
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// New creates a Backtester. The metrics registry and logger may be nil.
func New(provider collector.Provider, analyzer *analytics.Analyzer, reg *metrics.Registry, logger *zap.Logger) *Backtester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if analyzer == nil {
		analyzer = analytics.NewAnalyzer(analytics.DefaultRiskFreeRate, logger)
	}
	return &Backtester{
		provider: provider,
		analyzer: analyzer,
		metrics:  reg,
		logger:   logger,
	}
}

// Run executes one simulation. Cancellation is checked between stages.
func (b *Backtester) Run(ctx context.Context, req Request) (res *Result, err error) {
	started := time.Now()
	runID := uuid.NewString()
	log := b.logger.With(zap.String("run_id", runID), zap.String("strategy", req.Strategy))

	if b.metrics != nil {
		b.metrics.InFlightInc()
		defer b.metrics.InFlightDec()
		defer func() {
			b.metrics.RecordRun(req.Strategy, runStatus(err), time.Since(started).Seconds())
		}()
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	log.Info("starting simulation",
		zap.Time("start", req.Start),
		zap.Time("end", req.End),
		zap.Float64("capital", req.InitialCapital),
		zap.String("cadence", string(req.Cadence)),
		zap.String("provider", b.provider.Name()),
	)

	// Stage 1: load prices
	histories, skipped, err := b.load(ctx, log, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dates, prices, benchPrices, err := b.align(log, req, histories)
	if err != nil {
		return nil, err
	}

	// Stage 2: simulate
	trace, err := portfolio.Simulate(prices, req.Policy, req.InitialCapital, req.Cadence, portfolio.Options{CostPerLeg: req.CostPerLeg})
	if err != nil {
		return nil, err
	}
	if b.metrics != nil {
		b.metrics.RecordSimulation(req.Strategy, string(req.Cadence), len(trace.Points), trace.Stats.Rebalances, trace.Stats.TotalTrades)
	}
	log.Debug("simulation complete",
		zap.Int("days", len(trace.Points)),
		zap.Int("rebalances", trace.Stats.Rebalances),
		zap.Float64("final_capital", trace.FinalCapital),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: analyze
	report, err := b.analyzer.Analyze(analytics.Input{
		Returns:        trace.Returns(),
		Benchmark:      analytics.SimpleReturns(benchPrices),
		Values:         trace.Values(),
		ElapsedDays:    core.SpanDays(dates),
		PeriodsPerYear: core.PeriodsDaily,
		SectorWeights:  req.SectorWeights,
	})
	if err != nil {
		return nil, err
	}

	res = &Result{
		RunID:     runID,
		Strategy:  req.Strategy,
		Policy:    req.Policy,
		StartDate: req.Start,
		EndDate:   req.End,
		Dates:     dates,
		Trace:     trace,
		Report:    report,
		Stats:     CalculateStats(trace, report),
		Skipped:   skipped,
	}
	if benchPrices != nil {
		res.Benchmark = compareBenchmark(req.Benchmark, trace.Values(), benchPrices)
	}
	res.Duration = time.Since(started)

	if b.metrics != nil {
		b.metrics.RecordAnalysis(req.Strategy, report.Grade.Letter, report.Grade.Score, res.Stats.TotalReturn)
	}
	log.Info("simulation finished",
		zap.Float64("total_return", res.Stats.TotalReturn),
		zap.String("grade", report.Grade.Letter),
		zap.Strings("skipped", skipped),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// RunMany executes requests concurrently with at most limit runs in flight
// (unbounded when limit <= 0). Results keep the order of reqs. The first
// failure cancels the remaining runs.
func (b *Backtester) RunMany(ctx context.Context, reqs []Request, limit int) ([]*Result, error) {
	results := make([]*Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			res, err := b.Run(gctx, req)
			if err != nil {
				return fmt.Errorf("run %d (%s): %w", i, req.Strategy, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// load fetches every policy asset plus the benchmark. Assets the provider has
// no data for are skipped; any other provider failure aborts the run.
func (b *Backtester) load(ctx context.Context, log *zap.Logger, req Request) (map[string][]core.PricePoint, []string, error) {
	symbols := req.Policy.Assets()
	if req.Benchmark != "" {
		if _, held := req.Policy[req.Benchmark]; !held {
			symbols = append(symbols, req.Benchmark)
		}
	}

	histories := make(map[string][]core.PricePoint, len(symbols))
	var skipped []string

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		fetchStart := time.Now()
		points, err := b.provider.FetchHistory(ctx, symbol, req.Start, req.End)
		if b.metrics != nil {
			b.metrics.RecordFetch(b.provider.Name(), time.Since(fetchStart).Seconds(), err)
		}

		switch {
		case err == nil && len(points) > 0:
			histories[symbol] = points
		case err == nil || errors.Is(err, core.ErrSymbolNotFound) || errors.Is(err, core.ErrNoData):
			if _, held := req.Policy[symbol]; held {
				skipped = append(skipped, symbol)
				if b.metrics != nil {
					b.metrics.RecordSkippedAsset(symbol)
				}
				log.Warn("skipping asset without price data", zap.String("symbol", symbol), zap.Error(err))
			} else {
				log.Warn("benchmark has no price data, comparison disabled", zap.String("symbol", symbol), zap.Error(err))
			}
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil, nil, err
		default:
			return nil, nil, core.WrapError(core.ErrProviderFailed, fmt.Errorf("%s: %w", symbol, err))
		}
	}

	held := 0
	for symbol := range histories {
		if _, ok := req.Policy[symbol]; ok {
			held++
		}
	}
	if held == 0 {
		return nil, nil, core.WrapError(core.ErrNoData, fmt.Errorf("none of %v has price data", req.Policy.Assets()))
	}
	return histories, skipped, nil
}

// align intersects the dates of the policy assets. The benchmark is then
// looked up on those dates and dropped when it does not cover all of them, so
// it never trims the portfolio's own history.
func (b *Backtester) align(log *zap.Logger, req Request, histories map[string][]core.PricePoint) ([]time.Time, core.PriceSeries, []float64, error) {
	held := make(map[string][]core.PricePoint, len(histories))
	for symbol, h := range histories {
		if _, ok := req.Policy[symbol]; ok {
			held[symbol] = h
		}
	}

	dates, prices := core.Align(held)
	if len(dates) == 0 {
		return nil, nil, nil, core.WrapError(core.ErrNoData, fmt.Errorf("no trading dates shared by %v", prices.Symbols()))
	}

	if req.Benchmark == "" {
		return dates, prices, nil, nil
	}
	if series, ok := prices[req.Benchmark]; ok {
		return dates, prices, series, nil
	}
	h, ok := histories[req.Benchmark]
	if !ok {
		return dates, prices, nil, nil
	}
	bench, ok := core.Match(dates, h)
	if !ok {
		log.Warn("benchmark does not cover the portfolio dates, comparison disabled",
			zap.String("symbol", req.Benchmark),
			zap.Int("portfolio_days", len(dates)),
			zap.Int("benchmark_days", len(h)),
		)
		return dates, prices, nil, nil
	}
	return dates, prices, bench, nil
}

func validateRequest(req Request) error {
	if req.Start.IsZero() || req.End.IsZero() {
		return core.Invalidf("start and end dates are required")
	}
	if req.End.Before(req.Start) {
		return core.Invalidf("end %s is before start %s", req.End.Format(time.DateOnly), req.Start.Format(time.DateOnly))
	}
	if len(req.Policy) == 0 {
		return core.Invalidf("allocation policy is empty")
	}
	if req.InitialCapital <= 0 {
		return core.Invalidf("initial capital must be positive, got %v", req.InitialCapital)
	}
	if !req.Cadence.IsValid() {
		return core.Invalidf("unknown rebalance cadence %q", req.Cadence)
	}
	return nil
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.StatusCancelled
	default:
		return metrics.StatusFailed
	}
}
