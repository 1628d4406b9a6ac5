package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/newthinker/prism/internal/core"
	"go.uber.org/zap"
)

// Input is everything one analysis needs. Benchmark and Values are optional.
type Input struct {
	Returns        []float64
	Benchmark      []float64
	Values         []float64 // value path; derived from Returns when empty
	ElapsedDays    int       // calendar span; 0 annualizes by period count
	PeriodsPerYear int
	SectorWeights  map[string]float64 // DefaultSectorWeights when nil
}

// Analyzer runs the full metrics suite with a configured risk-free rate.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	riskFreeRate float64
	logger       *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger disables logging.
func NewAnalyzer(riskFreeRate float64, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		riskFreeRate: riskFreeRate,
		logger:       logger,
	}
}

// RiskFreeRate returns the annual risk-free rate used for Sharpe and Treynor
func (a *Analyzer) RiskFreeRate() float64 {
	return a.riskFreeRate
}

// Returns is ComputeReturns with the analyzer's risk-free rate
func (a *Analyzer) Returns(returns []float64, elapsedDays, periodsPerYear int) ReturnMetrics {
	return computeReturns(growth(returns), returns, elapsedDays, periodsPerYear, a.riskFreeRate)
}

// ReturnsFromValues is ComputeReturnsFromValues with the analyzer's risk-free rate
func (a *Analyzer) ReturnsFromValues(initial, final float64, returns []float64, elapsedDays, periodsPerYear int) ReturnMetrics {
	if initial <= 0 {
		return ReturnMetrics{}
	}
	return computeReturns(final/initial, returns, elapsedDays, periodsPerYear, a.riskFreeRate)
}

// Analyze produces the aggregated report. An empty return series, a
// non-finite input value or a benchmark of a different length is an error;
// every other shortfall degrades the affected section to an invalid result.
func (a *Analyzer) Analyze(in Input) (*Report, error) {
	if len(in.Returns) == 0 {
		return nil, core.WrapError(core.ErrInsufficientData, errors.New("return series is empty"))
	}
	if err := checkFinite("return", in.Returns); err != nil {
		return nil, err
	}
	if err := checkFinite("benchmark return", in.Benchmark); err != nil {
		return nil, err
	}
	if err := checkFinite("value", in.Values); err != nil {
		return nil, err
	}
	if len(in.Benchmark) > 0 && len(in.Benchmark) != len(in.Returns) {
		return nil, core.WrapError(core.ErrLengthMismatch,
			fmt.Errorf("%d returns vs %d benchmark returns", len(in.Returns), len(in.Benchmark)))
	}
	ppy := in.PeriodsPerYear
	if ppy <= 0 {
		ppy = core.PeriodsMonthly
	}

	values := in.Values
	if len(values) == 0 {
		values = equityCurve(in.Returns)
	}

	r := &Report{
		Summary: Summary{
			PortfolioReturn: sum(in.Returns),
			Periods:         len(in.Returns),
			PeriodsPerYear:  ppy,
		},
	}

	if len(in.Values) > 0 {
		r.Returns = a.ReturnsFromValues(values[0], values[len(values)-1], in.Returns, in.ElapsedDays, ppy)
	} else {
		r.Returns = a.Returns(in.Returns, in.ElapsedDays, ppy)
	}
	r.Risk = ComputeRisk(in.Returns, ppy)
	r.Drawdown = ComputeDrawdown(values)

	if len(in.Benchmark) > 0 {
		r.Summary.HasBenchmark = true
		r.Summary.BenchmarkReturn = sum(in.Benchmark)
		r.Summary.Alpha = r.Summary.PortfolioReturn - r.Summary.BenchmarkReturn
		r.Relative = ComputeRelative(in.Returns, in.Benchmark, a.riskFreeRate, ppy)
		if !r.Relative.Valid {
			a.logger.Warn("relative metrics unavailable", zap.String("reason", r.Relative.Reason))
		}
	} else {
		r.Relative = RelativeMetrics{Reason: "no benchmark supplied"}
	}

	sectors := in.SectorWeights
	if sectors == nil {
		sectors = DefaultSectorWeights()
	}
	r.Attribution = ComputeAttribution(in.Returns, sectors)
	if !r.Attribution.Periods.Valid {
		a.logger.Debug("quartile analysis skipped", zap.Int("periods", len(in.Returns)))
	}
	if !r.Risk.Valid {
		a.logger.Debug("risk metrics need at least two periods", zap.Int("periods", len(in.Returns)))
	}

	r.Grade = ComputeGrade(r.Summary.Alpha, r.Risk)
	r.Recommendations = Recommend(r.Returns, r.Risk, r.Relative)

	a.logger.Debug("analysis complete",
		zap.Int("periods", len(in.Returns)),
		zap.Float64("total_return", r.Returns.TotalReturn),
		zap.String("grade", r.Grade.Letter),
	)
	return r, nil
}

func checkFinite(kind string, xs []float64) error {
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return core.Invalidf("%s %d is %v, must be finite", kind, i, x)
		}
	}
	return nil
}
