package report

import (
	"time"

	"github.com/newthinker/prism/internal/analytics"
	"github.com/newthinker/prism/internal/backtest"
)

// Percent fields end in _pct and hold percentages; ratios are unitless.

type Performance struct {
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	VolatilityPct       float64 `json:"volatility_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	WinRatePct          float64 `json:"win_rate_pct"`
	BestDayPct          float64 `json:"best_day_pct"`
	WorstDayPct         float64 `json:"worst_day_pct"`
	TotalTradingDays    int     `json:"total_trading_days"`
}

type Drawdown struct {
	MaxDrawdownPct       float64 `json:"max_drawdown_pct"`
	DrawdownDurationDays int     `json:"drawdown_duration_days"`
	CurrentDrawdownPct   float64 `json:"current_drawdown_pct"`
	RecoveryFactor       float64 `json:"recovery_factor"`
}

type Risk struct {
	Valid                   bool    `json:"valid"`
	VolatilityPct           float64 `json:"volatility_pct"`
	AnnualizedVolatilityPct float64 `json:"annualized_volatility_pct"`
	VaR95Pct                float64 `json:"var_95_pct"`
	CVaR95Pct               float64 `json:"cvar_95_pct"`
	DownsideDeviationPct    float64 `json:"downside_deviation_pct"`
	DownsideRiskPct         float64 `json:"downside_risk_pct"`
	MaxDrawdownPct          float64 `json:"max_drawdown_pct"`
	Skewness                float64 `json:"skewness"`
	Kurtosis                float64 `json:"kurtosis"`
	ExcessKurtosis          float64 `json:"excess_kurtosis"`
}

type Relative struct {
	Valid            bool    `json:"valid"`
	Reason           string  `json:"reason,omitempty"`
	TrackingErrorPct float64 `json:"tracking_error_pct"`
	InformationRatio float64 `json:"information_ratio"`
	Beta             float64 `json:"beta"`
	Correlation      float64 `json:"correlation"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	TreynorRatio     float64 `json:"treynor_ratio"`
	AlphaPct         float64 `json:"alpha_pct"`
}

type Benchmark struct {
	Symbol             string  `json:"benchmark"`
	BenchmarkReturnPct float64 `json:"benchmark_return_pct"`
	PortfolioReturnPct float64 `json:"portfolio_return_pct"`
	OutperformancePct  float64 `json:"outperformance_pct"`
	Beta               float64 `json:"beta"`
}

type Trades struct {
	TotalTrades   int       `json:"total_trades"`
	Rebalances    int       `json:"rebalances"`
	RebalanceDays []int     `json:"rebalancing_days"`
	TotalCosts    float64   `json:"total_costs"`
	PeriodReturns []float64 `json:"period_returns_pct"`
}

type Quartile struct {
	Quartile      int     `json:"quartile"`
	ReturnPct     float64 `json:"return_pct"`
	VolatilityPct float64 `json:"volatility_pct"`
	Periods       int     `json:"periods"`
}

type Sector struct {
	Sector          string  `json:"sector"`
	WeightPct       float64 `json:"weight_pct"`
	ContributionPct float64 `json:"contribution_pct"`
}

type Attribution struct {
	Quartiles            []Quartile `json:"quartiles,omitempty"`
	ConsistencyScore     float64    `json:"consistency_score"`
	BestQuartile         int        `json:"best_quartile,omitempty"`
	WorstQuartile        int        `json:"worst_quartile,omitempty"`
	Sectors              []Sector   `json:"sectors,omitempty"`
	TopSector            string     `json:"top_sector,omitempty"`
	BottomSector         string     `json:"bottom_sector,omitempty"`
	DiversificationScore float64    `json:"diversification_score"`
}

type Grade struct {
	Letter        string  `json:"letter"`
	Score         float64 `json:"score"`
	AlphaScore    float64 `json:"alpha_score"`
	RiskScore     float64 `json:"risk_score"`
	DrawdownScore float64 `json:"drawdown_score"`
}

// Simulation is the presentation view of a backtest.Result
type Simulation struct {
	RunID           string             `json:"run_id"`
	Strategy        string             `json:"strategy"`
	Allocation      map[string]float64 `json:"allocation"`
	StartDate       string             `json:"start_date"`
	EndDate         string             `json:"end_date"`
	Cadence         string             `json:"rebalancing_frequency"`
	InitialCapital  float64            `json:"initial_capital"`
	FinalCapital    float64            `json:"final_capital"`
	Performance     Performance        `json:"performance_metrics"`
	Drawdown        Drawdown           `json:"drawdown_analysis"`
	Risk            Risk               `json:"risk_metrics"`
	Benchmark       *Benchmark         `json:"benchmark_comparison,omitempty"`
	Trades          Trades             `json:"trade_statistics"`
	Grade           Grade              `json:"grade"`
	Recommendations []string           `json:"recommendations"`
	Skipped         []string           `json:"skipped_assets,omitempty"`
	Values          []float64          `json:"portfolio_values,omitempty"`
	DailyReturns    []float64          `json:"daily_returns_pct,omitempty"`
	DurationMillis  int64              `json:"duration_ms"`
}

// Analysis is the presentation view of an analytics.Report
type Analysis struct {
	PortfolioReturnPct float64     `json:"portfolio_return_pct"`
	BenchmarkReturnPct *float64    `json:"benchmark_return_pct,omitempty"`
	AlphaPct           *float64    `json:"alpha_pct,omitempty"`
	Periods            int         `json:"periods_analyzed"`
	PeriodsPerYear     int         `json:"periods_per_year"`
	Performance        Performance `json:"performance_metrics"`
	Risk               Risk        `json:"risk_metrics"`
	Drawdown           Drawdown    `json:"drawdown_analysis"`
	Relative           Relative    `json:"relative_metrics"`
	Attribution        Attribution `json:"attribution"`
	Grade              Grade       `json:"grade"`
	Recommendations    []string    `json:"recommendations"`
}

// FromResult builds the simulation view. Value and return paths are included
// only when series is true.
func FromResult(res *backtest.Result, series bool) Simulation {
	v := Simulation{
		RunID:          res.RunID,
		Strategy:       res.Strategy,
		Allocation:     res.Policy,
		StartDate:      res.StartDate.Format(time.DateOnly),
		EndDate:        res.EndDate.Format(time.DateOnly),
		InitialCapital: Money(res.Stats.InitialCapital),
		FinalCapital:   Money(res.Stats.FinalCapital),
		Performance: Performance{
			TotalReturnPct:      Pct(res.Stats.TotalReturn),
			AnnualizedReturnPct: Pct(res.Stats.AnnualizedReturn),
			VolatilityPct:       Pct(res.Stats.Volatility),
			SharpeRatio:         Ratio(res.Stats.SharpeRatio),
			WinRatePct:          WinRate(res.Stats.WinRate),
			BestDayPct:          Pct(res.Stats.BestDay),
			WorstDayPct:         Pct(res.Stats.WorstDay),
			TotalTradingDays:    res.Stats.TradingDays,
		},
		Drawdown: Drawdown{
			MaxDrawdownPct:       Pct(res.Stats.MaxDrawdown),
			DrawdownDurationDays: res.Stats.DrawdownDuration,
			RecoveryFactor:       Round(res.Stats.RecoveryFactor, 2),
		},
		Trades: Trades{
			TotalTrades: res.Stats.TotalTrades,
			Rebalances:  res.Stats.Rebalances,
			TotalCosts:  Money(res.Stats.TotalCosts),
		},
		Skipped:        res.Skipped,
		DurationMillis: res.Duration.Milliseconds(),
	}

	if res.Trace != nil {
		v.Cadence = string(res.Trace.Cadence)
		for _, ev := range res.Trace.Rebalances {
			v.Trades.RebalanceDays = append(v.Trades.RebalanceDays, ev.Day)
		}
		v.Trades.PeriodReturns = pcts(res.Trace.PeriodReturns)
		if series {
			for _, val := range res.Trace.Values() {
				v.Values = append(v.Values, Money(val))
			}
			v.DailyReturns = pcts(res.Trace.Returns())
		}
	}

	if res.Report != nil {
		v.Drawdown.CurrentDrawdownPct = Pct(res.Report.Drawdown.CurrentDrawdown)
		v.Risk = riskView(res.Report.Risk)
		v.Grade = gradeView(res.Report.Grade)
		v.Recommendations = res.Report.Recommendations
	}

	if res.Benchmark != nil {
		v.Benchmark = &Benchmark{
			Symbol:             res.Benchmark.Symbol,
			BenchmarkReturnPct: Pct(res.Benchmark.BenchmarkReturn),
			PortfolioReturnPct: Pct(res.Benchmark.PortfolioReturn),
			OutperformancePct:  Pct(res.Benchmark.Outperformance),
		}
		if res.Report != nil && res.Report.Relative.Valid {
			v.Benchmark.Beta = Round(res.Report.Relative.Beta, 2)
		}
	}
	return v
}

// FromReport builds the analysis view
func FromReport(r *analytics.Report) Analysis {
	v := Analysis{
		PortfolioReturnPct: Pct(r.Summary.PortfolioReturn),
		Periods:            r.Summary.Periods,
		PeriodsPerYear:     r.Summary.PeriodsPerYear,
		Performance: Performance{
			TotalReturnPct:      Pct(r.Returns.TotalReturn),
			AnnualizedReturnPct: Pct(r.Returns.AnnualizedReturn),
			VolatilityPct:       Pct(r.Returns.Volatility),
			SharpeRatio:         Ratio(r.Returns.SharpeRatio),
			WinRatePct:          WinRate(r.Returns.WinRate),
			BestDayPct:          Pct(r.Returns.BestPeriod),
			WorstDayPct:         Pct(r.Returns.WorstPeriod),
			TotalTradingDays:    r.Returns.TotalPeriods,
		},
		Risk: riskView(r.Risk),
		Drawdown: Drawdown{
			MaxDrawdownPct:       Pct(r.Drawdown.MaxDrawdown),
			DrawdownDurationDays: r.Drawdown.Duration,
			CurrentDrawdownPct:   Pct(r.Drawdown.CurrentDrawdown),
			RecoveryFactor:       Round(r.Drawdown.RecoveryFactor, 2),
		},
		Relative: Relative{
			Valid:            r.Relative.Valid,
			Reason:           r.Relative.Reason,
			TrackingErrorPct: Pct(r.Relative.TrackingError),
			InformationRatio: Ratio(r.Relative.InformationRatio),
			Beta:             Ratio(r.Relative.Beta),
			Correlation:      Ratio(r.Relative.Correlation),
			SharpeRatio:      Ratio(r.Relative.SharpeRatio),
			TreynorRatio:     Ratio(r.Relative.TreynorRatio),
			AlphaPct:         Pct(r.Relative.Alpha),
		},
		Attribution:     attributionView(r.Attribution),
		Grade:           gradeView(r.Grade),
		Recommendations: r.Recommendations,
	}
	if r.Summary.HasBenchmark {
		bench, alpha := Pct(r.Summary.BenchmarkReturn), Pct(r.Summary.Alpha)
		v.BenchmarkReturnPct = &bench
		v.AlphaPct = &alpha
	}
	return v
}

func riskView(r analytics.RiskMetrics) Risk {
	return Risk{
		Valid:                   r.Valid,
		VolatilityPct:           Pct(r.Volatility),
		AnnualizedVolatilityPct: Pct(r.AnnualizedVolatility),
		VaR95Pct:                PctPrecise(r.VaR95),
		CVaR95Pct:               PctPrecise(r.CVaR95),
		DownsideDeviationPct:    Pct(r.DownsideDeviation),
		DownsideRiskPct:         Pct(r.DownsideRisk),
		MaxDrawdownPct:          Pct(r.MaxDrawdown),
		Skewness:                Ratio(r.Skewness),
		Kurtosis:                Ratio(r.Kurtosis),
		ExcessKurtosis:          Ratio(r.ExcessKurtosis),
	}
}

func gradeView(g analytics.Grade) Grade {
	return Grade{
		Letter:        g.Letter,
		Score:         Round(g.Score, 2),
		AlphaScore:    Round(g.AlphaScore, 2),
		RiskScore:     Round(g.RiskScore, 2),
		DrawdownScore: Round(g.DrawdownScore, 2),
	}
}

func attributionView(a analytics.AttributionReport) Attribution {
	v := Attribution{
		ConsistencyScore:     Ratio(a.Periods.ConsistencyScore),
		DiversificationScore: Ratio(a.Sectors.DiversificationScore),
	}
	if a.Periods.Valid {
		for _, q := range a.Periods.Quartiles {
			v.Quartiles = append(v.Quartiles, Quartile{
				Quartile:      q.Quartile,
				ReturnPct:     Pct(q.Return),
				VolatilityPct: Pct(q.Volatility),
				Periods:       q.Periods,
			})
		}
		v.BestQuartile = a.Periods.Best.Quartile
		v.WorstQuartile = a.Periods.Worst.Quartile
	}
	if a.Sectors.Valid {
		for _, s := range a.Sectors.Contributions {
			v.Sectors = append(v.Sectors, Sector{
				Sector:          s.Sector,
				WeightPct:       Pct(s.Weight),
				ContributionPct: Pct(s.Contribution),
			})
		}
		v.TopSector = a.Sectors.Top.Sector
		v.BottomSector = a.Sectors.Bottom.Sector
	}
	return v
}
