package analytics

// All values are fractions (0.05 means 5%). Rounding and percent formatting
// happen in the report package.

// ReturnMetrics summarizes the return profile of a periodic return series
type ReturnMetrics struct {
	Valid            bool
	TotalReturn      float64 // (final - initial) / initial
	AnnualizedReturn float64
	CumulativeReturn float64 // simple sum of period returns
	MeanReturn       float64
	Volatility       float64 // annualized sample standard deviation
	SharpeRatio      float64
	WinRate          float64 // share of strictly positive periods
	BestPeriod       float64
	WorstPeriod      float64
	PositivePeriods  int
	TotalPeriods     int
	PeriodsPerYear   int
}

// RiskMetrics holds dispersion and tail statistics of a return series.
//
// DownsideDeviation is mean-centered: RMS of min(0, r - mean).
// DownsideRisk is zero-centered: RMS of min(0, r).
type RiskMetrics struct {
	Valid                bool
	Observations         int
	Volatility           float64 // periodic sample standard deviation
	AnnualizedVolatility float64
	DownsideDeviation    float64
	DownsideRisk         float64
	VaR95                float64
	CVaR95               float64
	MaxDrawdown          float64 // of the compounded equity curve
	Skewness             float64
	Kurtosis             float64
	ExcessKurtosis       float64
}

// DrawdownMetrics describes peak-to-trough behaviour of a value path
type DrawdownMetrics struct {
	Valid           bool
	MaxDrawdown     float64
	Duration        int // longest run of observations without a new peak
	PeakIndex       int // peak preceding the maximum drawdown
	TroughIndex     int
	CurrentDrawdown float64
	RecoveryFactor  float64
}

// RelativeMetrics compares a portfolio return series with a benchmark
type RelativeMetrics struct {
	Valid            bool
	Reason           string // set when Valid is false
	TrackingError    float64
	InformationRatio float64
	Beta             float64
	Correlation      float64
	SharpeRatio      float64 // periodic
	TreynorRatio     float64 // periodic
	Alpha            float64 // mean excess return per period
}

// QuartilePerformance is the performance of one contiguous quarter of a series
type QuartilePerformance struct {
	Quartile   int
	Return     float64 // sum of the slice's returns
	Volatility float64
	Periods    int
}

// PeriodAnalysis splits a series into quartiles and scores their consistency
type PeriodAnalysis struct {
	Valid            bool
	Quartiles        []QuartilePerformance
	ConsistencyScore float64
	Best             QuartilePerformance
	Worst            QuartilePerformance
}

// SectorContribution is the estimated contribution of one sector
type SectorContribution struct {
	Sector       string
	Weight       float64 // normalized
	Contribution float64
}

// SectorAttribution estimates per-sector contributions for a weight map
type SectorAttribution struct {
	Valid                bool
	Contributions        []SectorContribution // sorted by sector name
	Top                  SectorContribution
	Bottom               SectorContribution
	DiversificationScore float64
}

// AttributionReport combines period and sector attribution
type AttributionReport struct {
	Periods PeriodAnalysis
	Sectors SectorAttribution
}

// Grade is the composite performance grade
type Grade struct {
	Letter        string
	Score         float64
	AlphaScore    float64
	RiskScore     float64
	DrawdownScore float64
}

// Summary carries headline numbers of an analysis
type Summary struct {
	PortfolioReturn float64 // sum of period returns
	BenchmarkReturn float64
	Alpha           float64 // PortfolioReturn - BenchmarkReturn
	Periods         int
	PeriodsPerYear  int
	HasBenchmark    bool
}

// Report is the aggregated result of one analysis run
type Report struct {
	Summary         Summary
	Returns         ReturnMetrics
	Risk            RiskMetrics
	Drawdown        DrawdownMetrics
	Relative        RelativeMetrics
	Attribution     AttributionReport
	Grade           Grade
	Recommendations []string
}
