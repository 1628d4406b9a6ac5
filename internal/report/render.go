package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSimulation renders a simulation view in the given format
func WriteSimulation(w io.Writer, format string, v Simulation) error {
	if format == FormatJSON {
		return WriteJSON(w, v)
	}
	return writeSimulationText(w, v)
}

// WriteAnalysis renders an analysis view in the given format
func WriteAnalysis(w io.Writer, format string, v Analysis) error {
	if format == FormatJSON {
		return WriteJSON(w, v)
	}
	return writeAnalysisText(w, v)
}

// WriteSimulations renders several simulations, as a JSON array or as text
// blocks followed by a comparison table.
func WriteSimulations(w io.Writer, format string, vs []Simulation) error {
	if format == FormatJSON {
		return WriteJSON(w, vs)
	}
	for _, v := range vs {
		if err := writeSimulationText(w, v); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return writeComparison(w, vs)
}

type section struct {
	tw *tabwriter.Writer
}

func newSection(w io.Writer, title string) *section {
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", len(title)))
	return &section{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (s *section) row(label string, format string, args ...any) {
	fmt.Fprintf(s.tw, "  %s\t"+format+"\n", append([]any{label}, args...)...)
}

func (s *section) flush(w io.Writer) error {
	if err := s.tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func money(f float64) string {
	return "$" + humanize.CommafWithDigits(f, 2)
}

func allocation(weights map[string]float64) string {
	symbols := make([]string, 0, len(weights))
	for s := range weights {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = fmt.Sprintf("%s %.0f%%", s, weights[s]*100)
	}
	return strings.Join(parts, ", ")
}

func writeSimulationText(w io.Writer, v Simulation) error {
	s := newSection(w, fmt.Sprintf("Simulation %s (%s)", v.Strategy, v.RunID))
	s.row("Period", "%s to %s", v.StartDate, v.EndDate)
	s.row("Allocation", "%s", allocation(v.Allocation))
	s.row("Rebalancing", "%s", v.Cadence)
	s.row("Initial capital", "%s", money(v.InitialCapital))
	s.row("Final capital", "%s", money(v.FinalCapital))
	if len(v.Skipped) > 0 {
		s.row("Skipped assets", "%s", strings.Join(v.Skipped, ", "))
	}
	if err := s.flush(w); err != nil {
		return err
	}

	if err := writePerformance(w, v.Performance); err != nil {
		return err
	}

	s = newSection(w, "Drawdown")
	s.row("Max drawdown", "%.2f%%", v.Drawdown.MaxDrawdownPct)
	s.row("Duration", "%d days", v.Drawdown.DrawdownDurationDays)
	s.row("Current drawdown", "%.2f%%", v.Drawdown.CurrentDrawdownPct)
	s.row("Recovery factor", "%.2f", v.Drawdown.RecoveryFactor)
	if err := s.flush(w); err != nil {
		return err
	}

	s = newSection(w, "Risk")
	s.row("VaR 95%", "%.3f%%", v.Risk.VaR95Pct)
	s.row("CVaR 95%", "%.3f%%", v.Risk.CVaR95Pct)
	s.row("Downside risk", "%.2f%%", v.Risk.DownsideRiskPct)
	s.row("Skewness", "%.3f", v.Risk.Skewness)
	s.row("Kurtosis", "%.3f", v.Risk.Kurtosis)
	if err := s.flush(w); err != nil {
		return err
	}

	if b := v.Benchmark; b != nil {
		s = newSection(w, "Benchmark "+b.Symbol)
		s.row("Portfolio return", "%.2f%%", b.PortfolioReturnPct)
		s.row("Benchmark return", "%.2f%%", b.BenchmarkReturnPct)
		s.row("Outperformance", "%+.2f%%", b.OutperformancePct)
		s.row("Beta", "%.2f", b.Beta)
		if err := s.flush(w); err != nil {
			return err
		}
	}

	s = newSection(w, "Trading")
	s.row("Rebalances", "%d", v.Trades.Rebalances)
	s.row("Legs traded", "%d", v.Trades.TotalTrades)
	s.row("Costs", "%s", money(v.Trades.TotalCosts))
	if err := s.flush(w); err != nil {
		return err
	}

	return writeVerdict(w, v.Grade, v.Recommendations)
}

func writeAnalysisText(w io.Writer, v Analysis) error {
	s := newSection(w, "Summary")
	s.row("Periods analyzed", "%d (%d per year)", v.Periods, v.PeriodsPerYear)
	s.row("Portfolio return", "%.2f%%", v.PortfolioReturnPct)
	if v.BenchmarkReturnPct != nil {
		s.row("Benchmark return", "%.2f%%", *v.BenchmarkReturnPct)
		s.row("Alpha", "%+.2f%%", *v.AlphaPct)
	}
	if err := s.flush(w); err != nil {
		return err
	}

	if err := writePerformance(w, v.Performance); err != nil {
		return err
	}

	s = newSection(w, "Risk")
	if !v.Risk.Valid {
		s.row("Status", "insufficient data")
	} else {
		s.row("Volatility", "%.2f%% (annualized %.2f%%)", v.Risk.VolatilityPct, v.Risk.AnnualizedVolatilityPct)
		s.row("Downside deviation", "%.2f%%", v.Risk.DownsideDeviationPct)
		s.row("VaR 95%", "%.3f%%", v.Risk.VaR95Pct)
		s.row("CVaR 95%", "%.3f%%", v.Risk.CVaR95Pct)
		s.row("Max drawdown", "%.2f%% over %d periods", v.Drawdown.MaxDrawdownPct, v.Drawdown.DrawdownDurationDays)
		s.row("Skewness", "%.3f", v.Risk.Skewness)
		s.row("Excess kurtosis", "%.3f", v.Risk.ExcessKurtosis)
	}
	if err := s.flush(w); err != nil {
		return err
	}

	s = newSection(w, "Relative")
	if !v.Relative.Valid {
		s.row("Status", "%s", v.Relative.Reason)
	} else {
		s.row("Tracking error", "%.2f%%", v.Relative.TrackingErrorPct)
		s.row("Information ratio", "%.3f", v.Relative.InformationRatio)
		s.row("Beta", "%.3f", v.Relative.Beta)
		s.row("Correlation", "%.3f", v.Relative.Correlation)
		s.row("Treynor ratio", "%.3f", v.Relative.TreynorRatio)
	}
	if err := s.flush(w); err != nil {
		return err
	}

	a := v.Attribution
	s = newSection(w, "Attribution")
	for _, q := range a.Quartiles {
		s.row(fmt.Sprintf("Q%d", q.Quartile), "%.2f%%\tvol %.2f%%\t%d periods", q.ReturnPct, q.VolatilityPct, q.Periods)
	}
	if len(a.Quartiles) > 0 {
		s.row("Consistency", "%.3f", a.ConsistencyScore)
	}
	for _, sec := range a.Sectors {
		s.row(sec.Sector, "%.2f%%\tweight %.2f%%", sec.ContributionPct, sec.WeightPct)
	}
	if len(a.Sectors) > 0 {
		s.row("Diversification", "%.3f", a.DiversificationScore)
	}
	if err := s.flush(w); err != nil {
		return err
	}

	return writeVerdict(w, v.Grade, v.Recommendations)
}

func writePerformance(w io.Writer, p Performance) error {
	s := newSection(w, "Performance")
	s.row("Total return", "%.2f%%", p.TotalReturnPct)
	s.row("Annualized return", "%.2f%%", p.AnnualizedReturnPct)
	s.row("Volatility", "%.2f%%", p.VolatilityPct)
	s.row("Sharpe ratio", "%.3f", p.SharpeRatio)
	s.row("Win rate", "%.1f%%", p.WinRatePct)
	s.row("Best / worst", "%.2f%% / %.2f%%", p.BestDayPct, p.WorstDayPct)
	return s.flush(w)
}

func writeVerdict(w io.Writer, g Grade, recs []string) error {
	s := newSection(w, "Grade")
	s.row("Grade", "%s (%.1f)", g.Letter, g.Score)
	s.row("Alpha / risk / drawdown", "%.1f / %.1f / %.1f", g.AlphaScore, g.RiskScore, g.DrawdownScore)
	if err := s.flush(w); err != nil {
		return err
	}
	fmt.Fprintln(w, "Recommendations")
	for _, r := range recs {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	return nil
}

func writeComparison(w io.Writer, vs []Simulation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STRATEGY\tRETURN %\tANNUAL %\tVOL %\tSHARPE\tMAX DD %\tGRADE\t")
	for _, v := range vs {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.3f\t%.2f\t%s\t\n",
			v.Strategy,
			v.Performance.TotalReturnPct,
			v.Performance.AnnualizedReturnPct,
			v.Performance.VolatilityPct,
			v.Performance.SharpeRatio,
			v.Drawdown.MaxDrawdownPct,
			v.Grade.Letter,
		)
	}
	return tw.Flush()
}
