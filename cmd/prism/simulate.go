package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/prism/internal/config"
	"github.com/newthinker/prism/internal/report"
)

const dateLayout = "2006-01-02"

var (
	simStrategies []string
	simAll        bool
	simFrom       string
	simTo         string
	simCapital    float64
	simCadence    string
	simCost       float64
	simSeed       uint64
	simBenchmark  string
	simSource     string
	simFormat     string
	simSeries     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate one or more allocation strategies",
	Long: `Simulate rebalanced allocation strategies over a date range and report
performance, risk and benchmark-relative metrics. Several strategies run
concurrently and finish with a comparison table.`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringSliceVarP(&simStrategies, "strategy", "s", []string{"balanced_portfolio"}, "strategy name (repeatable)")
	f.BoolVar(&simAll, "all", false, "simulate every known strategy")
	f.StringVar(&simFrom, "from", "", "start date YYYY-MM-DD (default: one year before --to)")
	f.StringVar(&simTo, "to", "", "end date YYYY-MM-DD (default: today)")
	f.Float64Var(&simCapital, "capital", 0, "initial capital (overrides config)")
	f.StringVar(&simCadence, "cadence", "", "rebalance cadence: daily, weekly, monthly, quarterly")
	f.Float64Var(&simCost, "cost", -1, "fixed cost per traded asset at each rebalance")
	f.Uint64Var(&simSeed, "seed", 0, "synthetic price seed (overrides config)")
	f.StringVar(&simBenchmark, "benchmark", "", "benchmark symbol (overrides config)")
	f.StringVar(&simSource, "source", "", "price source: synthetic or csv")
	f.StringVar(&simFormat, "format", report.FormatText, "output format: text or json")
	f.BoolVar(&simSeries, "series", false, "include daily value and return series in JSON output")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(simFormat)
	if err != nil {
		return err
	}
	start, end, err := dateRange(simFrom, simTo, time.Now().UTC())
	if err != nil {
		return err
	}

	a, log, err := setup(func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("capital") {
			cfg.Simulation.InitialCapital = simCapital
		}
		if simCadence != "" {
			cfg.Simulation.Cadence = simCadence
		}
		if flags.Changed("cost") {
			cfg.Simulation.CostPerLeg = simCost
		}
		if flags.Changed("seed") {
			cfg.Data.Seed = simSeed
		}
		if simBenchmark != "" {
			cfg.Simulation.Benchmark = simBenchmark
		}
		if simSource != "" {
			cfg.Data.Source = simSource
		}
	})
	if err != nil {
		return err
	}
	defer log.Sync()
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Warn("closing app", zap.Error(cerr))
		}
	}()

	names := simStrategies
	if simAll {
		names = a.Catalog().Names()
	}

	log.Info("simulating",
		zap.Strings("strategies", names),
		zap.String("from", start.Format(dateLayout)),
		zap.String("to", end.Format(dateLayout)),
	)

	results, err := a.Simulate(cmd.Context(), names, start, end)
	if err != nil {
		return err
	}

	views := make([]report.Simulation, 0, len(results))
	for _, res := range results {
		views = append(views, report.FromResult(res, simSeries))
	}
	out := cmd.OutOrStdout()
	if len(views) == 1 {
		return report.WriteSimulation(out, format, views[0])
	}
	return report.WriteSimulations(out, format, views)
}

// dateRange parses the --from/--to pair. A missing end defaults to now and a
// missing start to one year before the end.
func dateRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
		}
		end = t
	}

	start := end.AddDate(-1, 0, 0)
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
		}
		start = t
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must not be before start date")
	}
	return start, end, nil
}
