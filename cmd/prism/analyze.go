package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/report"
)

var (
	anReturns   string
	anBenchmark string
	anPeriod    string
	anFormat    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an external return series",
	Long: `Run the analytics suite over a periodic return series read from a file.
The file holds one return per row as a fraction (0.01 is 1%); with several
columns the last one is used. Lines starting with '#' and a header row are
ignored.`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&anReturns, "returns", "", "file with portfolio returns (required)")
	f.StringVar(&anBenchmark, "benchmark", "", "file with benchmark returns")
	f.StringVar(&anPeriod, "period", "", "return frequency: daily, weekly, monthly, quarterly, yearly")
	f.StringVar(&anFormat, "format", report.FormatText, "output format: text or json")

	analyzeCmd.MarkFlagRequired("returns")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(anFormat)
	if err != nil {
		return err
	}

	returns, err := readReturnsFile(anReturns)
	if err != nil {
		return err
	}
	var bench []float64
	if anBenchmark != "" {
		if bench, err = readReturnsFile(anBenchmark); err != nil {
			return err
		}
	}

	a, log, err := setup(nil)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	r, err := a.Analyze(returns, bench, anPeriod)
	if err != nil {
		return err
	}
	return report.WriteAnalysis(cmd.OutOrStdout(), format, report.FromReport(r))
}

func readReturnsFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	returns, err := readReturns(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return returns, nil
}

// readReturns parses one return per row from the last column of a CSV
// stream. A non-numeric first record is taken as a header. Values must be
// finite; errors name the line in the input.
func readReturns(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []float64
	for record := 0; ; record++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		col := len(rec) - 1
		cell := strings.TrimSpace(rec[col])
		if cell == "" {
			continue
		}
		line, _ := cr.FieldPos(col)

		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			if record == 0 {
				continue
			}
			return nil, core.Invalidf("line %d: %q is not a number", line, cell)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, core.Invalidf("line %d: %q is not a finite return", line, cell)
		}
		out = append(out, v)
	}
	return out, nil
}
