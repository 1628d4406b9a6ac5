// Package csvfeed serves price histories stored as CSV files in an archive.
//
// Each symbol lives at "<dir>/<SYMBOL>.csv" with a date column and a price
// column. A header row is optional; when present the price column is picked
// from "adj_close", "close" or "price", in that order.
package csvfeed

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/storage/archive"
)

var dateLayouts = []string{time.DateOnly, "2006/01/02", "20060102", time.RFC3339}

var priceColumns = []string{"adj_close", "close", "price"}

// Feed implements collector.Provider over an archive.Source
type Feed struct {
	source archive.Source
	dir    string
	logger *zap.Logger
}

// New creates a Feed reading "<dir>/<SYMBOL>.csv" from source
func New(source archive.Source, dir string, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		source: source,
		dir:    strings.Trim(dir, "/"),
		logger: logger,
	}
}

func (f *Feed) Name() string {
	return "csv"
}

func (f *Feed) objectPath(symbol string) string {
	name := strings.ToUpper(symbol) + ".csv"
	if f.dir == "" {
		return name
	}
	return path.Join(f.dir, name)
}

// FetchHistory reads the symbol's file and returns the rows inside
// [start, end], sorted by date.
func (f *Feed) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.PricePoint, error) {
	if symbol == "" {
		return nil, core.Invalidf("symbol cannot be empty")
	}
	p := f.objectPath(symbol)

	ok, err := f.source.Exists(ctx, p)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, fmt.Errorf("checking %s: %w", p, err))
	}
	if !ok {
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("%s not in %s", p, f.source.Location()))
	}

	data, err := f.source.Read(ctx, p)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, fmt.Errorf("reading %s: %w", p, err))
	}

	all, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, fmt.Errorf("parsing %s: %w", p, err))
	}

	lo, hi := start.UTC().Truncate(24*time.Hour), end.UTC().Truncate(24*time.Hour)
	out := make([]core.PricePoint, 0, len(all))
	for _, pt := range all {
		if pt.Time.Before(lo) || pt.Time.After(hi) {
			continue
		}
		out = append(out, pt)
	}

	f.logger.Debug("loaded price file",
		zap.String("symbol", symbol),
		zap.String("path", p),
		zap.Int("rows", len(all)),
		zap.Int("in_window", len(out)),
	)

	if len(out) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("%s has no rows between %s and %s",
			symbol, lo.Format(time.DateOnly), hi.Format(time.DateOnly)))
	}
	return out, nil
}

// Parse reads date/price rows. Rows are returned in ascending date order;
// a later row for the same date replaces an earlier one.
func Parse(r io.Reader) ([]core.PricePoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	dateCol, priceCol := 0, 1
	if _, err := parseDate(records[0][0]); err != nil {
		dateCol, priceCol, err = columns(records[0])
		if err != nil {
			return nil, err
		}
		records = records[1:]
	}

	byDate := make(map[time.Time]float64, len(records))
	for i, rec := range records {
		if len(rec) <= dateCol || len(rec) <= priceCol {
			return nil, fmt.Errorf("row %d: expected at least %d fields, got %d", i+1, max(dateCol, priceCol)+1, len(rec))
		}
		day, err := parseDate(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[priceCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q", i+1, rec[priceCol])
		}
		if price <= 0 {
			return nil, fmt.Errorf("row %d: price %v must be positive", i+1, price)
		}
		byDate[day] = price
	}

	out := make([]core.PricePoint, 0, len(byDate))
	for day, price := range byDate {
		out = append(out, core.PricePoint{Time: day, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func columns(header []string) (int, int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	dateCol, ok := index["date"]
	if !ok {
		return 0, 0, fmt.Errorf("header %v has no date column", header)
	}
	for _, name := range priceColumns {
		if c, ok := index[name]; ok {
			return dateCol, c, nil
		}
	}
	return 0, 0, fmt.Errorf("header %v has no price column (want one of %v)", header, priceColumns)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(24 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
