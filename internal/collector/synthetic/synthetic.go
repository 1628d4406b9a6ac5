// Package synthetic generates reproducible daily prices by geometric
// Brownian motion. It stands in for a market-data vendor in simulations.
package synthetic

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/newthinker/prism/internal/core"
)

// TradingDaysPerYear scales annual drift and volatility to daily steps
const TradingDaysPerYear = 252

// DefaultSymbol supplies parameters for symbols missing from the catalog
const DefaultSymbol = "SPY"

// Params describes the price process of one asset
type Params struct {
	Drift        float64 // annual expected return
	Volatility   float64 // annual standard deviation
	InitialPrice float64
}

// Validate checks the parameters can produce positive prices
func (p Params) Validate() error {
	if math.IsNaN(p.Drift) || math.IsInf(p.Drift, 0) {
		return fmt.Errorf("drift must be finite, got %v", p.Drift)
	}
	if math.IsNaN(p.Volatility) || p.Volatility < 0 {
		return fmt.Errorf("volatility must be non-negative, got %v", p.Volatility)
	}
	if math.IsNaN(p.InitialPrice) || p.InitialPrice <= 0 {
		return fmt.Errorf("initial price must be positive, got %v", p.InitialPrice)
	}
	return nil
}

// DefaultCatalog returns the built-in asset parameters
func DefaultCatalog() map[string]Params {
	return map[string]Params{
		"SPY":  {Drift: 0.10, Volatility: 0.16, InitialPrice: 300},
		"QQQ":  {Drift: 0.12, Volatility: 0.20, InitialPrice: 250},
		"BND":  {Drift: 0.03, Volatility: 0.04, InitialPrice: 85},
		"GLD":  {Drift: 0.05, Volatility: 0.18, InitialPrice: 150},
		"VTI":  {Drift: 0.09, Volatility: 0.15, InitialPrice: 180},
		"VXUS": {Drift: 0.07, Volatility: 0.17, InitialPrice: 55},
	}
}

// Generator produces synthetic price histories. Each symbol draws from its own
// PCG stream keyed by the seed and the symbol, so a history depends only on
// (seed, symbol, window) and never on request order.
type Generator struct {
	seed uint64

	mu      sync.RWMutex
	catalog map[string]Params
}

// New creates a Generator seeded with seed and loaded with DefaultCatalog
func New(seed uint64) *Generator {
	return &Generator{
		seed:    seed,
		catalog: DefaultCatalog(),
	}
}

func (g *Generator) Name() string {
	return "synthetic"
}

// Seed returns the generator seed
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Register sets custom parameters for symbol
func (g *Generator) Register(symbol string, p Params) error {
	if err := p.Validate(); err != nil {
		return core.Invalidf("params for %s: %v", symbol, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.catalog[strings.ToUpper(symbol)] = p
	return nil
}

// Params returns the parameters used for symbol and whether the symbol is in
// the catalog. Unknown symbols get the DefaultSymbol parameters.
func (g *Generator) Params(symbol string) (Params, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if p, ok := g.catalog[strings.ToUpper(symbol)]; ok {
		return p, true
	}
	return g.catalog[DefaultSymbol], false
}

// Symbols lists the catalog in sorted order
func (g *Generator) Symbols() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.catalog))
	for s := range g.catalog {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// FetchHistory emits one price per calendar day in [start, end]. The first
// price already includes one step from the initial price.
func (g *Generator) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.PricePoint, error) {
	if symbol == "" {
		return nil, core.Invalidf("symbol cannot be empty")
	}
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil, core.Invalidf("end %s is before start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params, _ := g.Params(symbol)
	return g.walk(strings.ToUpper(symbol), params, start, end), nil
}

func (g *Generator) walk(symbol string, p Params, start, end time.Time) []core.PricePoint {
	days := int(end.Sub(start).Hours()/24) + 1
	step := distuv.Normal{
		Mu:    p.Drift / TradingDaysPerYear,
		Sigma: p.Volatility / math.Sqrt(TradingDaysPerYear),
		Src:   rand.NewPCG(g.seed, xxhash.Sum64String(symbol)),
	}

	points := make([]core.PricePoint, 0, days)
	price := p.InitialPrice
	for d := 0; d < days; d++ {
		price *= 1 + step.Rand()
		// a draw below -100% would flip the sign; hold at a floor instead
		if price <= 0 {
			price = minPrice
		}
		points = append(points, core.PricePoint{
			Time:  start.AddDate(0, 0, d),
			Price: price,
		})
	}
	return points
}

const minPrice = 0.01

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
