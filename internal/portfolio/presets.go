package portfolio

import (
	"fmt"
	"sort"

	"github.com/newthinker/prism/internal/core"
)

// Built-in allocation strategies
const (
	StrategyBalanced     = "balanced_portfolio"
	StrategyAggressive   = "aggressive_growth"
	StrategyConservative = "conservative"
	StrategyMomentum     = "momentum"
	StrategyValue        = "value_oriented"
)

func builtinPresets() map[string]core.AllocationPolicy {
	return map[string]core.AllocationPolicy{
		StrategyBalanced:     {"SPY": 0.6, "BND": 0.3, "GLD": 0.1},
		StrategyAggressive:   {"SPY": 0.7, "QQQ": 0.2, "VTI": 0.1},
		StrategyConservative: {"BND": 0.6, "SPY": 0.3, "GLD": 0.1},
		StrategyMomentum:     {"QQQ": 0.5, "SPY": 0.3, "GLD": 0.2},
		StrategyValue:        {"VTI": 0.5, "VXUS": 0.3, "BND": 0.2},
	}
}

// Catalog resolves strategy names to allocation policies. It is read-only
// after construction.
type Catalog struct {
	policies map[string]core.AllocationPolicy
}

// NewCatalog returns the built-in presets overlaid with custom policies.
// A custom policy with a built-in name replaces the built-in one.
func NewCatalog(custom map[string]core.AllocationPolicy) *Catalog {
	policies := builtinPresets()
	for name, p := range custom {
		policies[name] = clonePolicy(p)
	}
	return &Catalog{policies: policies}
}

// Get returns a copy of the named policy
func (c *Catalog) Get(name string) (core.AllocationPolicy, error) {
	p, ok := c.policies[name]
	if !ok {
		return nil, core.WrapError(core.ErrUnknownStrategy, fmt.Errorf("%q (available: %v)", name, c.Names()))
	}
	return clonePolicy(p), nil
}

// Names returns all strategy names in sorted order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.policies))
	for name := range c.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clonePolicy(p core.AllocationPolicy) core.AllocationPolicy {
	out := make(core.AllocationPolicy, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
