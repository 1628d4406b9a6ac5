package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePeriods_TooShort(t *testing.T) {
	pa := AnalyzePeriods([]float64{0.01, 0.02, 0.03})
	assert.False(t, pa.Valid)
	assert.Empty(t, pa.Quartiles)
}

func TestAnalyzePeriods_SliceSizes(t *testing.T) {
	pa := AnalyzePeriods(scenarioPortfolio)
	require.True(t, pa.Valid)
	require.Len(t, pa.Quartiles, 4)

	sizes := []int{2, 2, 2, 4}
	returns := []float64{0.01, 0.04, 0.005, 0.022}
	for i, q := range pa.Quartiles {
		assert.Equal(t, i+1, q.Quartile)
		assert.Equal(t, sizes[i], q.Periods)
		assert.InDelta(t, returns[i], q.Return, 1e-12)
	}

	assert.Equal(t, 2, pa.Best.Quartile)
	assert.Equal(t, 3, pa.Worst.Quartile)
	assert.Greater(t, pa.ConsistencyScore, 0.9)
	assert.LessOrEqual(t, pa.ConsistencyScore, 1.0)
}

func TestAnalyzePeriods_IdenticalQuartilesAreFullyConsistent(t *testing.T) {
	returns := []float64{0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01}
	pa := AnalyzePeriods(returns)
	require.True(t, pa.Valid)
	assert.Equal(t, 1.0, pa.ConsistencyScore)
}

func TestAnalyzePeriods_ConsistencyClampedAtZero(t *testing.T) {
	pa := AnalyzePeriods([]float64{3, -3, 3, -3})
	assert.Equal(t, 0.0, pa.ConsistencyScore)
}

func TestAttributeSectors_Defaults(t *testing.T) {
	sa := AttributeSectors(DefaultSectorWeights())
	require.True(t, sa.Valid)
	require.Len(t, sa.Contributions, 7)

	assert.InDelta(t, 0.81, sa.DiversificationScore, 1e-12)

	var total float64
	for _, c := range sa.Contributions {
		total += c.Contribution
		assert.LessOrEqual(t, c.Contribution, sa.Top.Contribution)
		assert.GreaterOrEqual(t, c.Contribution, sa.Bottom.Contribution)
	}
	assert.InDelta(t, targetContribution, total, 1e-12)
	assert.Equal(t, "Consumer", sa.Contributions[0].Sector, "contributions are sorted by sector")
}

func TestAttributeSectors_NormalizesWeights(t *testing.T) {
	sa := AttributeSectors(map[string]float64{"Tech": 2, "Energy": 2})
	require.True(t, sa.Valid)
	assert.InDelta(t, 0.5, sa.DiversificationScore, 1e-12)
	for _, c := range sa.Contributions {
		assert.InDelta(t, 0.5, c.Weight, 1e-12)
	}
}

func TestAttributeSectors_Deterministic(t *testing.T) {
	a := AttributeSectors(DefaultSectorWeights())
	b := AttributeSectors(DefaultSectorWeights())
	assert.Equal(t, a, b)
}

func TestAttributeSectors_Invalid(t *testing.T) {
	assert.False(t, AttributeSectors(nil).Valid)
	assert.False(t, AttributeSectors(map[string]float64{"A": 0}).Valid)
	assert.False(t, AttributeSectors(map[string]float64{"A": 1, "B": -0.5}).Valid)
}

func TestSectorJitter_Range(t *testing.T) {
	for _, s := range []string{"Technology", "Energy", "x", ""} {
		j := sectorJitter(s)
		assert.GreaterOrEqual(t, j, -0.05)
		assert.Less(t, j, 0.05)
	}
}

func TestComputeAttribution(t *testing.T) {
	r := ComputeAttribution(scenarioPortfolio, map[string]float64{"Tech": 1})
	assert.True(t, r.Periods.Valid)
	assert.True(t, r.Sectors.Valid)
	assert.Zero(t, r.Sectors.DiversificationScore)
	assert.Equal(t, "Tech", r.Sectors.Top.Sector)
}
