package analytics

// Composite grade weights
const (
	alphaWeight    = 0.4
	riskWeight     = 0.3
	drawdownWeight = 0.3
)

// Fallbacks used when no valid risk metrics are available.
const (
	fallbackVolatility  = 0.10
	fallbackMaxDrawdown = 0.10
)

// ComputeGrade scores alpha, periodic volatility and max drawdown on 0-100
// scales and combines them 0.4/0.3/0.3 into a letter grade.
func ComputeGrade(alpha float64, risk RiskMetrics) Grade {
	vol, mdd := fallbackVolatility, fallbackMaxDrawdown
	if risk.Valid {
		vol, mdd = risk.Volatility, risk.MaxDrawdown
	}

	g := Grade{
		AlphaScore:    clamp((alpha+0.02)*1000, 0, 100),
		RiskScore:     clamp(100-vol*500, 0, 100),
		DrawdownScore: clamp(100-mdd*200, 0, 100),
	}
	g.Score = g.AlphaScore*alphaWeight + g.RiskScore*riskWeight + g.DrawdownScore*drawdownWeight
	g.Letter = letter(g.Score)
	return g
}

func letter(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// Recommendation texts
const (
	RecRaiseReturn        = "Consider a more aggressive allocation to improve returns"
	RecKeepStrategy       = "Strong performance, keep the current strategy"
	RecDiversify          = "High volatility, consider broader diversification"
	RecAddRisk            = "Low volatility, there is room to take slightly more risk"
	RecReviewBenchmark    = "High tracking error, review the allocation against the benchmark"
	RecImproveSelection   = "Low information ratio, improve asset selection"
	RecProtectDownside    = "Large drawdown, put downside protection in place"
	RecContinueMonitoring = "Balanced performance, continue regular monitoring"
)

// Recommend maps threshold crossings to advisory lines. Sections that are not
// valid are skipped; at least one line is always returned.
func Recommend(ret ReturnMetrics, risk RiskMetrics, rel RelativeMetrics) []string {
	var recs []string

	if ret.Valid {
		switch {
		case ret.AnnualizedReturn < 0.05:
			recs = append(recs, RecRaiseReturn)
		case ret.AnnualizedReturn > 0.15:
			recs = append(recs, RecKeepStrategy)
		}
	}

	if risk.Valid {
		switch {
		case risk.AnnualizedVolatility > 0.20:
			recs = append(recs, RecDiversify)
		case risk.AnnualizedVolatility < 0.08:
			recs = append(recs, RecAddRisk)
		}
	}

	if rel.Valid {
		if rel.TrackingError > 0.05 {
			recs = append(recs, RecReviewBenchmark)
		}
		if rel.InformationRatio < 0.5 {
			recs = append(recs, RecImproveSelection)
		}
	}

	if risk.Valid && risk.MaxDrawdown > 0.15 {
		recs = append(recs, RecProtectDownside)
	}

	if len(recs) == 0 {
		recs = append(recs, RecContinueMonitoring)
	}
	return recs
}
