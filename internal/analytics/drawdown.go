package analytics

// ComputeDrawdown tracks the running peak of a value path. Duration is the
// longest run of consecutive observations that did not set a new peak; a
// drawdown still open at the end of the path counts.
func ComputeDrawdown(values []float64) DrawdownMetrics {
	if len(values) == 0 {
		return DrawdownMetrics{}
	}

	dd := DrawdownMetrics{Valid: true}
	peak := values[0]
	peakIdx := 0
	run := 0

	for i := 1; i < len(values); i++ {
		v := values[i]
		if v > peak {
			peak = v
			peakIdx = i
			run = 0
			continue
		}

		run++
		if run > dd.Duration {
			dd.Duration = run
		}
		if peak > 0 {
			if d := clamp((peak-v)/peak, 0, 1); d > dd.MaxDrawdown {
				dd.MaxDrawdown = d
				dd.PeakIndex = peakIdx
				dd.TroughIndex = i
			}
		}
	}

	if last := values[len(values)-1]; peak > 0 && last < peak {
		dd.CurrentDrawdown = (peak - last) / peak
	}
	dd.RecoveryFactor = 1 / (dd.MaxDrawdown + 0.001)
	return dd
}
