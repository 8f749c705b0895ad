package mitigate

import (
	"math"
	"sort"
	"time"
)

// TemporalSignals are the timing-based pattern signals computed over the
// anomalous subset. BurstTiming has no mapping rule yet and is retained as
// an extension point.
type TemporalSignals struct {
	RegularInterval   bool `json:"regularInterval"`
	BurstTiming       bool `json:"burstTiming"`
	TimeConcentration bool `json:"timeConcentration"`

	Diffs []float64 `json:"-"`
}

// DetectTemporalSignals computes the timing signals from the parsed
// timestamps of the anomalous subset. Differences are taken between
// consecutive records in their given order; pass sortFirst to diff in
// chronological order instead (the input slice is never mutated). The
// interval std is the sample standard deviation (n-1 divisor).
func DetectTemporalSignals(times []time.Time, sortFirst bool) TemporalSignals {
	signals := TemporalSignals{}
	n := len(times)
	if n == 0 {
		return signals
	}

	ordered := times
	if sortFirst {
		ordered = make([]time.Time, n)
		copy(ordered, times)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })
	}

	diffs := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		diffs = append(diffs, ordered[i].Sub(ordered[i-1]).Seconds())
	}
	signals.Diffs = diffs

	if len(diffs) >= 2 {
		var sum float64
		for _, d := range diffs {
			sum += d
		}
		mean := sum / float64(len(diffs))
		var variance float64
		for _, d := range diffs {
			dev := d - mean
			variance += dev * dev
		}
		std := math.Sqrt(variance / float64(len(diffs)-1))
		signals.RegularInterval = std < mean*0.1
	}

	for _, d := range diffs {
		if d < 1.0 {
			signals.BurstTiming = true
			break
		}
	}

	hourCounts := make(map[int]int)
	for _, t := range ordered {
		hourCounts[t.Hour()]++
	}
	limit := 0.3 * float64(n)
	for _, count := range hourCounts {
		if float64(count) > limit {
			signals.TimeConcentration = true
			break
		}
	}

	return signals
}
