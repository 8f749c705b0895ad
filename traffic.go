package mitigate

import "math"

// TrafficSignals are the volume-based pattern signals computed over the
// anomalous subset. LowVolume has no mapping rule yet and is retained as an
// extension point.
type TrafficSignals struct {
	HighVolume   bool    `json:"highVolume"`
	LowVolume    bool    `json:"lowVolume"`
	BurstPattern bool    `json:"burstPattern"`
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
}

// DetectTrafficSignals computes the volume signals over the anomalous
// subset in its given order. Mean and Std are population statistics. A
// single record cannot be an outlier relative to itself, so both volume
// flags stay false when len(records) < 2.
func DetectTrafficSignals(records []Record) TrafficSignals {
	signals := TrafficSignals{}
	n := len(records)
	if n == 0 {
		return signals
	}

	var sum float64
	for _, r := range records {
		sum += r.BytesTransferred
	}
	mean := sum / float64(n)

	var variance float64
	for _, r := range records {
		d := r.BytesTransferred - mean
		variance += d * d
	}
	variance /= float64(n)
	std := math.Sqrt(variance)

	signals.Mean = mean
	signals.Std = std

	if n > 1 {
		for _, r := range records {
			if r.BytesTransferred > mean+2*std {
				signals.HighVolume = true
			}
			if r.BytesTransferred < mean-2*std {
				signals.LowVolume = true
			}
		}
	}

	// Trailing 3-wide moving average; the first two positions have no
	// defined window and are excluded.
	if n >= 3 {
		for i := 2; i < n; i++ {
			window := records[i-2].BytesTransferred +
				records[i-1].BytesTransferred +
				records[i].BytesTransferred
			if window/3 > 2*mean {
				signals.BurstPattern = true
				break
			}
		}
	}

	return signals
}
