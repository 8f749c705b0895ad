package mitigate

import (
	"fmt"
	"time"
)

// Anomaly labels assigned by the upstream classifier. The engine never
// mutates them; the match on LabelAnomaly is case-sensitive.
const (
	LabelAnomaly = "Anomaly"
	LabelNormal  = "Normal"
)

// Record is a single observed traffic event, already labeled upstream.
type Record struct {
	Timestamp        string  `json:"timestamp" db:"timestamp"`
	BytesTransferred float64 `json:"bytes_transferred" db:"bytes_transferred"`
	Protocol         string  `json:"protocol" db:"protocol"`
	Label            string  `json:"anomaly_label" db:"anomaly_label"`
}

// IsAnomaly reports whether the upstream classifier flagged this record.
func (r Record) IsAnomaly() bool {
	return r.Label == LabelAnomaly
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses the record timestamp formats accepted on input.
// Parsing is deferred until a record is known to be anomalous, so malformed
// timestamps on Normal records never surface as errors.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// FilterAnomalous selects the anomalous subset in its given order.
func FilterAnomalous(records []Record) []Record {
	var anomalous []Record
	for _, r := range records {
		if r.IsAnomaly() {
			anomalous = append(anomalous, r)
		}
	}
	return anomalous
}
