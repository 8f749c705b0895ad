package mitigate

import "sort"

// knownProtocols is the set of protocol identifiers considered ordinary;
// anything outside it is reported as unusual.
var knownProtocols = map[string]bool{
	"TCP":   true,
	"UDP":   true,
	"HTTP":  true,
	"HTTPS": true,
	"SSH":   true,
	"FTP":   true,
}

// ProtocolSignals are the distribution-based pattern signals computed over
// the anomalous subset. Diversity has no mapping rule yet and is retained
// as an extension point.
type ProtocolSignals struct {
	Dominance        bool               `json:"dominance"`
	Diversity        bool               `json:"diversity"`
	UnusualProtocols []string           `json:"unusualProtocols,omitempty"`
	Distribution     map[string]float64 `json:"distribution,omitempty"`
}

// DetectProtocolSignals computes the normalized protocol frequency of the
// anomalous subset. Dominance fires when one protocol carries more than 70%
// of the subset; diversity when more than two distinct protocols appear.
func DetectProtocolSignals(records []Record) ProtocolSignals {
	signals := ProtocolSignals{}
	n := len(records)
	if n == 0 {
		return signals
	}

	counts := make(map[string]int)
	unusual := make(map[string]bool)
	for _, r := range records {
		counts[r.Protocol]++
		if !knownProtocols[r.Protocol] {
			unusual[r.Protocol] = true
		}
	}

	signals.Distribution = make(map[string]float64, len(counts))
	for protocol, count := range counts {
		fraction := float64(count) / float64(n)
		signals.Distribution[protocol] = fraction
		if fraction > 0.7 {
			signals.Dominance = true
		}
	}
	signals.Diversity = len(counts) > 2

	for protocol := range unusual {
		signals.UnusualProtocols = append(signals.UnusualProtocols, protocol)
	}
	sort.Strings(signals.UnusualProtocols)

	return signals
}
