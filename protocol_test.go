package mitigate

import (
	"reflect"
	"testing"
)

func protocolRecords(protocols []string) []Record {
	records := make([]Record, 0, len(protocols))
	for _, p := range protocols {
		records = append(records, Record{Protocol: p, Label: LabelAnomaly})
	}
	return records
}

func TestDetectProtocolDominance(t *testing.T) {
	protocols := []string{"TCP", "TCP", "TCP", "TCP", "TCP", "TCP", "TCP", "TCP", "HTTP", "HTTP"}
	signals := DetectProtocolSignals(protocolRecords(protocols))
	if !signals.Dominance {
		t.Fatalf("expected dominance at 0.8, got %+v", signals)
	}
	if got := signals.Distribution["TCP"]; got != 0.8 {
		t.Fatalf("expected TCP fraction 0.8, got %f", got)
	}
	if len(signals.UnusualProtocols) != 0 {
		t.Fatalf("unexpected unusual protocols: %v", signals.UnusualProtocols)
	}
}

func TestDetectProtocolNoDominanceAtThreshold(t *testing.T) {
	// Exactly 0.7 must not count: the rule is strictly greater.
	protocols := []string{"TCP", "TCP", "TCP", "TCP", "TCP", "TCP", "TCP", "UDP", "UDP", "UDP"}
	signals := DetectProtocolSignals(protocolRecords(protocols))
	if signals.Dominance {
		t.Fatalf("0.7 fraction must not be dominance, got %+v", signals)
	}
}

func TestDetectProtocolDiversity(t *testing.T) {
	signals := DetectProtocolSignals(protocolRecords([]string{"TCP", "UDP", "HTTP"}))
	if !signals.Diversity {
		t.Fatalf("expected diversity with 3 distinct protocols, got %+v", signals)
	}
	signals = DetectProtocolSignals(protocolRecords([]string{"TCP", "UDP", "TCP"}))
	if signals.Diversity {
		t.Fatalf("two distinct protocols are not diverse, got %+v", signals)
	}
}

func TestDetectProtocolUnusual(t *testing.T) {
	protocols := []string{"TCP", "ICMP", "GOPHER", "UDP", "ICMP"}
	signals := DetectProtocolSignals(protocolRecords(protocols))
	want := []string{"GOPHER", "ICMP"}
	if !reflect.DeepEqual(signals.UnusualProtocols, want) {
		t.Fatalf("expected unusual protocols %v, got %v", want, signals.UnusualProtocols)
	}
}

func TestDetectProtocolEmpty(t *testing.T) {
	signals := DetectProtocolSignals(nil)
	if signals.Dominance || signals.Diversity || len(signals.UnusualProtocols) != 0 {
		t.Fatalf("expected zero signals, got %+v", signals)
	}
}
