package mitigate

import (
	"strings"
	"testing"
)

func TestMetricsCounters(t *testing.T) {
	m := NewInMemoryMetricsCollector()
	labels := map[string]string{"type": TypeTrafficSpike, "severity": "HIGH"}
	m.IncrementCounter("mitigation_recommendations_total", labels)
	m.IncrementCounter("mitigation_recommendations_total", labels)
	m.IncrementCounter("mitigation_recommendations_total", map[string]string{"type": TypePatternAnomaly, "severity": "MEDIUM"})

	if got := m.GetCounterValue("mitigation_recommendations_total", labels); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.GetCounterValue("mitigation_recommendations_total", map[string]string{"severity": "HIGH", "type": TypeTrafficSpike}); got != 2 {
		t.Fatalf("label order must not matter, got %d", got)
	}
}

func TestMetricsGauge(t *testing.T) {
	m := NewInMemoryMetricsCollector()
	m.SetGauge("mitigation_reports_active", 3, nil)
	if got := m.GetGaugeValue("mitigation_reports_active", nil); got != 3 {
		t.Fatalf("expected 3, got %f", got)
	}
}

func TestMetricsExportPrometheus(t *testing.T) {
	m := NewInMemoryMetricsCollector()
	m.IncrementCounter("mitigation_analyses_total", nil)
	m.ObserveHistogram("mitigation_analysis_seconds", 0.25, nil)
	m.ObserveHistogram("mitigation_analysis_seconds", 0.75, nil)

	out := m.ExportPrometheus()
	for _, want := range []string{
		"# TYPE mitigation_analyses_total counter",
		"mitigation_analyses_total{} 1",
		"# TYPE mitigation_analysis_seconds histogram",
		"mitigation_analysis_seconds_sum 1.0",
		"mitigation_analysis_seconds_count 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("export missing %q:\n%s", want, out)
		}
	}
	if err := m.HealthCheck(); err != nil {
		t.Fatalf("unexpected health error: %v", err)
	}
}
