package mitigate

import (
	"testing"
	"time"
)

func sampleReport(id string, severity Severity) *Report {
	return &Report{
		ID:          id,
		GeneratedAt: time.Now().UTC(),
		Recommendations: []Recommendation{
			{Type: TypeTrafficSpike, Severity: severity},
		},
	}
}

func TestReportLedgerRecordAndGet(t *testing.T) {
	ledger := NewReportLedger(time.Minute)
	ledger.Record(sampleReport("a", SeverityHigh))

	report, ok := ledger.Get("a")
	if !ok || report.ID != "a" {
		t.Fatalf("expected stored report, got %v %v", report, ok)
	}
	if _, ok := ledger.Get("missing"); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestReportLedgerExpiry(t *testing.T) {
	ledger := NewReportLedger(20 * time.Millisecond)
	ledger.Record(sampleReport("a", SeverityHigh))
	time.Sleep(40 * time.Millisecond)

	if _, ok := ledger.Get("a"); ok {
		t.Fatalf("expected report to expire")
	}
	if got := len(ledger.Snapshot()); got != 0 {
		t.Fatalf("expected empty snapshot, got %d", got)
	}
	ledger.Cleanup()
	ledger.mu.RLock()
	remaining := len(ledger.entries)
	ledger.mu.RUnlock()
	if remaining != 0 {
		t.Fatalf("expected cleanup to drop entries, got %d", remaining)
	}
}

func TestReportLedgerSummary(t *testing.T) {
	ledger := NewReportLedger(time.Minute)
	ledger.Record(sampleReport("a", SeverityHigh))
	ledger.Record(sampleReport("b", SeverityMedium))

	summary := ledger.Summary()
	if summary.ActiveReports != 2 {
		t.Fatalf("expected 2 active reports, got %d", summary.ActiveReports)
	}
	if summary.TotalRecommendations != 2 {
		t.Fatalf("expected 2 recommendations, got %d", summary.TotalRecommendations)
	}
	if summary.ByType[TypeTrafficSpike] != 2 {
		t.Fatalf("expected 2 spikes, got %d", summary.ByType[TypeTrafficSpike])
	}
	if summary.HighSeverity != 1 {
		t.Fatalf("expected 1 high severity, got %d", summary.HighSeverity)
	}
	if summary.LastGenerated.IsZero() {
		t.Fatalf("expected last generated timestamp")
	}
}
