package mitigate

import (
	"sync"
	"time"
)

// ReportLedger keeps recent analysis reports in memory for the serving
// layer. Entries expire after the TTL; nothing survives a process restart.
type ReportLedger struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*ledgerEntry
}

type ledgerEntry struct {
	report   *Report
	recorded time.Time
}

// LedgerSummary aggregates the reports currently held by the ledger.
type LedgerSummary struct {
	ActiveReports        int            `json:"activeReports"`
	TotalRecommendations int            `json:"totalRecommendations"`
	ByType               map[string]int `json:"byType"`
	HighSeverity         int            `json:"highSeverity"`
	LastGenerated        time.Time      `json:"lastGenerated"`
}

func NewReportLedger(ttl time.Duration) *ReportLedger {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ReportLedger{
		ttl:     ttl,
		entries: make(map[string]*ledgerEntry),
	}
}

func (l *ReportLedger) Record(report *Report) {
	if report == nil || report.ID == "" {
		return
	}
	l.mu.Lock()
	l.entries[report.ID] = &ledgerEntry{report: report, recorded: time.Now()}
	l.mu.Unlock()
}

func (l *ReportLedger) Get(id string) (*Report, bool) {
	l.mu.RLock()
	entry, exists := l.entries[id]
	l.mu.RUnlock()
	if !exists || time.Since(entry.recorded) > l.ttl {
		return nil, false
	}
	return entry.report, true
}

func (l *ReportLedger) Snapshot() []*Report {
	now := time.Now()
	l.mu.RLock()
	defer l.mu.RUnlock()
	var reports []*Report
	for _, entry := range l.entries {
		if now.Sub(entry.recorded) > l.ttl {
			continue
		}
		reports = append(reports, entry.report)
	}
	return reports
}

func (l *ReportLedger) Cleanup() {
	now := time.Now()
	l.mu.Lock()
	for id, entry := range l.entries {
		if now.Sub(entry.recorded) > l.ttl {
			delete(l.entries, id)
		}
	}
	l.mu.Unlock()
}

func (l *ReportLedger) Summary() LedgerSummary {
	summary := LedgerSummary{
		ByType: make(map[string]int),
	}
	reports := l.Snapshot()
	summary.ActiveReports = len(reports)
	for _, report := range reports {
		for _, rec := range report.Recommendations {
			summary.ByType[rec.Type]++
			summary.TotalRecommendations++
			if rec.Severity == SeverityHigh {
				summary.HighSeverity++
			}
		}
		if report.GeneratedAt.After(summary.LastGenerated) {
			summary.LastGenerated = report.GeneratedAt
		}
	}
	return summary
}
