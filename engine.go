package mitigate

import (
	"time"

	"github.com/google/uuid"
	"github.com/oarkflow/log"
)

// Recommendation is a catalog entry copy tagged with the pattern type that
// triggered it. Recommendations are not deduplicated across detector
// families.
type Recommendation struct {
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
	Severity        Severity `json:"severity"`
}

// Signals groups the per-family pattern signals of one analysis.
type Signals struct {
	Traffic  TrafficSignals  `json:"traffic"`
	Protocol ProtocolSignals `json:"protocol"`
	Temporal TemporalSignals `json:"temporal"`
}

// Report is the full result of one analysis, as served to callers.
type Report struct {
	ID              string           `json:"id"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	AnomalyCount    int              `json:"anomalyCount"`
	Signals         Signals          `json:"signals"`
	Recommendations []Recommendation `json:"recommendations"`
}

// HasSeverity reports whether any recommendation carries the severity.
func (r *Report) HasSeverity(severity Severity) bool {
	for _, rec := range r.Recommendations {
		if rec.Severity == severity {
			return true
		}
	}
	return false
}

// Options control engine behavior beyond the catalog.
type Options struct {
	// SortBeforeDiff orders timestamps chronologically before computing
	// consecutive differences. Off by default: diffs are taken in the
	// records' given order.
	SortBeforeDiff bool
}

// Engine matches statistical patterns in the anomalous subset of a dataset
// against the rule catalog. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	catalog *Catalog
	metrics MetricsCollector
	logger  *log.Logger
	opts    Options
}

// NewEngine builds an engine around a catalog. A nil catalog selects the
// built-in default; metrics and logger may be nil.
func NewEngine(catalog *Catalog, metrics MetricsCollector, logger *log.Logger, opts Options) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
	}
}

// Catalog returns the engine's read-only catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Analyze filters the dataset to its anomalous subset, runs the three
// detector families over it and maps the detected signals to catalog
// entries. A dataset with no anomalous records yields an empty list. It
// fails with *AnalysisError when a required field on an anomalous record is
// missing or unparseable.
func (e *Engine) Analyze(records []Record) ([]Recommendation, error) {
	_, recommendations, _, err := e.analyze(records)
	return recommendations, err
}

// AnalyzeReport is Analyze plus the computed signals, wrapped in a tagged
// report for the serving layer.
func (e *Engine) AnalyzeReport(records []Record) (*Report, error) {
	signals, recommendations, anomalyCount, err := e.analyze(records)
	if err != nil {
		return nil, err
	}
	return &Report{
		ID:              uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		AnomalyCount:    anomalyCount,
		Signals:         signals,
		Recommendations: recommendations,
	}, nil
}

func (e *Engine) analyze(records []Record) (Signals, []Recommendation, int, error) {
	start := time.Now()

	anomalous := FilterAnomalous(records)
	if len(anomalous) == 0 {
		return Signals{}, []Recommendation{}, 0, nil
	}

	times, err := validateAnomalous(anomalous)
	if err != nil {
		return Signals{}, nil, 0, err
	}

	signals := Signals{
		Traffic:  DetectTrafficSignals(anomalous),
		Protocol: DetectProtocolSignals(anomalous),
		Temporal: DetectTemporalSignals(times, e.opts.SortBeforeDiff),
	}
	recommendations := e.assemble(signals)

	if e.metrics != nil {
		e.metrics.IncrementCounter("mitigation_analyses_total", nil)
		e.metrics.ObserveHistogram("mitigation_analysis_seconds", time.Since(start).Seconds(), nil)
		for _, rec := range recommendations {
			e.metrics.IncrementCounter("mitigation_recommendations_total", map[string]string{
				"type":     rec.Type,
				"severity": string(rec.Severity),
			})
		}
	}
	if e.logger != nil {
		e.logger.Debug().
			Int("anomalies", len(anomalous)).
			Int("recommendations", len(recommendations)).
			Msg("analysis complete")
	}

	return signals, recommendations, len(anomalous), nil
}

// validateAnomalous checks required fields and parses timestamps up front
// so the detectors operate on clean inputs. Only anomalous records reach
// this point; malformed Normal records never raise.
func validateAnomalous(anomalous []Record) ([]time.Time, error) {
	times := make([]time.Time, len(anomalous))
	for i, r := range anomalous {
		if r.BytesTransferred < 0 {
			return nil, &AnalysisError{Field: "bytes_transferred", Record: i, Reason: "is negative"}
		}
		ts, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			return nil, &AnalysisError{Field: "timestamp", Record: i, Reason: "is unparseable", Err: err}
		}
		times[i] = ts
	}
	return times, nil
}

// assemble maps detected signals to catalog entries in the fixed order
// TRAFFIC_SPIKE, PATTERN_ANOMALY, PROTOCOL_ANOMALY, DATA_EXFILTRATION.
// Append-only; no dedup.
func (e *Engine) assemble(signals Signals) []Recommendation {
	recommendations := []Recommendation{}
	if signals.Traffic.HighVolume {
		recommendations = e.appendEntry(recommendations, TypeTrafficSpike)
	}
	if signals.Traffic.BurstPattern {
		recommendations = e.appendEntry(recommendations, TypePatternAnomaly)
	}
	if signals.Protocol.Dominance || len(signals.Protocol.UnusualProtocols) > 0 {
		recommendations = e.appendEntry(recommendations, TypeProtocolAnomaly)
	}
	if signals.Temporal.RegularInterval || signals.Temporal.TimeConcentration {
		recommendations = e.appendEntry(recommendations, TypeDataExfiltration)
	}
	return recommendations
}

func (e *Engine) appendEntry(recommendations []Recommendation, typeID string) []Recommendation {
	entry, ok := e.catalog.Entry(typeID)
	if !ok {
		// Catalog construction guarantees the engine pattern types exist.
		return recommendations
	}
	return append(recommendations, Recommendation{
		Type:            typeID,
		Description:     entry.Description,
		Recommendations: append([]string(nil), entry.Recommendations...),
		Severity:        entry.Severity,
	})
}
