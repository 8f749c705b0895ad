package mitigate

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Severity of a mitigation recommendation.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

func validSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Pattern type identifiers the engine can map detected signals to.
const (
	TypeTrafficSpike     = "TRAFFIC_SPIKE"
	TypePatternAnomaly   = "PATTERN_ANOMALY"
	TypeProtocolAnomaly  = "PROTOCOL_ANOMALY"
	TypeDataExfiltration = "DATA_EXFILTRATION"
)

// requiredTypes is the set of pattern types the engine maps to; an external
// catalog must define all of them. The order here is also the default
// catalog order.
var requiredTypes = []string{
	TypeTrafficSpike,
	TypeProtocolAnomaly,
	TypePatternAnomaly,
	TypeDataExfiltration,
}

// RuleEntry is the remediation guidance for one pattern type.
type RuleEntry struct {
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
	Severity        Severity `json:"severity"`
}

// Catalog is the fixed mapping from pattern type to remediation guidance.
// It is read-only after construction and safe to share across concurrent
// Analyze calls.
type Catalog struct {
	entries map[string]RuleEntry
	order   []string
}

// Entry returns the rule entry for a pattern type.
func (c *Catalog) Entry(typeID string) (RuleEntry, bool) {
	entry, ok := c.entries[typeID]
	return entry, ok
}

// Types returns the pattern types in a stable order.
func (c *Catalog) Types() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// DefaultCatalog returns the built-in rule catalog. It never fails.
func DefaultCatalog() *Catalog {
	return &Catalog{
		order: append([]string(nil), requiredTypes...),
		entries: map[string]RuleEntry{
			TypeTrafficSpike: {
				Description: "Unusual spike in network traffic",
				Recommendations: []string{
					"Implement rate limiting",
					"Enable traffic throttling",
					"Deploy DDoS protection",
				},
				Severity: SeverityHigh,
			},
			TypeProtocolAnomaly: {
				Description: "Unusual protocol behavior",
				Recommendations: []string{
					"Update firewall rules",
					"Enable deep packet inspection",
					"Implement protocol validation",
				},
				Severity: SeverityMedium,
			},
			TypePatternAnomaly: {
				Description: "Unusual traffic patterns",
				Recommendations: []string{
					"Enable behavioral analysis",
					"Update IDS signatures",
					"Implement traffic segmentation",
				},
				Severity: SeverityMedium,
			},
			TypeDataExfiltration: {
				Description: "Potential data exfiltration",
				Recommendations: []string{
					"Enable data loss prevention",
					"Implement egress filtering",
					"Monitor data transfer patterns",
				},
				Severity: SeverityHigh,
			},
		},
	}
}

// ParseCatalog builds a catalog from an external JSON mapping of the form
// {"TYPE_ID": {"description": ..., "recommendations": [...], "severity": ...}}.
// All four engine pattern types must be present; extra types are allowed.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw map[string]RuleEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CatalogError{Reason: "invalid JSON", Err: err}
	}
	if len(raw) == 0 {
		return nil, &CatalogError{Reason: "catalog is empty"}
	}
	for typeID, entry := range raw {
		if typeID == "" {
			return nil, &CatalogError{Reason: "entry with empty type id"}
		}
		if entry.Description == "" {
			return nil, &CatalogError{Reason: fmt.Sprintf("entry %s has no description", typeID)}
		}
		if len(entry.Recommendations) == 0 {
			return nil, &CatalogError{Reason: fmt.Sprintf("entry %s has no recommendations", typeID)}
		}
		if !validSeverity(entry.Severity) {
			return nil, &CatalogError{Reason: fmt.Sprintf("entry %s has invalid severity %q", typeID, entry.Severity)}
		}
	}
	for _, required := range requiredTypes {
		if _, ok := raw[required]; !ok {
			return nil, &CatalogError{Reason: fmt.Sprintf("missing required entry %s", required)}
		}
	}

	// Canonical types first, then any extensions in sorted order.
	order := append([]string(nil), requiredTypes...)
	var extras []string
	known := map[string]bool{}
	for _, t := range requiredTypes {
		known[t] = true
	}
	for typeID := range raw {
		if !known[typeID] {
			extras = append(extras, typeID)
		}
	}
	sort.Strings(extras)
	order = append(order, extras...)

	return &Catalog{entries: raw, order: order}, nil
}

// LoadCatalogFile reads and parses an external catalog from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Reason: fmt.Sprintf("read %s", path), Err: err}
	}
	return ParseCatalog(data)
}
