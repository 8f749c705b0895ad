package mitigate

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// InMemoryMetricsCollector is a process-local MetricsCollector with
// Prometheus text export, suitable for the /metrics endpoint.
type InMemoryMetricsCollector struct {
	counters   map[string]map[string]int64
	gauges     map[string]map[string]float64
	histograms map[string][]float64
	mu         sync.RWMutex
}

func NewInMemoryMetricsCollector() *InMemoryMetricsCollector {
	return &InMemoryMetricsCollector{
		counters:   make(map[string]map[string]int64),
		gauges:     make(map[string]map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (m *InMemoryMetricsCollector) IncrementCounter(name string, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.counters[name] == nil {
		m.counters[name] = make(map[string]int64)
	}
	m.counters[name][labelKey(labels)]++
}

func (m *InMemoryMetricsCollector) ObserveHistogram(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.histograms[name] = append(m.histograms[name], value)
}

func (m *InMemoryMetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gauges[name] == nil {
		m.gauges[name] = make(map[string]float64)
	}
	m.gauges[name][labelKey(labels)] = value
}

func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return strings.Join(parts, ",")
}

// GetCounterValue returns the current value of a counter (for testing/debugging)
func (m *InMemoryMetricsCollector) GetCounterValue(name string, labels map[string]string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if counters, exists := m.counters[name]; exists {
		return counters[labelKey(labels)]
	}
	return 0
}

// GetGaugeValue returns the current value of a gauge (for testing/debugging)
func (m *InMemoryMetricsCollector) GetGaugeValue(name string, labels map[string]string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if gauges, exists := m.gauges[name]; exists {
		return gauges[labelKey(labels)]
	}
	return 0
}

// HealthCheck performs a health check on the metrics collector
func (m *InMemoryMetricsCollector) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_ = len(m.counters)
	_ = len(m.gauges)
	_ = len(m.histograms)

	return nil
}

// ExportPrometheus exports metrics in Prometheus text format
func (m *InMemoryMetricsCollector) ExportPrometheus() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var output strings.Builder

	for _, name := range sortedKeys(m.counters) {
		output.WriteString(fmt.Sprintf("# TYPE %s counter\n", name))
		for _, labels := range sortedKeys(m.counters[name]) {
			output.WriteString(fmt.Sprintf("%s{%s} %d\n", name, labels, m.counters[name][labels]))
		}
	}

	for _, name := range sortedKeys(m.gauges) {
		output.WriteString(fmt.Sprintf("# TYPE %s gauge\n", name))
		for _, labels := range sortedKeys(m.gauges[name]) {
			output.WriteString(fmt.Sprintf("%s{%s} %f\n", name, labels, m.gauges[name][labels]))
		}
	}

	for _, name := range sortedKeys(m.histograms) {
		values := m.histograms[name]
		if len(values) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		output.WriteString(fmt.Sprintf("# TYPE %s histogram\n", name))
		output.WriteString(fmt.Sprintf("%s_sum %f\n", name, sum))
		output.WriteString(fmt.Sprintf("%s_count %d\n", name, len(values)))
	}

	return output.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
