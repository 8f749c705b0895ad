package mitigate

import "context"

// MetricsCollector interface for observability
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
	HealthCheck() error
	ExportPrometheus() string
}

// NotificationSender interface for extensible notification channels
type NotificationSender interface {
	Send(ctx context.Context, payload *NotificationPayload) error
	Name() string
}

// DatasetSource interface for pluggable dataset producers. The engine
// itself performs no I/O; sources feed the CLI and tooling with records
// already labeled by the upstream classifier.
type DatasetSource interface {
	Load(ctx context.Context) ([]Record, error)
}
