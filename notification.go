package mitigate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oarkflow/log"
)

// NotificationPayload contains the processed notification data for one
// report worth escalating.
type NotificationPayload struct {
	Channel   string    `json:"channel,omitempty"`
	ReportID  string    `json:"reportId"`
	Severity  Severity  `json:"severity"`
	Types     []string  `json:"types"`
	Message   string    `json:"message"`
	ClientIP  string    `json:"clientIP,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationRegistry manages notification senders
type NotificationRegistry struct {
	senders map[string]NotificationSender
	mu      sync.RWMutex
}

// NewNotificationRegistry creates a registry with the built-in senders.
// webhookURL may be empty, in which case only the log sender is active.
func NewNotificationRegistry(logger *log.Logger, webhookURL string) *NotificationRegistry {
	registry := &NotificationRegistry{
		senders: make(map[string]NotificationSender),
	}
	registry.Register(&LogNotificationSender{logger: logger})
	if webhookURL != "" {
		registry.Register(&WebhookNotificationSender{
			client: &http.Client{Timeout: 10 * time.Second},
			url:    webhookURL,
		})
	}
	return registry
}

// Register adds a notification sender
func (nr *NotificationRegistry) Register(sender NotificationSender) {
	nr.mu.Lock()
	defer nr.mu.Unlock()
	nr.senders[sender.Name()] = sender
}

// Get retrieves a notification sender
func (nr *NotificationRegistry) Get(channel string) (NotificationSender, bool) {
	nr.mu.RLock()
	defer nr.mu.RUnlock()
	sender, exists := nr.senders[channel]
	return sender, exists
}

// NotifyReport fans a report out to every registered sender. Send failures
// are collected, not fatal.
func (nr *NotificationRegistry) NotifyReport(ctx context.Context, report *Report, clientIP string) error {
	if report == nil || len(report.Recommendations) == 0 {
		return nil
	}

	severity := SeverityLow
	types := make([]string, 0, len(report.Recommendations))
	for _, rec := range report.Recommendations {
		types = append(types, rec.Type)
		if rec.Severity == SeverityHigh {
			severity = SeverityHigh
		} else if rec.Severity == SeverityMedium && severity != SeverityHigh {
			severity = SeverityMedium
		}
	}

	payload := &NotificationPayload{
		ReportID:  report.ID,
		Severity:  severity,
		Types:     types,
		Message:   fmt.Sprintf("%d mitigation recommendations for %d anomalous records", len(report.Recommendations), report.AnomalyCount),
		ClientIP:  clientIP,
		Timestamp: time.Now().UTC(),
	}

	nr.mu.RLock()
	senders := make([]NotificationSender, 0, len(nr.senders))
	for _, sender := range nr.senders {
		senders = append(senders, sender)
	}
	nr.mu.RUnlock()

	var errs []string
	for _, sender := range senders {
		p := *payload
		p.Channel = sender.Name()
		if err := sender.Send(ctx, &p); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", sender.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notification failures: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LogNotificationSender writes notifications to the structured log.
type LogNotificationSender struct {
	logger *log.Logger
}

func (s *LogNotificationSender) Name() string { return "log" }

func (s *LogNotificationSender) Send(ctx context.Context, payload *NotificationPayload) error {
	if s.logger == nil {
		return nil
	}
	s.logger.Warn().
		Str("report", payload.ReportID).
		Str("severity", string(payload.Severity)).
		Strs("types", payload.Types).
		Msg(payload.Message)
	return nil
}

// WebhookNotificationSender posts the payload as JSON to a configured URL.
type WebhookNotificationSender struct {
	client *http.Client
	url    string
}

func (s *WebhookNotificationSender) Name() string { return "webhook" }

func (s *WebhookNotificationSender) Send(ctx context.Context, payload *NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
