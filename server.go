package mitigate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/oarkflow/log"
)

// Server exposes the mitigation engine over HTTP. Analysis stays a pure
// function of the posted dataset; the server only adds the ledger, metrics
// and notification plumbing around it.
type Server struct {
	app           *fiber.App
	cfg           *ServiceConfig
	logger        *log.Logger
	metrics       MetricsCollector
	ledger        *ReportLedger
	notifications *NotificationRegistry

	mu     sync.RWMutex
	engine *Engine
}

func NewServer(cfg *ServiceConfig, catalog *Catalog, logger *log.Logger) *Server {
	metrics := NewInMemoryMetricsCollector()
	s := &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       metrics,
		ledger:        NewReportLedger(cfg.ReportTTLDuration()),
		notifications: NewNotificationRegistry(logger, cfg.WebhookURL),
		engine:        NewEngine(catalog, metrics, logger, Options{SortBeforeDiff: cfg.SortBeforeDiff}),
	}
	s.app = fiber.New(fiber.Config{
		AppName: "mitigate",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", s.handleMetrics)

	api := s.app.Group("/api")
	api.Post("/analyze", s.handleAnalyze)
	api.Get("/catalog", s.handleCatalog)
	api.Get("/reports", s.handleReports)
	api.Get("/reports/:id", s.handleReport)
}

// Engine returns the current engine instance.
func (s *Server) Engine() *Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SwapCatalog replaces the engine with a fresh instance built on the new
// catalog. In-flight analyses keep the instance they started with.
func (s *Server) SwapCatalog(catalog *Catalog) {
	engine := NewEngine(catalog, s.metrics, s.logger, Options{SortBeforeDiff: s.cfg.SortBeforeDiff})
	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen starts serving on the configured address.
func (s *Server) Listen() error {
	if s.logger != nil {
		s.logger.Info().Str("addr", s.cfg.Listen).Msg("mitigation service listening")
	}
	return s.app.Listen(s.cfg.Listen)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.metrics.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4")
	return c.SendString(s.metrics.ExportPrometheus())
}

func (s *Server) handleCatalog(c *fiber.Ctx) error {
	catalog := s.Engine().Catalog()
	type catalogEntry struct {
		Type string `json:"type"`
		RuleEntry
	}
	entries := make([]catalogEntry, 0, catalog.Len())
	for _, typeID := range catalog.Types() {
		entry, _ := catalog.Entry(typeID)
		entries = append(entries, catalogEntry{Type: typeID, RuleEntry: entry})
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	records, err := DecodeRecords(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	report, err := s.Engine().AnalyzeReport(records)
	if err != nil {
		var analysisErr *AnalysisError
		if errors.As(err, &analysisErr) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return err
	}

	s.ledger.Record(report)
	clientIP := s.clientIP(c)
	if s.logger != nil {
		s.logger.Info().
			Str("report", report.ID).
			Str("clientIP", clientIP).
			Int("anomalies", report.AnomalyCount).
			Int("recommendations", len(report.Recommendations)).
			Msg("dataset analyzed")
	}

	if report.HasSeverity(SeverityHigh) {
		go func(report *Report, clientIP string) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.notifications.NotifyReport(ctx, report, clientIP); err != nil && s.logger != nil {
				s.logger.Error().Err(err).Str("report", report.ID).Msg("notification failed")
			}
		}(report, clientIP)
	}

	return c.JSON(report)
}

func (s *Server) handleReports(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"summary": s.ledger.Summary(),
		"reports": s.ledger.Snapshot(),
	})
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	report, ok := s.ledger.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "report not found or expired")
	}
	return c.JSON(report)
}

func (s *Server) clientIP(c *fiber.Ctx) string {
	if ip := c.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.Get("X-Forwarded-For"); ip != "" {
		return strings.Split(ip, ",")[0]
	}
	return c.IP()
}
