package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oarkflow/ip"

	"github.com/oarkflow/mitigate"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML service config")
		serve      = flag.Bool("serve", false, "run the HTTP service")
		input      = flag.String("input", "", "dataset to analyze (one-shot mode)")
		format     = flag.String("format", "json", "dataset format: json, csv or sqlite")
		table      = flag.String("table", "traffic_records", "table name for sqlite datasets")
		output     = flag.String("output", "", "report output path (defaults into the output dir)")
	)
	flag.Parse()

	cfg := mitigate.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := mitigate.LoadServiceConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := mitigate.NewLogger(cfg.LogLevel, cfg.LogDir)

	catalog, err := resolveCatalog(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load catalog")
		os.Exit(1)
	}

	if *serve {
		ip.Init()
		server := mitigate.NewServer(cfg, catalog, logger)

		if cfg.CatalogPath != "" {
			watcher, err := mitigate.NewCatalogWatcher(cfg.CatalogPath, logger, server.SwapCatalog)
			if err != nil {
				logger.Error().Err(err).Msg("failed to watch catalog")
				os.Exit(1)
			}
			defer watcher.Close()
			watcher.Start(context.Background())
		}

		if err := server.Listen(); err != nil {
			logger.Error().Err(err).Msg("server stopped")
			os.Exit(1)
		}
		return
	}

	if *input == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -serve or -input (see -help)")
		os.Exit(2)
	}

	source, err := datasetSource(*input, *format, *table)
	if err != nil {
		logger.Error().Err(err).Msg("invalid dataset source")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	records, err := source.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load dataset")
		os.Exit(1)
	}

	engine := mitigate.NewEngine(catalog, nil, logger, mitigate.Options{SortBeforeDiff: cfg.SortBeforeDiff})
	report, err := engine.AnalyzeReport(records)
	if err != nil {
		logger.Error().Err(err).Msg("analysis failed")
		os.Exit(1)
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode report")
		os.Exit(1)
	}

	dest := *output
	if dest == "" && cfg.OutputDir != "" {
		dest = filepath.Join(cfg.OutputDir, fmt.Sprintf("report_%s.json", report.ID))
	}
	if dest != "" {
		if err := os.WriteFile(dest, body, 0o644); err != nil {
			logger.Error().Err(err).Str("path", dest).Msg("failed to write report")
			os.Exit(1)
		}
		logger.Info().Str("path", dest).Int("recommendations", len(report.Recommendations)).Msg("report written")
	}
	fmt.Println(string(body))
}

func resolveCatalog(cfg *mitigate.ServiceConfig) (*mitigate.Catalog, error) {
	if cfg.CatalogPath == "" {
		return mitigate.DefaultCatalog(), nil
	}
	return mitigate.LoadCatalogFile(cfg.CatalogPath)
}

func datasetSource(input, format, table string) (mitigate.DatasetSource, error) {
	switch format {
	case "json":
		return &mitigate.JSONFileSource{Path: input}, nil
	case "csv":
		return &mitigate.CSVFileSource{Path: input}, nil
	case "sqlite":
		return &mitigate.SQLSource{DSN: input, Table: table}, nil
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}
}
