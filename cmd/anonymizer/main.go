package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/raaihank/data-anonymizer/internal/config"
	"github.com/raaihank/data-anonymizer/internal/dataset"
	"github.com/raaihank/data-anonymizer/internal/logger"
	"github.com/raaihank/data-anonymizer/internal/pipeline"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to rules configuration file")
		inputPath   = flag.String("input", "", "Path to input CSV file (omit to use the configured SQL source)")
		outputPath  = flag.String("output", "anonymized.csv", "Path to write the anonymized CSV")
		reportPath  = flag.String("report", "", "Path to write the utility report JSON (omit for stdout)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("data-anonymizer %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: true,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting data-anonymizer",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.Int("rules", len(cfg.Rules)),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ds, err := loadDataset(ctx, cfg, *inputPath)
	if err != nil {
		log.Error("Failed to load dataset", zap.Error(err))
		os.Exit(1)
	}

	result, err := pipeline.Run(ctx, ds, cfg, log)
	if err != nil {
		log.Error("Run failed", zap.Error(err))
		os.Exit(1)
	}

	if err := dataset.SaveCSV(result.Anonymized, *outputPath); err != nil {
		log.Error("Failed to write anonymized dataset", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Anonymized dataset written", zap.String("path", *outputPath))

	if err := writeReport(result, *reportPath); err != nil {
		log.Error("Failed to write report", zap.Error(err))
		os.Exit(1)
	}

	// Field errors are reported, not fatal; the run completed.
	for _, fieldErr := range result.FieldErrors {
		log.Warn("Field error", zap.String("column", fieldErr.Column), zap.String("error", fieldErr.Error))
	}
}

func loadDataset(ctx context.Context, cfg *config.Config, inputPath string) (*dataset.Dataset, error) {
	if inputPath != "" {
		return dataset.LoadCSV(inputPath)
	}
	if cfg.Source != nil {
		return dataset.LoadSQL(ctx, *cfg.Source)
	}
	return nil, fmt.Errorf("no input file given and no SQL source configured")
}

// reportPayload is the JSON shape handed to the reporting layer.
type reportPayload struct {
	Utility     interface{}           `json:"utility"`
	Validation  interface{}           `json:"validation"`
	FieldErrors []pipeline.FieldError `json:"field_errors,omitempty"`
	Stats       pipeline.Stats        `json:"stats"`
}

func writeReport(result *pipeline.Result, path string) error {
	payload := reportPayload{
		Utility:     result.Report,
		Validation:  result.Validation,
		FieldErrors: result.FieldErrors,
		Stats:       result.Stats,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, data, 0644)
}
