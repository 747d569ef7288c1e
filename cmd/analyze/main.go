// Command analyze runs the detection pipeline over a CSV ledger and writes
// the report as JSON. Reads stdin when no input path is given.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vanshika/fraudsight/internal/config"
	"github.com/vanshika/fraudsight/internal/ingest"
	"github.com/vanshika/fraudsight/internal/logging"
	"github.com/vanshika/fraudsight/internal/service"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Path to the transactions CSV (default: stdin)")
		outputPath = flag.String("output", "", "Path for the JSON report (default: stdout)")
		extended   = flag.Bool("extended", false, "Emit the extended investigation payload instead of the strict report")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "analyze")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	input := io.Reader(os.Stdin)
	if *inputPath != "" {
		file, err := os.Open(*inputPath)
		if err != nil {
			logger.Error("failed to open input", "error", err, "path", *inputPath)
			os.Exit(1)
		}
		defer file.Close()
		input = file
	}

	txs, err := ingest.ParseCSV(input)
	if err != nil {
		logger.Error("failed to parse ledger", "error", err)
		os.Exit(1)
	}

	svc := service.NewAnalysisService(logger, cfg.Engine, nil)
	result, err := svc.Analyze(ctx, txs)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	var payload any = result.Report
	if *extended {
		payload = service.BuildExtendedResponse(result)
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		logger.Error("failed to encode report", "error", err)
		os.Exit(1)
	}
	encoded = append(encoded, '\n')

	output := io.Writer(os.Stdout)
	if *outputPath != "" {
		file, err := os.Create(*outputPath)
		if err != nil {
			logger.Error("failed to create output", "error", err, "path", *outputPath)
			os.Exit(1)
		}
		defer file.Close()
		output = file
	}

	if _, err := output.Write(encoded); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}
}
