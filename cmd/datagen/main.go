// Command datagen writes a synthetic transaction ledger as CSV, with
// fraud patterns injected so the analysis output is non-trivial.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vanshika/fraudsight/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		accounts     = flag.Int("accounts", cfg.NumAccounts, "number of background accounts to generate")
		transactions = flag.Int("transactions", cfg.NumTransactions, "minimum number of transactions to generate")
		cycles       = flag.Int("cycles", cfg.CycleRings, "number of circular-routing rings to inject")
		fanIn        = flag.Int("fan-in", cfg.FanInBursts, "number of fan-in structuring bursts to inject")
		fanOut       = flag.Int("fan-out", cfg.FanOutBursts, "number of fan-out structuring bursts to inject")
		shells       = flag.Int("shell-chains", cfg.ShellChains, "number of layered shell chains to inject")
		merchants    = flag.Int("merchants", cfg.MerchantDecoys, "number of legitimate merchant decoys to inject")
		payrolls     = flag.Int("payrolls", cfg.PayrollDecoys, "number of legitimate payroll decoys to inject")
		seed         = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputPath   = flag.String("output", "", "path for the generated CSV (default: stdout)")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumAccounts:     *accounts,
		NumTransactions: *transactions,
		CycleRings:      *cycles,
		FanInBursts:     *fanIn,
		FanOutBursts:    *fanOut,
		ShellChains:     *shells,
		MerchantDecoys:  *merchants,
		PayrollDecoys:   *payrolls,
		Seed:            *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	output := io.Writer(os.Stdout)
	if *outputPath != "" {
		file, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		output = file
	}

	if err := generator.WriteCSV(dataset, output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write ledger: %v\n", err)
		os.Exit(1)
	}

	if *outputPath != "" {
		fmt.Fprintf(os.Stdout, "Generated %d transactions (%+v) into %s\n",
			len(dataset.Transactions), dataset.Injected, *outputPath)
	}
}
