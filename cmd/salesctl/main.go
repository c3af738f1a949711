// Command salesctl queries the sales endpoint from the terminal: it prints the
// dashboard metrics for a region and year, and writes filtered exports to disk.
//
//	salesctl summary --regiao Sul --ano 2021
//	salesctl export --format xlsx --out vendas.xlsx --produto "Iphone 6" --colunas Produto,Preço
//
// SOURCE_URL, SOURCE_TIMEOUT, REDIS_ADDR and CACHE_TTL are read the same way
// the server reads them, including an optional .env file.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	sourceURL string
	timeout   time.Duration
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "salesctl",
		Short: "Sales dashboard from the command line",
		Long: `salesctl loads sales records from the products endpoint and prints
dashboard metrics or exports the filtered table as CSV or XLSX.`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.sourceURL, "source", "", "Products endpoint URL (defaults to SOURCE_URL)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "Endpoint request timeout (defaults to SOURCE_TIMEOUT)")

	rootCmd.AddCommand(
		buildSummaryCmd(opts),
		buildExportCmd(opts),
	)
	return rootCmd
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("salesctl: "+format, args...)
}
