package main

import (
	"github.com/spf13/cobra"

	"github.com/salesdash/salesdash/internal/dashboard"
	"github.com/salesdash/salesdash/internal/export"
)

type summaryOptions struct {
	region      string
	year        int
	sellers     []string
	sellerLimit int
}

// buildSummaryCmd creates the "summary" command.
func buildSummaryCmd(global *globalOptions) *cobra.Command {
	opts := summaryOptions{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print revenue, sales count and top states and sellers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, global, opts)
		},
	}
	cmd.Flags().StringVar(&opts.region, "regiao", "Brasil", "Region: Brasil, Centro-Oeste, Nordeste, Norte, Sudeste or Sul")
	cmd.Flags().IntVar(&opts.year, "ano", 0, "Purchase year 2020-2023; 0 loads the whole period")
	cmd.Flags().StringSliceVar(&opts.sellers, "vendedores", nil, "Restrict metrics to these sellers")
	cmd.Flags().IntVar(&opts.sellerLimit, "qtd-vendedores", dashboard.DefaultSellerLimit, "Number of top sellers to list (2-10)")
	return cmd
}

type exportOptions struct {
	format   string
	out      string
	name     string
	sheet    string
	products []string
	priceMin float64
	priceMax float64
	from     string
	to       string
	columns  []string
}

// buildExportCmd creates the "export" command.
func buildExportCmd(global *globalOptions) *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered raw table to a CSV or XLSX file",
		Long: `Loads every record, applies the raw data filters and writes the result.

Price filtering is only applied when --preco-min or --preco-max is given.
When none of --colunas exists the file keeps every column and a warning is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, global, opts)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", export.FormatCSV, "Output format: csv or xlsx")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (defaults to <nome>.<format>)")
	cmd.Flags().StringVar(&opts.name, "nome", export.DefaultBase, "Base file name when --out is not given")
	cmd.Flags().StringVar(&opts.sheet, "sheet", export.DefaultSheet, "Worksheet name for xlsx output")
	cmd.Flags().StringSliceVar(&opts.products, "produto", nil, "Keep only these products")
	cmd.Flags().Float64Var(&opts.priceMin, "preco-min", dashboard.PriceFloor, "Minimum price")
	cmd.Flags().Float64Var(&opts.priceMax, "preco-max", dashboard.PriceCeiling, "Maximum price")
	cmd.Flags().StringVar(&opts.from, "data-inicio", "", "First purchase date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "data-fim", "", "Last purchase date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&opts.columns, "colunas", nil, "Columns to keep")
	return cmd
}
