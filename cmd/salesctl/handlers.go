package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/salesdash/salesdash/internal/app"
	"github.com/salesdash/salesdash/internal/dashboard"
	"github.com/salesdash/salesdash/internal/export"
	"github.com/salesdash/salesdash/internal/filter"
	"github.com/salesdash/salesdash/internal/format"
	"github.com/salesdash/salesdash/internal/platform/cache"
	"github.com/salesdash/salesdash/internal/source"
)

const dateFlagLayout = "2006-01-02"

// newDashboardService wires the endpoint client and fetch cache from config and
// flags. The returned cleanup closes the Redis connection when one was opened.
func newDashboardService(ctx context.Context, global *globalOptions) (*dashboard.Service, func(), error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("salesctl: config: %w", err)
	}
	url := cfg.SourceURL
	if global.sourceURL != "" {
		url = global.sourceURL
	}
	timeout := cfg.SourceTimeout
	if global.timeout > 0 {
		timeout = global.timeout
	}

	cleanup := func() {}
	var client *redis.Client
	if cfg.SharedCache() {
		client, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Warn("redis unavailable, using in-process cache", slog.Any("error", err))
		} else {
			cleanup = func() { _ = client.Close() }
		}
	}

	fetchCache := source.NewCache(client, cfg.CacheTTL).WithLoadTimeout(timeout)
	loader := source.NewService(source.NewClient(url, timeout), fetchCache, nil)
	return dashboard.NewService(loader), cleanup, nil
}

func runSummary(cmd *cobra.Command, global *globalOptions, opts summaryOptions) error {
	if opts.year != 0 && (opts.year < dashboard.FirstYear || opts.year > dashboard.LastYear) {
		return usageError("--ano must be between %d and %d", dashboard.FirstYear, dashboard.LastYear)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, cleanup, err := newDashboardService(ctx, global)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.Dashboard(ctx, dashboard.DashboardState{
		Region:      opts.region,
		Year:        opts.year,
		Sellers:     opts.sellers,
		SellerLimit: opts.sellerLimit,
	})
	if err != nil {
		return err
	}

	year := "todos"
	if result.State.Year != 0 {
		year = strconv.Itoa(result.State.Year)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Região:\t%s\n", result.State.Region)
	fmt.Fprintf(tw, "Ano:\t%s\n", year)
	fmt.Fprintf(tw, "Receita:\t%s\n", strings.TrimSpace(format.Money(result.Metrics.Revenue)))
	fmt.Fprintf(tw, "Quantidade de vendas:\t%s\n", strings.TrimSpace(format.Count(result.Metrics.Count)))
	if len(result.TopLocations) > 0 {
		fmt.Fprintln(tw, "\nEstados\tReceita")
		for _, loc := range result.TopLocations {
			fmt.Fprintf(tw, "%s\t%s\n", loc.Location, strings.TrimSpace(format.Money(loc.Revenue)))
		}
	}
	if len(result.TopByRevenue) > 0 {
		fmt.Fprintln(tw, "\nVendedores\tReceita\tVendas")
		for _, seller := range result.TopByRevenue {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", seller.Seller, strings.TrimSpace(format.Money(seller.Revenue)), seller.Count)
		}
	}
	return tw.Flush()
}

func runExport(cmd *cobra.Command, global *globalOptions, opts exportOptions) error {
	kind := strings.ToLower(strings.TrimSpace(opts.format))
	if !export.Valid(kind) {
		return usageError("unsupported format %q", opts.format)
	}
	state, err := rawStateFromFlags(cmd, opts)
	if err != nil {
		return err
	}
	out := opts.out
	if out == "" {
		out = export.Filename(opts.name, kind)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, cleanup, err := newDashboardService(ctx, global)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.Raw(ctx, state)
	if err != nil {
		return err
	}
	if result.ColumnError != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "aviso:", result.ColumnError)
	}

	var payload []byte
	switch kind {
	case export.FormatXLSX:
		payload, err = export.XLSX(result.Table, opts.sheet)
	default:
		payload, err = export.CSV(result.Table)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return fmt.Errorf("salesctl: write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d linhas, %d colunas\n", out, result.Rows, result.Cols)
	return nil
}

func rawStateFromFlags(cmd *cobra.Command, opts exportOptions) (dashboard.RawState, error) {
	flags := cmd.Flags()
	state := dashboard.RawState{Filename: opts.name}
	if flags.Changed("produto") {
		state.Products = append([]string{}, opts.products...)
	}
	if flags.Changed("colunas") {
		state.Columns = append([]string{}, opts.columns...)
	}
	if flags.Changed("preco-min") || flags.Changed("preco-max") {
		state.Price = &filter.PriceRange{Min: opts.priceMin, Max: opts.priceMax}
	}
	var err error
	if state.Dates.From, err = parseDateFlag("data-inicio", opts.from); err != nil {
		return state, err
	}
	if state.Dates.To, err = parseDateFlag("data-fim", opts.to); err != nil {
		return state, err
	}
	return state, nil
}

func parseDateFlag(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(dateFlagLayout, value)
	if err != nil {
		return time.Time{}, usageError("--%s must use YYYY-MM-DD: %v", name, err)
	}
	return parsed, nil
}
