package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/salesdash/salesdash/internal/aggregate"
	"github.com/salesdash/salesdash/internal/dashboard"
	"github.com/salesdash/salesdash/internal/dashboard/svg"
	"github.com/salesdash/salesdash/internal/dashboard/ui"
	"github.com/salesdash/salesdash/internal/export"
	"github.com/salesdash/salesdash/internal/filter"
	"github.com/salesdash/salesdash/internal/format"
	"github.com/salesdash/salesdash/internal/platform/httpx"
	"github.com/salesdash/salesdash/internal/sales"
	"github.com/salesdash/salesdash/internal/view"
)

const (
	dateParamLayout   = "2006-01-02"
	defaultTableLimit = 1000
	downloadCookie    = "download_token"
)

// DashboardService defines the screen pipelines used by the handler.
type DashboardService interface {
	Dashboard(ctx context.Context, state dashboard.DashboardState) (dashboard.DashboardResult, error)
	Raw(ctx context.Context, state dashboard.RawState) (dashboard.RawResult, error)
}

// Options tune rendering and export.
type Options struct {
	SheetName  string
	TableLimit int
}

// Handler coordinates HTTP requests for the sales dashboard screens.
type Handler struct {
	logger     *slog.Logger
	service    DashboardService
	templates  *view.Engine
	line       ui.LineRenderer
	bar        ui.BarRenderer
	geo        ui.GeoRenderer
	sheet      string
	tableLimit int
	csvPool    sync.Pool
	newToken   func() string
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, line ui.LineRenderer, bar ui.BarRenderer, geo ui.GeoRenderer, opts Options) *Handler {
	if opts.TableLimit <= 0 {
		opts.TableLimit = defaultTableLimit
	}
	h := &Handler{
		logger:     logger,
		service:    service,
		templates:  templates,
		line:       line,
		bar:        bar,
		geo:        geo,
		sheet:      opts.SheetName,
		tableLimit: opts.TableLimit,
		newToken:   uuid.NewString,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithTokenSource overrides download token generation for testing.
func (h *Handler) WithTokenSource(fn func() string) {
	if fn != nil {
		h.newToken = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filters, state, err := parseDashboardFilters(r)
	if err != nil {
		h.handleFilterError(w, r, err)
		return
	}

	result, err := h.service.Dashboard(r.Context(), state)
	if err != nil {
		h.handleServiceError(w, r, "load dashboard", err)
		return
	}

	vm, err := h.buildDashboardViewModel(filters, result)
	if err != nil {
		h.handleServerError(w, r, "render charts", err)
		return
	}
	vm.Query = tabQuery(r)

	viewData := view.TemplateData{
		Title:       "Dashboard",
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.logError("render template", err)
	}
}

func (h *Handler) handleRaw(w http.ResponseWriter, r *http.Request) {
	filters, state, err := parseRawFilters(r)
	if err != nil {
		h.handleFilterError(w, r, err)
		return
	}

	result, err := h.service.Raw(r.Context(), state)
	if err != nil {
		h.handleServiceError(w, r, "load raw data", err)
		return
	}

	vm := ui.RawViewModel{
		Filters:        filters,
		ProductOptions: result.ProductOptions,
		ColumnOptions:  result.ColumnOptions,
		MinDate:        result.MinDate,
		MaxDate:        result.MaxDate,
		PriceFloor:     dashboard.PriceFloor,
		PriceCeiling:   dashboard.PriceCeiling,
		ColumnError:    result.ColumnError,
		Rows:           result.Rows,
		Cols:           result.Cols,
		Table:          ui.NewTableView(result.Table, h.tableLimit),
		ExportFields:   exportFields(r),
	}
	viewData := view.TemplateData{
		Title:       "Dados Brutos",
		CurrentPath: r.URL.Path,
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/raw.html", viewData); err != nil {
		h.logError("render template", err)
	}
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	h.handleExport(w, r, export.FormatCSV)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.handleExport(w, r, export.FormatXLSX)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, kind string) {
	filters, state, err := parseRawFilters(r)
	if err != nil {
		h.handleFilterError(w, r, err)
		return
	}

	result, err := h.service.Raw(r.Context(), state)
	if err != nil {
		h.handleServiceError(w, r, "load raw data", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	switch kind {
	case export.FormatXLSX:
		payload, err := export.XLSX(result.Table, h.sheet)
		if err != nil {
			h.handleServerError(w, r, "write xlsx", err)
			return
		}
		buf.Write(payload)
	default:
		if err := export.WriteCSV(buf, result.Table); err != nil {
			h.handleServerError(w, r, "write csv", err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     downloadCookie,
		Value:    h.downloadToken(r),
		Path:     "/",
		MaxAge:   60,
		SameSite: http.SameSiteLaxMode,
	})
	filename := export.Filename(filters.Filename, kind)
	w.Header().Set("Content-Type", export.ContentType(kind))
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream export", err)
	}
}

// contentDisposition marks the response as a download. Non-ASCII names use the
// RFC 2231 filename* form.
func contentDisposition(filename string) string {
	if value := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); value != "" {
		return value
	}
	return "attachment"
}

func (h *Handler) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	_, state, err := parseDashboardFilters(r)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	result, err := h.service.Dashboard(r.Context(), state)
	if err != nil {
		h.respondServiceProblem(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboardPayload{
		Region:        result.State.Region,
		Year:          result.State.Year,
		Sellers:       result.State.Sellers,
		SellerLimit:   result.State.SellerLimit,
		Metrics:       result.Metrics,
		RevenueLabel:  format.Money(result.Metrics.Revenue),
		CountLabel:    format.Count(result.Metrics.Count),
		ByLocation:    result.ByLocation,
		ByMonth:       result.ByMonth,
		ByCategory:    result.ByCategory,
		BySeller:      result.BySeller,
		TopByRevenue:  result.TopByRevenue,
		TopByCount:    result.TopByCount,
		SellerOptions: result.SellerOptions,
	})
}

func (h *Handler) handleRawAPI(w http.ResponseWriter, r *http.Request) {
	_, state, err := parseRawFilters(r)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	result, err := h.service.Raw(r.Context(), state)
	if err != nil {
		h.respondServiceProblem(w, "load raw data", err)
		return
	}
	records := make([]map[string]any, 0, result.Table.Len())
	for _, record := range result.Table.Records {
		row := make(map[string]any, len(result.Table.Columns))
		for _, column := range result.Table.Columns {
			row[column], _ = record.Value(column)
		}
		records = append(records, row)
	}
	httpx.JSON(w, http.StatusOK, rawPayload{
		Rows:        result.Rows,
		Cols:        result.Cols,
		Columns:     result.Table.Columns,
		ColumnError: result.ColumnError,
		Records:     records,
	})
}

type dashboardPayload struct {
	Region        string                      `json:"regiao"`
	Year          int                         `json:"ano,omitempty"`
	Sellers       []string                    `json:"vendedores,omitempty"`
	SellerLimit   int                         `json:"qtd_vendedores"`
	Metrics       aggregate.Metrics           `json:"metricas"`
	RevenueLabel  string                      `json:"receita_formatada"`
	CountLabel    string                      `json:"quantidade_formatada"`
	ByLocation    []aggregate.LocationRevenue `json:"receita_estados"`
	ByMonth       []aggregate.MonthlyRevenue  `json:"receita_mensal"`
	ByCategory    []aggregate.CategoryRevenue `json:"receita_categorias"`
	BySeller      []aggregate.SellerRevenue   `json:"vendedores_agregado"`
	TopByRevenue  []aggregate.SellerRevenue   `json:"top_vendedores_receita"`
	TopByCount    []aggregate.SellerRevenue   `json:"top_vendedores_quantidade"`
	SellerOptions []string                    `json:"opcoes_vendedores"`
}

type rawPayload struct {
	Rows        int              `json:"linhas"`
	Cols        int              `json:"colunas"`
	Columns     []string         `json:"nomes_colunas"`
	ColumnError string           `json:"erro_colunas,omitempty"`
	Records     []map[string]any `json:"registros"`
}

func (h *Handler) buildDashboardViewModel(filters ui.DashboardFilters, result dashboard.DashboardResult) (ui.DashboardViewModel, error) {
	if h.line == nil || h.bar == nil || h.geo == nil {
		return ui.DashboardViewModel{}, fmt.Errorf("svg renderer missing")
	}
	filters.SellerLimit = result.State.SellerLimit
	filters.Region = result.State.Region
	vm := ui.DashboardViewModel{
		Filters:       filters,
		Tabs:          ui.Tabs,
		Regions:       sales.Regions,
		Years:         yearOptions(),
		SellerOptions: result.SellerOptions,
		SellerLimits:  sellerLimitOptions(),
		Revenue:       ui.MetricCard{Label: "Receita", Value: format.Money(result.Metrics.Revenue)},
		Count:         ui.MetricCard{Label: "Quantidade de Produtos", Value: format.Count(result.Metrics.Count)},
		Table:         ui.NewTableView(result.Table, h.tableLimit),
	}

	var g errgroup.Group

	g.Go(func() error {
		if len(result.ByLocation) == 0 {
			return nil
		}
		points := make([]svg.GeoPoint, 0, len(result.ByLocation))
		for _, row := range result.ByLocation {
			points = append(points, svg.GeoPoint{Label: row.Location, Lat: row.Lat, Lon: row.Lon, Value: row.Revenue})
		}
		out, err := h.geo.GeoScatter(svg.DefaultWidth, 420, points, svg.GeoOpts{
			Title:       "Receita por estado",
			Description: "Receita total por local da compra",
		})
		vm.MapSVG = out
		return err
	})

	g.Go(func() error {
		if len(result.YearSeries) == 0 {
			return nil
		}
		series := make([]svg.Series, 0, len(result.YearSeries))
		for _, year := range result.YearSeries {
			series = append(series, svg.Series{Label: strconv.Itoa(year.Year), Values: year.Values[:]})
		}
		out, err := h.line.Lines(svg.DefaultWidth, svg.DefaultHeight, series, aggregate.MonthNames(), svg.LineOpts{
			Title:       "Receita mensal",
			Description: "Receita por mês, uma linha por ano",
			ShowDots:    true,
		})
		vm.MonthlySVG = out
		return err
	})

	g.Go(func() error {
		if len(result.TopLocations) == 0 {
			return nil
		}
		values := make([]float64, 0, len(result.TopLocations))
		labels := make([]string, 0, len(result.TopLocations))
		for _, row := range result.TopLocations {
			values = append(values, row.Revenue)
			labels = append(labels, row.Location)
		}
		out, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.BarOpts{
			Title:       "Top estados (receita)",
			Description: "Cinco estados com maior receita",
		})
		vm.TopStatesSVG = out
		return err
	})

	g.Go(func() error {
		if len(result.ByCategory) == 0 {
			return nil
		}
		values := make([]float64, 0, len(result.ByCategory))
		labels := make([]string, 0, len(result.ByCategory))
		for _, row := range result.ByCategory {
			values = append(values, row.Revenue)
			labels = append(labels, row.Category)
		}
		out, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.BarOpts{
			Title:       "Receita por categoria",
			Description: "Receita total por categoria de produto",
			Color:       "#16a34a",
		})
		vm.CategorySVG = out
		return err
	})

	g.Go(func() error {
		if len(result.TopByRevenue) == 0 {
			return nil
		}
		values := make([]float64, 0, len(result.TopByRevenue))
		labels := make([]string, 0, len(result.TopByRevenue))
		for _, row := range result.TopByRevenue {
			values = append(values, row.Revenue)
			labels = append(labels, row.Seller)
		}
		out, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.BarOpts{
			Title:      fmt.Sprintf("Top %d vendedores (receita)", result.State.SellerLimit),
			Horizontal: true,
		})
		vm.SellerRevSVG = out
		return err
	})

	g.Go(func() error {
		if len(result.TopByCount) == 0 {
			return nil
		}
		values := make([]float64, 0, len(result.TopByCount))
		labels := make([]string, 0, len(result.TopByCount))
		for _, row := range result.TopByCount {
			values = append(values, float64(row.Count))
			labels = append(labels, row.Seller)
		}
		out, err := h.bar.Bars(svg.DefaultWidth, svg.DefaultHeight, values, labels, svg.BarOpts{
			Title:      fmt.Sprintf("Top %d vendedores (quantidade de vendas)", result.State.SellerLimit),
			Horizontal: true,
			Color:      "#f97316",
		})
		vm.SellerCntSVG = out
		return err
	})

	if err := g.Wait(); err != nil {
		return ui.DashboardViewModel{}, err
	}
	return vm, nil
}

func parseDashboardFilters(r *http.Request) (ui.DashboardFilters, dashboard.DashboardState, error) {
	q := r.URL.Query()
	filters := ui.DashboardFilters{
		Region: strings.TrimSpace(q.Get("regiao")),
		Year:   dashboard.FirstYear,
		Tab:    ui.TabRevenue,
	}
	if filters.Region == "" {
		filters.Region = sales.RegionAll
	}
	if !sales.IsRegion(filters.Region) {
		return ui.DashboardFilters{}, dashboard.DashboardState{}, validationError{field: "regiao"}
	}

	yearStr := strings.TrimSpace(q.Get("ano"))
	filters.AllYears = yearStr == "" || isChecked(q.Get("todo_periodo"))
	if yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < dashboard.FirstYear || year > dashboard.LastYear {
			return ui.DashboardFilters{}, dashboard.DashboardState{}, validationError{field: "ano"}
		}
		filters.Year = year
	}

	filters.Sellers = nonEmpty(q["vendedores"])

	if limitStr := strings.TrimSpace(q.Get("qtd_vendedores")); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return ui.DashboardFilters{}, dashboard.DashboardState{}, validationError{field: "qtd_vendedores"}
		}
		filters.SellerLimit = limit
	}

	if tab := strings.TrimSpace(q.Get("aba")); tab != "" {
		if !knownTab(tab) {
			return ui.DashboardFilters{}, dashboard.DashboardState{}, validationError{field: "aba"}
		}
		filters.Tab = tab
	}

	state := dashboard.DashboardState{
		Region:      filters.Region,
		Sellers:     filters.Sellers,
		SellerLimit: filters.SellerLimit,
	}
	if !filters.AllYears {
		state.Year = filters.Year
	}
	return filters, state.Normalize(), nil
}

func parseRawFilters(r *http.Request) (ui.RawFilters, dashboard.RawState, error) {
	q := r.URL.Query()
	filters := ui.RawFilters{
		PriceMin: dashboard.PriceFloor,
		PriceMax: dashboard.PriceCeiling,
		Filename: strings.TrimSpace(q.Get("nome")),
	}
	if filters.Filename == "" {
		filters.Filename = export.DefaultBase
	}
	var state dashboard.RawState

	if q.Has("colunas_set") || q.Has("colunas") {
		filters.Columns = append([]string{}, nonEmpty(q["colunas"])...)
		state.Columns = filters.Columns
	}
	if q.Has("produtos_set") || q.Has("produtos") {
		filters.Products = nonEmpty(q["produtos"])
		state.Products = filters.Products
	}

	minStr, maxStr := strings.TrimSpace(q.Get("preco_min")), strings.TrimSpace(q.Get("preco_max"))
	if minStr != "" || maxStr != "" {
		if minStr != "" {
			v, err := strconv.ParseFloat(minStr, 64)
			if err != nil {
				return ui.RawFilters{}, dashboard.RawState{}, validationError{field: "preco_min"}
			}
			filters.PriceMin = v
		}
		if maxStr != "" {
			v, err := strconv.ParseFloat(maxStr, 64)
			if err != nil {
				return ui.RawFilters{}, dashboard.RawState{}, validationError{field: "preco_max"}
			}
			filters.PriceMax = v
		}
		state.Price = &filter.PriceRange{Min: filters.PriceMin, Max: filters.PriceMax}
	}

	for _, p := range []struct {
		key  string
		dest *time.Time
	}{{"data_inicio", &filters.From}, {"data_fim", &filters.To}} {
		value := strings.TrimSpace(q.Get(p.key))
		if value == "" {
			continue
		}
		t, err := time.ParseInLocation(dateParamLayout, value, time.UTC)
		if err != nil {
			return ui.RawFilters{}, dashboard.RawState{}, validationError{field: p.key}
		}
		*p.dest = t
	}
	state.Dates = filter.DateRange{From: filters.From, To: filters.To}
	state.Filename = filters.Filename
	return filters, state, nil
}

func (h *Handler) downloadToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		if _, err := uuid.Parse(token); err == nil {
			return token
		}
	}
	return h.newToken()
}

func tabQuery(r *http.Request) template.URL {
	q := r.URL.Query()
	q.Del("aba")
	return template.URL(q.Encode())
}

func exportFields(r *http.Request) []ui.Field {
	q := r.URL.Query()
	keys := make([]string, 0, len(q))
	for key := range q {
		if key == "nome" || key == "token" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]ui.Field, 0, len(keys))
	for _, key := range keys {
		for _, value := range q[key] {
			fields = append(fields, ui.Field{Name: key, Value: value})
		}
	}
	return fields
}

func yearOptions() []int {
	years := make([]int, 0, dashboard.LastYear-dashboard.FirstYear+1)
	for y := dashboard.FirstYear; y <= dashboard.LastYear; y++ {
		years = append(years, y)
	}
	return years
}

func sellerLimitOptions() []int {
	limits := make([]int, 0, dashboard.MaxSellerLimit-dashboard.MinSellerLimit+1)
	for n := dashboard.MinSellerLimit; n <= dashboard.MaxSellerLimit; n++ {
		limits = append(limits, n)
	}
	return limits
}

func knownTab(id string) bool {
	for _, tab := range ui.Tabs {
		if tab.ID == id {
			return true
		}
	}
	return false
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "sim":
		return true
	}
	return false
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (h *Handler) handleFilterError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr validationError
	if errors.As(err, &vErr) || errors.Is(err, filter.ErrInvalid) {
		h.renderError(w, r, http.StatusBadRequest, "Parâmetro inválido: "+err.Error())
		return
	}
	h.handleServerError(w, r, "parse filters", err)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, context string, err error) {
	if errors.Is(err, filter.ErrInvalid) {
		h.handleFilterError(w, r, err)
		return
	}
	h.logError(context, err)
	h.renderError(w, r, http.StatusBadGateway, "Não foi possível carregar os dados de vendas. Tente novamente em instantes.")
}

func (h *Handler) respondServiceProblem(w http.ResponseWriter, context string, err error) {
	if errors.Is(err, filter.ErrInvalid) {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	h.logError(context, err)
	httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrUpstream, err))
}

func (h *Handler) handleServerError(w http.ResponseWriter, r *http.Request, context string, err error) {
	h.logError(context, err)
	h.renderError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if h.templates == nil {
		http.Error(w, message, status)
		return
	}
	err := h.templates.RenderStatus(w, status, "pages/error.html", view.TemplateData{
		Title:       "Erro",
		CurrentPath: r.URL.Path,
		Error:       message,
	})
	if err != nil {
		h.logError("render error page", err)
	}
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s", v.field)
}
