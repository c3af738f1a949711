package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the dashboard screens, exports and JSON API onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/", h.handleDashboard)
	r.Get("/dados-brutos", h.handleRaw)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/dados-brutos/export.csv", h.handleExportCSV)
		gr.Get("/dados-brutos/export.xlsx", h.handleExportXLSX)
	})
	r.Route("/api", func(api chi.Router) {
		api.Get("/dashboard", h.handleDashboardAPI)
		api.Get("/raw", h.handleRawAPI)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
