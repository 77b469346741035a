package server

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/iwvelando/msme-risk/internal/analytics"
	"github.com/iwvelando/msme-risk/internal/config"
	"github.com/iwvelando/msme-risk/internal/portfolio"
	"github.com/iwvelando/msme-risk/pkg/output"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

//go:embed static/*
var staticFiles embed.FS

// FingerprintHeader carries the fingerprint of the portfolio a response was built from.
const FingerprintHeader = "X-Portfolio-Fingerprint"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type handler struct {
	logger  *zap.Logger
	cache   *portfolio.Cache
	metrics *Metrics
	version string
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewPortfolioCache builds the portfolio cache described by cfg, reporting
// loads and lookups to metrics when it is non-nil.
func NewPortfolioCache(cfg *Config, logger *zap.Logger, metrics *Metrics) *portfolio.Cache {
	opts := []portfolio.CacheOption{
		portfolio.WithLoadFunc(portfolio.LoadWithLimit(cfg.PortfolioSizeBytes())),
	}
	if metrics != nil {
		opts = append(opts, portfolio.WithObserver(metrics))
	}
	return portfolio.NewCache(cfg.Data.Path, config.CachePolicy(cfg.Cache), logger, opts...)
}

// NewHandler constructs the HTTP handler that serves the web UI, the
// dashboard API and the metrics endpoint.
func NewHandler(logger *zap.Logger, cache *portfolio.Cache, metrics *Metrics, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, cache: cache, metrics: metrics, version: trimmedVersion}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{FingerprintHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit.RequestsPerSecond > 0 {
			r.Use(h.rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)))
		}
		r.Get("/version", h.handleVersion)
		r.Get("/options", h.handleOptions)
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/dashboard/export.xlsx", h.handleExportXLSX)
		r.Get("/dashboard/{table}.csv", h.handleTableCSV)
		r.Post("/portfolio/reload", h.handleReload)
	})

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"version": h.version})
}

func (h *handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.portfolio(w, r, "server.handleOptions")
	if !ok {
		return
	}
	render.JSON(w, r, portfolio.OptionsOf(p.Loans))
}

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r, "server.handleDashboard")
	if !ok {
		return
	}
	render.JSON(w, r, d)
}

func (h *handler) handleTableCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTableCSV"
	table := chi.URLParam(r, "table")
	if !knownTable(table) {
		h.respondError(w, r, http.StatusNotFound, fmt.Sprintf("unknown table %q (expected one of %s)", table, strings.Join(output.Tables, ", ")), op)
		return
	}

	d, ok := h.dashboard(w, r, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.TableCSV(&buf, table, d); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err.Error(), op)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", table+".csv", buf.Bytes())
}

func (h *handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportXLSX"
	d, ok := h.dashboard(w, r, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.XLSXFormat(&buf, d); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err.Error(), op)
		return
	}
	writeAttachment(w, xlsxContentType, "msme-risk.xlsx", buf.Bytes())
}

func (h *handler) handleReload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReload"
	p, err := h.cache.Reload(r.Context())
	if err != nil {
		h.respondLoadError(w, r, err, op)
		return
	}

	h.logger.Info("portfolio reloaded on request",
		zap.String("op", op),
		zap.String("fingerprint", p.Fingerprint),
		zap.Int("loans", p.Len()),
	)
	w.Header().Set(FingerprintHeader, p.Fingerprint)
	render.JSON(w, r, p.Metadata())
}

// portfolio fetches the cached portfolio, writing a 503 on failure.
func (h *handler) portfolio(w http.ResponseWriter, r *http.Request, op string) (*portfolio.Portfolio, bool) {
	p, err := h.cache.Get(r.Context())
	if err != nil {
		h.respondLoadError(w, r, err, op)
		return nil, false
	}
	w.Header().Set(FingerprintHeader, p.Fingerprint)
	return p, true
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request, op string) (analytics.Dashboard, bool) {
	p, ok := h.portfolio(w, r, op)
	if !ok {
		return analytics.Dashboard{}, false
	}

	start := time.Now()
	d := analytics.BuildDashboard(p, parseSelection(r.URL.Query()))
	elapsed := time.Since(start)
	h.metrics.observeBuild(elapsed)

	h.logger.Debug("dashboard built",
		zap.String("op", op),
		zap.Int("filteredLoans", d.Filtered.TotalLoans),
		zap.Duration("duration", elapsed),
	)
	return d, true
}

// parseSelection reads the region and sector query parameters.
func parseSelection(q url.Values) portfolio.Selection {
	return portfolio.Selection{
		Regions: parseSet(q, "region"),
		Sectors: parseSet(q, "sector"),
	}
}

// parseSet returns nil when key is absent, so the dimension stays
// unrestricted. A key present only with empty values yields an empty set.
// Each repeated value is one literal member; commas are part of the name.
func parseSet(q url.Values, key string) portfolio.Set {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	set := portfolio.NewSet()
	for _, value := range raw {
		if value = strings.TrimSpace(value); value != "" {
			set[value] = struct{}{}
		}
	}
	return set
}

func knownTable(table string) bool {
	for _, t := range output.Tables {
		if t == table {
			return true
		}
	}
	return false
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *handler) respondLoadError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if eris.Is(err, portfolio.ErrNotFound) {
		h.logger.Warn("portfolio file not found",
			zap.String("op", op),
			zap.String("path", h.cache.Path()),
		)
	}
	h.respondError(w, r, http.StatusServiceUnavailable, err.Error(), op)
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

func (h *handler) rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				h.logger.Warn("rate limit exceeded",
					zap.String("op", "server.rateLimit"),
					zap.String("path", r.URL.Path),
					zap.String("remoteAddr", r.RemoteAddr),
				)
				w.Header().Set("Retry-After", "1")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, errorResponse{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		h.metrics.observeRequest(route, status)

		h.logger.Info("request served",
			zap.String("op", "server.accessLog"),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
