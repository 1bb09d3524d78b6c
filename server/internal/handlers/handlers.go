package handlers

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/zhaobenny/stayboard/internal/aggregator"
	"github.com/zhaobenny/stayboard/internal/model"
	"github.com/zhaobenny/stayboard/internal/parser"
	"github.com/zhaobenny/stayboard/internal/report"
	"github.com/zhaobenny/stayboard/server/internal/chart"
	"github.com/zhaobenny/stayboard/server/internal/database"
	"github.com/zhaobenny/stayboard/server/internal/middleware"
)

const (
	keySummary  = "summary"
	keyFilename = "filename"
	keyStats    = "stats"

	chartWidth  = 860
	chartHeight = 320
)

func init() {
	// Session values are gob encoded by scs
	gob.Register([]model.Summary{})
	gob.Register(parser.Stats{})
}

// Options configures a Handler
type Options struct {
	Parser         parser.Options
	CurrencyUnit   string
	DayUnit        string
	MaxUploadBytes int64
	DB             *database.DB // nil unless sessions are stored in sqlite
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sessionMgr     *scs.SessionManager
	templates      *template.Template
	logger         *slog.Logger
	formatter      report.Formatter
	parserOpts     parser.Options
	maxUploadBytes int64
	db             *database.DB
}

// New creates a new Handler
func New(sessionMgr *scs.SessionManager, templates *template.Template, logger *slog.Logger, opts Options) *Handler {
	return &Handler{
		sessionMgr:     sessionMgr,
		templates:      templates,
		logger:         logger,
		formatter:      report.NewFormatter(opts.CurrencyUnit, opts.DayUnit),
		parserOpts:     opts.Parser,
		maxUploadBytes: opts.MaxUploadBytes,
		db:             opts.DB,
	}
}

// Routes registers every page on a new mux. limit wraps the upload route.
func (h *Handler) Routes(limit func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)
	mux.Handle("POST /upload", limit(http.HandlerFunc(h.Upload)))
	mux.HandleFunc("GET /export", h.Export)
	mux.HandleFunc("POST /reset", h.Reset)
	mux.HandleFunc("GET /healthz", h.Health)
	return mux
}

// PageData is the view model of index.html
type PageData struct {
	Error      string
	HasReport  bool
	Filename   string
	Notice     string
	Rows       []report.Row
	Total      TotalRow
	ExportName string
	Metrics    []MetricOption
	Chart      chart.Chart
}

// TotalRow is the formatted table footer
type TotalRow struct {
	Rows           int
	TotalRevenue   string
	TotalNights    string
	AvgNightlyRate string
}

// MetricOption is one entry of the chart metric selector
type MetricOption struct {
	Key      string
	Label    string
	Selected bool
}

// Index renders the upload prompt, or the report for the session's upload
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	summaries, ok := h.summary(r.Context())
	if !ok {
		h.render(w, r, http.StatusOK, PageData{})
		return
	}

	metric, err := model.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		metric = model.DefaultMetric
	}

	h.render(w, r, http.StatusOK, h.reportData(r.Context(), summaries, metric))
}

// Upload loads a CSV, summarizes it and replaces the session's report
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			logger.Warn("upload rejected", "reason", "too large", "limit_bytes", tooLarge.Limit)
			h.render(w, r, http.StatusRequestEntityTooLarge, PageData{
				Error: fmt.Sprintf("The file is larger than the %d MB upload limit.", h.maxUploadBytes>>20),
			})
		case errors.Is(err, http.ErrMissingFile):
			h.render(w, r, http.StatusBadRequest, PageData{})
		default:
			logger.Warn("upload rejected", "reason", "bad form", "error", err)
			h.render(w, r, http.StatusBadRequest, PageData{Error: "The upload could not be read."})
		}
		return
	}
	defer file.Close()

	if header.Size == 0 {
		h.render(w, r, http.StatusBadRequest, PageData{})
		return
	}

	bookings, stats, err := parser.LoadCSV(file, h.parserOpts)
	if err != nil {
		logger.Warn("upload rejected", "reason", "load failed", "filename", header.Filename, "error", err)
		h.render(w, r, http.StatusUnprocessableEntity, PageData{Error: loadErrorMessage(err)})
		return
	}

	summaries := aggregator.Summarize(bookings)
	if summaries == nil {
		summaries = []model.Summary{}
	}

	if err := h.sessionMgr.RenewToken(r.Context()); err != nil {
		logger.Error("failed to renew session token", "error", err)
		http.Error(w, "An error occurred", http.StatusInternalServerError)
		return
	}
	h.sessionMgr.Put(r.Context(), keySummary, summaries)
	h.sessionMgr.Put(r.Context(), keyFilename, header.Filename)
	h.sessionMgr.Put(r.Context(), keyStats, stats)

	logger.Info("upload summarized",
		"bytes", header.Size,
		"rows", stats.Rows,
		"groups", len(summaries),
		"missing_check_in", stats.MissingCheckIn,
		"missing_booked_on", stats.MissingBookedOn,
		"missing_sale", stats.MissingSale,
		"missing_nights", stats.MissingNights,
		"missing_facility", stats.MissingFacility,
	)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Export downloads the session's report as an unformatted CSV
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	summaries, ok := h.summary(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.DefaultFilename))
	if err := report.WriteCSV(w, summaries); err != nil {
		h.requestLogger(r).Error("failed to write export", "error", err)
	}
}

// Reset drops the session's report
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.sessionMgr.Remove(r.Context(), keySummary)
	h.sessionMgr.Remove(r.Context(), keyFilename)
	h.sessionMgr.Remove(r.Context(), keyStats)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Health handles the health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.db == nil {
		json.NewEncoder(w).Encode(map[string]any{"status": "healthy"})
		return
	}

	n, err := h.db.CountSessions(r.Context())
	if err != nil {
		h.logger.Error("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{"status": "unhealthy", "error": "session store unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "sessions": n})
}

func (h *Handler) summary(ctx context.Context) ([]model.Summary, bool) {
	if !h.sessionMgr.Exists(ctx, keySummary) {
		return nil, false
	}
	summaries, ok := h.sessionMgr.Get(ctx, keySummary).([]model.Summary)
	return summaries, ok
}

func (h *Handler) reportData(ctx context.Context, summaries []model.Summary, metric model.Metric) PageData {
	filename := h.sessionMgr.GetString(ctx, keyFilename)
	stats, _ := h.sessionMgr.Get(ctx, keyStats).(parser.Stats)

	totals := aggregator.CalculateTotal(summaries)
	pivot := aggregator.Pivot(summaries, metric)

	options := make([]MetricOption, 0, len(model.Metrics))
	for _, m := range model.Metrics {
		options = append(options, MetricOption{Key: string(m), Label: m.Label(), Selected: m == metric})
	}

	return PageData{
		HasReport: true,
		Filename:  filename,
		Notice:    loadNotice(filename, stats),
		Rows:      h.formatter.Rows(summaries),
		Total: TotalRow{
			Rows:           totals.Rows,
			TotalRevenue:   h.formatter.Revenue(totals.TotalRevenue),
			TotalNights:    h.formatter.Nights(totals.TotalNights),
			AvgNightlyRate: h.formatter.Rate(totals.AvgNightlyRate),
		},
		ExportName: report.DefaultFilename,
		Metrics:    options,
		Chart: chart.Build(pivot, chartWidth, chartHeight, func(v float64) string {
			return h.formatter.Value(metric, v)
		}),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		h.requestLogger(r).Error("failed to render page", "error", err)
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", middleware.RequestID(r.Context()))
}

func loadErrorMessage(err error) string {
	switch {
	case errors.Is(err, parser.ErrEmptyInput):
		return "The uploaded file contains no data."
	case errors.Is(err, parser.ErrMissingColumn):
		return fmt.Sprintf("The file does not have the expected columns (%s).", err)
	default:
		return "The file could not be read as CSV."
	}
}

// loadNotice describes how many rows were read and which values were missing
func loadNotice(filename string, s parser.Stats) string {
	msg := fmt.Sprintf("Loaded %d rows", s.Rows)
	if filename != "" {
		msg += " from " + filename
	}
	msg += "."
	if s.Clean() {
		return msg
	}

	var parts []string
	add := func(n int, what string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, what))
		}
	}
	add(s.MissingCheckIn, "without a check-in date (left out)")
	add(s.MissingFacility, "without a facility (left out)")
	add(s.MissingBookedOn, "without a booking date (no lead time)")
	add(s.MissingSale, "without a sale amount (not summed)")
	add(s.MissingNights, "without a night count (not summed)")

	return msg + " Rows " + strings.Join(parts, "; ") + "."
}
