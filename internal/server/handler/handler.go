package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	"github.com/msto63/recordpad/foundation/core/i18n"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/foundation/recdef"
	"github.com/msto63/recordpad/internal/analyzer/report"
	"github.com/msto63/recordpad/internal/analyzer/service"
	"github.com/msto63/recordpad/internal/health"
	"github.com/msto63/recordpad/internal/history/store"
)

// maxBodyBytes leaves room for the JSON envelope around a source text
const maxBodyBytes = service.MaxSourceBytes + 64<<10

// RequestIDHeader carries the correlation ID of a request
const RequestIDHeader = "X-Request-ID"

// AnalyzeRequest represents an analysis request
type AnalyzeRequest struct {
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
	Locale string `json:"locale,omitempty"`
	Tokens bool   `json:"tokens,omitempty"`
}

// TokensResponse represents a token table
type TokensResponse struct {
	Locale string            `json:"locale"`
	Count  int               `json:"count"`
	Tokens []report.TokenRow `json:"tokens"`
}

// FormatResponse represents a canonical rendering of a source
type FormatResponse struct {
	Formatted string `json:"formatted"`
}

// HistoryResponse represents a page of recorded analyses
type HistoryResponse struct {
	Entries []*store.Entry `json:"entries"`
	Total   int            `json:"total"`
}

// PruneResponse reports removed history entries
type PruneResponse struct {
	Deleted int64 `json:"deleted"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Handler handles HTTP requests for the analysis API
type Handler struct {
	service   *service.Service
	health    *health.Registry
	logger    *mdwlog.Logger
	startTime time.Time
	version   string
}

// NewHandler creates a new API handler
func NewHandler(version string, svc *service.Service, registry *health.Registry, logger *mdwlog.Logger) *Handler {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	return &Handler{
		service:   svc,
		health:    registry,
		logger:    logger.WithField("component", "handler"),
		startTime: time.Now(),
		version:   version,
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language, "+RequestIDHeader)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	path = strings.Trim(path, "/")

	switch {
	case path == "":
		h.handleRoot(w, r)
	case path == "health":
		h.handleHealth(w, r)
	case path == "analyze":
		h.handleAnalyze(w, r)
	case path == "tokens":
		h.handleTokens(w, r)
	case path == "format":
		h.handleFormat(w, r)
	case path == "history":
		h.handleHistory(w, r)
	case path == "history/stats":
		h.handleHistoryStats(w, r)
	case strings.HasPrefix(path, "history/"):
		h.handleHistoryEntry(w, r, strings.TrimPrefix(path, "history/"))
	default:
		h.writeError(w, http.StatusNotFound, "not_found", "Endpoint not found", r.URL.Path)
	}
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "recordpad API",
		"version": h.version,
		"endpoints": []string{
			"GET    /health",
			"POST   /api/v1/analyze",
			"GET    /api/v1/analyze/ws",
			"POST   /api/v1/tokens",
			"POST   /api/v1/format",
			"GET    /api/v1/history",
			"DELETE /api/v1/history?older_than={duration}",
			"GET    /api/v1/history/stats",
			"GET    /api/v1/history/{id}",
		},
	}
	h.writeJSON(w, http.StatusOK, info)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	if h.health == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{
			"status":  string(health.StatusHealthy),
			"version": h.version,
			"uptime":  time.Since(h.startTime).Round(time.Second).String(),
		})
		return
	}

	rep := h.health.Check(r.Context())
	status := http.StatusOK
	if !rep.Healthy() {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, rep)
}

// handleAnalyze checks a source text. A source with syntax errors is a
// successful request; the errors are part of the response document.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req AnalyzeRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.writeErr(w, err)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), service.Request{
		Name:      req.Name,
		Content:   req.Source,
		Locale:    requestLocale(r, req.Locale),
		Tokens:    req.Tokens,
		RequestID: requestID(r),
		Origin:    "http",
	})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis.Document)
}

func (h *Handler) handleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req AnalyzeRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.writeErr(w, err)
		return
	}

	locale := requestLocale(r, req.Locale)
	rows, err := h.service.Tokens(req.Source, locale)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	tr, err := h.service.Translator(locale)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, TokensResponse{
		Locale: tr.GetCurrentLocale(),
		Count:  len(rows),
		Tokens: rows,
	})
}

func (h *Handler) handleFormat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", "")
		return
	}

	var req AnalyzeRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.writeErr(w, err)
		return
	}

	formatted, err := h.service.Format(req.Source)
	if err != nil {
		tr, _ := h.service.Translator(requestLocale(r, req.Locale))
		h.writeLocalizedErr(w, err, tr)
		return
	}
	h.writeJSON(w, http.StatusOK, FormatResponse{Formatted: formatted})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter, err := parseFilter(r)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		entries, err := h.service.History(r.Context(), filter)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		if entries == nil {
			entries = []*store.Entry{}
		}
		h.writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Total: len(entries)})

	case http.MethodDelete:
		raw := r.URL.Query().Get("older_than")
		age, err := time.ParseDuration(raw)
		if err != nil || age <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "older_than must be a positive duration", raw)
			return
		}
		deleted, err := h.service.Prune(r.Context(), age)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, PruneResponse{Deleted: deleted})

	default:
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET or DELETE", "")
	}
}

func (h *Handler) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleHistoryEntry(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET", "")
		return
	}
	entry, err := h.service.HistoryEntry(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

// parseFilter reads source, success, since, limit and offset query parameters
func parseFilter(r *http.Request) (store.Filter, error) {
	q := r.URL.Query()
	filter := store.Filter{Source: q.Get("source"), Limit: 50}

	invalid := func(param, value string) error {
		return mdwerror.New("invalid query parameter " + param).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("handler.parseFilter").
			WithDetail(param, value)
	}

	if v := q.Get("success"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, invalid("success", v)
		}
		filter.Success = &b
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, invalid("since", v)
		}
		filter.Since = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return filter, invalid("limit", v)
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, invalid("offset", v)
		}
		filter.Offset = n
	}
	return filter, nil
}

// requestLocale prefers an explicit locale over the Accept-Language header
func requestLocale(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if q := r.URL.Query().Get("locale"); q != "" {
		return q
	}
	return r.Header.Get("Accept-Language")
}

func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

// Helper methods

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return mdwerror.New("request body too large").
				WithCode(mdwerror.CodeLimitExceeded).
				WithOperation("handler.readJSON").
				WithDetail("limit", tooLarge.Limit)
		}
		return mdwerror.Wrap(err, "failed to read request body").
			WithCode(mdwerror.CodeIOError).
			WithOperation("handler.readJSON")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return mdwerror.Wrap(err, "invalid JSON").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("handler.readJSON")
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WarnWithErr("Failed to write response", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	h.writeJSON(w, status, resp)
}

// writeErr maps a coded error to its HTTP status
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	h.writeLocalizedErr(w, err, nil)
}

// writeLocalizedErr renders catalogue-backed errors in the translator's
// locale; a nil translator keeps the error's own message
func (h *Handler) writeLocalizedErr(w http.ResponseWriter, err error, tr *i18n.Manager) {
	code := mdwerror.GetCode(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.logger.ErrorWithErr("Request failed", err)
	}
	h.writeError(w, status, strings.ToLower(string(code)), recdef.ErrorMessage(err, tr), "")
}
