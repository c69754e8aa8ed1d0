// ============================================================================
// recordpad - Record Definition Workbench
// ============================================================================
//
// Package:     service
// Description: Analysis service shared by the CLI, the HTTP server and the
//              editor: checks sources, localizes results, keeps history
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	"github.com/msto63/recordpad/foundation/core/i18n"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/foundation/recdef"
	"github.com/msto63/recordpad/foundation/recdef/ast"
	"github.com/msto63/recordpad/foundation/recdef/parser"
	"github.com/msto63/recordpad/foundation/utils/stringx"
	"github.com/msto63/recordpad/internal/analyzer/report"
	"github.com/msto63/recordpad/internal/history/store"
)

// MaxSourceBytes bounds the size of a single source text
const MaxSourceBytes = 1 << 20

// maxLocaleLen bounds the requested locale kept in history metadata
const maxLocaleLen = 64

// Config holds configuration for the analysis service
type Config struct {
	Locale    string // Default locale for messages
	MaxTokens int    // Parser advance limit
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Locale:    recdef.DefaultLocale,
		MaxTokens: parser.DefaultMaxTokens,
	}
}

// Request describes one analysis
type Request struct {
	Name      string // Source name shown in reports and history
	Content   string // Source text
	Locale    string // Overrides the default locale when set
	Tokens    bool   // Include the token table
	RequestID string // Correlation ID for logs
	NoHistory bool   // Skip recording this analysis
	Origin    string // Front end that issued the request: cli, http, websocket, editor
}

// Analysis is the outcome of a request
type Analysis struct {
	RunID      string
	Report     *recdef.Report
	Document   *report.Document
	Translator *i18n.Manager
}

// Service runs analyses
type Service struct {
	config Config
	logger *mdwlog.Logger
	store  store.Store

	mu          sync.Mutex
	translators map[string]*i18n.Manager
}

// New creates a new analysis service. A nil store disables history.
func New(cfg Config, st store.Store, logger *mdwlog.Logger) (*Service, error) {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = parser.DefaultMaxTokens
	}
	if cfg.Locale == "" {
		cfg.Locale = recdef.DefaultLocale
	}

	s := &Service{
		config:      cfg,
		logger:      logger.WithField("component", "analyzer"),
		store:       st,
		translators: make(map[string]*i18n.Manager),
	}

	// Fail early if the embedded catalogues are broken
	if _, err := s.Translator(cfg.Locale); err != nil {
		return nil, err
	}
	return s, nil
}

// Translator returns the cached translator for locale. Locale may be a
// locale code or an Accept-Language value; the cache is keyed by the
// catalogue locale it resolves to, so it holds at most one entry per
// embedded catalogue.
func (s *Service) Translator(locale string) (*i18n.Manager, error) {
	if locale == "" {
		locale = s.config.Locale
	}
	resolved := recdef.ResolveLocale(locale)

	s.mu.Lock()
	defer s.mu.Unlock()

	if tr, ok := s.translators[resolved]; ok {
		return tr, nil
	}
	tr, err := recdef.NewTranslator(resolved)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to load message catalogue").
			WithCode(mdwerror.CodeInternal).
			WithOperation("service.Translator").
			WithDetail("locale", locale)
	}
	s.translators[resolved] = tr
	return tr, nil
}

// metadata describes how an analysis was requested
func (s *Service) metadata(req Request, rep *recdef.Report) map[string]interface{} {
	meta := map[string]interface{}{
		"origin":     stringx.FirstNonBlank(req.Origin, "api"),
		"max_tokens": s.config.MaxTokens,
	}
	if req.RequestID != "" {
		meta["request_id"] = req.RequestID
	}
	if req.Locale != "" {
		meta["requested_locale"] = stringx.Truncate(req.Locale, maxLocaleLen, "")
	}
	if rep.ErrorCount() > 0 {
		meta["first_error_at"] = rep.Result.Errors[0].Position()
	}
	return meta
}

// cachedTranslators reports the number of cached translators
func (s *Service) cachedTranslators() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.translators)
}

// Analyze checks a source text and records it in the history
func (s *Service) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, mdwerror.Wrap(err, "analysis cancelled").
			WithCode(mdwerror.CodeTimeout).
			WithOperation("service.Analyze")
	}
	if len(req.Content) > MaxSourceBytes {
		return nil, mdwerror.New(fmt.Sprintf("source exceeds %d bytes", MaxSourceBytes)).
			WithCode(mdwerror.CodeLimitExceeded).
			WithOperation("service.Analyze").
			WithDetail("size", len(req.Content))
	}

	tr, err := s.Translator(req.Locale)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.WithField("run_id", runID)
	if req.RequestID != "" {
		logger = logger.WithRequestID(req.RequestID)
	}

	rep := recdef.Check(req.Content,
		recdef.WithLogger(logger),
		recdef.WithMaxTokens(s.config.MaxTokens),
	)

	doc := report.Build(rep, report.Options{
		Name:       req.Name,
		RunID:      runID,
		Translator: tr,
		Tokens:     req.Tokens,
	})

	fields := mdwlog.Fields{
		"source":   req.Name,
		"tokens":   rep.Tokens.Len(),
		"errors":   rep.ErrorCount(),
		"duration": rep.Elapsed.String(),
	}
	if rep.Success() {
		logger.Info("Analysis completed", fields)
	} else {
		fields["code"] = rep.Result.Errors[0].Code
		logger.Info("Analysis found errors", fields)
	}

	if s.store != nil && !req.NoHistory {
		s.record(ctx, logger, runID, req, rep, tr)
	}

	return &Analysis{
		RunID:      runID,
		Report:     rep,
		Document:   doc,
		Translator: tr,
	}, nil
}

// AnalyzeFile reads path and analyzes its content
func (s *Service) AnalyzeFile(ctx context.Context, path string, req Request) (*Analysis, error) {
	content, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	req.Content = content
	if req.Name == "" {
		req.Name = path
	}
	return s.Analyze(ctx, req)
}

// ReadSource reads a source file
func ReadSource(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", mdwerror.New(fmt.Sprintf("file not found: %s", path)).
				WithCode(mdwerror.CodeNotFound).
				WithOperation("service.ReadSource").
				WithDetail("path", path)
		}
		return "", mdwerror.Wrap(err, "failed to stat file").
			WithCode(mdwerror.CodeIOError).
			WithOperation("service.ReadSource").
			WithDetail("path", path)
	}
	if info.Size() > MaxSourceBytes {
		return "", mdwerror.New(fmt.Sprintf("file exceeds %d bytes", MaxSourceBytes)).
			WithCode(mdwerror.CodeLimitExceeded).
			WithOperation("service.ReadSource").
			WithDetail("path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", mdwerror.Wrap(err, "failed to read file").
			WithCode(mdwerror.CodeIOError).
			WithOperation("service.ReadSource").
			WithDetail("path", path)
	}
	return string(data), nil
}

// Tokens returns the token table for content
func (s *Service) Tokens(content, locale string) ([]report.TokenRow, error) {
	tr, err := s.Translator(locale)
	if err != nil {
		return nil, err
	}
	return report.TokenRows(parser.Tokenize(content), tr), nil
}

// Format returns the canonical layout of a valid program. Invalid
// sources yield the first syntax error.
func (s *Service) Format(content string) (string, error) {
	rep := recdef.Check(content,
		recdef.WithLogger(s.logger),
		recdef.WithMaxTokens(s.config.MaxTokens),
	)
	if err := rep.Err(); err != nil {
		return "", err
	}
	return ast.Print(rep.Result.Program), nil
}

// History lists recorded analyses
func (s *Service) History(ctx context.Context, filter store.Filter) ([]*store.Entry, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Query(ctx, filter)
}

// HistoryEntry returns one recorded analysis
func (s *Service) HistoryEntry(ctx context.Context, id string) (*store.Entry, error) {
	if s.store == nil {
		return nil, mdwerror.New("history is disabled").
			WithCode(mdwerror.CodeServiceUnavailable).
			WithOperation("service.HistoryEntry")
	}
	return s.store.Get(ctx, id)
}

// Stats returns history statistics
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	if s.store == nil {
		return &store.Stats{ErrorsByKey: map[string]int64{}}, nil
	}
	return s.store.Stats(ctx)
}

// Prune removes history entries older than age
func (s *Service) Prune(ctx context.Context, age time.Duration) (int64, error) {
	if s.store == nil {
		return 0, nil
	}
	deleted, err := s.store.Prune(ctx, age)
	if err != nil {
		return 0, err
	}
	s.logger.Audit("History pruned", mdwlog.Fields{"deleted": deleted, "older_than": age.String()})
	return deleted, nil
}

// Close releases the history store
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func (s *Service) record(ctx context.Context, logger *mdwlog.Logger, runID string, req Request, rep *recdef.Report, tr *i18n.Manager) {
	entry := &store.Entry{
		ID:         runID,
		Timestamp:  rep.StartedAt,
		Source:     req.Name,
		Locale:     tr.GetCurrentLocale(),
		Success:    rep.Success(),
		ErrorCount: rep.ErrorCount(),
		TokenCount: rep.Tokens.Len(),
		DurationMS: float64(rep.Elapsed.Microseconds()) / 1000,
		Content:    req.Content,
	}
	if rep.ErrorCount() > 0 {
		entry.FirstError = rep.Result.Errors[0].Code
	}
	entry.Metadata = s.metadata(req, rep)

	// History is best effort; a failing store must not fail the analysis
	timer := logger.StartTimer("history.record").WithField("source", req.Name)
	if err := s.store.Record(ctx, entry); err != nil {
		timer.StopWithError(err)
		return
	}
	timer.Stop()
}
