package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/foundation/recdef"
	"github.com/msto63/recordpad/internal/history/store"
)

const pointSource = "type Point = record x, y: integer; end;"

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc, err := New(DefaultConfig(), st, mdwlog.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return svc, st
}

func TestAnalyze(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	analysis, err := svc.Analyze(ctx, Request{Name: "point.rec", Content: pointSource, Tokens: true})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if analysis.RunID == "" {
		t.Error("expected run ID")
	}
	if !analysis.Report.Success() {
		t.Fatalf("expected success, got %v", analysis.Report.Result.Errors)
	}
	if len(analysis.Document.Types) != 1 || analysis.Document.Fields != 2 {
		t.Errorf("expected 1 type and 2 fields, got %v and %d", analysis.Document.Types, analysis.Document.Fields)
	}
	if len(analysis.Document.Tokens) == 0 {
		t.Error("expected token rows")
	}

	entry, err := st.Get(ctx, analysis.RunID)
	if err != nil {
		t.Fatalf("history entry missing: %v", err)
	}
	if entry.Source != "point.rec" || !entry.Success || entry.Content != pointSource {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.TokenCount != analysis.Report.Tokens.Len() {
		t.Errorf("expected %d tokens, got %d", analysis.Report.Tokens.Len(), entry.TokenCount)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		content   string
		locale    string
		wantCode  string
		wantInMsg string
	}{
		{"no fields", "type A = record end;", "", "parse.no_fields", "at least one field"},
		{"missing equals russian", "type A record", "ru", "parse.expected_equals", "Ожидалось"},
		{"empty", "", "en", "parse.no_definitions", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := svc.Analyze(ctx, Request{Name: tt.name, Content: tt.content, Locale: tt.locale})
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if analysis.Report.Success() {
				t.Fatal("expected failure")
			}
			row := analysis.Document.Rows[0]
			if row.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, row.Code)
			}
			if !strings.Contains(row.Message, tt.wantInMsg) {
				t.Errorf("expected %q in %q", tt.wantInMsg, row.Message)
			}

			entry, err := st.Get(ctx, analysis.RunID)
			if err != nil {
				t.Fatalf("history entry missing: %v", err)
			}
			if entry.FirstError != tt.wantCode {
				t.Errorf("expected first error %s, got %s", tt.wantCode, entry.FirstError)
			}
		})
	}
}

func TestAnalyze_NoHistory(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Analyze(ctx, Request{Content: pointSource, NoHistory: true}); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	entries, _ := st.Query(ctx, store.Filter{})
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %d entries", len(entries))
	}
}

func TestAnalyze_Limits(t *testing.T) {
	svc, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Analyze(ctx, Request{Content: pointSource}); !mdwerror.HasCode(err, mdwerror.CodeTimeout) {
		t.Errorf("expected TIMEOUT for cancelled context, got %v", err)
	}

	big := strings.Repeat("x", MaxSourceBytes+1)
	if _, err := svc.Analyze(context.Background(), Request{Content: big}); !mdwerror.HasCode(err, mdwerror.CodeLimitExceeded) {
		t.Errorf("expected LIMIT_EXCEEDED for oversized source, got %v", err)
	}
}

func TestAnalyze_WithoutStore(t *testing.T) {
	svc, err := New(Config{}, nil, mdwlog.Discard())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.Analyze(ctx, Request{Content: pointSource}); err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	entries, err := svc.History(ctx, store.Filter{})
	if err != nil || entries != nil {
		t.Errorf("expected no history, got %v, %v", entries, err)
	}
	if _, err := svc.HistoryEntry(ctx, "x"); !mdwerror.HasCode(err, mdwerror.CodeServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	stats, err := svc.Stats(ctx)
	if err != nil || stats.Total != 0 {
		t.Errorf("expected empty stats, got %+v, %v", stats, err)
	}
}

func TestAnalyzeFile(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "point.rec")
	if err := os.WriteFile(path, []byte(pointSource), 0o644); err != nil {
		t.Fatal(err)
	}

	analysis, err := svc.AnalyzeFile(context.Background(), path, Request{})
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}
	if analysis.Document.Source != path {
		t.Errorf("expected source %s, got %s", path, analysis.Document.Source)
	}

	_, err = svc.AnalyzeFile(context.Background(), filepath.Join(dir, "missing.rec"), Request{})
	if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestTokens(t *testing.T) {
	svc, _ := newTestService(t)

	rows, err := svc.Tokens("type A", "ru")
	if err != nil {
		t.Fatalf("Tokens failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows including end of input, got %d", len(rows))
	}
	if rows[0].Text != "type" || rows[1].Text != "A" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestFormat(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.Format("TYPE   Point=RECORD x,y:INTEGER end;")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(out, "type Point = record") || !strings.Contains(out, "x, y: integer;") {
		t.Errorf("unexpected canonical text:\n%s", out)
	}

	if _, err := svc.Format("type A = record end;"); !mdwerror.HasCode(err, mdwerror.CodeSyntax) {
		t.Errorf("expected SYNTAX, got %v", err)
	}
}

func TestHistoryAndPrune(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	old := &store.Entry{Source: "old", Timestamp: time.Now().Add(-48 * time.Hour), Success: true}
	if err := st.Record(ctx, old); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Analyze(ctx, Request{Name: "new", Content: pointSource}); err != nil {
		t.Fatal(err)
	}

	entries, err := svc.History(ctx, store.Filter{Limit: 10})
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d, %v", len(entries), err)
	}
	if entries[0].Source != "new" {
		t.Errorf("expected newest first, got %s", entries[0].Source)
	}

	got, err := svc.HistoryEntry(ctx, old.ID)
	if err != nil || got.Source != "old" {
		t.Errorf("HistoryEntry: %+v, %v", got, err)
	}

	deleted, err := svc.Prune(ctx, 24*time.Hour)
	if err != nil || deleted != 1 {
		t.Errorf("expected 1 pruned entry, got %d, %v", deleted, err)
	}
}

func TestTranslatorCache(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Translator("ru")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := svc.Translator("ru")
	if a != b {
		t.Error("expected cached translator")
	}
	if a.GetCurrentLocale() != "ru" {
		t.Errorf("expected ru, got %s", a.GetCurrentLocale())
	}
}

func TestTranslatorCacheBoundedByCatalogues(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 300; i++ {
		locale := fmt.Sprintf("en-US,en;q=0.%d", i%9+1)
		if i%2 == 1 {
			locale = fmt.Sprintf("ru-RU;q=0.%d,x-%d", i%9+1, i)
		}
		if _, err := svc.Analyze(ctx, Request{Name: "a.rec", Content: pointSource, Locale: locale, NoHistory: true}); err != nil {
			t.Fatalf("Analyze(%q) failed: %v", locale, err)
		}
	}

	if got, limit := svc.cachedTranslators(), len(recdef.Locales()); got > limit {
		t.Errorf("expected at most %d cached translators, got %d", limit, got)
	}

	tests := []struct {
		locale string
		want   string
	}{
		{"ru_RU", "ru"},
		{"de-DE,ru;q=0.5", "ru"},
		{"xx", "en"},
		{"", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			tr, err := svc.Translator(tt.locale)
			if err != nil {
				t.Fatal(err)
			}
			if tr.GetCurrentLocale() != tt.want {
				t.Errorf("Translator(%q) locale = %s, want %s", tt.locale, tr.GetCurrentLocale(), tt.want)
			}
		})
	}
}

func TestAnalyzeRecordsMetadata(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     Request
		want    map[string]interface{}
		missing []string
	}{
		{
			name: "http request with error",
			req: Request{
				Name: "bad.rec", Content: "type T = record end;",
				Locale: "ru-RU,ru;q=0.9", RequestID: "req-42", Origin: "http",
			},
			want: map[string]interface{}{
				"origin":           "http",
				"request_id":       "req-42",
				"requested_locale": "ru-RU,ru;q=0.9",
				"first_error_at":   "1:17",
				"max_tokens":       DefaultConfig().MaxTokens,
			},
		},
		{
			name:    "defaults",
			req:     Request{Name: "point.rec", Content: pointSource},
			want:    map[string]interface{}{"origin": "api"},
			missing: []string{"request_id", "requested_locale", "first_error_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := svc.Analyze(ctx, tt.req)
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			entry, err := svc.HistoryEntry(ctx, analysis.RunID)
			if err != nil {
				t.Fatalf("HistoryEntry failed: %v", err)
			}
			for k, v := range tt.want {
				if entry.Metadata[k] != v {
					t.Errorf("Metadata[%s] = %v, want %v", k, entry.Metadata[k], v)
				}
			}
			for _, k := range tt.missing {
				if _, ok := entry.Metadata[k]; ok {
					t.Errorf("Metadata[%s] should be unset", k)
				}
			}
		})
	}
}

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) Record(context.Context, *store.Entry) error {
	return errors.New("disk full")
}

func TestAnalyzeTimesHistoryRecord(t *testing.T) {
	tests := []struct {
		name    string
		store   store.Store
		want    string
		wantErr bool
	}{
		{"recorded", store.NewMemoryStore(), "[DBG] {analyzer} history.record completed", false},
		{"store fails", failingStore{store.NewMemoryStore()}, "[ERR] {analyzer} history.record failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := mdwlog.NewWithConfig(mdwlog.Config{
				Level:  mdwlog.LevelDebug,
				Format: mdwlog.FormatText,
				Output: &buf,
				Name:   "analyzer",
			})
			svc, err := New(DefaultConfig(), tt.store, logger)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			if _, err := svc.Analyze(context.Background(), Request{Name: "a.rec", Content: pointSource}); err != nil {
				t.Fatalf("a failing history must not fail the analysis: %v", err)
			}
			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("log output missing %q:\n%s", tt.want, out)
			}
			if !strings.Contains(out, "source=a.rec") || !strings.Contains(out, "duration=") {
				t.Errorf("timer entry lacks source or duration:\n%s", out)
			}
			if got := strings.Contains(out, `error="disk full"`); got != tt.wantErr {
				t.Errorf("error logged = %v, want %v", got, tt.wantErr)
			}
		})
	}
}
