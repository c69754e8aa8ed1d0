package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/internal/analyzer/report"
	"github.com/msto63/recordpad/internal/analyzer/service"
	"github.com/msto63/recordpad/internal/health"
	"github.com/msto63/recordpad/internal/history/store"
	"github.com/msto63/recordpad/internal/server/handler"
)

const pointSource = "type Point = record x, y: integer; end;"

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc, err := service.New(service.DefaultConfig(), st, mdwlog.Discard())
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}
	srv := New(DefaultConfig(), svc, mdwlog.Discard())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func postJSON(t *testing.T, url string, body interface{}, header map[string]string) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts, st := newTestServer(t)

	tests := []struct {
		name        string
		body        handler.AnalyzeRequest
		header      map[string]string
		wantSuccess bool
		wantCode    string
		wantLocale  string
		wantMessage string
	}{
		{
			name:        "valid source",
			body:        handler.AnalyzeRequest{Name: "point.rec", Source: pointSource},
			wantSuccess: true,
			wantCode:    "0",
			wantLocale:  "en",
		},
		{
			name:        "syntax error in english",
			body:        handler.AnalyzeRequest{Source: "type A = record end;"},
			wantCode:    "parse.no_fields",
			wantLocale:  "en",
			wantMessage: "at least one field",
		},
		{
			name:        "locale from header",
			body:        handler.AnalyzeRequest{Source: "type A record"},
			header:      map[string]string{"Accept-Language": "ru-RU,ru;q=0.9,en;q=0.5"},
			wantCode:    "parse.expected_equals",
			wantLocale:  "ru",
			wantMessage: "Ожидалось",
		},
		{
			name:       "explicit locale wins",
			body:       handler.AnalyzeRequest{Source: "type A record", Locale: "en"},
			header:     map[string]string{"Accept-Language": "ru"},
			wantCode:   "parse.expected_equals",
			wantLocale: "en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/v1/analyze", tt.body, tt.header)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			var doc report.Document
			decode(t, resp, &doc)

			if doc.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", doc.Success, tt.wantSuccess)
			}
			if doc.Locale != tt.wantLocale {
				t.Errorf("Locale = %s, want %s", doc.Locale, tt.wantLocale)
			}
			if len(doc.Rows) == 0 || doc.Rows[0].Code != tt.wantCode {
				t.Fatalf("expected first row code %s, got %+v", tt.wantCode, doc.Rows)
			}
			if !strings.Contains(doc.Rows[0].Message, tt.wantMessage) {
				t.Errorf("expected %q in %q", tt.wantMessage, doc.Rows[0].Message)
			}
			if doc.RunID == "" {
				t.Error("expected run ID")
			}
		})
	}

	entries, _ := st.Query(context.Background(), store.Filter{})
	if len(entries) != len(tests) {
		t.Errorf("expected %d history entries, got %d", len(tests), len(entries))
	}
}

func TestAnalyzeEndpoint_BadRequests(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/analyze", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", resp.StatusCode)
	}
	var errResp handler.ErrorResponse
	decode(t, resp, &errResp)
	if errResp.Code != "invalid_input" {
		t.Errorf("expected invalid_input, got %s", errResp.Code)
	}

	get, err := http.Get(ts.URL + "/api/v1/analyze")
	if err != nil {
		t.Fatal(err)
	}
	defer get.Body.Close()
	if get.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", get.StatusCode)
	}

	big := handler.AnalyzeRequest{Source: strings.Repeat("x", service.MaxSourceBytes+1)}
	tooLarge := postJSON(t, ts.URL+"/api/v1/analyze", big, nil)
	if tooLarge.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", tooLarge.StatusCode)
	}
}

func TestTokensEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/tokens", handler.AnalyzeRequest{Source: "type A = record", Locale: "ru"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var tokens handler.TokensResponse
	decode(t, resp, &tokens)
	if tokens.Locale != "ru" {
		t.Errorf("expected ru, got %s", tokens.Locale)
	}
	if tokens.Count != 5 || len(tokens.Tokens) != 5 {
		t.Errorf("expected 5 tokens including end of input, got %d", tokens.Count)
	}
}

func TestFormatEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/format", handler.AnalyzeRequest{Source: "TYPE P=RECORD a:REAL END;"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var formatted handler.FormatResponse
	decode(t, resp, &formatted)
	if !strings.Contains(formatted.Formatted, "a: real;") {
		t.Errorf("unexpected output %q", formatted.Formatted)
	}

	errorTests := []struct {
		name   string
		req    handler.AnalyzeRequest
		header map[string]string
		code   string
		want   string
	}{
		{"english", handler.AnalyzeRequest{Source: "type"}, nil, "syntax", "expected type name"},
		{"russian header", handler.AnalyzeRequest{Source: "type"}, map[string]string{"Accept-Language": "ru-RU,ru;q=0.9"}, "syntax", "Ожидался идентификатор"},
		{"russian argument", handler.AnalyzeRequest{Source: "type T = record a: #; end;", Locale: "ru"}, nil, "lexical", "Недопустимый символ, ожидалось: тип поля"},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			bad := postJSON(t, ts.URL+"/api/v1/format", tt.req, tt.header)
			if bad.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422 for invalid source, got %d", bad.StatusCode)
			}
			var errResp handler.ErrorResponse
			decode(t, bad, &errResp)
			if errResp.Code != tt.code || errResp.Error != tt.want {
				t.Errorf("got %s %q, want %s %q", errResp.Code, errResp.Error, tt.code, tt.want)
			}
		})
	}
}

func TestHistoryEndpoints(t *testing.T) {
	ts, st := newTestServer(t)
	ctx := context.Background()

	old := &store.Entry{Source: "old.rec", Success: false, FirstError: "parse.no_fields", Timestamp: time.Now().Add(-72 * time.Hour)}
	if err := st.Record(ctx, old); err != nil {
		t.Fatal(err)
	}
	postJSON(t, ts.URL+"/api/v1/analyze", handler.AnalyzeRequest{Name: "new.rec", Source: pointSource}, nil)

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/history?success=true")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var history handler.HistoryResponse
		decode(t, resp, &history)
		if history.Total != 1 || history.Entries[0].Source != "new.rec" {
			t.Errorf("unexpected history: %+v", history)
		}
	})

	t.Run("invalid filter", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/history?limit=zero")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("entry", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/history/" + old.ID)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var entry store.Entry
		decode(t, resp, &entry)
		if entry.FirstError != "parse.no_fields" {
			t.Errorf("unexpected entry: %+v", entry)
		}

		missing, err := http.Get(ts.URL + "/api/v1/history/does-not-exist")
		if err != nil {
			t.Fatal(err)
		}
		defer missing.Body.Close()
		if missing.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", missing.StatusCode)
		}
	})

	t.Run("stats", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/history/stats")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var stats store.Stats
		decode(t, resp, &stats)
		if stats.Total != 2 || stats.Failed != 1 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})

	t.Run("prune", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/history?older_than=24h", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var pruned handler.PruneResponse
		decode(t, resp, &pruned)
		if pruned.Deleted != 1 {
			t.Errorf("expected 1 deleted, got %d", pruned.Deleted)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			var rep health.Report
			decode(t, resp, &rep)
			if rep.Status != health.StatusHealthy || len(rep.Checks) != 2 {
				t.Errorf("unexpected report: %+v", rep)
			}
		})
	}
}

func TestUnknownEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/nothing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestWebSocket(t *testing.T) {
	ts, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/analyze/ws"
	header := http.Header{"Accept-Language": []string{"ru"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	send := func(msg map[string]interface{}) map[string]interface{} {
		t.Helper()
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		var resp map[string]interface{}
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read failed: %v", err)
		}
		return resp
	}

	t.Run("ping", func(t *testing.T) {
		resp := send(map[string]interface{}{"type": "ping", "id": "p1"})
		if resp["type"] != "pong" || resp["id"] != "p1" {
			t.Errorf("unexpected response: %v", resp)
		}
	})

	t.Run("analyze", func(t *testing.T) {
		resp := send(map[string]interface{}{
			"type":    "analyze",
			"id":      "a1",
			"payload": map[string]interface{}{"source": "type A = record end;"},
		})
		if resp["type"] != "result" || resp["id"] != "a1" {
			t.Fatalf("unexpected response: %v", resp)
		}
		payload := resp["payload"].(map[string]interface{})
		if payload["success"] != false || payload["locale"] != "ru" {
			t.Errorf("unexpected payload: %v", payload)
		}
	})

	t.Run("tokens", func(t *testing.T) {
		resp := send(map[string]interface{}{
			"type":    "tokens",
			"payload": map[string]interface{}{"source": "type"},
		})
		if resp["type"] != "tokens" {
			t.Fatalf("unexpected response: %v", resp)
		}
		if rows := resp["payload"].([]interface{}); len(rows) != 2 {
			t.Errorf("expected 2 token rows, got %d", len(rows))
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		resp := send(map[string]interface{}{"type": "shout"})
		if resp["type"] != "error" {
			t.Fatalf("unexpected response: %v", resp)
		}
		payload := resp["payload"].(map[string]interface{})
		if payload["code"] != "unknown_type" {
			t.Errorf("unexpected code: %v", payload["code"])
		}
	})
}

func TestRun_Shutdown(t *testing.T) {
	svc, err := service.New(service.DefaultConfig(), nil, mdwlog.Discard())
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Port = 0
	srv := New(cfg, svc, mdwlog.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
