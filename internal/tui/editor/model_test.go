package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/internal/analyzer/service"
	"github.com/msto63/recordpad/internal/history/store"
)

func newTestModel(t *testing.T, cfg Config, content string) Model {
	t.Helper()
	svc, err := service.New(service.DefaultConfig(), store.NewMemoryStore(), mdwlog.Discard())
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}
	m, err := New(cfg, svc)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	m.editor.SetValue(content)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// run delivers msg and feeds the resulting command's message back
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, cmd := update(t, m, msg)
	if cmd == nil {
		t.Fatalf("expected a command for %T", msg)
	}
	m, _ = update(t, m, cmd())
	return m
}

func TestNew_MissingFile(t *testing.T) {
	svc, err := service.New(service.DefaultConfig(), nil, mdwlog.Discard())
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "new.rec")

	m, err := New(cfg, svc)
	if err != nil {
		t.Fatalf("expected empty buffer for missing file, got %v", err)
	}
	if m.Value() != "" || m.Dirty() {
		t.Errorf("expected clean empty buffer, got %q dirty=%v", m.Value(), m.Dirty())
	}
}

func TestNew_LoadsFile(t *testing.T) {
	svc, _ := service.New(service.DefaultConfig(), nil, mdwlog.Discard())
	path := filepath.Join(t.TempDir(), "point.rec")
	if err := os.WriteFile(path, []byte("type P = record a: real end;"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Path = path

	m, err := New(cfg, svc)
	if err != nil {
		t.Fatal(err)
	}
	if m.Value() != "type P = record a: real end;" {
		t.Errorf("unexpected buffer %q", m.Value())
	}
}

func TestAnalyzeKey(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		key         tea.KeyMsg
		wantSuccess bool
		wantCode    string
	}{
		{"f5 valid", "type P = record a: real end;", tea.KeyMsg{Type: tea.KeyF5}, true, "0"},
		{"ctrl+r invalid", "type P = record end;", tea.KeyMsg{Type: tea.KeyCtrlR}, false, "parse.no_fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, DefaultConfig(), tt.content)
			m = run(t, m, tt.key)

			if m.analysis == nil {
				t.Fatal("expected analysis")
			}
			if m.analysis.Report.Success() != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", m.analysis.Report.Success(), tt.wantSuccess)
			}
			if got := m.rows()[0].Code; got != tt.wantCode {
				t.Errorf("first row code = %s, want %s", got, tt.wantCode)
			}
			if m.status != m.analysis.Document.Summary {
				t.Errorf("status = %q, want summary", m.status)
			}
		})
	}
}

func TestTyping_SchedulesLiveCheck(t *testing.T) {
	m := newTestModel(t, DefaultConfig(), "")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if m.Value() != "t" {
		t.Errorf("expected buffer 't', got %q", m.Value())
	}
	if !m.Dirty() || m.revision != 1 {
		t.Errorf("expected dirty buffer at revision 1, got dirty=%v revision=%d", m.Dirty(), m.revision)
	}
	if cmd == nil {
		t.Error("expected debounce command")
	}

	// An outdated debounce does nothing
	_, cmd = update(t, m, debounceMsg{revision: 0})
	if cmd != nil {
		if _, ok := cmd().(analysisMsg); ok {
			t.Error("outdated debounce started an analysis")
		}
	}

	m = run(t, m, debounceMsg{revision: 1})
	if m.analysis == nil || m.analysis.Report.Success() {
		t.Error("expected failed live analysis for 't'")
	}
}

func TestStaleAnalysisDropped(t *testing.T) {
	m := newTestModel(t, DefaultConfig(), "type P = record a: real end;")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyF5})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m, _ = update(t, m, cmd())

	if m.analysis != nil {
		t.Error("expected result for an outdated buffer to be dropped")
	}
}

func TestTabInsertsSpaces(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TabWidth = 2
	m := newTestModel(t, cfg, "")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Value() != "  " {
		t.Errorf("expected two spaces, got %q", m.Value())
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.rec")
	cfg := DefaultConfig()
	cfg.Path = path
	m := newTestModel(t, cfg, "type P = record a: char end;")
	m.dirty = true

	m = run(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.err != nil {
		t.Fatalf("save failed: %v", m.err)
	}
	if m.Dirty() {
		t.Error("expected clean buffer after save")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "type P = record a: char end;" {
		t.Errorf("unexpected file content %q", data)
	}
}

func TestSave_NoPath(t *testing.T) {
	m := newTestModel(t, DefaultConfig(), "x")

	m = run(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !mdwerror.HasCode(m.err, mdwerror.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", m.err)
	}
}

func TestFormat(t *testing.T) {
	m := newTestModel(t, DefaultConfig(), "TYPE P=RECORD a,b:REAL END;")

	m = run(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	if !strings.Contains(m.Value(), "a, b: real;") {
		t.Errorf("expected canonical layout, got %q", m.Value())
	}
	if !m.Dirty() {
		t.Error("expected dirty buffer after formatting")
	}

	bad := newTestModel(t, DefaultConfig(), "type P")
	bad = run(t, bad, tea.KeyMsg{Type: tea.KeyCtrlF})
	if bad.Value() != "type P" || !strings.HasPrefix(bad.status, "Cannot format") {
		t.Errorf("expected unchanged buffer and error status, got %q / %q", bad.Value(), bad.status)
	}
}

func TestErrorNavigation(t *testing.T) {
	m := newTestModel(t, DefaultConfig(), "type A record\n\n\n")
	m = run(t, m, tea.KeyMsg{Type: tea.KeyF5})
	if m.editor.Line() != 3 {
		t.Fatalf("expected cursor on last line, got %d", m.editor.Line())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != focusResults {
		t.Fatal("expected focus on results")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.focus != focusEditor {
		t.Error("expected focus back on editor")
	}
	if m.editor.Line() != 0 {
		t.Errorf("expected cursor on first line, got %d", m.editor.Line())
	}
}

func TestTokenToggle(t *testing.T) {
	m := newTestModel(t, DefaultConfig(), "type A")
	m = run(t, m, tea.KeyMsg{Type: tea.KeyF5})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if !m.showTokens {
		t.Fatal("expected token view")
	}
	if !strings.Contains(m.results.View(), "type") {
		t.Error("expected token table in results")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t, DefaultConfig(), "type P = record a: real end;")
	m = run(t, m, tea.KeyMsg{Type: tea.KeyF5})

	view := m.View()
	for _, want := range []string{Logo, "[untitled]", "F5"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, DefaultConfig(), "")
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
