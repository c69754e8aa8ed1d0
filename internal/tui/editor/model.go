// ============================================================================
// recordpad - Record Definition Workbench
// ============================================================================
//
// Package:     editor
// Description: Bubbletea editor with live syntax checking
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

package editor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	"github.com/msto63/recordpad/foundation/core/i18n"
	"github.com/msto63/recordpad/foundation/utils/stringx"
	"github.com/msto63/recordpad/internal/analyzer/report"
	"github.com/msto63/recordpad/internal/analyzer/service"
)

type focus int

const (
	focusEditor focus = iota
	focusResults
)

// Config holds editor configuration
type Config struct {
	Path     string        // File to edit; created on first save
	Locale   string        // Message locale
	TabWidth int           // Spaces inserted for Tab
	Debounce time.Duration // Delay before a live check, 0 disables live checking
	Version  string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		TabWidth: 4,
		Debounce: 400 * time.Millisecond,
		Version:  "dev",
	}
}

// Model is the main Bubbletea model for the editor
type Model struct {
	// State
	width    int
	height   int
	ready    bool
	focus    focus
	dirty    bool
	revision int
	status   string
	err      error

	// Components
	editor  textarea.Model
	results viewport.Model

	// Analysis state
	analysis   *service.Analysis
	selected   int
	showTokens bool

	// Dependencies
	service    *service.Service
	translator *i18n.Manager
	config     Config
}

// New creates an editor for cfg.Path. A missing file starts an empty buffer.
func New(cfg Config, svc *service.Service) (Model, error) {
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = DefaultConfig().TabWidth
	}

	tr, err := svc.Translator(cfg.Locale)
	if err != nil {
		return Model{}, err
	}

	content := ""
	if cfg.Path != "" {
		content, err = service.ReadSource(cfg.Path)
		if err != nil && !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
			return Model{}, err
		}
	}

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Placeholder = "type Point = record x, y: integer; end;"
	ta.SetValue(content)
	ta.Focus()

	return Model{
		editor:     ta,
		results:    viewport.New(0, 0),
		service:    svc,
		translator: tr,
		config:     cfg,
	}, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.analyze(false),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.updateResults()

	case debounceMsg:
		if msg.revision == m.revision {
			return m, m.analyze(false)
		}

	case analysisMsg:
		// Drop results for an outdated buffer
		if msg.revision != m.revision {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		m.analysis = msg.analysis
		if m.selected >= len(msg.analysis.Document.Rows) {
			m.selected = 0
		}
		if msg.manual {
			m.status = msg.analysis.Document.Summary
		}
		m.updateResults()

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		m.dirty = false
		m.config.Path = msg.path
		m.status = "Saved " + msg.path

	case formattedMsg:
		if msg.err != nil {
			m.status = "Cannot format: " + msg.err.Error()
			break
		}
		if msg.text != m.editor.Value() {
			m.editor.SetValue(msg.text)
			m.edited()
			cmds = append(cmds, m.analyze(false))
		}
		m.status = "Formatted"
	}

	if m.focus == focusEditor {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		return m, tea.Quit

	case "f5", "ctrl+r":
		return m, m.analyze(true)

	case "ctrl+s":
		return m, m.save()

	case "ctrl+f":
		return m, m.format()

	case "ctrl+t":
		m.showTokens = !m.showTokens
		m.updateResults()
		return m, nil

	case "esc":
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusResults {
		return m.handleResultsKey(msg)
	}

	if msg.Type == tea.KeyTab {
		m.editor.InsertString(strings.Repeat(" ", m.config.TabWidth))
		live := m.changed()
		return m, live
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if m.editor.Value() != before {
		live := m.changed()
		return m, tea.Batch(cmd, live)
	}
	return m, cmd
}

// handleResultsKey navigates the error list
func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(rows)-1 {
			m.selected++
		}
	case "enter":
		if m.selected < len(rows) {
			row := rows[m.selected]
			m.jumpTo(row.Line, row.Column)
			m.toggleFocus()
		}
		return m, nil
	case "pgup":
		m.results.ViewUp()
		return m, nil
	case "pgdown":
		m.results.ViewDown()
		return m, nil
	}
	m.updateResults()
	return m, nil
}

func (m *Model) toggleFocus() {
	if m.focus == focusEditor {
		m.focus = focusResults
		m.editor.Blur()
	} else {
		m.focus = focusEditor
		m.editor.Focus()
	}
}

// edited marks the buffer as changed and invalidates running checks
func (m *Model) edited() {
	m.dirty = true
	m.revision++
}

// changed records an edit and schedules a live check
func (m *Model) changed() tea.Cmd {
	m.edited()
	if m.config.Debounce <= 0 {
		return nil
	}
	revision := m.revision
	return tea.Tick(m.config.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{revision: revision}
	})
}

// jumpTo moves the editor cursor to a 1-based line and column
func (m *Model) jumpTo(line, column int) {
	target := line - 1
	for i := 0; m.editor.Line() > target && i < m.editor.LineCount(); i++ {
		m.editor.CursorUp()
	}
	for i := 0; m.editor.Line() < target && i < m.editor.LineCount()*4; i++ {
		m.editor.CursorDown()
	}
	m.editor.SetCursor(column - 1)
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading recordpad..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderEditor())
	b.WriteString("\n")
	b.WriteString(m.renderResults())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m Model) renderHeader() string {
	name := m.config.Path
	if name == "" {
		name = "[untitled]"
	}
	parts := []string{LogoStyle.Render(Logo), "   ", FileStyle.Render(name)}
	if m.dirty {
		parts = append(parts, "  ", DirtyStyle.Render(IconDirty+"modified"))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

func (m Model) renderEditor() string {
	style := PanelStyle
	if m.focus == focusEditor {
		style = FocusedPanelStyle
	}
	return style.Width(m.width - 2).Render(m.editor.View())
}

func (m Model) renderResults() string {
	style := PanelStyle
	if m.focus == focusResults {
		style = FocusedPanelStyle
	}
	return style.Width(m.width - 2).Height(m.results.Height).Render(m.results.View())
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.err != nil:
		left = ErrorStyle.Render(IconError + m.err.Error())
	case m.analysis == nil:
		left = HelpDescStyle.Render("Checking...")
	case m.analysis.Report.Success():
		left = SuccessStyle.Render(IconOK + m.analysis.Document.Summary)
	default:
		left = ErrorStyle.Render(IconError + m.analysis.Document.Summary)
	}
	if m.status != "" {
		left += "  " + HelpDescStyle.Render(stringx.Truncate(m.status, 40, "…"))
	}

	info := m.editor.LineInfo()
	right := PositionStyle.Render(fmt.Sprintf("%d:%d", m.editor.Line()+1, info.StartColumn+info.ColumnOffset+1)) +
		"  " + HelpDescStyle.Render(m.translator.GetCurrentLocale()) +
		"  " + HelpDescStyle.Render("v"+m.config.Version)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 2 {
		gap = 2
	}
	return StatusBarStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("F5", "Check"),
		RenderKeyHint("Ctrl+S", "Save"),
		RenderKeyHint("Ctrl+F", "Format"),
		RenderKeyHint("Ctrl+T", "Tokens"),
		RenderKeyHint("Esc", "Errors"),
		RenderKeyHint("Ctrl+C", "Quit"),
	}
	return HelpDescStyle.Render(strings.Join(items, "  "))
}

// layout splits the window between editor and results
func (m *Model) layout() {
	const chrome = 3 + 2 + 2 + 1 + 1 // header, two panel borders, status, help
	available := m.height - chrome
	if available < 4 {
		available = 4
	}
	resultsHeight := available / 3
	if resultsHeight < 3 {
		resultsHeight = 3
	}

	m.editor.SetWidth(m.width - 6)
	m.editor.SetHeight(available - resultsHeight)
	m.results.Width = m.width - 6
	m.results.Height = resultsHeight
}

func (m Model) rows() []report.Row {
	if m.analysis == nil {
		return nil
	}
	return m.analysis.Document.Rows
}

// updateResults renders the error list or the token table into the viewport
func (m *Model) updateResults() {
	if m.analysis == nil {
		m.results.SetContent(HelpDescStyle.Render("No analysis yet"))
		return
	}
	if m.showTokens {
		m.results.SetContent(report.RenderTokens(m.analysis.Document.Tokens, m.translator))
		return
	}

	var b strings.Builder
	source := m.analysis.Report.Source
	for i, row := range m.rows() {
		line := fmt.Sprintf("%s %s %s",
			PositionStyle.Render(fmt.Sprintf("%4d:%-3d", row.Line, row.Column)),
			CodeStyle.Render(stringx.PadRight(row.Code, 28, ' ')),
			row.Message,
		)
		if row.Fragment != "" {
			line += ExcerptStyle.Render(fmt.Sprintf(" (%q)", row.Fragment))
		}
		if i == m.selected && m.focus == focusResults {
			line = SelectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if !m.analysis.Report.Success() {
			text := stringx.LineAt(source, row.Line)
			b.WriteString("          " + ExcerptStyle.Render(stringx.Printable(text)) + "\n")
			b.WriteString("          " + CaretStyle.Render(stringx.Caret(text, row.Column)) + "\n")
		}
	}
	m.results.SetContent(b.String())
}

// Commands

func (m Model) analyze(manual bool) tea.Cmd {
	svc := m.service
	revision := m.revision
	req := service.Request{
		Name:      m.config.Path,
		Content:   m.editor.Value(),
		Locale:    m.translator.GetCurrentLocale(),
		Tokens:    true,
		NoHistory: !manual,
		Origin:    "editor",
	}
	return func() tea.Msg {
		analysis, err := svc.Analyze(context.Background(), req)
		return analysisMsg{revision: revision, manual: manual, analysis: analysis, err: err}
	}
}

func (m Model) save() tea.Cmd {
	path := m.config.Path
	content := m.editor.Value()
	return func() tea.Msg {
		if path == "" {
			return savedMsg{err: mdwerror.New("no file name, start the editor with a path").
				WithCode(mdwerror.CodeInvalidInput).
				WithOperation("editor.save")}
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return savedMsg{path: path, err: mdwerror.Wrap(err, "failed to save file").
				WithCode(mdwerror.CodeIOError).
				WithOperation("editor.save").
				WithDetail("path", path)}
		}
		return savedMsg{path: path}
	}
}

func (m Model) format() tea.Cmd {
	svc := m.service
	content := m.editor.Value()
	return func() tea.Msg {
		text, err := svc.Format(content)
		return formattedMsg{text: text, err: err}
	}
}

// Value returns the current buffer
func (m Model) Value() string {
	return m.editor.Value()
}

// Dirty reports unsaved changes
func (m Model) Dirty() bool {
	return m.dirty
}

// Run starts the editor TUI
func Run(cfg Config, svc *service.Service) error {
	m, err := New(cfg, svc)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
