package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	"github.com/msto63/recordpad/foundation/core/i18n"
	"github.com/msto63/recordpad/foundation/utils/stringx"
)

// Format selects the output encoding of a document
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// ParseFormat parses a format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatTOML:
		return FormatTOML, nil
	default:
		return "", mdwerror.New(fmt.Sprintf("unknown output format: %s", name)).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("report.ParseFormat").
			WithDetail("format", name)
	}
}

// maxCell bounds the width of free-text table cells
const maxCell = 60

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	summaryStyle = lipgloss.NewStyle().Bold(true)
)

// Write encodes doc to w in the given format
func Write(w io.Writer, doc *Document, format Format, tr *i18n.Manager) error {
	switch format {
	case FormatJSON, FormatYAML, FormatTOML:
		return writeErr(encode(w, doc, format), format)
	default:
		return writeErr(writeString(w, RenderDocument(doc, tr)), format)
	}
}

// WriteAll writes several documents as one value of the format: a JSON
// array, a YAML stream with one document each, a TOML array of [[report]]
// tables or consecutive terminal tables. A single document is written as
// Write does.
func WriteAll(w io.Writer, docs []*Document, format Format, tr *i18n.Manager) error {
	if len(docs) == 1 {
		return Write(w, docs[0], format, tr)
	}

	var err error
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, doc := range docs {
			if err = enc.Encode(doc); err != nil {
				break
			}
		}
		if err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = encode(w, struct {
			Reports []*Document `toml:"report"`
		}{docs}, format)
	case FormatJSON:
		if docs == nil {
			docs = []*Document{}
		}
		err = encode(w, docs, format)
	default:
		for i, doc := range docs {
			if i > 0 {
				if err = writeString(w, "\n"); err != nil {
					break
				}
			}
			if err = writeString(w, RenderDocument(doc, tr)); err != nil {
				break
			}
		}
	}
	return writeErr(err, format)
}

func encode(w io.Writer, v interface{}, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("no encoder for format %q", format)
	}
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func writeErr(err error, format Format) error {
	if err == nil {
		return nil
	}
	return mdwerror.Wrap(err, "failed to write report").
		WithCode(mdwerror.CodeIOError).
		WithOperation("report.Write").
		WithDetail("format", string(format))
}

// RenderDocument renders the document as terminal tables
func RenderDocument(doc *Document, tr *i18n.Manager) string {
	var b strings.Builder

	if doc.Source != "" {
		b.WriteString(mutedStyle.Render(doc.Source))
		b.WriteString("\n")
	}
	b.WriteString(RenderRows(doc.Rows, tr))
	if len(doc.Tokens) > 0 {
		b.WriteString("\n")
		b.WriteString(RenderTokens(doc.Tokens, tr))
	}

	style := successStyle
	if !doc.Success {
		style = errorStyle
	}
	b.WriteString("\n")
	b.WriteString(summaryStyle.Inherit(style).Render(doc.Summary))
	b.WriteString("\n")
	return b.String()
}

// RenderRows renders the result grid
func RenderRows(rows []Row, tr *i18n.Manager) string {
	headers := []string{
		label(tr, "column.code", "Code"),
		label(tr, "column.kind", "Kind"),
		label(tr, "column.fragment", "Fragment"),
		label(tr, "column.message", "Message"),
		label(tr, "column.line", "Line"),
		label(tr, "column.column", "Column"),
	}
	cells := make([][]string, 0, len(rows))
	styles := make([]lipgloss.Style, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			r.Code,
			r.Kind,
			stringx.Truncate(stringx.Printable(r.Fragment), maxCell, "…"),
			stringx.Truncate(r.Message, maxCell, "…"),
			strconv.Itoa(r.Line),
			strconv.Itoa(r.Column),
		})
		if r.Code == "0" {
			styles = append(styles, successStyle)
		} else {
			styles = append(styles, errorStyle)
		}
	}
	return renderTable(headers, cells, styles)
}

// RenderTokens renders the token table
func RenderTokens(rows []TokenRow, tr *i18n.Manager) string {
	headers := []string{
		label(tr, "column.code", "Code"),
		label(tr, "column.kind", "Kind"),
		label(tr, "column.token", "Token"),
		label(tr, "column.line", "Line"),
		label(tr, "column.position", "Position"),
	}
	cells := make([][]string, 0, len(rows))
	styles := make([]lipgloss.Style, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			strconv.Itoa(r.Code),
			r.Kind,
			stringx.Truncate(stringx.Printable(r.Text), maxCell, "…"),
			strconv.Itoa(r.Line),
			r.Range,
		})
		switch r.Code {
		case CodeInvalid:
			styles = append(styles, errorStyle)
		case CodeEndOfInput:
			styles = append(styles, mutedStyle)
		default:
			styles = append(styles, lipgloss.NewStyle())
		}
	}
	return renderTable(headers, cells, styles)
}

// renderTable pads every column to its widest cell. Widths are measured
// with lipgloss so wide runes line up.
func renderTable(headers []string, rows [][]string, styles []lipgloss.Style) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	pad := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(pad(headers)))
	b.WriteString("\n")

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	b.WriteString(mutedStyle.Render(strings.Join(rule, "  ")))
	b.WriteString("\n")

	for i, row := range rows {
		b.WriteString(styles[i].Render(pad(row)))
		b.WriteString("\n")
	}
	return b.String()
}
