package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the terminal styles.
type palette struct {
	header  lipgloss.Style
	bold    lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newPalette() palette {
	return palette{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		bold:    lipgloss.NewStyle().Bold(true),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// termWriter is the terminal output destination
type termWriter struct {
	out     io.Writer
	noColor bool
	styles  palette
	err     error
}

func newTermWriter(out io.Writer, noColor bool) *termWriter {
	return &termWriter{out: out, noColor: noColor, styles: newPalette()}
}

// render applies a style if color is enabled
func (w *termWriter) render(style lipgloss.Style, text string) string {
	if w.noColor {
		return text
	}
	return style.Render(text)
}

// println writes a line; the first write error sticks.
func (w *termWriter) println(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.out, format+"\n", args...)
}

func (w *termWriter) header(title string) {
	w.println("%s", w.render(w.styles.header, "━━━ "+title+" ━━━"))
}

func (w *termWriter) subHeader(title string) {
	w.println("%s", w.render(w.styles.bold, "▸ "+title))
}

func (w *termWriter) success(format string, args ...any) {
	w.println("%s%s", w.render(w.styles.success, "✓ "), fmt.Sprintf(format, args...))
}

func (w *termWriter) warning(format string, args ...any) {
	w.println("%s%s", w.render(w.styles.warning, "⚠ "), fmt.Sprintf(format, args...))
}

func (w *termWriter) failure(format string, args ...any) {
	w.println("%s%s", w.render(w.styles.failure, "✗ "), fmt.Sprintf(format, args...))
}

func (w *termWriter) note(format string, args ...any) {
	w.println("%s", w.render(w.styles.dim, fmt.Sprintf(format, args...)))
}

// table renders aligned columns. Columns listed in right are right-aligned.
type table struct {
	w       *termWriter
	headers []string
	rows    [][]string
	widths  []int
	right   map[int]bool
	footer  int
}

func (w *termWriter) newTable(headers ...string) *table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &table{w: w, headers: headers, widths: widths, right: make(map[int]bool)}
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

// addRow adds a row, padding or truncating to the header count.
func (t *table) addRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := lipgloss.Width(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// addFooter adds a row drawn in bold below a separator.
func (t *table) addFooter(cells ...string) {
	t.addRow(cells...)
	t.footer++
}

func (t *table) line(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		pad := strings.Repeat(" ", t.widths[i]-lipgloss.Width(c))
		if t.right[i] {
			parts[i] = pad + c
		} else {
			parts[i] = c + pad
		}
	}
	return strings.TrimRight(strings.Join(parts, " │ "), " ")
}

func (t *table) separator() string {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat("─", w)
	}
	return strings.Join(parts, "─┼─")
}

func (t *table) render() {
	t.w.println("%s", t.w.render(t.w.styles.bold, t.line(t.headers)))
	t.w.println("%s", t.separator())
	body := len(t.rows) - t.footer
	for i, row := range t.rows {
		if i == body {
			t.w.println("%s", t.separator())
		}
		if i >= body {
			t.w.println("%s", t.w.render(t.w.styles.bold, t.line(row)))
			continue
		}
		t.w.println("%s", t.line(row))
	}
}
