package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

// LiveTableOption configures a LiveTable
type LiveTableOption func(*LiveTable)

// WithInteractive overrides terminal detection
func WithInteractive(interactive bool) LiveTableOption {
	return func(lt *LiveTable) {
		lt.interactive = interactive
	}
}

// WithNoColor renders without colors or text attributes
func WithNoColor() LiveTableOption {
	return func(lt *LiveTable) {
		lt.renderer.SetColorProfile(termenv.Ascii)
	}
}

// WithWidth limits rendered lines to width columns; cells wrap to fit.
// Zero leaves the table unbounded.
func WithWidth(width int) LiveTableOption {
	return func(lt *LiveTable) {
		lt.width = width
	}
}

// LiveTable is a table that grows one row at a time. On a terminal every
// Append redraws the table in place; elsewhere the table is written once
// when Stop is called.
type LiveTable struct {
	mu          sync.Mutex
	out         *termenv.Output
	renderer    *lipgloss.Renderer
	styles      Styles
	title       string
	headers     []string
	rows        [][]string
	interactive bool
	width       int
	lastLines   int
	stopped     bool
}

// NewLiveTable creates a live table writing to w
func NewLiveTable(w io.Writer, title string, headers []string, opts ...LiveTableOption) *LiveTable {
	lt := &LiveTable{
		out:         termenv.NewOutput(w),
		renderer:    lipgloss.NewRenderer(w),
		title:       title,
		headers:     headers,
		interactive: IsTerminal(w),
		width:       TerminalWidth(w),
	}
	for _, opt := range opts {
		opt(lt)
	}
	lt.styles = NewStyles(lt.renderer)
	return lt
}

// Append adds a row. Missing cells are left empty and extra cells dropped.
func (lt *LiveTable) Append(cells ...string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if lt.stopped {
		return
	}

	row := make([]string, len(lt.headers))
	copy(row, cells)
	lt.rows = append(lt.rows, row)

	if lt.interactive {
		lt.redraw()
	}
}

// Len returns the number of rows appended so far
func (lt *LiveTable) Len() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.rows)
}

// Stop writes the final table. Later calls and appends are ignored.
func (lt *LiveTable) Stop() {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if lt.stopped {
		return
	}
	lt.stopped = true
	lt.redraw()
}

// redraw clears the previous frame and prints the current one. Must be
// called with mu held.
func (lt *LiveTable) redraw() {
	if lt.interactive && lt.lastLines > 0 {
		lt.out.ClearLines(lt.lastLines)
	}
	frame := lt.render()
	fmt.Fprintln(lt.out, frame)
	lt.lastLines = lipgloss.Height(frame)
}

// LogWriter returns a writer for log output sharing the screen with the
// table. Each write clears the current frame, writes p to dst and draws the
// frame again below it, so log lines pile up above the table.
func (lt *LiveTable) LogWriter(dst io.Writer) io.Writer {
	return &logWriter{lt: lt, dst: dst}
}

type logWriter struct {
	lt  *LiveTable
	dst io.Writer
}

func (w *logWriter) Write(p []byte) (int, error) {
	lt := w.lt
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if !lt.interactive || lt.stopped || lt.lastLines == 0 {
		return w.dst.Write(p)
	}

	lt.out.ClearLines(lt.lastLines)
	lt.lastLines = 0
	n, err := w.dst.Write(p)
	lt.redraw()
	return n, err
}

// render returns the title and table as a single block
func (lt *LiveTable) render() string {
	styles := lt.styles
	title := styles.Title
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Border).
		Headers(lt.headers...).
		Rows(lt.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.Header
			case col == len(lt.headers)-1:
				return styles.CVE
			default:
				return styles.Cell
			}
		})
	if lt.width > 0 {
		t = t.Width(lt.width)
		title = title.MaxWidth(lt.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title.Render(lt.title),
		t.Render(),
	)
}
