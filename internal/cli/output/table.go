package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// ResultOutput is the JSON shape of a query result.
type ResultOutput struct {
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"`
	RowCount   int      `json:"row_count"`
	Error      string   `json:"error,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// NewResultOutput converts a result for JSON output.
func NewResultOutput(res *core.Result) ResultOutput {
	return ResultOutput{
		Columns:    res.Columns,
		Rows:       res.Rows,
		RowCount:   res.RowCount(),
		Error:      res.Error,
		DurationMS: res.Duration.Milliseconds(),
	}
}

// Result renders a query result in the effective mode.
func (r *Renderer) Result(res *core.Result) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(NewResultOutput(res))
	case ModeMarkdown:
		if res.Failed() {
			r.Println("**Error:** " + res.Error)
			return nil
		}
		RenderMarkdownTable(r.out, res.Columns, res.Rows)
	default:
		if res.Failed() {
			r.Error(res.Error)
			return nil
		}
		RenderTable(r.out, res.Columns, res.Rows)
	}
	r.Muted(fmt.Sprintf("(%d rows, %s)", res.RowCount(), res.Duration.Round(time.Microsecond)))
	return nil
}

// Table renders arbitrary rows in the effective mode; JSON mode is left to
// callers since they know the record shape.
func (r *Renderer) Table(cols []string, rows [][]any) {
	if r.EffectiveMode() == ModeMarkdown {
		RenderMarkdownTable(r.out, cols, rows)
		return
	}
	RenderTable(r.out, cols, rows)
}

// RenderTable writes rows as a box-drawn table.
func RenderTable(w io.Writer, cols []string, rows [][]any) {
	if len(cols) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = FormatValue(v)
		}
		t.AppendRow(tr)
	}
	t.Render()
}

// RenderMarkdownTable writes rows as a markdown table.
func RenderMarkdownTable(w io.Writer, cols []string, rows [][]any) {
	if len(cols) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = strings.ReplaceAll(FormatValue(v), "|", `\|`)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
}
