// Package tui provides the full-screen terminal practice editor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/sqldrill/internal/cli/output"
	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// maxResultRows caps the rows drawn below the editor.
const maxResultRows = 15

// resultMsg carries the outcome of an ad-hoc run.
type resultMsg struct {
	res *core.Result
	err error
}

// submitMsg carries a checked submission and the refreshed progress.
type submitMsg struct {
	sub      *core.Submission
	progress *core.Progress
	err      error
}

// Model is the bubbletea model of the practice editor.
type Model struct {
	ctx     context.Context
	eng     *practice.Engine
	learner string

	ids      []int
	index    int
	exercise *catalog.Exercise
	progress *core.Progress

	editor textarea.Model
	help   help.Model
	keys   keyMap
	styles styles

	result   *core.Result
	sub      *core.Submission
	hint     *catalog.Hint
	solution string
	notes    string
	running  bool
	err      error

	width  int
	height int
}

// New builds the editor positioned on the learner's current exercise.
func New(ctx context.Context, eng *practice.Engine, learner string) (Model, error) {
	ids := eng.Catalog().IDs()
	if len(ids) == 0 {
		return Model{}, errors.New("catalog has no exercises")
	}

	progress, err := eng.Progress(ctx, learner)
	if err != nil {
		return Model{}, fmt.Errorf("failed to load progress: %w", err)
	}

	ta := textarea.New()
	ta.Placeholder = "SELECT ... FROM SalesOrderHeader"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(8)
	ta.Focus()

	m := Model{
		ctx:      ctx,
		eng:      eng,
		learner:  learner,
		ids:      ids,
		progress: progress,
		editor:   ta,
		help:     help.New(),
		keys:     defaultKeyMap(),
		styles:   defaultStyles(),
	}

	start := 0
	for i, id := range ids {
		if id == progress.Current {
			start = i
		}
	}
	if err := m.load(start); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.editor.SetWidth(max(msg.Width-2, 20))
		m.editor.SetHeight(max(msg.Height/4, 5))
		return m, nil

	case resultMsg:
		m.running = false
		m.result, m.err = msg.res, msg.err
		m.sub = nil
		return m, nil

	case submitMsg:
		m.running = false
		m.err = msg.err
		if msg.err == nil {
			m.sub = msg.sub
			m.result = msg.sub.Result
			m.progress = msg.progress
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.saveDraft()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Run):
			return m.run()
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.Hint):
			m.showHint()
			return m, nil
		case key.Matches(msg, m.keys.Solution):
			m.toggleSolution()
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.move(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.move(-1)
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.result, m.sub, m.err = nil, nil, nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// load switches to the exercise at index i and restores its draft.
func (m *Model) load(i int) error {
	ex, err := m.eng.Exercise(m.ids[i])
	if err != nil {
		return err
	}
	draft, err := m.eng.Draft(m.ctx, m.learner, ex.ID)
	if err != nil {
		return fmt.Errorf("failed to load draft: %w", err)
	}

	m.index = i
	m.exercise = ex
	m.editor.SetValue(draft)
	m.result, m.sub, m.hint, m.err = nil, nil, nil, nil
	m.solution, m.notes = "", ""
	return nil
}

func (m *Model) move(delta int) {
	next := m.index + delta
	if next < 0 || next >= len(m.ids) {
		return
	}
	m.saveDraft()
	if err := m.load(next); err != nil {
		m.err = err
	}
}

func (m *Model) saveDraft() {
	if m.exercise == nil {
		return
	}
	if err := m.eng.SaveDraft(m.ctx, m.learner, m.exercise.ID, m.editor.Value()); err != nil {
		m.err = fmt.Errorf("failed to save draft: %w", err)
	}
}

func (m Model) run() (tea.Model, tea.Cmd) {
	if m.running {
		return m, nil
	}
	m.saveDraft()
	m.running = true

	ctx, eng, sql := m.ctx, m.eng, m.editor.Value()
	return m, func() tea.Msg {
		res, err := eng.Execute(ctx, sql)
		return resultMsg{res: res, err: err}
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.running {
		return m, nil
	}
	m.running = true

	ctx, eng, learner, id, sql := m.ctx, m.eng, m.learner, m.exercise.ID, m.editor.Value()
	return m, func() tea.Msg {
		sub, err := eng.Submit(ctx, learner, id, sql)
		if err != nil {
			return submitMsg{err: err}
		}
		progress, err := eng.Progress(ctx, learner)
		return submitMsg{sub: sub, progress: progress, err: err}
	}
}

func (m *Model) showHint() {
	h, err := m.eng.UnlockNextHint(m.ctx, m.learner, m.exercise.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrHintNotFound) {
			err = errors.New("bài tập này không có gợi ý")
		}
		m.err = err
		return
	}
	m.hint = &h
}

func (m *Model) toggleSolution() {
	if m.solution != "" {
		m.solution, m.notes = "", ""
		return
	}
	sql, notes, err := m.eng.Solution(m.exercise.ID)
	if err != nil {
		m.err = err
		return
	}
	m.solution, m.notes = sql, notes
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	s := m.styles
	ex := m.exercise

	mark := ""
	if m.progress.IsCompleted(ex.ID) {
		mark = " ✓"
	}
	b.WriteString(s.Title.Render(fmt.Sprintf("Bài %d/%d: %s%s", m.index+1, len(m.ids), ex.Title, mark)))
	b.WriteString("  ")
	b.WriteString(s.Progress.Render(fmt.Sprintf("%s %d/%d (%d%%)",
		output.ProgressBar(m.progress.Percent(), 10), len(m.progress.Completed), m.progress.Total, m.progress.Percent())))
	b.WriteString("\n")

	prompt := s.Prompt
	if m.width > 0 {
		prompt = prompt.Width(m.width)
	}
	b.WriteString(prompt.Render(ex.PromptText()))
	b.WriteString("\n")
	b.WriteString(s.Label.Render("Cột kết quả: "))
	b.WriteString(strings.Join(ex.ExpectedColumns, ", "))
	b.WriteString("\n\n")

	b.WriteString(m.editor.View())
	b.WriteString("\n")

	switch {
	case m.running:
		b.WriteString(s.Muted.Render("Đang chạy..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(s.Error.Render("Lỗi: " + m.err.Error()))
		b.WriteString("\n")
	}

	if m.sub != nil {
		b.WriteString(m.verdictView())
		b.WriteString("\n")
	}

	if m.hint != nil {
		body := fmt.Sprintf("%s (%s)\n%s", m.hint.Title, m.hint.Level.Label(), m.hint.Content)
		b.WriteString(s.Hint.Render(body))
		b.WriteString("\n")
	}

	if m.solution != "" {
		body := m.solution
		if m.notes != "" {
			body += "\n\n" + m.notes
		}
		b.WriteString(s.Solution.Render(body))
		b.WriteString("\n")
	}

	if m.result != nil {
		b.WriteString(m.resultView())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) verdictView() string {
	s := m.styles
	sub := m.sub
	switch sub.Verdict {
	case core.VerdictCorrect:
		line := s.Correct.Render(sub.Message)
		if sub.RowCheckMessage != "" {
			line += "\n" + s.Muted.Render(sub.RowCheckMessage)
		}
		if m.progress.AllComplete() {
			line += "\n" + s.Correct.Render(practice.MessageAllComplete)
		}
		return line
	case core.VerdictIncorrect:
		line := s.Incorrect.Render(sub.Message)
		if len(sub.MissingColumns) > 0 {
			line += "\n" + s.Muted.Render("Thiếu cột: "+strings.Join(sub.MissingColumns, ", "))
		}
		return line
	default:
		return s.Error.Render(sub.Message)
	}
}

func (m Model) resultView() string {
	res := m.result
	if res.Failed() {
		return m.styles.Error.Render("Lỗi truy vấn: "+res.Error) + "\n"
	}

	rows := res.Rows
	if len(rows) > maxResultRows {
		rows = rows[:maxResultRows]
	}

	var b strings.Builder
	output.RenderTable(&b, res.Columns, rows)
	summary := fmt.Sprintf("%d rows (%s)", res.RowCount(), res.Duration.Round(time.Millisecond))
	if len(rows) < res.RowCount() {
		summary = fmt.Sprintf("%d of %s", len(rows), summary)
	}
	b.WriteString(m.styles.Muted.Render(summary))
	b.WriteString("\n")
	return b.String()
}
