package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/pkg/dataset"
)

const (
	replPrompt         = "sqldrill> "
	replContinuePrompt = "     ...> "
)

// NewReplCommand creates the interactive practice shell.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "repl",
		Aliases: []string{"shell"},
		Short:   "Practice interactively in a SQL shell",
		Long: `Start an interactive shell. SQL ending in a semicolon is executed against
the practice table. Select an exercise with .exercise and submit the last
query with .submit. Type .help for all commands.`,
		Args: cobra.NoArgs,
		RunE: runRepl,
	}
}

func runRepl(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	s := newReplSession(cc)

	p, err := cc.Engine.Progress(ctx, cc.Learner)
	if err != nil {
		return err
	}
	if !p.AllComplete() {
		s.exerciseID = p.Current
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     replHistoryFile(cc.Cfg.StatePath),
		AutoComplete:    newReplCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cc.Renderer
	r.Println(fmt.Sprintf("sqldrill shell (%s engine, learner %s)", cc.Engine.Adapter().DialectName(), cc.Learner))
	r.Println("Type .help for commands, .quit to exit")
	if s.exerciseID > 0 {
		r.Muted(fmt.Sprintf("Current exercise: %d", s.exerciseID))
	}
	r.Println()

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if s.dot(ctx, line) {
				break
			}
			continue
		}

		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString("\n")
			rl.SetPrompt(replContinuePrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := strings.TrimSuffix(buf.String(), ";")
		buf.Reset()
		s.run(ctx, query)
		r.Println()
	}
	return nil
}

// replHistoryFile places the history next to the state database. An
// in-memory state keeps no history.
func replHistoryFile(statePath string) string {
	if statePath == "" || statePath == ":memory:" || strings.HasPrefix(statePath, "file::memory:") {
		return ""
	}
	return filepath.Join(filepath.Dir(statePath), "repl_history")
}

// replSession holds the state of one shell session.
type replSession struct {
	cc         *CommandContext
	exerciseID int
	lastSQL    string
}

func newReplSession(cc *CommandContext) *replSession {
	return &replSession{cc: cc}
}

func (s *replSession) eng() *practice.Engine { return s.cc.Engine }

func (s *replSession) errorf(format string, args ...any) {
	s.cc.Renderer.Error(fmt.Sprintf(format, args...))
}

// run executes a query and saves it as the draft of the current exercise.
func (s *replSession) run(ctx context.Context, query string) {
	s.lastSQL = query
	res, err := s.eng().Execute(ctx, query)
	if err != nil {
		s.errorf("%v", err)
		return
	}
	if err := s.cc.Renderer.Result(res); err != nil {
		s.errorf("%v", err)
	}
	if s.exerciseID > 0 {
		if err := s.eng().SaveDraft(ctx, s.cc.Learner, s.exerciseID, query); err != nil {
			s.cc.Logger.Warn("failed to save draft", "exercise", s.exerciseID, "error", err)
		}
	}
}

// dot handles a dot command and reports whether the session should end.
func (s *replSession) dot(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]
	r := s.cc.Renderer

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(r.Writer())

	case ".exercises", ".list":
		s.listExercises(ctx)

	case ".exercise", ".ex":
		if len(args) == 0 {
			if s.exerciseID == 0 {
				s.errorf("no exercise selected (usage: .exercise <id>)")
				return false
			}
			args = []string{strconv.Itoa(s.exerciseID)}
		}
		id, err := parseExerciseID(args[0])
		if err != nil {
			s.errorf("%v", err)
			return false
		}
		ex, detail, err := loadExerciseDetail(ctx, s.cc, id)
		if err != nil {
			s.errorf("%v", err)
			return false
		}
		s.exerciseID = id
		s.lastSQL = detail.Draft
		renderExercise(r, ex, detail)

	case ".submit":
		s.submit(ctx)

	case ".hint":
		s.hint(ctx, args)

	case ".solution":
		if s.exerciseID == 0 {
			s.errorf("no exercise selected (usage: .exercise <id>)")
			return false
		}
		sql, notes, err := s.eng().Solution(s.exerciseID)
		if err != nil {
			s.errorf("%v", err)
			return false
		}
		r.Println(sql)
		if notes != "" {
			r.Println()
			r.Muted(notes)
		}

	case ".progress":
		p, err := s.eng().Progress(ctx, s.cc.Learner)
		if err != nil {
			s.errorf("%v", err)
			return false
		}
		r.Println(progressLine(p))

	case ".tables":
		r.Println(dataset.TableName)

	case ".schema":
		meta, err := s.eng().Schema(ctx)
		if err != nil {
			s.errorf("%v", err)
			return false
		}
		renderSchema(r, meta)

	case ".clear":
		_, _ = fmt.Fprint(r.Writer(), "\033[H\033[2J")

	default:
		s.errorf("unknown command: %s (type .help for commands)", command)
	}
	return false
}

func (s *replSession) listExercises(ctx context.Context) {
	p, err := s.eng().Progress(ctx, s.cc.Learner)
	if err != nil {
		s.errorf("%v", err)
		return
	}
	for _, ex := range s.eng().Catalog().List() {
		mark := " "
		switch {
		case p.IsCompleted(ex.ID):
			mark = "✓"
		case ex.ID == s.exerciseID:
			mark = "→"
		}
		s.cc.Renderer.Println(fmt.Sprintf("%s %2d. %s", mark, ex.ID, ex.Title))
	}
}

func (s *replSession) submit(ctx context.Context) {
	if s.exerciseID == 0 {
		s.errorf("no exercise selected (usage: .exercise <id>)")
		return
	}
	if strings.TrimSpace(s.lastSQL) == "" {
		s.errorf("nothing to submit: run a query first")
		return
	}
	sub, err := s.eng().Submit(ctx, s.cc.Learner, s.exerciseID, s.lastSQL)
	if err != nil {
		s.errorf("%v", err)
		return
	}
	p, err := s.eng().Progress(ctx, s.cc.Learner)
	if err != nil {
		s.errorf("%v", err)
		return
	}
	if err := renderSubmission(s.cc.Renderer, sub, p, false); err != nil {
		s.errorf("%v", err)
	}

	if sub.Verdict.IsCorrect() && !p.AllComplete() {
		s.exerciseID = p.Current
		s.lastSQL = ""
		s.cc.Renderer.Muted(fmt.Sprintf("Moved to exercise %d", s.exerciseID))
	}
}

func (s *replSession) hint(ctx context.Context, args []string) {
	if s.exerciseID == 0 {
		s.errorf("no exercise selected (usage: .exercise <id>)")
		return
	}
	if len(args) == 0 {
		h, err := s.eng().UnlockNextHint(ctx, s.cc.Learner, s.exerciseID)
		if err != nil {
			s.errorf("%v", err)
			return
		}
		renderHint(s.cc.Renderer, h)
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		s.errorf("invalid hint number %q", args[0])
		return
	}
	h, err := s.eng().UnlockHint(ctx, s.cc.Learner, s.exerciseID, n)
	if err != nil {
		s.errorf("%v", err)
		return
	}
	renderHint(s.cc.Renderer, h)
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .exercises        List exercises and your progress
  .exercise [id]    Select an exercise and show its prompt
  .submit           Check the last query against the current exercise
  .hint [n]         Reveal the next hint, or hint n
  .solution         Show the reference solution
  .progress         Show your progress
  .tables           List tables
  .schema           Show the practice table schema
  .clear            Clear the screen
  .help             Show this help message
  .quit / .exit     Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - Queries never change the practice data
  - Each query is saved as the draft of the current exercise
`
	_, _ = fmt.Fprintln(w, help)
}

func newReplCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("SELECT"),
		readline.PcItem(dataset.TableName),
	}
	for _, col := range dataset.ColumnNames() {
		items = append(items, readline.PcItem(col))
	}
	for _, dot := range []string{
		".exercises", ".exercise", ".submit", ".hint", ".solution",
		".progress", ".tables", ".schema", ".clear", ".help", ".quit", ".exit",
	} {
		items = append(items, readline.PcItem(dot))
	}
	return readline.NewPrefixCompleter(items...)
}
