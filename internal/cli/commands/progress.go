package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/cli/output"
	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// ProgressOptions holds options for the progress command.
type ProgressOptions struct {
	Reset bool
}

// ProgressOutput is the JSON shape of the progress command.
type ProgressOutput struct {
	*core.Progress
	Percent     int  `json:"percent"`
	AllComplete bool `json:"all_complete"`
}

// NewProgressCommand creates the progress command.
func NewProgressCommand() *cobra.Command {
	opts := &ProgressOptions{}
	cmd := &cobra.Command{
		Use:     "progress",
		Aliases: []string{"status"},
		Short:   "Show how many exercises you have completed",
		Example: `  sqldrill progress
  sqldrill progress --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProgress(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "Clear completions, attempts, hints and drafts")
	return cmd
}

func runProgress(cmd *cobra.Command, opts *ProgressOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	r := cc.Renderer

	if opts.Reset {
		if err := cc.Engine.Reset(ctx, cc.Learner); err != nil {
			return err
		}
		if r.EffectiveMode() != output.ModeJSON {
			r.Success("Progress reset")
		}
	}

	p, err := cc.Engine.Progress(ctx, cc.Learner)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ProgressOutput{Progress: p, Percent: p.Percent(), AllComplete: p.AllComplete()})
	}

	r.Header(1, "Progress")
	r.Println(progressLine(p))
	r.Println()
	for _, ex := range cc.Engine.Catalog().List() {
		status := "skipped"
		if p.IsCompleted(ex.ID) {
			status = "success"
		}
		r.StatusLine(fmt.Sprintf("%d. %s", ex.ID, ex.Title), status, "")
	}
	r.Println()
	if p.AllComplete() {
		r.Success(practice.MessageAllComplete)
	} else {
		r.Muted(fmt.Sprintf("Next: sqldrill show %d", p.Current))
	}
	return nil
}

// progressLine renders "███░░ 40% (2/5)".
func progressLine(p *core.Progress) string {
	return fmt.Sprintf("%s %d%% (%d/%d)", output.ProgressBar(p.Percent(), 20), p.Percent(), len(p.Completed), p.Total)
}

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show your recent submissions",
		Example: `  sqldrill history
  sqldrill history 3 --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of attempts to show (0 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string, opts *HistoryOptions) error {
	exerciseID := 0
	if len(args) == 1 {
		id, err := parseExerciseID(args[0])
		if err != nil {
			return err
		}
		exerciseID = id
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	attempts, err := cc.Engine.History(cmd.Context(), cc.Learner, exerciseID, opts.Limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		if attempts == nil {
			attempts = []*core.Attempt{}
		}
		return r.JSON(attempts)
	}
	if len(attempts) == 0 {
		r.Muted("No submissions yet")
		return nil
	}

	rows := make([][]any, 0, len(attempts))
	for _, a := range attempts {
		detail := strconv.Itoa(a.RowCount) + " rows"
		if a.Error != "" {
			detail = a.Error
		}
		rows = append(rows, []any{
			a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			a.ExerciseID,
			output.Title(string(a.Verdict)),
			detail,
			oneLine(a.SQL, 60),
		})
	}
	r.Table([]string{"Time", "Exercise", "Verdict", "Result", "SQL"}, rows)
	return nil
}

// oneLine collapses whitespace and truncates s to width runes.
func oneLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
