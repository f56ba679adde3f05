package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/cli/output"
	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// SubmitOptions holds options for the submit command.
type SubmitOptions struct {
	InputFile string
	Quiet     bool
}

// SubmitOutput is the JSON shape of the submit command.
type SubmitOutput struct {
	*core.Submission
	Progress *core.Progress `json:"progress"`
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand() *cobra.Command {
	opts := &SubmitOptions{}
	cmd := &cobra.Command{
		Use:     "submit <id> [SQL]",
		Aliases: []string{"check"},
		Short:   "Submit an answer to an exercise",
		Long: `Run SQL as the answer to an exercise and check it. An answer is correct
when it returns the expected columns. Without SQL the saved draft is submitted.`,
		Example: `  sqldrill submit 4 "SELECT TerritoryID, SUM(SubTotal) AS TotalSales FROM SalesOrderHeader GROUP BY TerritoryID HAVING SUM(SubTotal) >= 200000"
  sqldrill submit 1 --input answer.sql
  sqldrill submit 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Do not print the result table")
	return cmd
}

func runSubmit(cmd *cobra.Command, args []string, opts *SubmitOptions) error {
	id, err := parseExerciseID(args[0])
	if err != nil {
		return err
	}
	sql, err := readSQL(cmd, args[1:], opts.InputFile)
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if strings.TrimSpace(sql) == "" {
		sql, err = cc.Engine.Draft(ctx, cc.Learner, id)
		if err != nil {
			return err
		}
	}

	sub, err := cc.Engine.Submit(ctx, cc.Learner, id, sql)
	if errors.Is(err, practice.ErrEmptyQuery) {
		return fmt.Errorf("no SQL given and no draft saved for exercise %d", id)
	}
	if err != nil {
		return err
	}
	progress, err := cc.Engine.Progress(ctx, cc.Learner)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(SubmitOutput{Submission: sub, Progress: progress})
	}
	return renderSubmission(r, sub, progress, opts.Quiet)
}

func renderSubmission(r *output.Renderer, sub *core.Submission, progress *core.Progress, quiet bool) error {
	switch sub.Verdict {
	case core.VerdictCorrect:
		r.Success(sub.Message)
		if sub.RowCheckMessage != "" {
			r.Muted(sub.RowCheckMessage)
		}
	case core.VerdictIncorrect:
		r.Warning(sub.Message)
		if len(sub.MissingColumns) > 0 {
			r.Println(output.FormatKeyValue("Missing columns", strings.Join(sub.MissingColumns, ", ")))
		}
	default:
		r.Error(sub.Message)
		return nil
	}

	if !quiet {
		r.Println()
		if err := r.Result(sub.Result); err != nil {
			return err
		}
	}

	if sub.FirstCompletion {
		r.Println()
		r.Println(progressLine(progress))
		if progress.AllComplete() {
			r.Success(practice.MessageAllComplete)
		} else if progress.Current != 0 {
			r.Muted(fmt.Sprintf("Next: sqldrill show %d", progress.Current))
		}
	}
	return nil
}
