package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/cli/output"
)

// DraftOptions holds options for the draft command.
type DraftOptions struct {
	Set       string
	InputFile string
	Clear     bool
}

// DraftOutput is the JSON shape of the draft command.
type DraftOutput struct {
	ExerciseID int    `json:"exercise_id"`
	SQL        string `json:"sql"`
}

// NewDraftCommand creates the draft command.
func NewDraftCommand() *cobra.Command {
	opts := &DraftOptions{}
	cmd := &cobra.Command{
		Use:   "draft <id>",
		Short: "Show or save your draft answer for an exercise",
		Long: `Drafts keep the SQL you are working on per exercise. The REPL, TUI and web UI
save drafts automatically; this command reads or replaces them.`,
		Example: `  sqldrill draft 2
  sqldrill draft 2 --set "SELECT SalesOrderID FROM SalesOrderHeader"
  sqldrill draft 2 --input draft.sql
  sqldrill draft 2 --clear`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraft(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.Set, "set", "", "Replace the draft with this SQL")
	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Replace the draft with the contents of a file")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "Clear the draft")
	cmd.MarkFlagsMutuallyExclusive("set", "input", "clear")
	return cmd
}

func runDraft(cmd *cobra.Command, arg string, opts *DraftOptions) error {
	id, err := parseExerciseID(arg)
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	r := cc.Renderer

	switch {
	case opts.Clear:
		if err := cc.Engine.SaveDraft(ctx, cc.Learner, id, ""); err != nil {
			return err
		}
	case opts.Set != "" || opts.InputFile != "":
		var args []string
		if opts.Set != "" {
			args = []string{opts.Set}
		}
		sql, err := readSQL(cmd, args, opts.InputFile)
		if err != nil {
			return err
		}
		if err := cc.Engine.SaveDraft(ctx, cc.Learner, id, sql); err != nil {
			return err
		}
	}

	draft, err := cc.Engine.Draft(ctx, cc.Learner, id)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(DraftOutput{ExerciseID: id, SQL: draft})
	}
	if draft == "" {
		r.Muted(fmt.Sprintf("No draft saved for exercise %d", id))
		return nil
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatCodeBlock("sql", draft))
		return nil
	}
	r.Println(draft)
	return nil
}
