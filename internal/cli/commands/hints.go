package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/cli/output"
	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
)

// HintOptions holds options for the hint command.
type HintOptions struct {
	All bool
}

// NewHintCommand creates the hint command.
func NewHintCommand() *cobra.Command {
	opts := &HintOptions{}
	cmd := &cobra.Command{
		Use:   "hint <id> [n]",
		Short: "Reveal a hint for an exercise",
		Long: `Reveal hints progressively. Without n the next unseen hint is unlocked;
with n that specific hint is shown. Use --all to list the hints you have
already unlocked.`,
		Example: `  sqldrill hint 3
  sqldrill hint 3 2
  sqldrill hint 3 --all`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHint(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.All, "all", false, "List unlocked hints instead of unlocking a new one")
	return cmd
}

func runHint(cmd *cobra.Command, args []string, opts *HintOptions) error {
	id, err := parseExerciseID(args[0])
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

	if opts.All {
		hints, err := cc.Engine.Hints(ctx, cc.Learner, id)
		if err != nil {
			return err
		}
		return renderHintList(r, id, hints)
	}

	var hint catalog.Hint
	if len(args) == 2 {
		n, err := parseExerciseID(args[1])
		if err != nil {
			return fmt.Errorf("invalid hint number %q", args[1])
		}
		hint, err = cc.Engine.UnlockHint(ctx, cc.Learner, id, n)
		if err != nil {
			return err
		}
	} else {
		hint, err = cc.Engine.UnlockNextHint(ctx, cc.Learner, id)
		if err != nil {
			return err
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(hint)
	}
	renderHint(r, hint)
	return nil
}

func renderHint(r *output.Renderer, h catalog.Hint) {
	r.Header(2, fmt.Sprintf("Gợi ý %d: %s", h.ID, h.Title))
	r.Muted(h.Level.Label())
	r.Println(h.Content)
}

func renderHintList(r *output.Renderer, exerciseID int, hints []practice.HintState) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(hints)
	}

	r.Header(1, fmt.Sprintf("Hints for exercise %d", exerciseID))
	for _, h := range hints {
		if !h.Unlocked {
			r.StatusLine(fmt.Sprintf("Gợi ý %d (%s)", h.ID, h.Level.Label()), "skipped", "locked")
			continue
		}
		renderHint(r, h.Hint)
		r.Println()
	}
	return nil
}

// SolutionOutput is the JSON shape of the solution command.
type SolutionOutput struct {
	ExerciseID int    `json:"exercise_id"`
	SQL        string `json:"sql"`
	Notes      string `json:"notes,omitempty"`
}

// NewSolutionCommand creates the solution command.
func NewSolutionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "solution <id>",
		Aliases: []string{"answer"},
		Short:   "Show the reference solution of an exercise",
		Example: `  sqldrill solution 2`,
		Args:    cobra.ExactArgs(1),
		RunE:    runSolution,
	}
}

func runSolution(cmd *cobra.Command, args []string) error {
	id, err := parseExerciseID(args[0])
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	sql, notes, err := cc.Engine.Solution(id)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(SolutionOutput{ExerciseID: id, SQL: sql, Notes: notes})
	case output.ModeMarkdown:
		r.Header(1, fmt.Sprintf("Solution: exercise %d", id))
		r.Println(output.FormatCodeBlock("sql", sql))
	default:
		r.Println(r.Styles().Code.Render(sql))
	}
	if notes != "" {
		r.Println()
		r.Muted(notes)
	}
	return nil
}
