package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/cli/output"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
)

// ExerciseSummary is the JSON shape of one catalog entry.
type ExerciseSummary struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	ExpectedColumns []string `json:"expected_columns"`
	Completed       bool     `json:"completed"`
	Current         bool     `json:"current"`
}

// ExerciseDetail is the JSON shape of the show command.
type ExerciseDetail struct {
	ExerciseSummary
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
	HintCount   int    `json:"hint_count"`
	Draft       string `json:"draft,omitempty"`
}

// NewExercisesCommand creates the exercises command.
func NewExercisesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "exercises",
		Aliases: []string{"list", "ls"},
		Short:   "List the practice exercises",
		Long: `List every exercise in the catalog with its expected result columns and
whether you have completed it.`,
		Example: `  sqldrill exercises
  sqldrill exercises -o json`,
		Args: cobra.NoArgs,
		RunE: runExercises,
	}
}

func runExercises(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cc.Renderer
	progress, err := cc.Engine.Progress(cmd.Context(), cc.Learner)
	if err != nil {
		return err
	}

	exercises := cc.Engine.Catalog().List()
	summaries := make([]ExerciseSummary, 0, len(exercises))
	for _, ex := range exercises {
		summaries = append(summaries, ExerciseSummary{
			ID:              ex.ID,
			Title:           ex.Title,
			ExpectedColumns: ex.ExpectedColumns,
			Completed:       progress.IsCompleted(ex.ID),
			Current:         progress.Current == ex.ID,
		})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(summaries)
	}

	r.Header(1, fmt.Sprintf("Exercises (%d/%d completed)", len(progress.Completed), progress.Total))
	rows := make([][]any, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []any{s.ID, statusMark(s.Completed, s.Current), s.Title, strings.Join(s.ExpectedColumns, ", ")})
	}
	r.Table([]string{"ID", "Status", "Title", "Expected columns"}, rows)
	return nil
}

func statusMark(completed, current bool) string {
	switch {
	case completed:
		return "✓"
	case current:
		return "→"
	}
	return ""
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an exercise prompt",
		Long: `Show the prompt of an exercise, the columns your answer must return and
your saved draft.`,
		Example: `  sqldrill show 1`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseExerciseID(args[0])
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ex, detail, err := loadExerciseDetail(cmd.Context(), cc, id)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(detail)
	}
	renderExercise(r, ex, detail)
	return nil
}

// loadExerciseDetail gathers the prompt, completion status and draft of an exercise.
func loadExerciseDetail(ctx context.Context, cc *CommandContext, id int) (*catalog.Exercise, ExerciseDetail, error) {
	ex, err := cc.Engine.Exercise(id)
	if err != nil {
		return nil, ExerciseDetail{}, err
	}
	progress, err := cc.Engine.Progress(ctx, cc.Learner)
	if err != nil {
		return nil, ExerciseDetail{}, err
	}
	draft, err := cc.Engine.Draft(ctx, cc.Learner, id)
	if err != nil {
		return nil, ExerciseDetail{}, err
	}

	prompt, err := ex.PromptMarkdown()
	if err != nil {
		cc.Logger.Debug("falling back to plain prompt", "exercise", id, "error", err)
		prompt = ex.PromptText()
	}

	return ex, ExerciseDetail{
		ExerciseSummary: ExerciseSummary{
			ID:              ex.ID,
			Title:           ex.Title,
			ExpectedColumns: ex.ExpectedColumns,
			Completed:       progress.IsCompleted(ex.ID),
			Current:         progress.Current == ex.ID,
		},
		Description: ex.Description,
		Prompt:      prompt,
		HintCount:   len(ex.Hints),
		Draft:       draft,
	}, nil
}

func renderExercise(r *output.Renderer, ex *catalog.Exercise, d ExerciseDetail) {
	r.Header(1, fmt.Sprintf("Exercise %d: %s", ex.ID, ex.Title))
	r.Println(d.Prompt)
	r.Println()
	r.Println(output.FormatKeyValue("Expected columns", strings.Join(ex.ExpectedColumns, ", ")))
	r.Println(output.FormatKeyValue("Hints", fmt.Sprintf("%d", d.HintCount)))
	if d.Completed {
		r.Success("Completed")
	}
	if d.Draft != "" {
		r.Println()
		r.Header(2, "Draft")
		r.Println(output.FormatCodeBlock("sql", d.Draft))
	}
}
