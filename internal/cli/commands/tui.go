package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Practice in a full-screen terminal editor",
		Long: `Open a full-screen editor on the current exercise.

Drafts are saved when you run a query, switch exercises or quit.

Keys:
  ctrl+r  run the query
  ctrl+s  submit the answer
  ctrl+t  open the next hint
  ctrl+o  show or hide the solution
  ctrl+n  next exercise
  ctrl+p  previous exercise
  esc     quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.Run(cmd.Context(), cc.Engine, cc.Learner)
		},
	}
}
