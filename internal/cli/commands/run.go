package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/practice"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	InputFile string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:     "run [SQL]",
		Aliases: []string{"query", "q"},
		Short:   "Run an ad-hoc query against the practice data",
		Long: `Run SQL against the SalesOrderHeader practice table without checking it
against an exercise. Changes made by the query are always rolled back.

SQL is read from the arguments, from --input, or from stdin when piped.`,
		Example: `  sqldrill run "SELECT TerritoryID, SUM(SubTotal) FROM SalesOrderHeader GROUP BY TerritoryID"
  sqldrill run --input query.sql
  echo "SELECT COUNT(*) FROM SalesOrderHeader" | sqldrill run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Read SQL from file")
	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	sql, err := readSQL(cmd, args, opts.InputFile)
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cc.Engine.Execute(cmd.Context(), sql)
	if errors.Is(err, practice.ErrEmptyQuery) {
		return fmt.Errorf("no SQL given: pass it as an argument, with --input, or on stdin")
	}
	if err != nil {
		return err
	}
	return cc.Renderer.Result(res)
}
