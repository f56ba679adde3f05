package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/cli/output"
	"github.com/leapstack-labs/sqldrill/pkg/core"
	"github.com/leapstack-labs/sqldrill/pkg/dataset"
)

// DataOptions holds options for the data command.
type DataOptions struct {
	Limit  int
	Schema bool
	CSV    bool
}

// DataOutput is the JSON shape of the data command.
type DataOutput struct {
	Table  *core.TableMetadata `json:"table"`
	Rows   output.ResultOutput `json:"preview"`
	Limit  int                 `json:"limit"`
	Engine string              `json:"engine"`
}

// NewDataCommand creates the data command.
func NewDataCommand() *cobra.Command {
	opts := &DataOptions{}
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Preview the SalesOrderHeader practice table",
		Long: `Show the schema of the practice table and its first rows. NULL values are
shown as NULL. Use --csv to export the full dataset.`,
		Example: `  sqldrill data
  sqldrill data --limit 0
  sqldrill data --csv > sales_order_header.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runData(cmd, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Number of rows to preview (0 for all)")
	cmd.Flags().BoolVar(&opts.Schema, "schema", false, "Only show the schema")
	cmd.Flags().BoolVar(&opts.CSV, "csv", false, "Write the full dataset as CSV")
	return cmd
}

func runData(cmd *cobra.Command, opts *DataOptions) error {
	if opts.CSV {
		return dataset.WriteCSV(cmd.OutOrStdout())
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	r := cc.Renderer

	meta, err := cc.Engine.Schema(ctx)
	if err != nil {
		return err
	}
	preview, err := cc.Engine.Preview(ctx, opts.Limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(DataOutput{
			Table:  meta,
			Rows:   output.NewResultOutput(preview),
			Limit:  opts.Limit,
			Engine: cc.Engine.Adapter().DialectName(),
		})
	}

	renderSchema(r, meta)
	if opts.Schema {
		return nil
	}
	r.Println()
	r.Header(2, "Preview")
	return r.Result(preview)
}

func renderSchema(r *output.Renderer, meta *core.TableMetadata) {
	r.Header(1, "Table: "+meta.Name)
	rows := make([][]any, 0, len(meta.Columns))
	for _, c := range meta.Columns {
		nullable := "NO"
		if c.Nullable {
			nullable = "YES"
		}
		key := ""
		if c.PrimaryKey {
			key = "PK"
		}
		rows = append(rows, []any{c.Name, c.Type, nullable, key})
	}
	r.Table([]string{"Column", "Type", "Nullable", "Key"}, rows)
}
