// Package dataset holds the fixed practice table every exercise queries.
//
// The table is a 15-row excerpt of a sales order header. Values never change
// at runtime: Rows returns copies and engines only ever see the data through
// Seed, which loads it once per connection.
package dataset

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// TableName is the name of the practice table in every engine.
const TableName = "SalesOrderHeader"

// Kind is the logical type of a practice column.
type Kind int

// Column kinds.
const (
	KindInteger Kind = iota
	KindReal
	KindDate
)

// ColumnDef describes one column of the practice table.
type ColumnDef struct {
	Name       string
	Kind       Kind
	Nullable   bool
	PrimaryKey bool
}

// SalesOrder is one row of the practice table.
type SalesOrder struct {
	SalesOrderID  int64
	CustomerID    int64
	SalesPersonID *int64
	SubTotal      float64
	TaxAmt        float64
	OrderDate     string
	DueDate       string
	TerritoryID   int64
}

// Values returns the row in column order, with a nil SalesPersonID as NULL.
func (o SalesOrder) Values() []any {
	var person any
	if o.SalesPersonID != nil {
		person = *o.SalesPersonID
	}
	return []any{
		o.SalesOrderID,
		o.CustomerID,
		person,
		o.SubTotal,
		o.TaxAmt,
		o.OrderDate,
		o.DueDate,
		o.TerritoryID,
	}
}

var columns = []ColumnDef{
	{Name: "SalesOrderID", Kind: KindInteger, PrimaryKey: true},
	{Name: "CustomerID", Kind: KindInteger},
	{Name: "SalesPersonID", Kind: KindInteger, Nullable: true},
	{Name: "SubTotal", Kind: KindReal},
	{Name: "TaxAmt", Kind: KindReal},
	{Name: "OrderDate", Kind: KindDate},
	{Name: "DueDate", Kind: KindDate},
	{Name: "TerritoryID", Kind: KindInteger},
}

func person(id int64) *int64 { return &id }

var rows = []SalesOrder{
	{43659, 29825, person(279), 20565.6206, 1971.5149, "2011-05-31", "2011-06-12", 1},
	{43660, 29672, person(279), 1294.2529, 124.2483, "2011-05-31", "2011-06-12", 2},
	{43661, 29734, person(282), 32726.4786, 3153.7696, "2011-05-31", "2011-06-12", 1},
	{43662, 29994, nil, 28832.5289, 2775.1646, "2011-05-31", "2011-06-02", 3},
	{43663, 29565, person(276), 419.4589, 40.2681, "2011-05-31", "2011-06-10", 2},
	{43664, 29898, person(280), 2443.3509, 195.0313, "2011-05-31", "2011-06-12", 1},
	{43665, 29580, person(283), 2137.231, 191.8865, "2011-05-31", "2011-06-21", 3},
	{43666, 30052, person(276), 973.20, 78.0181, "2011-06-01", "2011-06-13", 2},
	{43667, 29974, person(277), 846.09, 67.6899, "2011-06-01", "2011-06-13", 1},
	{43668, 29614, person(282), 1260.3408, 101.0034, "2011-06-01", "2011-06-13", 3},
	{43669, 29747, person(283), 14603.0375, 1463.5175, "2011-06-01", "2011-06-25", 2},
	{43670, 29890, person(275), 5555.2047, 555.3821, "2011-06-01", "2011-06-13", 1},
	{43671, 29641, person(278), 797.9921, 63.8394, "2011-06-02", "2011-06-26", 2},
	{43672, 29736, person(277), 38418.6865, 3073.4949, "2011-06-02", "2011-06-14", 3},
	{43673, 29811, person(282), 39785.33, 3182.8264, "2011-06-02", "2011-06-26", 1},
}

// Rows returns a copy of the practice rows.
func Rows() []SalesOrder {
	out := make([]SalesOrder, len(rows))
	for i, r := range rows {
		out[i] = r
		if r.SalesPersonID != nil {
			out[i].SalesPersonID = person(*r.SalesPersonID)
		}
	}
	return out
}

// Columns returns the ordered column definitions.
func Columns() []ColumnDef {
	out := make([]ColumnDef, len(columns))
	copy(out, columns)
	return out
}

// ColumnNames returns the column names in table order.
func ColumnNames() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// Metadata describes the practice table in engine-neutral terms.
func Metadata() *core.TableMetadata {
	cols := make([]core.Column, len(columns))
	for i, c := range columns {
		cols[i] = core.Column{
			Name:       c.Name,
			Type:       typeName("sqlite", c.Kind),
			Nullable:   c.Nullable,
			PrimaryKey: c.PrimaryKey,
			Position:   i + 1,
		}
	}
	return &core.TableMetadata{
		Name:     TableName,
		Columns:  cols,
		RowCount: int64(len(rows)),
	}
}

// Result returns the first limit rows as a query result. A limit <= 0 returns all rows.
func Result(limit int) *core.Result {
	n := len(rows)
	if limit > 0 && limit < n {
		n = limit
	}
	res := &core.Result{Columns: ColumnNames(), Rows: make([][]any, 0, n)}
	for _, r := range rows[:n] {
		res.Rows = append(res.Rows, r.Values())
	}
	return res
}

func typeName(dialect string, k Kind) string {
	switch dialect {
	case "duckdb":
		return [...]string{"BIGINT", "DOUBLE", "VARCHAR"}[k]
	case "postgres":
		return [...]string{"BIGINT", "DOUBLE PRECISION", "TEXT"}[k]
	case "mysql":
		return [...]string{"BIGINT", "DOUBLE", "VARCHAR(10)"}[k]
	default:
		return [...]string{"INTEGER", "REAL", "TEXT"}[k]
	}
}

// CreateTableSQL renders the DDL of the practice table for a dialect.
// Unknown dialects get SQLite types.
func CreateTableSQL(dialect string) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(TableName)
	sb.WriteString(" (\n")
	for i, c := range columns {
		fmt.Fprintf(&sb, "    %s %s", c.Name, typeName(dialect, c.Kind))
		if c.PrimaryKey {
			sb.WriteString(" PRIMARY KEY")
		} else if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if i < len(columns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(")")
	return sb.String()
}

// InsertSQL renders a parameterized single-row INSERT for a dialect.
func InsertSQL(dialect string) string {
	marks := make([]string, len(columns))
	for i := range columns {
		if dialect == "postgres" {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		TableName, strings.Join(ColumnNames(), ", "), strings.Join(marks, ", "))
}
