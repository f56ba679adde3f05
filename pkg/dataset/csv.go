package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the practice table as CSV with a header row.
// NULL values are written as empty unquoted fields.
func WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ColumnNames()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(csvRecord(r)); err != nil {
			return fmt.Errorf("failed to write order %d: %w", r.SalesOrderID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(r SalesOrder) []string {
	person := ""
	if r.SalesPersonID != nil {
		person = strconv.FormatInt(*r.SalesPersonID, 10)
	}
	return []string{
		strconv.FormatInt(r.SalesOrderID, 10),
		strconv.FormatInt(r.CustomerID, 10),
		person,
		strconv.FormatFloat(r.SubTotal, 'f', -1, 64),
		strconv.FormatFloat(r.TaxAmt, 'f', -1, 64),
		r.OrderDate,
		r.DueDate,
		strconv.FormatInt(r.TerritoryID, 10),
	}
}
