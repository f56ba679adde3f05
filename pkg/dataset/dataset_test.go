package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows_Shape(t *testing.T) {
	got := Rows()
	require.Len(t, got, 15)
	assert.Len(t, Columns(), 8)

	seen := make(map[int64]bool)
	nullPersons := 0
	for _, r := range got {
		assert.False(t, seen[r.SalesOrderID], "duplicate SalesOrderID %d", r.SalesOrderID)
		seen[r.SalesOrderID] = true

		assert.GreaterOrEqual(t, r.SubTotal, 0.0)
		assert.GreaterOrEqual(t, r.TaxAmt, 0.0)
		assert.GreaterOrEqual(t, r.DueDate, r.OrderDate, "order %d due before ordered", r.SalesOrderID)
		assert.Len(t, r.Values(), 8)

		if r.SalesPersonID == nil {
			nullPersons++
			assert.Equal(t, int64(43662), r.SalesOrderID)
		}
	}
	assert.Equal(t, 1, nullPersons)
	assert.Equal(t, int64(43659), got[0].SalesOrderID)
	assert.Equal(t, int64(43673), got[14].SalesOrderID)
}

func TestRows_ReturnsCopies(t *testing.T) {
	first := Rows()
	first[0].SubTotal = -1
	*first[0].SalesPersonID = 1

	second := Rows()
	assert.InDelta(t, 20565.6206, second[0].SubTotal, 1e-9)
	assert.Equal(t, int64(279), *second[0].SalesPersonID)

	cols := Columns()
	cols[0].Name = "changed"
	assert.Equal(t, "SalesOrderID", Columns()[0].Name)
}

func TestValues_NullSalesPerson(t *testing.T) {
	for _, r := range Rows() {
		if r.SalesOrderID == 43662 {
			assert.Nil(t, r.Values()[2])
			return
		}
	}
	t.Fatal("order 43662 not found")
}

func TestResult_Limit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, 15},
		{-3, 15},
		{10, 10},
		{15, 15},
		{40, 15},
	}
	for _, tt := range tests {
		res := Result(tt.limit)
		assert.Len(t, res.Rows, tt.want, "limit %d", tt.limit)
		assert.Equal(t, ColumnNames(), res.Columns)
	}
}

func TestCreateTableSQL(t *testing.T) {
	tests := []struct {
		dialect  string
		contains []string
	}{
		{"sqlite", []string{"SalesOrderID INTEGER PRIMARY KEY", "SalesPersonID INTEGER,", "SubTotal REAL NOT NULL", "OrderDate TEXT NOT NULL"}},
		{"duckdb", []string{"SalesOrderID BIGINT PRIMARY KEY", "TaxAmt DOUBLE NOT NULL", "DueDate VARCHAR NOT NULL"}},
		{"postgres", []string{"SubTotal DOUBLE PRECISION NOT NULL", "OrderDate TEXT NOT NULL"}},
		{"mysql", []string{"OrderDate VARCHAR(10) NOT NULL"}},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			ddl := CreateTableSQL(tt.dialect)
			assert.True(t, strings.HasPrefix(ddl, "CREATE TABLE SalesOrderHeader ("))
			for _, s := range tt.contains {
				assert.Contains(t, ddl, s)
			}
		})
	}
}

func TestInsertSQL(t *testing.T) {
	assert.Contains(t, InsertSQL("sqlite"), "VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	assert.Contains(t, InsertSQL("postgres"), "VALUES ($1, $2, $3, $4, $5, $6, $7, $8)")
}

func TestMetadata(t *testing.T) {
	md := Metadata()
	assert.Equal(t, TableName, md.Name)
	assert.Equal(t, int64(15), md.RowCount)
	assert.Equal(t, ColumnNames(), md.ColumnNames())
	assert.True(t, md.Columns[0].PrimaryKey)
	assert.True(t, md.Columns[2].Nullable)
}
