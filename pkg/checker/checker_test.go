package checker

import (
	"testing"

	"github.com/leapstack-labs/sqldrill/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	expected := []string{"SalesOrderID", "TaxAmt", "Order_Type"}

	tests := []struct {
		name        string
		result      *core.Result
		expected    []string
		wantVerdict core.Verdict
		wantMissing []string
	}{
		{
			name:        "exact match",
			result:      &core.Result{Columns: []string{"SalesOrderID", "TaxAmt", "Order_Type"}},
			expected:    expected,
			wantVerdict: core.VerdictCorrect,
		},
		{
			name:        "case-insensitive",
			result:      &core.Result{Columns: []string{"salesorderid", "TAXAMT", "order_type"}},
			expected:    expected,
			wantVerdict: core.VerdictCorrect,
		},
		{
			name:        "order independent",
			result:      &core.Result{Columns: []string{"Order_Type", "SalesOrderID", "TaxAmt"}},
			expected:    expected,
			wantVerdict: core.VerdictCorrect,
		},
		{
			name:        "too few columns",
			result:      &core.Result{Columns: []string{"SalesOrderID", "TaxAmt"}},
			expected:    expected,
			wantVerdict: core.VerdictIncorrect,
			wantMissing: []string{"Order_Type"},
		},
		{
			name:        "too many columns",
			result:      &core.Result{Columns: []string{"SalesOrderID", "TaxAmt", "Order_Type", "SubTotal"}},
			expected:    expected,
			wantVerdict: core.VerdictIncorrect,
		},
		{
			name:        "wrong alias",
			result:      &core.Result{Columns: []string{"SalesOrderID", "TaxAmt", "OrderType"}},
			expected:    expected,
			wantVerdict: core.VerdictIncorrect,
			wantMissing: []string{"Order_Type"},
		},
		{
			name:        "query error is never correct",
			result:      core.ErrorResult("no such column: Order_Type"),
			expected:    expected,
			wantVerdict: core.VerdictError,
		},
		{
			name:        "error with no expectation",
			result:      core.ErrorResult("syntax error"),
			expected:    nil,
			wantVerdict: core.VerdictError,
		},
		{
			name:        "no expectation passes",
			result:      &core.Result{Columns: []string{"anything"}},
			expected:    nil,
			wantVerdict: core.VerdictCorrect,
		},
		{
			name:        "nil result",
			result:      nil,
			expected:    expected,
			wantVerdict: core.VerdictError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Evaluate(tt.result, tt.expected)
			assert.Equal(t, tt.wantVerdict, report.Verdict)
			assert.Equal(t, tt.wantVerdict, Check(tt.result, tt.expected))
			if tt.wantMissing != nil {
				assert.Equal(t, tt.wantMissing, report.Missing)
			}
		})
	}
}

func TestCheck_IgnoresRows(t *testing.T) {
	cols := []string{"TerritoryID", "TotalSales"}
	empty := &core.Result{Columns: cols}
	full := &core.Result{Columns: cols, Rows: [][]any{{int64(1), 101921.97}, {int64(3), 70648.79}}}
	reversed := &core.Result{Columns: cols, Rows: [][]any{{int64(3), 70648.79}, {int64(1), 101921.97}}}

	assert.Equal(t, core.VerdictCorrect, Check(empty, cols))
	assert.Equal(t, core.VerdictCorrect, Check(full, cols))
	assert.Equal(t, core.VerdictCorrect, Check(reversed, cols))
}

func TestEvaluate_ErrorMessagePassedThrough(t *testing.T) {
	report := Evaluate(core.ErrorResult("near \"SELEC\": syntax error"), []string{"a"})
	assert.Equal(t, "near \"SELEC\": syntax error", report.Message)
}
