package checker

import (
	"context"
	"sync"
	"testing"

	"github.com/leapstack-labs/sqldrill/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kpiResult(totals ...float64) *core.Result {
	res := &core.Result{Columns: []string{"TerritoryID", "TotalSales"}}
	for i, v := range totals {
		res.Rows = append(res.Rows, []any{int64(i + 1), v})
	}
	return res
}

const kpiCheck = `
def check(columns, rows):
    for row in rows:
        if row["totalsales"] < 200000:
            return (False, "territory below KPI")
    return True
`

func TestRowCheck_Run(t *testing.T) {
	rc, err := CompileRowCheck("kpi.star", kpiCheck)
	require.NoError(t, err)

	tests := []struct {
		name    string
		result  *core.Result
		wantOK  bool
		wantMsg string
	}{
		{"empty result passes", kpiResult(), true, ""},
		{"all above", kpiResult(250000, 300000.5), true, ""},
		{"one below", kpiResult(250000, 70648.79), false, "territory below KPI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg, err := rc.Run(context.Background(), tt.result)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestRowCheck_ValueConversion(t *testing.T) {
	rc, err := CompileRowCheck("types.star", `
def check(columns, rows):
    r = rows[0]
    return (r["a"] == None and r["b"] == "text" and r["c"] == "bytes" and r["d"] == 7 and r["e"] == 1.5 and r["f"] == True and columns == ["A", "b", "C", "d", "e", "f"], "types")
`)
	require.NoError(t, err)

	res := &core.Result{
		Columns: []string{"A", "b", "C", "d", "e", "f"},
		Rows:    [][]any{{nil, "text", []byte("bytes"), int64(7), 1.5, true}},
	}
	ok, msg, err := rc.Run(context.Background(), res)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "types", msg)
}

func TestCompileRowCheck_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"syntax error", "def check(:", "failed to compile"},
		{"no check function", "x = 1", "does not define check"},
		{"check not callable", "check = 3", "does not define check"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileRowCheck("bad.star", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRowCheck_BadReturn(t *testing.T) {
	rc, err := CompileRowCheck("ret.star", "def check(columns, rows):\n    return 42\n")
	require.NoError(t, err)

	_, _, err = rc.Run(context.Background(), kpiResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must return bool")
}

func TestRowCheck_StepLimit(t *testing.T) {
	rc, err := CompileRowCheck("loop.star", `
def check(columns, rows):
    n = 0
    for i in range(1000000):
        n += i
    return True
`)
	require.NoError(t, err)

	_, _, err = rc.WithMaxSteps(1000).Run(context.Background(), kpiResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many steps")
}

func TestRowCheck_Cancelled(t *testing.T) {
	rc, err := CompileRowCheck("loop.star", `
def check(columns, rows):
    n = 0
    for i in range(100000000):
        n += i
    return True
`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = rc.WithMaxSteps(0).Run(ctx, kpiResult())
	require.Error(t, err)
}

func TestRowCheck_GlobalsFrozen(t *testing.T) {
	rc, err := CompileRowCheck("seen.star", `
seen = []

def check(columns, rows):
    seen.append(len(rows))
    return True
`)
	require.NoError(t, err)

	_, _, err = rc.Run(context.Background(), kpiResult(250000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frozen")
}

func TestRowCheck_ConcurrentRuns(t *testing.T) {
	rc, err := CompileRowCheck("kpi.star", kpiCheck)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := rc.Run(context.Background(), kpiResult(250000, 300000))
			if err == nil && !ok {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
