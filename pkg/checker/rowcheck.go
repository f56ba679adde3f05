package checker

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqldrill/pkg/core"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// DefaultMaxSteps bounds the work a row check may do.
const DefaultMaxSteps = 1_000_000

// RowCheck is a compiled Starlark program exposing check(columns, rows).
//
// columns is a list of result column names. rows is a list of dicts keyed by
// lowercased column name. check returns a bool, or a (bool, message) tuple.
type RowCheck struct {
	name     string
	fn       starlark.Callable
	maxSteps uint64
}

// CompileRowCheck executes src and resolves its check function.
func CompileRowCheck(name, src string) (*RowCheck, error) {
	thread := newThread(name, DefaultMaxSteps)
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, name, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compile row check %s: %w", name, err)
	}
	// Run is called concurrently; module state must be immutable.
	globals.Freeze()
	fn, ok := globals["check"].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("row check %s does not define check(columns, rows)", name)
	}
	return &RowCheck{name: name, fn: fn, maxSteps: DefaultMaxSteps}, nil
}

// WithMaxSteps returns a copy of the check with a different step budget.
func (c *RowCheck) WithMaxSteps(steps uint64) *RowCheck {
	cp := *c
	cp.maxSteps = steps
	return &cp
}

// Run evaluates the check against result. A false verdict carries the
// program's message when it returned one.
func (c *RowCheck) Run(ctx context.Context, result *core.Result) (bool, string, error) {
	args, err := checkArgs(result)
	if err != nil {
		return false, "", err
	}

	thread := newThread(c.name, c.maxSteps)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	v, err := starlark.Call(thread, c.fn, args, nil)
	if err != nil {
		return false, "", fmt.Errorf("row check %s failed: %w", c.name, err)
	}
	return interpret(v)
}

func newThread(name string, maxSteps uint64) *starlark.Thread {
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, _ string) {
			// row checks have no output channel
		},
	}
	thread.SetMaxExecutionSteps(maxSteps)
	return thread
}

func checkArgs(result *core.Result) (starlark.Tuple, error) {
	cols := make([]starlark.Value, len(result.Columns))
	for i, c := range result.Columns {
		cols[i] = starlark.String(c)
	}

	rows := make([]starlark.Value, 0, len(result.Rows))
	for r, row := range result.Rows {
		dict := starlark.NewDict(len(result.Columns))
		for i, col := range result.Columns {
			var raw any
			if i < len(row) {
				raw = row[i]
			}
			v, err := toStarlark(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", r, col, err)
			}
			if err := dict.SetKey(starlark.String(strings.ToLower(col)), v); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", r, col, err)
			}
		}
		rows = append(rows, dict)
	}
	return starlark.Tuple{starlark.NewList(cols), starlark.NewList(rows)}, nil
}

func interpret(v starlark.Value) (bool, string, error) {
	switch val := v.(type) {
	case starlark.Bool:
		return bool(val), "", nil
	case starlark.Tuple:
		if val.Len() != 2 {
			return false, "", fmt.Errorf("check must return (bool, message), got %d values", val.Len())
		}
		msg, ok := starlark.AsString(val.Index(1))
		if !ok {
			msg = val.Index(1).String()
		}
		return bool(val.Index(0).Truth()), msg, nil
	default:
		return false, "", fmt.Errorf("check must return bool or (bool, message), got %s", v.Type())
	}
}
