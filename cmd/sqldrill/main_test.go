// Package main provides tests for the sqldrill CLI.
package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/sqldrill/internal/cli"
	"github.com/leapstack-labs/sqldrill/internal/practice"
	"github.com/leapstack-labs/sqldrill/pkg/catalog"
)

// execute runs the CLI with a state database under dir.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append(args, "--state", filepath.Join(dir, "state.db")))

	err := cmd.Execute()
	return buf.String(), err
}

func solution(t *testing.T, id int) string {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	ex, err := cat.Get(id)
	if err != nil {
		t.Fatalf("failed to get exercise %d: %v", id, err)
	}
	return ex.Solution
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(out, "sqldrill v") {
		t.Errorf("version output should contain 'sqldrill v', got: %s", out)
	}
}

func TestHelpCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"exercises", "show", "hint", "solution", "run", "submit", "draft", "progress", "data", "repl", "tui", "serve", "doctor"}
	for _, expected := range expectedCommands {
		if !strings.Contains(out, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, out)
		}
	}
}

func TestExercisesCommandJSON(t *testing.T) {
	out, err := execute(t, t.TempDir(), "exercises", "-o", "json")
	if err != nil {
		t.Fatalf("exercises command error = %v", err)
	}

	var exercises []struct {
		ID      int  `json:"id"`
		Current bool `json:"current"`
	}
	if err := json.Unmarshal([]byte(out), &exercises); err != nil {
		t.Fatalf("exercises output is not JSON: %v\n%s", err, out)
	}
	if len(exercises) != 5 {
		t.Fatalf("expected 5 exercises, got %d", len(exercises))
	}
	if exercises[0].ID != 1 || !exercises[0].Current {
		t.Errorf("exercise 1 should be current, got %+v", exercises[0])
	}
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "run", "SELECT COUNT(*) AS n FROM SalesOrderHeader")
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}
	if !strings.Contains(out, "15") {
		t.Errorf("run output should contain the row count, got: %s", out)
	}
}

func TestSubmitFlow(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "submit", "1", "SELECT SalesOrderID FROM SalesOrderHeader")
	if err != nil {
		t.Fatalf("submit command error = %v", err)
	}
	if !strings.Contains(out, "Missing columns") {
		t.Errorf("incorrect answer should list missing columns, got: %s", out)
	}

	out, err = execute(t, dir, "submit", "1", solution(t, 1))
	if err != nil {
		t.Fatalf("submit command error = %v", err)
	}
	if !strings.Contains(out, practice.MessageCorrect) {
		t.Errorf("correct answer should be congratulated, got: %s", out)
	}

	out, err = execute(t, dir, "progress", "-o", "json")
	if err != nil {
		t.Fatalf("progress command error = %v", err)
	}
	var progress struct {
		Completed []int `json:"completed"`
		Current   int   `json:"current"`
		Percent   int   `json:"percent"`
	}
	if err := json.Unmarshal([]byte(out), &progress); err != nil {
		t.Fatalf("progress output is not JSON: %v\n%s", err, out)
	}
	if len(progress.Completed) != 1 || progress.Completed[0] != 1 {
		t.Errorf("expected exercise 1 completed, got %v", progress.Completed)
	}
	if progress.Current != 2 || progress.Percent != 20 {
		t.Errorf("expected current 2 at 20%%, got %d at %d%%", progress.Current, progress.Percent)
	}

	out, err = execute(t, dir, "history", "-o", "json")
	if err != nil {
		t.Fatalf("history command error = %v", err)
	}
	var attempts []map[string]any
	if err := json.Unmarshal([]byte(out), &attempts); err != nil {
		t.Fatalf("history output is not JSON: %v\n%s", err, out)
	}
	if len(attempts) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(attempts))
	}
}

func TestSubmitUsesDraft(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, dir, "draft", "1", "--set", solution(t, 1)); err != nil {
		t.Fatalf("draft command error = %v", err)
	}
	out, err := execute(t, dir, "submit", "1")
	if err != nil {
		t.Fatalf("submit command error = %v", err)
	}
	if !strings.Contains(out, practice.MessageCorrect) {
		t.Errorf("saved draft should be submitted, got: %s", out)
	}
}

func TestSubmitUnknownExercise(t *testing.T) {
	_, err := execute(t, t.TempDir(), "submit", "99", "SELECT 1")
	if err == nil {
		t.Fatal("expected an error for an unknown exercise")
	}
	if !strings.Contains(err.Error(), "exercise not found: 99") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDataSchemaCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "data", "--schema")
	if err != nil {
		t.Fatalf("data command error = %v", err)
	}
	for _, col := range []string{"SalesOrderID", "SalesPersonID", "TerritoryID"} {
		if !strings.Contains(out, col) {
			t.Errorf("schema should list %s, got: %s", col, out)
		}
	}
}

func TestInvalidEngine(t *testing.T) {
	_, err := execute(t, t.TempDir(), "exercises", "--engine", "oracle")
	if err == nil {
		t.Fatal("expected an error for an unknown engine")
	}
}
