// Package duckdb provides a DuckDB engine adapter for sqldrill.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/sqldrill/pkg/adapter"
	"github.com/leapstack-labs/sqldrill/pkg/core"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// julianDayMacro lets the SQLite-flavoured reference solutions run unchanged.
const julianDayMacro = `CREATE OR REPLACE MACRO julianday(d) AS julian(CAST(d AS TIMESTAMP))`

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("opening duckdb engine", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	// the julianday macro and settings live on the connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	for _, stmt := range params.statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply duckdb params (%s): %w", stmt, err)
		}
	}
	if _, err := db.ExecContext(ctx, julianDayMacro); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create julianday macro: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// Run executes learner SQL in a rolled-back transaction.
func (a *Adapter) Run(ctx context.Context, sqlStr string) (*core.Result, error) {
	return a.RunIsolated(ctx, sqlStr, a.Seed)
}

// Seed creates and fills the practice table.
func (a *Adapter) Seed(ctx context.Context) error {
	return a.SeedDataset(ctx, a.DialectName())
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	return a.GetTableMetadataCommon(ctx, table, "main", adapter.PlaceholderQuestion)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
