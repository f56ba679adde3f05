// Package sqlite provides the embedded SQLite engine adapter, the default
// practice engine.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/sqldrill/pkg/adapter"
	"github.com/leapstack-labs/sqldrill/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
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
	return "sqlite"
}

// Connect opens the SQLite database.
// Use ":memory:" (the default) for a private in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}
	if err := registerFunctions(); err != nil {
		return err
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("opening sqlite engine", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	// every connection to ":memory:" is a different database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	for _, name := range params.pragmaNames() {
		stmt := fmt.Sprintf("PRAGMA %s = %s", name, params.Pragmas[name])
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply pragma %s: %w", name, err)
		}
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// Run executes learner SQL in a rolled-back transaction on a read-only
// connection.
func (a *Adapter) Run(ctx context.Context, sqlStr string) (*core.Result, error) {
	return a.RunIsolated(ctx, sqlStr, a.Seed)
}

// Seed creates and fills the practice table, then switches the connection to
// query_only so writes fail even outside the rolled-back transaction.
func (a *Adapter) Seed(ctx context.Context) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := a.DB.ExecContext(ctx, "PRAGMA query_only = OFF"); err != nil {
		return fmt.Errorf("failed to leave query_only mode: %w", err)
	}
	if err := a.SeedDataset(ctx, a.DialectName()); err != nil {
		return err
	}
	if _, err := a.DB.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return fmt.Errorf("failed to enter query_only mode: %w", err)
	}
	return nil
}

// GetTableMetadata retrieves metadata for a specified table using PRAGMA table_info.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema, tableName := adapter.ParseQualifiedName(table, "main")
	if strings.ContainsAny(tableName, "'\"`;") || strings.ContainsAny(schema, "'\"`;") {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf(`SELECT cid, name, type, "notnull", pk FROM pragma_table_info('%s', '%s') ORDER BY cid`, tableName, schema) //nolint:gosec // quotes rejected above
	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var (
			cid     int
			col     core.Column
			notNull int
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Position = cid + 1
		col.Nullable = notNull == 0 && pk == 0
		col.PrimaryKey = pk > 0
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	var rowCount int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM "%s"."%s"`, schema, tableName) //nolint:gosec // quotes rejected above
	if err := a.DB.QueryRowContext(ctx, countQuery).Scan(&rowCount); err != nil {
		rowCount = 0
	}

	return &core.TableMetadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: rowCount,
	}, nil
}

// Tables lists user tables in the database.
func (a *Adapter) Tables(ctx context.Context) ([]string, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	rows, err := a.DB.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
