// Package postgres provides a PostgreSQL engine adapter for sqldrill.
package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/sqldrill/pkg/adapter"
	"github.com/leapstack-labs/sqldrill/pkg/core"
	"github.com/leapstack-labs/sqldrill/pkg/dataset"
)

// julianDayFunction lets the SQLite-flavoured reference solutions run unchanged.
const julianDayFunction = `CREATE OR REPLACE FUNCTION julianday(d text) RETURNS double precision
LANGUAGE sql IMMUTABLE STRICT AS $$
	SELECT (EXTRACT(EPOCH FROM d::timestamp) / 86400.0 + 2440587.5)::double precision
$$`

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	return "postgres"
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg core.AdapterConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	if cfg.Schema != "" {
		dsn += fmt.Sprintf(" search_path=%s", cfg.Schema)
	}

	return dsn
}

// Run executes learner SQL in a rolled-back transaction.
func (a *Adapter) Run(ctx context.Context, sqlStr string) (*core.Result, error) {
	return a.RunIsolated(ctx, sqlStr, a.Seed)
}

// Seed recreates the practice table, loads it with COPY and installs the
// julianday helper.
func (a *Adapter) Seed(ctx context.Context) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	if _, err := a.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+dataset.TableName); err != nil {
		return fmt.Errorf("failed to drop practice table: %w", err)
	}
	if _, err := a.DB.ExecContext(ctx, dataset.CreateTableSQL(a.DialectName())); err != nil {
		return fmt.Errorf("failed to create practice table: %w", err)
	}
	if err := a.copyDataset(ctx); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}
	if _, err := a.DB.ExecContext(ctx, julianDayFunction); err != nil {
		return fmt.Errorf("failed to create julianday function: %w", err)
	}
	return a.RecordFingerprint(ctx)
}

// copyDataset uses PostgreSQL COPY to load the practice rows.
func (a *Adapter) copyDataset(ctx context.Context) error {
	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf); err != nil {
		return err
	}

	conn, err := a.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return conn.Raw(func(driverConn any) error {
		pgxConn := driverConn.(*stdlib.Conn).Conn()
		copySQL := fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)",
			dataset.TableName, strings.Join(dataset.ColumnNames(), ", "))
		_, err := pgxConn.PgConn().CopyFrom(ctx, &buf, copySQL)
		return err
	})
}

// GetTableMetadata retrieves metadata for a specified table.
// Unquoted identifiers are folded to lower case, as PostgreSQL stores them.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	schema := a.Cfg.Schema
	if schema == "" {
		schema = "public"
	}
	return a.GetTableMetadataCommon(ctx, strings.ToLower(table), schema, adapter.PlaceholderDollar)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
