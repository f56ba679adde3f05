package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/sqldrill/pkg/core"
	"github.com/leapstack-labs/sqldrill/pkg/dataset"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query and isolated learner execution.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger

	// fingerprint renders the practice table as seeded.
	fingerprint string
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*core.Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &core.Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ErrIsolationBroken reports that learner SQL ended the isolating
// transaction itself, or that the practice table changed anyway.
var ErrIsolationBroken = errors.New("learner SQL escaped the isolating transaction")

// restoreTimeout bounds the integrity check and reseed that follow a learner
// query. They run even when the query's own context has expired.
const restoreTimeout = 30 * time.Second

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// RunIsolated executes learner SQL inside a transaction that is always rolled
// back, so the practice data never changes once seeded. Engine errors are
// returned verbatim in Result.Error.
//
// SQL such as "COMMIT; DELETE ..." ends the transaction early and runs the
// rest in autocommit mode. That is detected from the failing rollback or from
// the table fingerprint taken at seed time, and reseed restores the data
// before the result is returned.
func (b *BaseSQLAdapter) RunIsolated(ctx context.Context, sqlStr string, reseed func(context.Context) error) (*core.Result, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	start := time.Now()
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := collect(ctx, tx, sqlStr)
	if err != nil {
		b.logger().Debug("query rejected by engine", "error", err)
		result = core.ErrorResult(err.Error())
	}
	result.Duration = time.Since(start)

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()

	breach := b.finishIsolated(rctx, tx)
	if breach == nil {
		return result, nil
	}

	b.logger().Warn("restoring practice data", "error", breach)
	if reseed == nil {
		return nil, breach
	}
	if err := reseed(rctx); err != nil {
		return nil, fmt.Errorf("failed to restore practice data: %w", err)
	}
	return result, nil
}

// finishIsolated rolls tx back and verifies the practice table still matches
// its seeded fingerprint.
func (b *BaseSQLAdapter) finishIsolated(ctx context.Context, tx *sql.Tx) error {
	// ErrTxDone means database/sql already rolled back, e.g. on cancellation.
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: %v", ErrIsolationBroken, err)
	}
	if b.fingerprint == "" {
		return nil
	}

	fp, err := b.datasetFingerprint(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIsolationBroken, err)
	}
	if fp != b.fingerprint {
		return fmt.Errorf("%w: %s changed", ErrIsolationBroken, dataset.TableName)
	}
	return nil
}

// RecordFingerprint snapshots the seeded practice table. Later runs compare
// against it. Adapters that seed without SeedDataset call it themselves.
func (b *BaseSQLAdapter) RecordFingerprint(ctx context.Context) error {
	fp, err := b.datasetFingerprint(ctx)
	if err != nil {
		return fmt.Errorf("failed to fingerprint practice table: %w", err)
	}
	b.fingerprint = fp
	return nil
}

func (b *BaseSQLAdapter) datasetFingerprint(ctx context.Context) (string, error) {
	res, err := collect(ctx, b.DB, "SELECT * FROM "+dataset.TableName+" ORDER BY SalesOrderID")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintln(&sb, res.Columns)
	for _, row := range res.Rows {
		fmt.Fprintln(&sb, row...)
	}
	return sb.String(), nil
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

func collect(ctx context.Context, q queryer, sqlStr string) (*core.Result, error) {
	rows, err := q.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	result := &core.Result{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if bs, ok := v.([]byte); ok {
				values[i] = decodeText(bs, types[i].DatabaseTypeName())
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// decodeText converts a value a driver returned as bytes. Text protocols such
// as MySQL's send numbers as text, so numeric columns are parsed by their
// declared type and everything else becomes a string.
func decodeText(bs []byte, typeName string) any {
	text := string(bs)
	typeName = strings.TrimPrefix(strings.ToUpper(typeName), "UNSIGNED ")
	switch {
	case strings.HasSuffix(typeName, "INT") || typeName == "INTEGER":
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
	case typeName == "DECIMAL" || typeName == "NUMERIC" || typeName == "FLOAT" ||
		typeName == "DOUBLE" || typeName == "REAL":
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	}
	return text
}

// SeedDataset drops and recreates the practice table, then inserts every
// dataset row with a prepared statement in one transaction.
func (b *BaseSQLAdapter) SeedDataset(ctx context.Context, dialect string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+dataset.TableName); err != nil {
		return fmt.Errorf("failed to drop practice table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, dataset.CreateTableSQL(dialect)); err != nil {
		return fmt.Errorf("failed to create practice table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, dataset.InsertSQL(dialect))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range dataset.Rows() {
		if _, err := stmt.ExecContext(ctx, row.Values()...); err != nil {
			return fmt.Errorf("failed to insert order %d: %w", row.SalesOrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	b.logger().Debug("practice table seeded", "table", dataset.TableName, "rows", len(dataset.Rows()))
	return b.RecordFingerprint(ctx)
}

// PlaceholderStyle selects how bind parameters are written.
type PlaceholderStyle int

// Placeholder styles.
const (
	PlaceholderQuestion PlaceholderStyle = iota // ?
	PlaceholderDollar                           // $1
)

// Format renders the n-th (1-based) placeholder.
func (s PlaceholderStyle) Format(n int) string {
	if s == PlaceholderDollar {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses defaultSchema if not specified.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata
// over information_schema.columns.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table, defaultSchema string, style PlaceholderStyle) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema, tableName := ParseQualifiedName(table, defaultSchema)

	//nolint:gosec // Placeholders are fixed strings
	query := fmt.Sprintf(`
		SELECT 
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns 
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, style.Format(1), style.Format(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", schema, tableName) //nolint:gosec // Table names are from metadata
	var rowCount int64
	if err := b.DB.QueryRowContext(ctx, countQuery).Scan(&rowCount); err != nil {
		rowCount = 0
	}

	return &core.TableMetadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: rowCount,
	}, nil
}
