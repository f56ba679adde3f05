// Package mysql provides a MySQL engine adapter for sqldrill.
//
// DDL in MySQL commits implicitly, so learner statements such as DROP TABLE
// escape the rollback used for isolation. Use a disposable schema.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/sqldrill/pkg/adapter"
	"github.com/leapstack-labs/sqldrill/pkg/core"
)

var julianDayFunction = []string{
	`DROP FUNCTION IF EXISTS julianday`,
	`CREATE FUNCTION julianday(d VARCHAR(32)) RETURNS DOUBLE DETERMINISTIC RETURN TO_DAYS(d) + 1721059.5`,
}

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new MySQL adapter instance.
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
	return "mysql"
}

// Connect establishes a connection to MySQL.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	if cfg.Database == "" {
		return fmt.Errorf("mysql engine requires engine.database")
	}

	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", buildMySQLDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildMySQLDSN constructs a go-sql-driver DSN from the engine config.
func buildMySQLDSN(cfg core.AdapterConfig) string {
	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = host + ":" + strconv.Itoa(port)
	mc.DBName = cfg.Database
	if len(cfg.Options) > 0 {
		mc.Params = make(map[string]string, len(cfg.Options))
		for k, v := range cfg.Options {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

// Run executes learner SQL in a rolled-back transaction.
func (a *Adapter) Run(ctx context.Context, sqlStr string) (*core.Result, error) {
	return a.RunIsolated(ctx, sqlStr, a.Seed)
}

// Seed creates and fills the practice table and installs the julianday helper.
func (a *Adapter) Seed(ctx context.Context) error {
	if err := a.SeedDataset(ctx, a.DialectName()); err != nil {
		return err
	}
	for _, stmt := range julianDayFunction {
		if _, err := a.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create julianday function: %w", err)
		}
	}
	return nil
}

// GetTableMetadata retrieves metadata for a specified table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	return a.GetTableMetadataCommon(ctx, table, a.Cfg.Database, adapter.PlaceholderQuestion)
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
