// Package adapter defines the boundary between sqldrill and the SQL engines
// that execute learner queries.
//
// This package contains the public contract that all engine adapters must
// implement, the adapter registry, and BaseSQLAdapter with the shared
// database/sql plumbing. Concrete adapters are in pkg/adapters/ subdirectories
// and register themselves from init().
package adapter

import (
	"context"

	"github.com/leapstack-labs/sqldrill/pkg/core"
)

// DefaultType is the engine used when none is configured.
const DefaultType = "sqlite"

// Adapter defines the interface that all engine adapters must implement.
type Adapter interface {
	// Connect opens the engine using the provided config.
	Connect(ctx context.Context, cfg core.AdapterConfig) error

	// Close closes the engine connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*core.Rows, error)

	// Run executes learner SQL without persisting any change and materializes
	// the result. Engine rejections are reported in Result.Error with the
	// engine's message; the returned error is reserved for connection problems.
	Run(ctx context.Context, sql string) (*core.Result, error)

	// GetTableMetadata retrieves metadata for a specified table.
	GetTableMetadata(ctx context.Context, table string) (*core.TableMetadata, error)

	// Seed (re)creates the practice table and loads the dataset.
	Seed(ctx context.Context) error

	// DialectName returns the dialect of the engine, e.g. "sqlite".
	DialectName() string
}
