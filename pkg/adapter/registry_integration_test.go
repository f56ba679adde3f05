package adapter_test

import (
	"context"
	"testing"

	"github.com/leapstack-labs/sqldrill/pkg/adapter"
	"github.com/leapstack-labs/sqldrill/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/sqldrill/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/sqldrill/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/sqldrill/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/sqldrill/pkg/adapters/sqlite"
)

func TestSelfRegistration(t *testing.T) {
	for _, name := range []string{"sqlite", "duckdb", "postgres", "mysql"} {
		assert.True(t, adapter.IsRegistered(name), "%s adapter should be auto-registered", name)
	}
	assert.False(t, adapter.IsRegistered("unknown_db"))
	assert.True(t, adapter.IsRegistered(adapter.DefaultType))
}

func TestGet(t *testing.T) {
	factory, ok := adapter.Get("sqlite")
	require.True(t, ok, "Get(sqlite) should return true")
	require.NotNil(t, factory, "Get(sqlite) should return non-nil factory")

	_, ok = adapter.Get("nonexistent")
	assert.False(t, ok, "Get(nonexistent) should return false")
}

func TestNewAdapter_UnknownType(t *testing.T) {
	_, err := adapter.NewAdapter(core.AdapterConfig{Type: "unknown_adapter"}, nil)
	require.Error(t, err, "NewAdapter(unknown_adapter) should fail")

	var unknownErr *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "unknown_adapter", unknownErr.Type, "error type")
	assert.Contains(t, unknownErr.Available, "sqlite", "Available adapters should include sqlite")
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	adp, err := adapter.Open(ctx, core.AdapterConfig{Type: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	defer func() { _ = adp.Close() }()

	res, err := adp.Run(ctx, "SELECT COUNT(*) AS n FROM SalesOrderHeader")
	require.NoError(t, err)
	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, int64(15), res.Rows[0][0])
}
