package postgres

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/leapstack-labs/sqldrill/pkg/adapter"
	"github.com/leapstack-labs/sqldrill/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   core.AdapterConfig
		expected string
	}{
		{
			name: "basic connection",
			config: core.AdapterConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "practice",
				Username: "learner",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=practice sslmode=disable user=learner password=pass",
		},
		{
			name: "with custom sslmode",
			config: core.AdapterConfig{
				Host:     "db.example.com",
				Port:     5432,
				Database: "practice",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=db.example.com port=5432 dbname=practice sslmode=require user=admin",
		},
		{
			name: "defaults",
			config: core.AdapterConfig{
				Database: "practice",
			},
			expected: "host=localhost port=5432 dbname=practice sslmode=disable",
		},
		{
			name: "custom port and schema",
			config: core.AdapterConfig{
				Host:     "db.example.com",
				Port:     5433,
				Database: "classroom",
				Schema:   "drill",
			},
			expected: "host=db.example.com port=5433 dbname=classroom sslmode=disable search_path=drill",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func TestNew(t *testing.T) {
	adp := New(nil)

	assert.NotNil(t, adp, "New() should return non-nil adapter")
	assert.Nil(t, adp.DB, "DB should be nil before Connect")
	assert.False(t, adp.IsConnected(), "should not be connected initially")
	assert.Equal(t, "postgres", adp.DialectName(), "dialect name should be postgres")

	var _ adapter.Adapter = adp
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.Exec(ctx, "SELECT 1")
			},
		},
		{
			name: "run without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Run(ctx, "SELECT 1")
				return err
			},
		},
		{
			name: "get metadata without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.GetTableMetadata(ctx, "SalesOrderHeader")
				return err
			},
		},
		{
			name: "seed without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.Seed(ctx)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation(context.Background(), New(nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not established")
		})
	}
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("postgres"), "postgres adapter should be registered")

	factory, ok := adapter.Get("postgres")
	require.True(t, ok, "should be able to get postgres factory")

	pg, ok := factory(nil).(*Adapter)
	require.True(t, ok, "factory should return *Adapter")
	assert.Equal(t, "postgres", pg.DialectName())
}

func TestAdapter_Close(t *testing.T) {
	adp := New(nil)
	assert.NoError(t, adp.Close())
}

// TestAdapter_Live runs against a real server when SQLDRILL_TEST_PG_HOST is set.
func TestAdapter_Live(t *testing.T) {
	host := os.Getenv("SQLDRILL_TEST_PG_HOST")
	if host == "" {
		t.Skip("SQLDRILL_TEST_PG_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("SQLDRILL_TEST_PG_PORT"))

	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{
		Host:     host,
		Port:     port,
		Database: os.Getenv("SQLDRILL_TEST_PG_DATABASE"),
		Username: os.Getenv("SQLDRILL_TEST_PG_USER"),
		Password: os.Getenv("SQLDRILL_TEST_PG_PASSWORD"),
	}))
	defer func() { _ = adp.Close() }()
	require.NoError(t, adp.Seed(ctx))

	res, err := adp.Run(ctx, "SELECT CAST(julianday(DueDate) - julianday(OrderDate) AS INTEGER) AS d FROM SalesOrderHeader WHERE SalesOrderID = 43659")
	require.NoError(t, err)
	require.False(t, res.Failed(), res.Error)
	assert.EqualValues(t, 12, res.Rows[0][0])
}
