package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   core.SourceConfig
		expected string
	}{
		{
			name: "basic connection",
			config: core.SourceConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				User:     "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: core.SourceConfig{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				User:     "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name:     "defaults",
			config:   core.SourceConfig{Database: "mydb"},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name: "custom port",
			config: core.SourceConfig{
				Host:     "db.example.com",
				Port:     5433,
				Database: "analytics",
				User:     "analyst",
			},
			expected: "host=db.example.com port=5433 dbname=analytics sslmode=disable user=analyst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func TestAdapter_Registered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("postgres"))

	adp, err := adapter.NewAdapter(core.SourceConfig{Type: "postgres"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", adp.Type())
	assert.False(t, adp.FileBacked())
}

func TestAdapter_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"transaction_id", "amount"}).
		AddRow("TXN_0", 12.5).
		AddRow("TXN_1", nil)
	mock.ExpectQuery("SELECT \\* FROM sales.transactions").WillReturnRows(rows)
	mock.ExpectClose()

	adp := New(nil)
	adp.DB = db
	adp.Cfg = core.SourceConfig{Table: "sales.transactions"}

	ds, err := adp.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Nil(t, ds.Value(1, "amount"))

	require.NoError(t, adp.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_LoadNumericColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// pgx's database/sql driver returns NUMERIC values as text.
	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("transaction_id").OfType("TEXT", ""),
		mock.NewColumn("amount").OfType("NUMERIC", ""),
	).
		AddRow("TXN_0", "-5.00").
		AddRow("TXN_1", "10.00")
	mock.ExpectQuery("SELECT \\* FROM transactions").WillReturnRows(rows)

	adp := New(nil)
	adp.DB = db
	adp.Cfg = core.SourceConfig{Table: "transactions"}

	ds, err := adp.Load(context.Background())
	require.NoError(t, err)

	minAmount := 0.0
	v := validate.New(ds, "Transactions")
	v.CheckRange("amount", &minAmount, nil)
	rep := v.Report()
	assert.Equal(t, 1, rep.FailedChecks)
	assert.Equal(t, "Found 1 records below 0", rep.Failures[0].Message)
}

func TestAdapter_LoadWithoutConnect(t *testing.T) {
	adp := New(nil)
	adp.Cfg = core.SourceConfig{Table: "t"}
	_, err := adp.Load(context.Background())
	assert.Error(t, err)
}
