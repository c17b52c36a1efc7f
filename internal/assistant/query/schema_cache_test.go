// internal/assistant/query/schema_cache_test.go
package query

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCacheTableExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("deals").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	cache := NewSchemaCache(db)
	exists, err := cache.TableExists(context.Background(), "deals")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaCacheTableMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("nonexistent").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	cache := NewSchemaCache(db)
	exists, err := cache.TableExists(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSchemaCacheColumnsMemoized(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// One information_schema lookup serves every later call.
	mock.ExpectQuery("SELECT column_name FROM information_schema.columns").
		WithArgs("deals").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
			AddRow("id").
			AddRow("deal_name").
			AddRow("deal_value").
			AddRow("created_at"))

	cache := NewSchemaCache(db)
	ctx := context.Background()

	cols, err := cache.Columns(ctx, "deals")
	require.NoError(t, err)
	assert.True(t, cols["deal_value"])
	assert.False(t, cols["price"])

	// Second call must hit the cache, not the database.
	cols, err = cache.Columns(ctx, "deals")
	require.NoError(t, err)
	assert.True(t, cols["created_at"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaCacheFirstPresent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT column_name FROM information_schema.columns").
		WithArgs("campaigns").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
			AddRow("id").
			AddRow("name").
			AddRow("start_date").
			AddRow("budget"))

	cache := NewSchemaCache(db)
	ctx := context.Background()

	// created_at and date are absent, start_date is the first present.
	col, err := cache.FirstPresent(ctx, "campaigns", []string{"created_at", "date", "start_date"})
	require.NoError(t, err)
	assert.Equal(t, "start_date", col)

	// None present yields empty string, not an error.
	col, err = cache.FirstPresent(ctx, "campaigns", []string{"deal_value", "amount"})
	require.NoError(t, err)
	assert.Equal(t, "", col)
}
