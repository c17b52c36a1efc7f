// internal/assistant/query/fkresolver_test.go
package query

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/models"
)

func TestFKResolverExpandsCustomerNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id::text, "name" FROM "customers"`).
		WithArgs(pq.Array([]string{"10", "11"})).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("10", "PT Maju Jaya").
			AddRow("11", "CV Sentosa"))

	rows := []models.Row{
		{"id": int64(1), "deal_name": "Deal A", "customer_id": int64(10)},
		{"id": int64(2), "deal_name": "Deal B", "customer_id": int64(11)},
		{"id": int64(3), "deal_name": "Deal C", "customer_id": int64(10)},
	}

	r := NewFKResolver(db, logger.NewNoOpLogger())
	r.Resolve(context.Background(), "deals", rows)

	assert.Equal(t, "PT Maju Jaya", rows[0]["customer_name"])
	assert.Equal(t, "CV Sentosa", rows[1]["customer_name"])
	assert.Equal(t, "PT Maju Jaya", rows[2]["customer_name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFKResolverSwallowsLookupErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id::text, "name" FROM "customers"`).
		WillReturnError(assert.AnError)

	rows := []models.Row{
		{"id": int64(1), "deal_name": "Deal A", "customer_id": int64(10)},
	}

	r := NewFKResolver(db, logger.NewNoOpLogger())
	r.Resolve(context.Background(), "deals", rows)

	// Rows are left untouched on failure.
	_, annotated := rows[0]["customer_name"]
	assert.False(t, annotated)
}

func TestFKResolverSkipsTablesWithoutReferences(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := []models.Row{{"id": int64(1), "name": "Internet 100Mbps"}}

	r := NewFKResolver(db, logger.NewNoOpLogger())
	r.Resolve(context.Background(), "products", rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabelColumnName(t *testing.T) {
	assert.Equal(t, "customer_name", labelColumnName("customer_id"))
	assert.Equal(t, "deal_name", labelColumnName("deal_id"))
	assert.Equal(t, "owner_name", labelColumnName("owner"))
}
