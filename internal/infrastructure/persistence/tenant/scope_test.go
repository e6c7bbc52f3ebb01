package tenant

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newScopeTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestTenantScope(t *testing.T) {
	t.Run("adds tenant filter to the query", func(t *testing.T) {
		db, mock, mockDB := newScopeTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		var rows []map[string]interface{}
		err := db.Table("orders").Scopes(TenantScope(tenantID)).Find(&rows).Error

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("composes with further conditions", func(t *testing.T) {
		db, mock, mockDB := newScopeTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND status = \$2`).
			WithArgs(tenantID, "PENDING").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		var rows []map[string]interface{}
		err := db.Table("orders").
			Scopes(TenantScope(tenantID)).
			Where("status = ?", "PENDING").
			Find(&rows).Error

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
