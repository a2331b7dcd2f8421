package dbhelper

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/menuboard/database"
)

var fixedTime = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

// useMockDB points database.Restro at a sqlmock connection for the test.
func useMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	prev := database.Restro
	database.Restro = sqlx.NewDb(db, "postgres")
	t.Cleanup(func() {
		database.Restro = prev
		db.Close()
	})
	return mock
}

func existsRow(v bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(v)
}

func menuItemRows(id, categoryID uuid.UUID, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "image", "category_id", "created_at", "updated_at",
		"category_name", "category_display_name", "category_created_at",
	}).AddRow(id.String(), name, "", "", categoryID.String(), fixedTime, fixedTime, "food", "Food", fixedTime)
}

func priceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "menu_item_id", "table_type_id", "amount",
		"table_type_name", "table_type_display_name", "table_type_sort_order", "table_type_created_at",
	})
}
