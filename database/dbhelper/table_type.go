package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ray-remotestate/menuboard/apperr"
	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/models"
)

const tableTypeColumns = `id, name, display_name, sort_order, created_at`

// ListTableTypes returns table types in display order; equal sort orders
// keep insertion order.
func ListTableTypes(ctx context.Context, db sqlx.QueryerContext) ([]models.TableType, error) {
	tableTypes := []models.TableType{}
	err := sqlx.SelectContext(ctx, db, &tableTypes,
		`SELECT `+tableTypeColumns+` FROM table_types ORDER BY sort_order, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list table types: %w", err)
	}
	return tableTypes, nil
}

func CreateTableType(ctx context.Context, db sqlx.QueryerContext, in models.TableTypeInput) (*models.TableType, error) {
	var tt models.TableType
	err := sqlx.GetContext(ctx, db, &tt, `
		INSERT INTO table_types (name, display_name, sort_order)
		VALUES ($1, $2, $3)
		RETURNING `+tableTypeColumns, in.Name, in.DisplayName, in.SortOrder)
	if _, ok := database.IsUniqueViolation(err); ok {
		return nil, apperr.DuplicateEntry("table type name already exists").WithDetail("field", "name")
	}
	if err != nil {
		return nil, fmt.Errorf("create table type: %w", err)
	}
	return &tt, nil
}

func UpdateTableType(ctx context.Context, db sqlx.QueryerContext, id uuid.UUID, in models.TableTypeInput) (*models.TableType, error) {
	var tt models.TableType
	err := sqlx.GetContext(ctx, db, &tt, `
		UPDATE table_types SET name = $2, display_name = $3, sort_order = $4
		WHERE id = $1
		RETURNING `+tableTypeColumns, id, in.Name, in.DisplayName, in.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("table type not found").WithDetail("id", id)
	}
	if _, ok := database.IsUniqueViolation(err); ok {
		return nil, apperr.DuplicateEntry("table type name already exists").WithDetail("field", "name")
	}
	if err != nil {
		return nil, fmt.Errorf("update table type: %w", err)
	}
	return &tt, nil
}

// DeleteTableType refuses to delete a table type that still has prices.
func DeleteTableType(ctx context.Context, db sqlx.ExecerContext, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM table_types WHERE id = $1`, id)
	if _, ok := database.IsForeignKeyViolation(err); ok {
		return apperr.Conflict("table type is still used by prices").WithDetail("id", id)
	}
	if err != nil {
		return fmt.Errorf("delete table type: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("table type not found").WithDetail("id", id)
	}
	return nil
}
