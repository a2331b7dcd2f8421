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

func CategoryExists(ctx context.Context, db sqlx.QueryerContext, id uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, db, &exists, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return exists, nil
}

func ListCategories(ctx context.Context, db sqlx.QueryerContext) ([]models.Category, error) {
	categories := []models.Category{}
	err := sqlx.SelectContext(ctx, db, &categories, `
		SELECT id, name, display_name, created_at
		FROM categories
		ORDER BY display_name, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func CreateCategory(ctx context.Context, db sqlx.QueryerContext, in models.CategoryInput) (*models.Category, error) {
	var c models.Category
	err := sqlx.GetContext(ctx, db, &c, `
		INSERT INTO categories (name, display_name)
		VALUES ($1, $2)
		RETURNING id, name, display_name, created_at`, in.Name, in.DisplayName)
	if _, ok := database.IsUniqueViolation(err); ok {
		return nil, apperr.DuplicateEntry("category name already exists").WithDetail("field", "name")
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

func UpdateCategory(ctx context.Context, db sqlx.QueryerContext, id uuid.UUID, in models.CategoryInput) (*models.Category, error) {
	var c models.Category
	err := sqlx.GetContext(ctx, db, &c, `
		UPDATE categories SET name = $2, display_name = $3
		WHERE id = $1
		RETURNING id, name, display_name, created_at`, id, in.Name, in.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category not found").WithDetail("id", id)
	}
	if _, ok := database.IsUniqueViolation(err); ok {
		return nil, apperr.DuplicateEntry("category name already exists").WithDetail("field", "name")
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

// DeleteCategory refuses to delete a category that menu items still use.
func DeleteCategory(ctx context.Context, db sqlx.ExecerContext, id uuid.UUID) error {
	res, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if _, ok := database.IsForeignKeyViolation(err); ok {
		return apperr.Conflict("category is still used by menu items").WithDetail("id", id)
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("category not found").WithDetail("id", id)
	}
	return nil
}
