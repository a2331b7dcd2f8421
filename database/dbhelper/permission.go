package dbhelper

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ray-remotestate/menuboard/apperr"
	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/models"
)

// ListAdminMenuItemsByRole returns the admin navigation entries the role is
// allowed to see.
func ListAdminMenuItemsByRole(ctx context.Context, db sqlx.QueryerContext, roleID uuid.UUID) ([]models.AdminMenuItem, error) {
	items := []models.AdminMenuItem{}
	err := sqlx.SelectContext(ctx, db, &items, `
		SELECT a.id, a.name, a.display_name, a.path, a.sort_order
		FROM admin_menu_items a
		JOIN role_admin_menu_items ra ON ra.admin_menu_item_id = a.id
		WHERE ra.role_id = $1
		ORDER BY a.sort_order, a.name`, roleID)
	if err != nil {
		return nil, fmt.Errorf("list admin menu items: %w", err)
	}
	return items, nil
}

// SetRolePermissions replaces the role's admin menu items with itemIDs.
func SetRolePermissions(ctx context.Context, roleID uuid.UUID, itemIDs []uuid.UUID) ([]models.AdminMenuItem, error) {
	err := database.Tx(ctx, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, roleID); err != nil {
			return fmt.Errorf("check role: %w", err)
		}
		if !exists {
			return apperr.NotFound("role not found").WithDetail("id", roleID)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM role_admin_menu_items WHERE role_id = $1`, roleID); err != nil {
			return fmt.Errorf("delete permissions: %w", err)
		}
		for _, itemID := range itemIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO role_admin_menu_items (role_id, admin_menu_item_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, roleID, itemID)
			if _, ok := database.IsForeignKeyViolation(err); ok {
				return apperr.NotFound("admin menu item not found").WithDetail("admin_menu_item_id", itemID)
			}
			if err != nil {
				return fmt.Errorf("insert permission: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ListAdminMenuItemsByRole(ctx, database.Restro, roleID)
}
