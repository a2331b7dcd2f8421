package dbhelper

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ray-remotestate/menuboard/models"
)

// MenuFilter narrows the public menu. Category limits which items are
// returned; TableType only limits which prices each item carries.
type MenuFilter struct {
	Category  string
	TableType string
}

type projectionRow struct {
	ID                  uuid.UUID       `db:"id"`
	Name                string          `db:"name"`
	Description         string          `db:"description"`
	Image               string          `db:"image"`
	CategoryID          uuid.UUID       `db:"category_id"`
	CategoryName        string          `db:"category_name"`
	CategoryDisplayName string          `db:"category_display_name"`
	TableTypeName       sql.NullString  `db:"table_type_name"`
	Amount              sql.NullFloat64 `db:"amount"`
}

// The table type filter sits inside the LEFT JOIN so an item without a
// matching price still yields one row with NULL price columns.
const projectionQuery = `
	SELECT m.id, m.name, m.description, m.image,
	       c.id AS category_id, c.name AS category_name, c.display_name AS category_display_name,
	       tt.name AS table_type_name, p.amount
	FROM menu_items m
	JOIN categories c ON c.id = m.category_id
	LEFT JOIN (
		prices p
		JOIN table_types tt ON tt.id = p.table_type_id AND ($2 = '' OR tt.name = $2)
	) ON p.menu_item_id = m.id
	WHERE ($1 = '' OR c.name = $1)
	ORDER BY m.name ASC, m.id ASC`

func ProjectMenu(ctx context.Context, db sqlx.QueryerContext, filter MenuFilter) ([]models.ProjectedMenuItem, error) {
	var rows []projectionRow
	if err := sqlx.SelectContext(ctx, db, &rows, projectionQuery, filter.Category, filter.TableType); err != nil {
		return nil, fmt.Errorf("project menu: %w", err)
	}
	return foldProjection(rows), nil
}

// foldProjection collapses the per-price rows of each item into one entry
// with a table type name -> amount map. Rows of one item are adjacent.
func foldProjection(rows []projectionRow) []models.ProjectedMenuItem {
	items := make([]models.ProjectedMenuItem, 0, len(rows))
	for _, r := range rows {
		if n := len(items); n == 0 || items[n-1].ID != r.ID {
			items = append(items, models.ProjectedMenuItem{
				ID:          r.ID,
				Name:        r.Name,
				Description: r.Description,
				Image:       r.Image,
				Category: models.CategoryRef{
					ID:          r.CategoryID,
					Name:        r.CategoryName,
					DisplayName: r.CategoryDisplayName,
				},
				Prices: map[string]float64{},
			})
		}
		if r.TableTypeName.Valid && r.Amount.Valid {
			items[len(items)-1].Prices[r.TableTypeName.String] = r.Amount.Float64
		}
	}
	return items
}
