package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ray-remotestate/menuboard/apperr"
	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/models"
)

type menuItemRow struct {
	models.MenuItem
	CategoryName        string    `db:"category_name"`
	CategoryDisplayName string    `db:"category_display_name"`
	CategoryCreatedAt   time.Time `db:"category_created_at"`
}

func (r menuItemRow) toModel() models.MenuItem {
	item := r.MenuItem
	item.Category = &models.Category{
		ID:          r.CategoryID,
		Name:        r.CategoryName,
		DisplayName: r.CategoryDisplayName,
		CreatedAt:   r.CategoryCreatedAt,
	}
	item.Prices = []models.Price{}
	return item
}

type priceRow struct {
	models.Price
	TableTypeName        string    `db:"table_type_name"`
	TableTypeDisplayName string    `db:"table_type_display_name"`
	TableTypeSortOrder   int       `db:"table_type_sort_order"`
	TableTypeCreatedAt   time.Time `db:"table_type_created_at"`
}

func (r priceRow) toModel() models.Price {
	p := r.Price
	p.TableType = &models.TableType{
		ID:          r.TableTypeID,
		Name:        r.TableTypeName,
		DisplayName: r.TableTypeDisplayName,
		SortOrder:   r.TableTypeSortOrder,
		CreatedAt:   r.TableTypeCreatedAt,
	}
	return p
}

const menuItemSelect = `
	SELECT m.id, m.name, m.description, m.image, m.category_id, m.created_at, m.updated_at,
	       c.name AS category_name, c.display_name AS category_display_name, c.created_at AS category_created_at
	FROM menu_items m
	JOIN categories c ON c.id = m.category_id`

const priceSelect = `
	SELECT p.id, p.menu_item_id, p.table_type_id, p.amount,
	       tt.name AS table_type_name, tt.display_name AS table_type_display_name,
	       tt.sort_order AS table_type_sort_order, tt.created_at AS table_type_created_at
	FROM prices p
	JOIN table_types tt ON tt.id = p.table_type_id`

// MenuItemNameTaken reports whether another item in the category already
// uses name. Pass uuid.Nil as excludeID when creating.
func MenuItemNameTaken(ctx context.Context, db sqlx.QueryerContext, name string, categoryID, excludeID uuid.UUID) (bool, error) {
	var taken bool
	err := sqlx.GetContext(ctx, db, &taken, `
		SELECT EXISTS (
			SELECT 1 FROM menu_items
			WHERE name = $1 AND category_id = $2 AND id <> $3
		)`, name, categoryID, excludeID)
	if err != nil {
		return false, fmt.Errorf("check menu item name: %w", err)
	}
	return taken, nil
}

// LockMenuItem takes a row lock on the item for the rest of the
// transaction, serializing concurrent updates of the same item.
func LockMenuItem(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	var locked uuid.UUID
	err := tx.GetContext(ctx, &locked, `SELECT id FROM menu_items WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("menu item not found").WithDetail("id", id)
	}
	if err != nil {
		return fmt.Errorf("lock menu item: %w", err)
	}
	return nil
}

func InsertMenuItem(ctx context.Context, db sqlx.ExtContext, in models.MenuItemInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := sqlx.GetContext(ctx, db, &id, `
		INSERT INTO menu_items (name, description, image, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, in.Name, in.Description, in.Image, in.CategoryID)
	if err != nil {
		return uuid.Nil, menuItemWriteError(err, in)
	}
	return id, nil
}

func UpdateMenuItemFields(ctx context.Context, db sqlx.ExecerContext, id uuid.UUID, in models.MenuItemInput) error {
	res, err := db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = $2, description = $3, image = $4, category_id = $5, updated_at = now()
		WHERE id = $1`, id, in.Name, in.Description, in.Image, in.CategoryID)
	if err != nil {
		return menuItemWriteError(err, in)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("menu item not found").WithDetail("id", id)
	}
	return nil
}

// ReplacePrices deletes every price of the item and inserts prices in their
// place. It must run inside the caller's transaction: a table type missing
// from prices loses its price.
func ReplacePrices(ctx context.Context, tx *sqlx.Tx, menuItemID uuid.UUID, prices []models.PriceInput) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE menu_item_id = $1`, menuItemID); err != nil {
		return fmt.Errorf("delete prices: %w", err)
	}
	return InsertPrices(ctx, tx, menuItemID, prices)
}

// InsertPrices writes the whole price set of an item in one statement.
func InsertPrices(ctx context.Context, db sqlx.ExecerContext, menuItemID uuid.UUID, prices []models.PriceInput) error {
	if len(prices) == 0 {
		return nil
	}

	tableTypeIDs := make([]string, 0, len(prices))
	amounts := make([]float64, 0, len(prices))
	for _, p := range prices {
		tableTypeIDs = append(tableTypeIDs, p.TableTypeID.String())
		amounts = append(amounts, p.Amount)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO prices (menu_item_id, table_type_id, amount)
		SELECT $1, t.table_type_id, t.amount
		FROM unnest($2::uuid[], $3::numeric[]) AS t(table_type_id, amount)`,
		menuItemID, pq.Array(tableTypeIDs), pq.Array(amounts))
	if err == nil {
		return nil
	}
	if constraint, ok := database.IsForeignKeyViolation(err); ok && constraint == "prices_table_type_id_fkey" {
		appErr := apperr.NotFound("table type not found")
		if id, found := missingTableType(err, prices); found {
			appErr.WithDetail("table_type_id", id)
		}
		return appErr
	}
	if _, ok := database.IsUniqueViolation(err); ok {
		return apperr.Validation("table type priced twice").WithDetail("field", "prices")
	}
	if database.IsNumericOutOfRange(err) {
		return apperr.Validation("price amount out of range").WithDetail("field", "prices")
	}
	return fmt.Errorf("insert prices: %w", err)
}

// missingTableType picks the offending id out of the foreign key error
// detail, e.g. "Key (table_type_id)=(<id>) is not present in table ..."
func missingTableType(err error, prices []models.PriceInput) (uuid.UUID, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return uuid.Nil, false
	}
	for _, p := range prices {
		if strings.Contains(pqErr.Detail, p.TableTypeID.String()) {
			return p.TableTypeID, true
		}
	}
	return uuid.Nil, false
}

func GetMenuItem(ctx context.Context, db sqlx.QueryerContext, id uuid.UUID) (*models.MenuItem, error) {
	var row menuItemRow
	err := sqlx.GetContext(ctx, db, &row, menuItemSelect+` WHERE m.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("menu item not found").WithDetail("id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}

	var prices []priceRow
	err = sqlx.SelectContext(ctx, db, &prices,
		priceSelect+` WHERE p.menu_item_id = $1 ORDER BY tt.sort_order, tt.created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("get menu item prices: %w", err)
	}

	item := row.toModel()
	for _, p := range prices {
		item.Prices = append(item.Prices, p.toModel())
	}
	return &item, nil
}

// ListMenuItems returns items ordered by name, optionally limited to one
// category, with their prices attached.
func ListMenuItems(ctx context.Context, db sqlx.QueryerContext, categoryID uuid.UUID) ([]models.MenuItem, error) {
	query := menuItemSelect
	var args []any
	if categoryID != uuid.Nil {
		query += ` WHERE m.category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY m.name, m.id`

	var rows []menuItemRow
	if err := sqlx.SelectContext(ctx, db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	items := make([]models.MenuItem, 0, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	ids := make([]string, 0, len(rows))
	for i, r := range rows {
		items = append(items, r.toModel())
		index[r.ID] = i
		ids = append(ids, r.ID.String())
	}
	if len(items) == 0 {
		return items, nil
	}

	var prices []priceRow
	err := sqlx.SelectContext(ctx, db, &prices,
		priceSelect+` WHERE p.menu_item_id = ANY($1::uuid[]) ORDER BY tt.sort_order, tt.created_at`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list menu item prices: %w", err)
	}
	for _, p := range prices {
		if i, ok := index[p.MenuItemID]; ok {
			items[i].Prices = append(items[i].Prices, p.toModel())
		}
	}
	return items, nil
}

// DeleteMenuItem removes the item and all of its prices.
func DeleteMenuItem(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE menu_item_id = $1`, id); err != nil {
		return fmt.Errorf("delete prices: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("menu item not found").WithDetail("id", id)
	}
	return nil
}

func menuItemWriteError(err error, in models.MenuItemInput) error {
	if _, ok := database.IsUniqueViolation(err); ok {
		return duplicateMenuItem(in)
	}
	if _, ok := database.IsForeignKeyViolation(err); ok {
		return apperr.NotFound("category not found").WithDetail("category_id", in.CategoryID)
	}
	return fmt.Errorf("write menu item: %w", err)
}

func duplicateMenuItem(in models.MenuItemInput) *apperr.Error {
	return apperr.DuplicateEntry("a menu item with this name already exists in the category").
		WithDetail("field", "name").
		WithDetail("name", in.Name)
}

// CreateMenuItem inserts the item and its prices in one transaction and
// returns the stored item with category and table types resolved.
func CreateMenuItem(ctx context.Context, in models.MenuItemInput) (*models.MenuItem, error) {
	var id uuid.UUID
	err := database.Tx(ctx, func(tx *sqlx.Tx) error {
		if err := checkMenuItemRefs(ctx, tx, in, uuid.Nil); err != nil {
			return err
		}

		var err error
		id, err = InsertMenuItem(ctx, tx, in)
		if err != nil {
			return err
		}
		return InsertPrices(ctx, tx, id, in.Prices)
	})
	if err != nil {
		return nil, err
	}
	return GetMenuItem(ctx, database.Restro, id)
}

// UpdateMenuItem replaces the item's fields and its whole price set in one
// transaction. Prices are never merged.
func UpdateMenuItem(ctx context.Context, id uuid.UUID, in models.MenuItemInput) (*models.MenuItem, error) {
	err := database.Tx(ctx, func(tx *sqlx.Tx) error {
		if err := LockMenuItem(ctx, tx, id); err != nil {
			return err
		}
		if err := checkMenuItemRefs(ctx, tx, in, id); err != nil {
			return err
		}
		if err := ReplacePrices(ctx, tx, id, in.Prices); err != nil {
			return err
		}
		return UpdateMenuItemFields(ctx, tx, id, in)
	})
	if err != nil {
		return nil, err
	}
	return GetMenuItem(ctx, database.Restro, id)
}

func RemoveMenuItem(ctx context.Context, id uuid.UUID) error {
	return database.Tx(ctx, func(tx *sqlx.Tx) error {
		return DeleteMenuItem(ctx, tx, id)
	})
}

func checkMenuItemRefs(ctx context.Context, tx *sqlx.Tx, in models.MenuItemInput, excludeID uuid.UUID) error {
	exists, err := CategoryExists(ctx, tx, in.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("category not found").WithDetail("category_id", in.CategoryID)
	}

	taken, err := MenuItemNameTaken(ctx, tx, in.Name, in.CategoryID, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return duplicateMenuItem(in)
	}
	return nil
}
