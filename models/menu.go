package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// machineName is the shape of category and table type keys, e.g. "dine-in".
var machineName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// MaxAmount is the largest price a NUMERIC(10,2) column holds.
const MaxAmount = 99999999.99

type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type TableType struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DisplayName string    `db:"display_name" json:"display_name"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type MenuItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Image       string    `db:"image" json:"image"`
	CategoryID  uuid.UUID `db:"category_id" json:"category_id"`
	Category    *Category `db:"-" json:"category,omitempty"`
	Prices      []Price   `db:"-" json:"prices"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Price struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	MenuItemID  uuid.UUID  `db:"menu_item_id" json:"menu_item_id"`
	TableTypeID uuid.UUID  `db:"table_type_id" json:"table_type_id"`
	Amount      float64    `db:"amount" json:"amount"`
	TableType   *TableType `db:"-" json:"table_type,omitempty"`
}

// ProjectedMenuItem is the public view of a menu item: prices keyed by
// table type name.
type ProjectedMenuItem struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Category    CategoryRef        `json:"category"`
	Prices      map[string]float64 `json:"prices"`
}

type CategoryRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
}

type PriceInput struct {
	TableTypeID uuid.UUID `json:"table_type_id"`
	Amount      float64   `json:"amount"`
}

type MenuItemInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	CategoryID  uuid.UUID    `json:"category_id"`
	Prices      []PriceInput `json:"prices"`
}

func (in *MenuItemInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
}

// Validate checks required fields and the price list. A table type may
// appear at most once per item.
func (in MenuItemInput) Validate() error {
	var fe fieldErrors
	if in.Name == "" {
		fe.add("name", "is required")
	}
	if in.CategoryID == uuid.Nil {
		fe.add("category_id", "is required")
	}

	seen := make(map[uuid.UUID]int, len(in.Prices))
	for i, p := range in.Prices {
		field := "prices[" + strconv.Itoa(i) + "]"
		if p.TableTypeID == uuid.Nil {
			fe.add(field+".table_type_id", "is required")
		} else if first, dup := seen[p.TableTypeID]; dup {
			fe.add(field+".table_type_id", "duplicates prices["+strconv.Itoa(first)+"]")
		} else {
			seen[p.TableTypeID] = i
		}
		switch {
		case p.Amount < 0 || math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0):
			fe.add(field+".amount", "must be a non-negative number")
		case p.Amount > MaxAmount:
			fe.add(field+".amount", "must be at most 99999999.99")
		case !hasCents(p.Amount):
			fe.add(field+".amount", "must have at most 2 decimal places")
		}
	}

	return fe.err("invalid menu item")
}

type CategoryInput struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func (in *CategoryInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
}

func (in CategoryInput) Validate() error {
	var fe fieldErrors
	checkMachineName(&fe, in.Name)
	if in.DisplayName == "" {
		fe.add("display_name", "is required")
	}
	return fe.err("invalid category")
}

type TableTypeInput struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	SortOrder   int    `json:"sort_order"`
}

func (in *TableTypeInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
}

func (in TableTypeInput) Validate() error {
	var fe fieldErrors
	checkMachineName(&fe, in.Name)
	if in.DisplayName == "" {
		fe.add("display_name", "is required")
	}
	return fe.err("invalid table type")
}

func checkMachineName(fe *fieldErrors, name string) {
	switch {
	case name == "":
		fe.add("name", "is required")
	case !machineName.MatchString(name):
		fe.add("name", "must contain only lowercase letters, digits, '-' and '_'")
	}
}

// hasCents reports whether v has at most two decimal places in its shortest
// decimal form, which is how it arrived in the JSON body.
func hasCents(v float64) bool {
	str := strconv.FormatFloat(v, 'f', -1, 64)
	dot := strings.IndexByte(str, '.')
	return dot < 0 || len(str)-dot-1 <= 2
}
