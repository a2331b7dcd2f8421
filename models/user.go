package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSubAdmin Role = "subadmin"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleSubAdmin
}

type User struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	Password   string     `db:"password" json:"-"`
	RoleID     uuid.UUID  `db:"role_id" json:"role_id"`
	Role       Role       `db:"role" json:"role"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at,omitempty"`
}

type RoleRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        Role      `db:"name" json:"name"`
	DisplayName string    `db:"display_name" json:"display_name"`
}

// AdminMenuItem is an entry of the admin navigation; roles are granted
// access to entries through menu permissions.
type AdminMenuItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Path        string    `db:"path" json:"path"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
}

type UserInput struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	RoleID   uuid.UUID `json:"role_id"`
}

func (in *UserInput) Normalize() {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
}

func (in UserInput) Validate() error {
	var fe fieldErrors
	if in.Username == "" {
		fe.add("username", "is required")
	}
	if len(in.Password) < 8 {
		fe.add("password", "must be at least 8 characters")
	}
	if in.RoleID == uuid.Nil {
		fe.add("role_id", "is required")
	}
	return fe.err("invalid user")
}
