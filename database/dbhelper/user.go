package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ray-remotestate/menuboard/apperr"
	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/models"
)

const userSelect = `
	SELECT u.id, u.username, u.password, u.role_id, r.name AS role, u.created_at, u.archived_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

func CreateUser(ctx context.Context, db sqlx.QueryerContext, username, hashedPassword string, roleID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := sqlx.GetContext(ctx, db, &id, `
		INSERT INTO users (username, password, role_id)
		VALUES ($1, $2, $3)
		RETURNING id`, username, hashedPassword, roleID)
	if _, ok := database.IsUniqueViolation(err); ok {
		return uuid.Nil, apperr.DuplicateEntry("username already exists").WithDetail("field", "username")
	}
	if _, ok := database.IsForeignKeyViolation(err); ok {
		return uuid.Nil, apperr.NotFound("role not found").WithDetail("role_id", roleID)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func IsUserExists(ctx context.Context, db sqlx.QueryerContext, username string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, db, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE LOWER(username) = LOWER($1) AND archived_at IS NULL
		)`, username)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

func GetUserByID(ctx context.Context, db sqlx.QueryerContext, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, db, &u, userSelect+` WHERE u.id = $1 AND u.archived_at IS NULL`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found").WithDetail("id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetUserByPassword returns the active user matching the credentials. Any
// mismatch is reported as the same unauthorized error.
func GetUserByPassword(ctx context.Context, db sqlx.QueryerContext, username, password string) (*models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, db, &u,
		userSelect+` WHERE LOWER(u.username) = LOWER($1) AND u.archived_at IS NULL`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return &u, nil
}

func ListUsers(ctx context.Context, db sqlx.QueryerContext) ([]models.User, error) {
	users := []models.User{}
	err := sqlx.SelectContext(ctx, db, &users, userSelect+` WHERE u.archived_at IS NULL ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func ListRoles(ctx context.Context, db sqlx.QueryerContext) ([]models.RoleRecord, error) {
	roles := []models.RoleRecord{}
	err := sqlx.SelectContext(ctx, db, &roles, `SELECT id, name, display_name FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func GetRoleByName(ctx context.Context, db sqlx.QueryerContext, name models.Role) (*models.RoleRecord, error) {
	var r models.RoleRecord
	err := sqlx.GetContext(ctx, db, &r, `SELECT id, name, display_name FROM roles WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("role not found").WithDetail("name", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &r, nil
}

// SeedAdmin creates an admin user unless the username is already taken.
// It reports whether a user was created.
func SeedAdmin(ctx context.Context, username, hashedPassword string) (bool, error) {
	created := false
	err := database.Tx(ctx, func(tx *sqlx.Tx) error {
		exists, err := IsUserExists(ctx, tx, username)
		if err != nil || exists {
			return err
		}
		role, err := GetRoleByName(ctx, tx, models.RoleAdmin)
		if err != nil {
			return err
		}
		if _, err := CreateUser(ctx, tx, username, hashedPassword, role.ID); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
