package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCreateUserValidation(t *testing.T) {
	useMockDB(t)

	rr := serve(CreateUser, jsonRequest(t, http.MethodPost, "/admin/users",
		map[string]any{"username": "cook", "password": "short"}), nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	fields := decode(t, rr).Details["fields"].(map[string]any)
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "role_id")
}

func TestCreateUserDuplicate(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("cook", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	rr := serve(CreateUser, jsonRequest(t, http.MethodPost, "/admin/users",
		map[string]any{"username": "Cook", "password": "long-enough", "role_id": uuid.New()}), nil)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", decode(t, rr).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRolePermissionsUnknownRole(t *testing.T) {
	mock := useMockDB(t)
	roleID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM roles WHERE id").WithArgs(roleID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	rr := serve(SetRolePermissions, jsonRequest(t, http.MethodPut, "/admin/roles/"+roleID.String()+"/permissions",
		map[string]any{"admin_menu_item_ids": []uuid.UUID{uuid.New()}}), map[string]string{"id": roleID.String()})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRoles(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectQuery("FROM roles").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "display_name"}).
			AddRow(uuid.NewString(), "admin", "Admin").
			AddRow(uuid.NewString(), "subadmin", "Sub admin"))

	rr := serve(ListRoles, jsonRequest(t, http.MethodGet, "/admin/roles", nil), nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"subadmin"`)
}
