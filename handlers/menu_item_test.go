package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMenuItemRejectsDuplicateTableType(t *testing.T) {
	mock := useMockDB(t)
	vip := uuid.New()

	req := jsonRequest(t, http.MethodPost, "/admin/menu-items", map[string]any{
		"name":        "Burger",
		"category_id": uuid.New(),
		"prices": []map[string]any{
			{"table_type_id": vip, "amount": 10},
			{"table_type_id": vip, "amount": 12},
		},
	})
	rr := serve(CreateMenuItem, req, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decode(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	fields, ok := env.Details["fields"].(map[string]any)
	require.True(t, ok, env.Details)
	assert.Equal(t, "duplicates prices[0]", fields["prices[1].table_type_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMenuItemRejectsNegativeAmountAndMissingName(t *testing.T) {
	useMockDB(t)

	req := jsonRequest(t, http.MethodPost, "/admin/menu-items", map[string]any{
		"name":        "  ",
		"category_id": uuid.New(),
		"prices":      []map[string]any{{"table_type_id": uuid.New(), "amount": -1}},
	})
	rr := serve(CreateMenuItem, req, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	fields := decode(t, rr).Details["fields"].(map[string]any)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "prices[0].amount")
}

func TestCreateMenuItemRejectsUnstorableAmounts(t *testing.T) {
	mock := useMockDB(t)

	req := jsonRequest(t, http.MethodPost, "/admin/menu-items", `{
		"name": "Burger",
		"category_id": "`+uuid.NewString()+`",
		"prices": [
			{"table_type_id": "`+uuid.NewString()+`", "amount": 1000000000},
			{"table_type_id": "`+uuid.NewString()+`", "amount": 5.555}
		]
	}`)
	rr := serve(CreateMenuItem, req, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	fields := decode(t, rr).Details["fields"].(map[string]any)
	assert.Contains(t, fields, "prices[0].amount")
	assert.Contains(t, fields, "prices[1].amount")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMenuItemBadJSON(t *testing.T) {
	useMockDB(t)

	rr := serve(CreateMenuItem, jsonRequest(t, http.MethodPost, "/admin/menu-items", `{"name":`), nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rr).Code)
}

func TestUpdateMenuItemNotFound(t *testing.T) {
	mock := useMockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	req := jsonRequest(t, http.MethodPut, "/admin/menu-items/"+id.String(), map[string]any{
		"name":        "Burger",
		"category_id": uuid.New(),
		"prices":      []map[string]any{},
	})
	rr := serve(UpdateMenuItem, req, map[string]string{"id": id.String()})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rr).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMenuItemInvalidID(t *testing.T) {
	useMockDB(t)

	req := jsonRequest(t, http.MethodPut, "/admin/menu-items/nope", map[string]any{"name": "x"})
	rr := serve(UpdateMenuItem, req, map[string]string{"id": "nope"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteMenuItem(t *testing.T) {
	mock := useMockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM prices").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM menu_items").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rr := serve(DeleteMenuItem, jsonRequest(t, http.MethodDelete, "/admin/menu-items/"+id.String(), nil),
		map[string]string{"id": id.String()})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode(t, rr).OK)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMenuItemHidesInternalErrors(t *testing.T) {
	mock := useMockDB(t)
	id := uuid.New()
	mock.ExpectQuery("WHERE m.id").WithArgs(id).WillReturnError(errors.New("connection reset by peer"))

	rr := serve(GetMenuItem, jsonRequest(t, http.MethodGet, "/admin/menu-items/"+id.String(), nil),
		map[string]string{"id": id.String()})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection reset")
	assert.Equal(t, "INTERNAL_ERROR", decode(t, rr).Code)
}

func TestListMenuItemsInvalidCategory(t *testing.T) {
	useMockDB(t)

	rr := serve(ListMenuItems, jsonRequest(t, http.MethodGet, "/admin/menu-items?category_id=food", nil), nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
