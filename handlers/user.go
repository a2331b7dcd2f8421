package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/menuboard/apperr"
	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/database/dbhelper"
	"github.com/ray-remotestate/menuboard/models"
	"github.com/ray-remotestate/menuboard/response"
	"github.com/ray-remotestate/menuboard/utils"
)

func ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := dbhelper.ListUsers(r.Context(), database.Restro)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, users)
}

func CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.Error(w, r, err)
		return
	}

	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		response.Error(w, r, apperr.Internal("failed to hash password", err))
		return
	}

	id, err := dbhelper.CreateUser(r.Context(), database.Restro, in.Username, hashedPassword, in.RoleID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	user, err := dbhelper.GetUserByID(r.Context(), database.Restro, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user created")
	response.Created(w, user)
}

func ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := dbhelper.ListRoles(r.Context(), database.Restro)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, roles)
}

// SetRolePermissions replaces the admin menu items a role can access.
func SetRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req struct {
		AdminMenuItemIDs []uuid.UUID `json:"admin_menu_item_ids"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	items, err := dbhelper.SetRolePermissions(r.Context(), roleID, req.AdminMenuItemIDs)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, items)
}
