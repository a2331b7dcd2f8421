package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/menuboard/apperr"
	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/database/dbhelper"
	"github.com/ray-remotestate/menuboard/metrics"
	"github.com/ray-remotestate/menuboard/models"
	"github.com/ray-remotestate/menuboard/response"
)

// ListMenuItems is the admin listing; ?category_id= narrows it to one
// category.
func ListMenuItems(w http.ResponseWriter, r *http.Request) {
	categoryID := uuid.Nil
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, r, apperr.Validation("invalid category_id").WithDetail("field", "category_id"))
			return
		}
		categoryID = id
	}

	items, err := dbhelper.ListMenuItems(r.Context(), database.Restro, categoryID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, items)
}

func GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	item, err := dbhelper.GetMenuItem(r.Context(), database.Restro, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, item)
}

func CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	in, err := decodeMenuItemInput(w, r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	item, err := dbhelper.CreateMenuItem(r.Context(), in)
	metrics.RecordPriceWrite("create", err)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	logrus.WithFields(logrus.Fields{"menu_item_id": item.ID, "prices": len(item.Prices)}).Info("menu item created")
	response.Created(w, item)
}

// UpdateMenuItem replaces the item's fields and its whole price set.
func UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	in, err := decodeMenuItemInput(w, r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	item, err := dbhelper.UpdateMenuItem(r.Context(), id, in)
	metrics.RecordPriceWrite("update", err)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	logrus.WithFields(logrus.Fields{"menu_item_id": item.ID, "prices": len(item.Prices)}).Info("menu item updated")
	response.OK(w, item)
}

func DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	err = dbhelper.RemoveMenuItem(r.Context(), id)
	metrics.RecordPriceWrite("delete", err)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{"id": id})
}

func decodeMenuItemInput(w http.ResponseWriter, r *http.Request) (models.MenuItemInput, error) {
	var in models.MenuItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		return in, err
	}
	in.Normalize()
	return in, in.Validate()
}
