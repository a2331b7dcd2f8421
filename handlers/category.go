package handlers

import (
	"net/http"

	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/database/dbhelper"
	"github.com/ray-remotestate/menuboard/models"
	"github.com/ray-remotestate/menuboard/response"
)

func ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := dbhelper.ListCategories(r.Context(), database.Restro)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, categories)
}

func CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.Error(w, r, err)
		return
	}

	category, err := dbhelper.CreateCategory(r.Context(), database.Restro, in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, category)
}

func UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var in models.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.Error(w, r, err)
		return
	}

	category, err := dbhelper.UpdateCategory(r.Context(), database.Restro, id, in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, category)
}

func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := dbhelper.DeleteCategory(r.Context(), database.Restro, id); err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{"id": id})
}
