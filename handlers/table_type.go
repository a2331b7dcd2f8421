package handlers

import (
	"net/http"

	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/database/dbhelper"
	"github.com/ray-remotestate/menuboard/models"
	"github.com/ray-remotestate/menuboard/response"
)

// ListTableTypes returns table types in display order.
func ListTableTypes(w http.ResponseWriter, r *http.Request) {
	tableTypes, err := dbhelper.ListTableTypes(r.Context(), database.Restro)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, tableTypes)
}

func CreateTableType(w http.ResponseWriter, r *http.Request) {
	var in models.TableTypeInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.Error(w, r, err)
		return
	}

	tableType, err := dbhelper.CreateTableType(r.Context(), database.Restro, in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, tableType)
}

func UpdateTableType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var in models.TableTypeInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, r, err)
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		response.Error(w, r, err)
		return
	}

	tableType, err := dbhelper.UpdateTableType(r.Context(), database.Restro, id, in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, tableType)
}

func DeleteTableType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := dbhelper.DeleteTableType(r.Context(), database.Restro, id); err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, map[string]any{"id": id})
}
