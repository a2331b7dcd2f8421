package handlers

import (
	"net/http"
	"strings"

	"github.com/ray-remotestate/menuboard/database"
	"github.com/ray-remotestate/menuboard/database/dbhelper"
	"github.com/ray-remotestate/menuboard/response"
)

// GetMenu serves the public menu. ?category= limits the items and
// ?tableType= limits the prices of each item to one table type.
func GetMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := dbhelper.MenuFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		TableType: strings.TrimSpace(q.Get("tableType")),
	}

	items, err := dbhelper.ProjectMenu(r.Context(), database.Restro, filter)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, items)
}
