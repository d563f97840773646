package handlers

import (
	"net/http"
	"strconv"

	"github.com/tunneldeck/tunneldeck/internal/database"
)

// RecentActions returns the newest operator action log entries.
func RecentActions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := database.RecentActions(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
