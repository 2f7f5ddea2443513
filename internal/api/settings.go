package api

import (
	"encoding/json"
	"net/http"

	"github.com/clinicdesk/appointment-book/internal/catalog"
	"github.com/clinicdesk/appointment-book/internal/schedule"
)

// Settings are configuration data: the API reads and writes the stores, but
// running binaries pick up a new catalog only on restart.

func getScheduleSettingsHandler(store *schedule.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := store.Get(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, ws)
	}
}

func putScheduleSettingsHandler(store *schedule.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ws schedule.WeekSchedule
		if err := json.NewDecoder(r.Body).Decode(&ws); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := store.Set(r.Context(), &ws); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, &ws)
	}
}

func getCatalogSettingsHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat, err := store.Get(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, cat)
	}
}

func putCatalogSettingsHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cat catalog.Catalog
		if err := json.NewDecoder(r.Body).Decode(&cat); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := store.Set(r.Context(), &cat); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_catalog", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, &cat)
	}
}
