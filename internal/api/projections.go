package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/appointment-book/internal/appointment"
	"github.com/clinicdesk/appointment-book/internal/reminder"
	"github.com/clinicdesk/appointment-book/internal/schedule"
	"github.com/clinicdesk/appointment-book/internal/summary"
	"github.com/clinicdesk/appointment-book/internal/warranty"
)

func daySlotsHandler(svc *appointment.Service, store *schedule.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := parseDate(w, chi.URLParam(r, "date"), svc.Location())
		if !ok {
			return
		}

		ws, err := store.Get(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		appts, err := svc.ListAppointmentsForDay(r.Context(), date)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		slots := schedule.SlotsForDay(ws, date, appts)
		out := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			out = append(out, SlotResponse{
				Hour:         s.Hour,
				State:        s.State,
				Appointments: toAppointmentResponses(s.Appointments),
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func daySummaryHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := parseDate(w, chi.URLParam(r, "date"), svc.Location())
		if !ok {
			return
		}

		appts, err := svc.ListAppointmentsForDay(r.Context(), date)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, summary.Summarize(appts, date, svc.Location()))
	}
}

func patientWarrantyHandler(svc *appointment.Service, engine *warranty.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseIDParam(w, r)
		if !ok {
			return
		}

		asOf := time.Now()
		if s := r.URL.Query().Get("as_of"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_as_of", "as_of must be RFC3339")
				return
			}
			asOf = t
		}

		// A missing patient should 404 rather than report "no warranty".
		if _, err := svc.GetPatient(r.Context(), id); err != nil {
			handleServiceError(w, err)
			return
		}

		history, err := svc.ListPatientAppointments(r.Context(), id)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, engine.Compute(history, asOf))
	}
}

func pendingRemindersHandler(svc *appointment.Service, defaultWindow time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := defaultWindow
		if s := r.URL.Query().Get("window"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil || d <= 0 {
				writeError(w, http.StatusBadRequest, "invalid_window", "window must be a positive duration like 24h")
				return
			}
			window = d
		}

		appts, err := svc.ListAppointments(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		patients, err := svc.ListPatients(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}

		due := reminder.Pending(appts, patients, time.Now(), window)
		if due == nil {
			due = []reminder.PendingReminder{}
		}
		writeJSON(w, http.StatusOK, due)
	}
}
