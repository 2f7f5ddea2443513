package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinicdesk/appointment-book/internal/appointment"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleServiceError maps lifecycle errors onto the HTTP taxonomy: bad input
// 400, missing records 404, incomplete cascade 502 with resume detail,
// anything else 500.
func handleServiceError(w http.ResponseWriter, err error) {
	var ve *appointment.ValidationError
	var pde *appointment.PartialDeleteError

	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "validation_error", ve.Error())
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.As(err, &pde):
		writeJSON(w, http.StatusBadGateway, PartialDeleteResponse{
			Error:               "partial_delete",
			Details:             pde.Error(),
			PatientID:           pde.PatientID.String(),
			AppointmentsDeleted: pde.Deleted,
			PatientDeleted:      pde.PatientRow,
		})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
