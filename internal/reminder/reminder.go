// Package reminder derives the "needs a reminder" worklist. It only decides
// that a reminder is due and who to contact; delivery belongs to whoever
// picks up the phone.
package reminder

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/appointment-book/internal/appointment"
)

// PendingReminder is one row of the worklist.
type PendingReminder struct {
	AppointmentID uuid.UUID                `json:"appointment_id"`
	PatientID     uuid.UUID                `json:"patient_id"`
	PatientName   string                   `json:"patient_name"`
	PatientPhone  string                   `json:"patient_phone"`
	ServiceType   string                   `json:"service_type"`
	ScheduledAt   time.Time                `json:"scheduled_at"`
	Preference    appointment.ReminderPref `json:"preference"`
}

// Pending selects pending appointments scheduled within [asOf, asOf+window]
// that have not been flagged sent, joined to each patient's contact
// preference. Patients who opted out are excluded, as are blockouts. The
// result is ordered by scheduled time.
func Pending(appts []appointment.Appointment, patients []appointment.Patient, asOf time.Time, window time.Duration) []PendingReminder {
	prefs := make(map[uuid.UUID]appointment.ReminderPref, len(patients))
	for _, p := range patients {
		prefs[p.ID] = p.ReminderPref
	}

	horizon := asOf.Add(window)

	var out []PendingReminder
	for _, a := range appts {
		if a.IsBlockout || a.Status != appointment.StatusPending || a.ReminderSent {
			continue
		}
		if a.ScheduledAt.Before(asOf) || a.ScheduledAt.After(horizon) {
			continue
		}

		pref, known := prefs[a.PatientID]
		if !known || pref == appointment.RemindNone {
			continue
		}

		out = append(out, PendingReminder{
			AppointmentID: a.ID,
			PatientID:     a.PatientID,
			PatientName:   a.PatientName,
			PatientPhone:  a.PatientPhone,
			ServiceType:   a.ServiceType,
			ScheduledAt:   a.ScheduledAt,
			Preference:    pref,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})

	return out
}
