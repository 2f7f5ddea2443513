package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/appointment-book/internal/appointment"
	"github.com/clinicdesk/appointment-book/internal/schedule"
)

type ScheduleAppointmentRequest struct {
	PatientID    *string   `json:"patient_id,omitempty"`
	PatientName  string    `json:"patient_name,omitempty"`
	PatientPhone string    `json:"patient_phone,omitempty"`
	Practitioner string    `json:"practitioner,omitempty"`
	ServiceType  string    `json:"service_type"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	Notes        string    `json:"notes,omitempty"`
	IsBlockout   bool      `json:"is_blockout,omitempty"`
}

type FinishAppointmentRequest struct {
	IsPaid         bool   `json:"is_paid"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	AmountCents    int64  `json:"amount_cents"`
	UsedWarranty   bool   `json:"used_warranty"`
	OverrideReason string `json:"override_reason,omitempty"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type EditAppointmentRequest struct {
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	ServiceType  *string    `json:"service_type,omitempty"`
	Practitioner *string    `json:"practitioner,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type UpdatePatientRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	ReminderPref string `json:"reminder_pref"`
}

type PatientStatusRequest struct {
	Status      string `json:"status"`
	BlockReason string `json:"block_reason,omitempty"`
}

type AppointmentResponse struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id,omitempty"`
	PatientName   string     `json:"patient_name,omitempty"`
	PatientPhone  string     `json:"patient_phone,omitempty"`
	Practitioner  string     `json:"practitioner,omitempty"`
	ServiceType   string     `json:"service_type"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Status        string     `json:"status"`
	IsPaid        bool       `json:"is_paid"`
	PaymentMethod string     `json:"payment_method"`
	AmountCents   int64      `json:"amount_cents"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	UsedWarranty  bool       `json:"used_warranty"`
	Notes         string     `json:"notes,omitempty"`
	IsBlockout    bool       `json:"is_blockout"`
	ReminderSent  bool       `json:"reminder_sent"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:            a.ID,
		PatientID:     a.PatientID,
		PatientName:   a.PatientName,
		PatientPhone:  a.PatientPhone,
		Practitioner:  a.Practitioner,
		ServiceType:   a.ServiceType,
		ScheduledAt:   a.ScheduledAt,
		Status:        string(a.Status),
		IsPaid:        a.IsPaid,
		PaymentMethod: string(a.PaymentMethod),
		AmountCents:   a.AmountCents,
		CompletedAt:   a.CompletedAt,
		UsedWarranty:  a.UsedWarranty,
		Notes:         a.Notes,
		IsBlockout:    a.IsBlockout,
		ReminderSent:  a.ReminderSent,
	}
}

func toAppointmentResponses(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

type PatientResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Status       string     `json:"status"`
	ReminderPref string     `json:"reminder_pref"`
	LastVisit    *time.Time `json:"last_visit,omitempty"`
	BlockReason  string     `json:"block_reason,omitempty"`
}

func toPatientResponse(p *appointment.Patient) PatientResponse {
	return PatientResponse{
		ID:           p.ID,
		Name:         p.Name,
		Phone:        p.Phone,
		Status:       string(p.Status),
		ReminderPref: string(p.ReminderPref),
		LastVisit:    p.LastVisit,
		BlockReason:  p.BlockReason,
	}
}

type SlotResponse struct {
	Hour         int                   `json:"hour"`
	State        schedule.SlotState    `json:"state"`
	Appointments []AppointmentResponse `json:"appointments,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type PartialDeleteResponse struct {
	Error               string `json:"error"`
	Details             string `json:"details"`
	PatientID           string `json:"patient_id"`
	AppointmentsDeleted int    `json:"appointments_deleted"`
	PatientDeleted      bool   `json:"patient_deleted"`
}
