package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusFinished, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentNone     PaymentMethod = "none"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentNone:
		return true
	}
	return false
}

type PatientStatus string

const (
	PatientActive   PatientStatus = "active"
	PatientBlocked  PatientStatus = "blocked"
	PatientArchived PatientStatus = "archived"
)

func ValidPatientStatus(s PatientStatus) bool {
	switch s {
	case PatientActive, PatientBlocked, PatientArchived:
		return true
	}
	return false
}

type ReminderPref string

const (
	RemindWhatsApp ReminderPref = "whatsapp"
	RemindCall     ReminderPref = "call"
	RemindNone     ReminderPref = "none"
)

func ValidReminderPref(p ReminderPref) bool {
	switch p {
	case RemindWhatsApp, RemindCall, RemindNone:
		return true
	}
	return false
}

type Patient struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	Status       PatientStatus
	ReminderPref ReminderPref
	LastVisit    *time.Time
	BlockReason  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Appointment is one calendar entry. Patient name and phone are denormalized
// at booking time and are not live-bound to the patient record afterwards.
type Appointment struct {
	ID            uuid.UUID
	PatientID     uuid.UUID
	PatientName   string
	PatientPhone  string
	Practitioner  string
	ServiceType   string
	ScheduledAt   time.Time
	Status        Status
	IsPaid        bool
	PaymentMethod PaymentMethod
	AmountCents   int64
	CompletedAt   *time.Time
	UsedWarranty  bool
	Notes         string
	IsBlockout    bool
	ReminderSent  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ClearPayment wipes every payment and warranty field. It must accompany any
// move into a non-finished status: finished is the only state allowed to hold
// payment data.
func (a *Appointment) ClearPayment() {
	a.IsPaid = false
	a.PaymentMethod = PaymentNone
	a.AmountCents = 0
	a.CompletedAt = nil
	a.UsedWarranty = false
}

// PaymentConsistent reports whether the record satisfies the
// status/payment coupling rule.
func (a *Appointment) PaymentConsistent() bool {
	if a.Status == StatusFinished {
		return a.CompletedAt != nil
	}
	return !a.IsPaid &&
		a.PaymentMethod == PaymentNone &&
		a.AmountCents == 0 &&
		a.CompletedAt == nil &&
		!a.UsedWarranty
}

// ScheduledOn reports whether the appointment falls on the given calendar day
// in the clinic's local zone.
func (a *Appointment) ScheduledOn(date time.Time, loc *time.Location) bool {
	y1, m1, d1 := a.ScheduledAt.In(loc).Date()
	y2, m2, d2 := date.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
