package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository contains all store interactions needed by the lifecycle service.
// The lifecycle service is the only writer; read-side projections work from
// snapshots of these collections.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPatientByPhone(ctx context.Context, phone string) (*Patient, error)
	ListPatients(ctx context.Context) ([]Patient, error)
	CreatePatient(ctx context.Context, p *Patient) (*Patient, error)
	UpdatePatient(ctx context.Context, p *Patient) (*Patient, error)

	// DeletePatientCascade removes the patient and every appointment that
	// references it. A failure after the appointments are gone but before
	// the patient row is removed surfaces as *PartialDeleteError.
	DeletePatientCascade(ctx context.Context, id uuid.UUID) error

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointments(ctx context.Context) ([]Appointment, error)
	ListAppointmentsBetween(ctx context.Context, from, to time.Time) ([]Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
	CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error)

	// UpdateAppointment persists the full record in one statement so status
	// and payment fields can never be observed half-changed.
	UpdateAppointment(ctx context.Context, a *Appointment) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	// MarkReminderSent is idempotent: flagging an already-flagged
	// appointment is a no-op.
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}
