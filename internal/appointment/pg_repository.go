package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const patientColumns = `id, name, phone, status, reminder_pref, last_visit, block_reason, created_at, updated_at`

const appointmentColumns = `id, patient_id, patient_name, patient_phone, practitioner, service_type,
	scheduled_at, status, is_paid, payment_method, amount_cents, completed_at,
	used_warranty, notes, is_blockout, reminder_sent, created_at, updated_at`

// pgDB is the subset of pgxpool.Pool the repository needs; tests inject a
// pgxmock pool through it.
type pgDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	db pgDB
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: pool}
}

// NewPgRepositoryWithDB allows injecting a mock database for testing.
func NewPgRepositoryWithDB(db pgDB) *PgRepository {
	return &PgRepository{db: db}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var lastVisit *time.Time

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Phone,
		&p.Status,
		&p.ReminderPref,
		&lastVisit,
		&p.BlockReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.LastVisit = lastVisit
	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var completedAt *time.Time

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.PatientName,
		&a.PatientPhone,
		&a.Practitioner,
		&a.ServiceType,
		&a.ScheduledAt,
		&a.Status,
		&a.IsPaid,
		&a.PaymentMethod,
		&a.AmountCents,
		&completedAt,
		&a.UsedWarranty,
		&a.Notes,
		&a.IsBlockout,
		&a.ReminderSent,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.CompletedAt = completedAt
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Patients

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByPhone(ctx context.Context, phone string) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE phone = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, phone)
	return scanPatient(row)
}

func (r *PgRepository) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO patients (id, name, phone, status, reminder_pref, last_visit, block_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+patientColumns+`
	`, id, p.Name, p.Phone, p.Status, p.ReminderPref, p.LastVisit, p.BlockReason)

	return scanPatient(row)
}

func (r *PgRepository) UpdatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE patients
		SET name = $2,
		    phone = $3,
		    status = $4,
		    reminder_pref = $5,
		    last_visit = $6,
		    block_reason = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+patientColumns+`
	`, p.ID, p.Name, p.Phone, p.Status, p.ReminderPref, p.LastVisit, p.BlockReason)

	return scanPatient(row)
}

// DeletePatientCascade removes the patient's appointments and then the patient
// row. The two statements are intentionally not wrapped in a transaction: the
// production document store offers none, so the failure mode between them is
// real and reported as *PartialDeleteError for the caller to resume.
func (r *PgRepository) DeletePatientCascade(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetPatientByID(ctx, id); err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		DELETE FROM appointments
		WHERE patient_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete appointments for patient %s: %w", id, err)
	}
	deleted := int(tag.RowsAffected())

	if _, err := r.db.Exec(ctx, `
		DELETE FROM patients
		WHERE id = $1
	`, id); err != nil {
		return &PartialDeleteError{
			PatientID:  id,
			Deleted:    deleted,
			Remaining:  0,
			PatientRow: false,
			Cause:      err,
		}
	}

	return nil
}

// Appointments

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointments(ctx context.Context) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY scheduled_at
	`)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointmentsBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE scheduled_at >= $1
		  AND scheduled_at < $2
		ORDER BY scheduled_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY scheduled_at
	`, patientID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, patient_name, patient_phone, practitioner, service_type,
			scheduled_at, status, is_paid, payment_method, amount_cents, completed_at,
			used_warranty, notes, is_blockout, reminder_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, a.PatientID, a.PatientName, a.PatientPhone, a.Practitioner, a.ServiceType,
		a.ScheduledAt, a.Status, a.IsPaid, a.PaymentMethod, a.AmountCents, a.CompletedAt,
		a.UsedWarranty, a.Notes, a.IsBlockout, a.ReminderSent)

	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET patient_name = $2,
		    patient_phone = $3,
		    practitioner = $4,
		    service_type = $5,
		    scheduled_at = $6,
		    status = $7,
		    is_paid = $8,
		    payment_method = $9,
		    amount_cents = $10,
		    completed_at = $11,
		    used_warranty = $12,
		    notes = $13,
		    is_blockout = $14,
		    reminder_sent = $15,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, a.ID, a.PatientName, a.PatientPhone, a.Practitioner, a.ServiceType,
		a.ScheduledAt, a.Status, a.IsPaid, a.PaymentMethod, a.AmountCents, a.CompletedAt,
		a.UsedWarranty, a.Notes, a.IsBlockout, a.ReminderSent)

	return scanAppointment(row)
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete appointment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET reminder_sent = true,
		    updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark reminder sent for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
