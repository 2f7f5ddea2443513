package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PgRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPgRepositoryWithDB(mock), mock
}

func patientRow(p *Patient) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "phone", "status", "reminder_pref",
		"last_visit", "block_reason", "created_at", "updated_at",
	}).AddRow(p.ID, p.Name, p.Phone, p.Status, p.ReminderPref,
		p.LastVisit, p.BlockReason, p.CreatedAt, p.UpdatedAt)
}

func appointmentRow(a *Appointment) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "patient_id", "patient_name", "patient_phone", "practitioner", "service_type",
		"scheduled_at", "status", "is_paid", "payment_method", "amount_cents", "completed_at",
		"used_warranty", "notes", "is_blockout", "reminder_sent", "created_at", "updated_at",
	}).AddRow(a.ID, a.PatientID, a.PatientName, a.PatientPhone, a.Practitioner, a.ServiceType,
		a.ScheduledAt, a.Status, a.IsPaid, a.PaymentMethod, a.AmountCents, a.CompletedAt,
		a.UsedWarranty, a.Notes, a.IsBlockout, a.ReminderSent, a.CreatedAt, a.UpdatedAt)
}

func TestGetPatientByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	want := &Patient{
		ID: uuid.New(), Name: "Laura Ortiz", Phone: "555-0101",
		Status: PatientActive, ReminderPref: RemindWhatsApp,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery(`SELECT (.+) FROM patients WHERE id = \$1`).
		WithArgs(want.ID).
		WillReturnRows(patientRow(want))

	got, err := repo.GetPatientByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Phone, got.Phone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPatientByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM patients WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.GetPatientByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrPatientNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAppointmentByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM appointments WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.GetAppointmentByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAppointmentReturnsStoredRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	in := &Appointment{
		PatientID:     uuid.New(),
		PatientName:   "Laura Ortiz",
		PatientPhone:  "555-0101",
		ServiceType:   "Aplicación",
		ScheduledAt:   now.Add(24 * time.Hour),
		Status:        StatusPending,
		PaymentMethod: PaymentNone,
	}
	stored := *in
	stored.ID = uuid.New()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pgxmock.AnyArg(), in.PatientID, in.PatientName, in.PatientPhone, in.Practitioner, in.ServiceType,
			in.ScheduledAt, in.Status, in.IsPaid, in.PaymentMethod, in.AmountCents, in.CompletedAt,
			in.UsedWarranty, in.Notes, in.IsBlockout, in.ReminderSent).
		WillReturnRows(appointmentRow(&stored))

	got, err := repo.CreateAppointment(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, StatusPending, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePatientCascade(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	patient := &Patient{
		ID: uuid.New(), Name: "Laura Ortiz", Phone: "555-0101",
		Status: PatientActive, ReminderPref: RemindWhatsApp,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery(`SELECT (.+) FROM patients WHERE id = \$1`).
		WithArgs(patient.ID).
		WillReturnRows(patientRow(patient))
	mock.ExpectExec(`DELETE FROM appointments WHERE patient_id = \$1`).
		WithArgs(patient.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM patients WHERE id = \$1`).
		WithArgs(patient.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.DeletePatientCascade(context.Background(), patient.ID))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePatientCascadePartialFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	patient := &Patient{
		ID: uuid.New(), Name: "Laura Ortiz", Phone: "555-0101",
		Status: PatientActive, ReminderPref: RemindWhatsApp,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectQuery(`SELECT (.+) FROM patients WHERE id = \$1`).
		WithArgs(patient.ID).
		WillReturnRows(patientRow(patient))
	mock.ExpectExec(`DELETE FROM appointments WHERE patient_id = \$1`).
		WithArgs(patient.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM patients WHERE id = \$1`).
		WithArgs(patient.ID).
		WillReturnError(errors.New("connection reset"))

	err := repo.DeletePatientCascade(context.Background(), patient.ID)
	require.Error(t, err)

	var pde *PartialDeleteError
	require.ErrorAs(t, err, &pde)
	assert.Equal(t, patient.ID, pde.PatientID)
	assert.Equal(t, 2, pde.Deleted)
	assert.False(t, pde.PatientRow)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAppointmentNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM appointments WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteAppointment(context.Background(), id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReminderSent(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE appointments SET reminder_sent = true`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkReminderSent(context.Background(), id))

	mock.ExpectExec(`UPDATE appointments SET reminder_sent = true`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.MarkReminderSent(context.Background(), id), ErrAppointmentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
