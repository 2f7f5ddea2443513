package summary

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/clinicdesk/appointment-book/internal/appointment"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func finished(hour int, method appointment.PaymentMethod, amountCents int64) appointment.Appointment {
	completed := at(hour).Add(45 * time.Minute)
	return appointment.Appointment{
		ID:            uuid.New(),
		PatientID:     uuid.New(),
		ScheduledAt:   at(hour),
		Status:        appointment.StatusFinished,
		IsPaid:        true,
		PaymentMethod: method,
		AmountCents:   amountCents,
		CompletedAt:   &completed,
	}
}

func TestSummarizeRegisterDay(t *testing.T) {
	completed := at(12)
	warrantyVisit := appointment.Appointment{
		ID:            uuid.New(),
		PatientID:     uuid.New(),
		ScheduledAt:   at(12),
		Status:        appointment.StatusFinished,
		PaymentMethod: appointment.PaymentNone,
		UsedWarranty:  true,
		CompletedAt:   &completed,
	}

	appts := []appointment.Appointment{
		finished(9, appointment.PaymentCash, 55000),
		finished(10, appointment.PaymentCard, 30000),
		warrantyVisit,
		{ID: uuid.New(), PatientID: uuid.New(), ScheduledAt: at(16), Status: appointment.StatusPending, PaymentMethod: appointment.PaymentNone},
		{ID: uuid.New(), PatientID: uuid.New(), ScheduledAt: at(17), Status: appointment.StatusCancelled, PaymentMethod: appointment.PaymentNone},
	}

	s := Summarize(appts, day, time.UTC)

	assert.Equal(t, "2025-03-10", s.Date)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.Finished)
	assert.Equal(t, 2, s.FinishedPaid)
	assert.Equal(t, 1, s.FinishedWarranty)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, 0, s.NoShow)
	assert.Equal(t, int64(55000), s.CashCents)
	assert.Equal(t, int64(30000), s.BankCents)
	assert.Equal(t, int64(85000), s.TotalCents)
}

func TestSummarizeSkipsBlockoutsAndOtherDays(t *testing.T) {
	blockout := finished(11, appointment.PaymentCash, 99999)
	blockout.IsBlockout = true

	otherDay := finished(10, appointment.PaymentCash, 40000)
	otherDay.ScheduledAt = otherDay.ScheduledAt.AddDate(0, 0, 1)

	s := Summarize([]appointment.Appointment{blockout, otherDay}, day, time.UTC)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, int64(0), s.TotalCents)
}

func TestSummarizeTransferCountsAsBank(t *testing.T) {
	s := Summarize([]appointment.Appointment{
		finished(9, appointment.PaymentTransfer, 25000),
	}, day, time.UTC)
	assert.Equal(t, int64(0), s.CashCents)
	assert.Equal(t, int64(25000), s.BankCents)
}

func TestSummarizeOrderIndependent(t *testing.T) {
	appts := []appointment.Appointment{
		finished(9, appointment.PaymentCash, 55000),
		finished(10, appointment.PaymentCard, 30000),
		finished(11, appointment.PaymentTransfer, 12000),
		{ID: uuid.New(), PatientID: uuid.New(), ScheduledAt: at(16), Status: appointment.StatusPending, PaymentMethod: appointment.PaymentNone},
		{ID: uuid.New(), PatientID: uuid.New(), ScheduledAt: at(17), Status: appointment.StatusNoShow, PaymentMethod: appointment.PaymentNone},
	}
	want := Summarize(appts, day, time.UTC)

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := make([]appointment.Appointment, len(appts))
		copy(shuffled, appts)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Summarize(shuffled, day, time.UTC))
	}
}

func TestSummarizeAdditiveOverPartitions(t *testing.T) {
	morning := []appointment.Appointment{
		finished(9, appointment.PaymentCash, 55000),
		finished(10, appointment.PaymentCard, 30000),
	}
	afternoon := []appointment.Appointment{
		finished(16, appointment.PaymentCash, 20000),
		{ID: uuid.New(), PatientID: uuid.New(), ScheduledAt: at(17), Status: appointment.StatusPending, PaymentMethod: appointment.PaymentNone},
	}

	whole := Summarize(append(append([]appointment.Appointment{}, morning...), afternoon...), day, time.UTC)
	am := Summarize(morning, day, time.UTC)
	pm := Summarize(afternoon, day, time.UTC)

	assert.Equal(t, whole.Total, am.Total+pm.Total)
	assert.Equal(t, whole.Finished, am.Finished+pm.Finished)
	assert.Equal(t, whole.CashCents, am.CashCents+pm.CashCents)
	assert.Equal(t, whole.BankCents, am.BankCents+pm.BankCents)
	assert.Equal(t, whole.TotalCents, am.TotalCents+pm.TotalCents)
}
