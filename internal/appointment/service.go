package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/appointment-book/internal/catalog"
	"github.com/clinicdesk/appointment-book/internal/observability/metrics"
	redisclient "github.com/clinicdesk/appointment-book/internal/redis"
	"github.com/clinicdesk/appointment-book/pkg/logging"
)

// WarrantyChecker decides whether a patient's visit history holds an active
// warranty at a given instant. Implemented by the warranty package; injected
// here to keep the lifecycle the sole writer while warranty math stays a
// read-side concern.
type WarrantyChecker interface {
	Active(history []Appointment, asOf time.Time) bool
}

// Service owns every write to patients and appointments. All other components
// are read projections over the collections this service maintains.
type Service struct {
	repo     Repository
	cat      *catalog.Catalog
	warranty WarrantyChecker
	notifier redisclient.Notifier
	logger   *logging.Logger
	metrics  *metrics.LifecycleMetrics
	loc      *time.Location
	now      func() time.Time
}

type ServiceOption func(*Service)

// WithClock overrides the service clock, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches lifecycle mutation counters.
func WithMetrics(m *metrics.LifecycleMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithNotifier attaches the change feed. Without one, mutations still apply
// but readers are not nudged to refresh.
func WithNotifier(n redisclient.Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

func NewService(repo Repository, cat *catalog.Catalog, warranty WarrantyChecker, loc *time.Location, logger *logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		repo:     repo,
		cat:      cat,
		warranty: warranty,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// notifyChanged is best-effort: the write already committed, so a failed
// publish only delays the next snapshot refresh.
func (s *Service) notifyChanged(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyChanged(ctx); err != nil {
		s.logger.Warn("change notification failed", "error", err)
	}
}

// ScheduleParams describes a booking request. The booking form doubles as a
// patient editor: supplying a name or phone that differs from the stored
// patient updates the patient record in place.
type ScheduleParams struct {
	PatientID    *uuid.UUID
	PatientName  string
	PatientPhone string
	Practitioner string
	ServiceType  string
	ScheduledAt  time.Time
	Notes        string
	IsBlockout   bool
}

// Schedule books a new pending appointment, creating or updating the patient
// record as needed. Blockouts reserve the slot without a patient.
func (s *Service) Schedule(ctx context.Context, p ScheduleParams) (appt *Appointment, err error) {
	defer func() { s.metrics.ObserveMutation("schedule", err) }()

	if p.ScheduledAt.IsZero() {
		return nil, validationErr("scheduled_at", "timestamp is required")
	}

	if p.IsBlockout {
		created, err := s.repo.CreateAppointment(ctx, &Appointment{
			ScheduledAt:   p.ScheduledAt,
			Status:        StatusPending,
			ServiceType:   p.ServiceType,
			Notes:         p.Notes,
			IsBlockout:    true,
			PaymentMethod: PaymentNone,
		})
		if err != nil {
			return nil, fmt.Errorf("create blockout: %w", err)
		}
		s.logger.Info("blockout created", "appointment_id", created.ID, "scheduled_at", created.ScheduledAt)
		s.notifyChanged(ctx)
		return created, nil
	}

	if !s.cat.Contains(p.ServiceType) {
		return nil, validationErr("service_type", fmt.Sprintf("%q is not in the service catalog", p.ServiceType))
	}

	patient, err := s.resolvePatient(ctx, p)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateAppointment(ctx, &Appointment{
		PatientID:     patient.ID,
		PatientName:   patient.Name,
		PatientPhone:  patient.Phone,
		Practitioner:  p.Practitioner,
		ServiceType:   p.ServiceType,
		ScheduledAt:   p.ScheduledAt,
		Status:        StatusPending,
		PaymentMethod: PaymentNone,
		Notes:         p.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logger.Info("appointment scheduled",
		"appointment_id", created.ID,
		"patient_id", patient.ID,
		"service", created.ServiceType,
		"scheduled_at", created.ScheduledAt)
	s.notifyChanged(ctx)
	return created, nil
}

// resolvePatient finds, creates, or updates the patient a booking refers to.
func (s *Service) resolvePatient(ctx context.Context, p ScheduleParams) (*Patient, error) {
	name := strings.TrimSpace(p.PatientName)
	phone := strings.TrimSpace(p.PatientPhone)

	if p.PatientID != nil {
		patient, err := s.repo.GetPatientByID(ctx, *p.PatientID)
		if err != nil {
			return nil, err
		}
		changed := false
		if name != "" && name != patient.Name {
			patient.Name = name
			changed = true
		}
		if phone != "" && phone != patient.Phone {
			patient.Phone = phone
			changed = true
		}
		if !changed {
			return patient, nil
		}
		updated, err := s.repo.UpdatePatient(ctx, patient)
		if err != nil {
			return nil, fmt.Errorf("update patient from booking: %w", err)
		}
		return updated, nil
	}

	if name == "" {
		return nil, validationErr("patient_name", "name is required for a new patient")
	}
	if phone == "" {
		return nil, validationErr("patient_phone", "phone is required for a new patient")
	}

	existing, err := s.repo.GetPatientByPhone(ctx, phone)
	if err == nil {
		if name != existing.Name {
			existing.Name = name
			updated, err := s.repo.UpdatePatient(ctx, existing)
			if err != nil {
				return nil, fmt.Errorf("update patient from booking: %w", err)
			}
			return updated, nil
		}
		return existing, nil
	}
	if !errors.Is(err, ErrPatientNotFound) {
		return nil, fmt.Errorf("lookup patient by phone: %w", err)
	}

	created, err := s.repo.CreatePatient(ctx, &Patient{
		Name:         name,
		Phone:        phone,
		Status:       PatientActive,
		ReminderPref: RemindWhatsApp,
	})
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	s.logger.Info("patient registered from booking", "patient_id", created.ID)
	return created, nil
}

// FinishParams closes out a visit with its payment and warranty facts.
type FinishParams struct {
	ID           uuid.UUID
	IsPaid       bool
	Method       PaymentMethod
	AmountCents  int64
	UsedWarranty bool
	// OverrideReason documents why a warranty-covered visit was charged
	// anyway. Required confirmation is the caller's job; the engine only
	// records the trail.
	OverrideReason string
}

// Finish moves an appointment to finished and is the sole writer of payment
// fields. Charging a warranty-covered visit is allowed but leaves an audit
// note (warn, don't block).
func (s *Service) Finish(ctx context.Context, p FinishParams) (appt *Appointment, err error) {
	defer func() { s.metrics.ObserveMutation("finish", err) }()

	a, err := s.repo.GetAppointmentByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if a.IsBlockout {
		return nil, validationErr("appointment", "a blockout cannot be finished")
	}

	method := p.Method
	if method == "" {
		method = PaymentNone
	}
	if !ValidPaymentMethod(method) {
		return nil, validationErr("payment_method", fmt.Sprintf("unknown method %q", p.Method))
	}
	if p.AmountCents < 0 {
		return nil, validationErr("amount_cents", "amount must not be negative")
	}
	if !p.IsPaid {
		method = PaymentNone
	}

	now := s.now()

	warrantyActive := false
	if s.warranty != nil && s.cat.IsWarrantyApplicable(a.ServiceType) {
		history, err := s.repo.ListAppointmentsByPatient(ctx, a.PatientID)
		if err != nil {
			return nil, fmt.Errorf("load patient history: %w", err)
		}
		warrantyActive = s.warranty.Active(history, now)
	}

	if p.UsedWarranty {
		if p.IsPaid {
			return nil, validationErr("used_warranty", "a warranty visit cannot also be paid")
		}
		if !s.cat.IsWarrantyApplicable(a.ServiceType) {
			return nil, validationErr("used_warranty", fmt.Sprintf("service %q is not covered by warranty", a.ServiceType))
		}
		if !warrantyActive {
			return nil, validationErr("used_warranty", "no active warranty for this patient")
		}
	}

	notes := a.Notes
	if warrantyActive && p.IsPaid {
		reason := strings.TrimSpace(p.OverrideReason)
		if reason == "" {
			reason = "no reason given"
		}
		note := fmt.Sprintf("[override] charged with active warranty: %s", reason)
		if notes != "" {
			notes += "\n"
		}
		notes += note
		s.logger.Warn("warranty charge override recorded",
			"appointment_id", a.ID, "patient_id", a.PatientID, "reason", reason)
	}

	a.Status = StatusFinished
	a.CompletedAt = &now
	a.IsPaid = p.IsPaid
	a.PaymentMethod = method
	a.AmountCents = p.AmountCents
	a.UsedWarranty = p.UsedWarranty
	a.Notes = notes

	updated, err := s.repo.UpdateAppointment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("finish appointment: %w", err)
	}

	if err := s.touchLastVisit(ctx, a.PatientID, now); err != nil {
		// The visit itself is committed; last-visit is a convenience field.
		s.logger.Warn("update last visit failed", "patient_id", a.PatientID, "error", err)
	}

	s.logger.Info("appointment finished",
		"appointment_id", updated.ID,
		"paid", updated.IsPaid,
		"method", updated.PaymentMethod,
		"amount_cents", updated.AmountCents,
		"used_warranty", updated.UsedWarranty)
	s.notifyChanged(ctx)
	return updated, nil
}

func (s *Service) touchLastVisit(ctx context.Context, patientID uuid.UUID, at time.Time) error {
	if patientID == uuid.Nil {
		return nil
	}
	patient, err := s.repo.GetPatientByID(ctx, patientID)
	if err != nil {
		return err
	}
	patient.LastVisit = &at
	_, err = s.repo.UpdatePatient(ctx, patient)
	return err
}

// ChangeStatus forces the status/payment coupling rule on any move into a
// non-finished status. Moving to finished through this path keeps whatever
// payment fields were stored; Finish is the path that sets them.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, newStatus Status) (appt *Appointment, err error) {
	defer func() { s.metrics.ObserveMutation("change_status", err) }()

	if !ValidStatus(newStatus) {
		return nil, validationErr("status", fmt.Sprintf("unknown status %q", newStatus))
	}

	a, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Status = newStatus
	if newStatus == StatusFinished {
		if a.CompletedAt == nil {
			now := s.now()
			a.CompletedAt = &now
		}
	} else {
		a.ClearPayment()
	}

	updated, err := s.repo.UpdateAppointment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	s.logger.Info("appointment status changed", "appointment_id", id, "status", newStatus)
	s.notifyChanged(ctx)
	return updated, nil
}

// EditPatch carries the fields a reschedule form may change. Nil means leave
// as is.
type EditPatch struct {
	ScheduledAt  *time.Time
	ServiceType  *string
	Practitioner *string
	Status       *Status
	Notes        *string
}

// Edit applies the patch and then enforces the payment rule unconditionally:
// whatever the caller intended, a resulting non-finished status wipes payment
// fields.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, patch EditPatch) (appt *Appointment, err error) {
	defer func() { s.metrics.ObserveMutation("edit", err) }()

	a, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.ScheduledAt != nil {
		if patch.ScheduledAt.IsZero() {
			return nil, validationErr("scheduled_at", "timestamp is required")
		}
		a.ScheduledAt = *patch.ScheduledAt
	}
	if patch.ServiceType != nil {
		if !a.IsBlockout && !s.cat.Contains(*patch.ServiceType) {
			return nil, validationErr("service_type", fmt.Sprintf("%q is not in the service catalog", *patch.ServiceType))
		}
		a.ServiceType = *patch.ServiceType
	}
	if patch.Practitioner != nil {
		a.Practitioner = *patch.Practitioner
	}
	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	if patch.Status != nil {
		if !ValidStatus(*patch.Status) {
			return nil, validationErr("status", fmt.Sprintf("unknown status %q", *patch.Status))
		}
		a.Status = *patch.Status
	}

	// Patch first, invariant second. Only an exactly-finished result keeps
	// payment data.
	if a.Status != StatusFinished {
		a.ClearPayment()
	} else if a.CompletedAt == nil {
		now := s.now()
		a.CompletedAt = &now
	}

	updated, err := s.repo.UpdateAppointment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("edit appointment: %w", err)
	}

	s.logger.Info("appointment edited", "appointment_id", id, "status", updated.Status)
	s.notifyChanged(ctx)
	return updated, nil
}

// Delete removes a single appointment.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.metrics.ObserveMutation("delete", err) }()

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("appointment deleted", "appointment_id", id)
	s.notifyChanged(ctx)
	return nil
}

// DeletePatientCascade removes the patient and every appointment referencing
// it as one logical unit. A midway failure surfaces as *PartialDeleteError so
// the caller can retry.
func (s *Service) DeletePatientCascade(ctx context.Context, patientID uuid.UUID) (err error) {
	defer func() { s.metrics.ObserveMutation("delete_patient_cascade", err) }()

	if err := s.repo.DeletePatientCascade(ctx, patientID); err != nil {
		return err
	}
	s.logger.Info("patient deleted with appointments", "patient_id", patientID)
	s.notifyChanged(ctx)
	return nil
}

// MarkReminderSent flags an appointment's reminder as delivered. Idempotent.
func (s *Service) MarkReminderSent(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.metrics.ObserveMutation("mark_reminder_sent", err) }()

	if err := s.repo.MarkReminderSent(ctx, id); err != nil {
		return err
	}
	s.notifyChanged(ctx)
	return nil
}

// UpdatePatientParams edits a patient's profile.
type UpdatePatientParams struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	ReminderPref ReminderPref
}

// UpdatePatient edits profile fields. Appointment rows keep the name and
// phone they were booked with.
func (s *Service) UpdatePatient(ctx context.Context, p UpdatePatientParams) (patient *Patient, err error) {
	defer func() { s.metrics.ObserveMutation("update_patient", err) }()

	name := strings.TrimSpace(p.Name)
	phone := strings.TrimSpace(p.Phone)
	if name == "" {
		return nil, validationErr("name", "name is required")
	}
	if phone == "" {
		return nil, validationErr("phone", "phone is required")
	}
	if !ValidReminderPref(p.ReminderPref) {
		return nil, validationErr("reminder_pref", fmt.Sprintf("unknown preference %q", p.ReminderPref))
	}

	existing, err := s.repo.GetPatientByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Phone = phone
	existing.ReminderPref = p.ReminderPref

	updated, err := s.repo.UpdatePatient(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}

	s.notifyChanged(ctx)
	return updated, nil
}

// SetPatientStatus toggles active/blocked/archived. The block reason is kept
// only while blocked.
func (s *Service) SetPatientStatus(ctx context.Context, id uuid.UUID, status PatientStatus, blockReason string) (patient *Patient, err error) {
	defer func() { s.metrics.ObserveMutation("set_patient_status", err) }()

	if !ValidPatientStatus(status) {
		return nil, validationErr("status", fmt.Sprintf("unknown patient status %q", status))
	}

	existing, err := s.repo.GetPatientByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Status = status
	if status == PatientBlocked {
		existing.BlockReason = strings.TrimSpace(blockReason)
	} else {
		existing.BlockReason = ""
	}

	updated, err := s.repo.UpdatePatient(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("set patient status: %w", err)
	}

	s.logger.Info("patient status changed", "patient_id", id, "status", status)
	s.notifyChanged(ctx)
	return updated, nil
}

// Read-side pass-throughs used by the API layer.

// Location returns the clinic's timezone.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointmentByID(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context) ([]Appointment, error) {
	return s.repo.ListAppointments(ctx)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]Patient, error) {
	return s.repo.ListPatients(ctx)
}

func (s *Service) ListPatientAppointments(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	return s.repo.ListAppointmentsByPatient(ctx, patientID)
}

// ListAppointmentsForDay returns every appointment on the calendar day of
// date in the clinic's zone.
func (s *Service) ListAppointmentsForDay(ctx context.Context, date time.Time) ([]Appointment, error) {
	local := date.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	return s.repo.ListAppointmentsBetween(ctx, start, start.AddDate(0, 0, 1))
}

// ListUpcoming returns appointments scheduled within [from, from+window].
func (s *Service) ListUpcoming(ctx context.Context, from time.Time, window time.Duration) ([]Appointment, error) {
	return s.repo.ListAppointmentsBetween(ctx, from, from.Add(window))
}
