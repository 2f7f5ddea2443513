// Package warranty derives a patient's warranty standing from their visit
// history. It is a pure read-side projection: nothing here writes.
package warranty

import (
	"math"
	"time"

	"github.com/clinicdesk/appointment-book/internal/appointment"
	"github.com/clinicdesk/appointment-book/internal/catalog"
)

// State describes whether a warranty is currently active and where it came
// from. Derived on demand, never stored.
type State struct {
	Active        bool       `json:"active"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
	// SourceService is the service type of the visit that started the
	// current warranty period.
	SourceService string `json:"source_service,omitempty"`
}

// Engine computes warranty state against a catalog and a configured period.
type Engine struct {
	cat    *catalog.Catalog
	period time.Duration
}

func NewEngine(cat *catalog.Catalog, period time.Duration) *Engine {
	return &Engine{cat: cat, period: period}
}

// Compute scans the patient's appointments for the latest finished
// warranty-trigger visit and derives the state as of asOf. With no trigger
// visit on record the state is inactive.
func (e *Engine) Compute(history []appointment.Appointment, asOf time.Time) State {
	trigger := latestTrigger(e.cat, history)
	if trigger == nil {
		return State{}
	}

	expiresAt := trigger.CompletedAt.Add(e.period)
	active := asOf.Before(expiresAt)

	remaining := 0
	if active {
		remaining = int(math.Ceil(expiresAt.Sub(asOf).Hours() / 24))
	}

	return State{
		Active:        active,
		ExpiresAt:     &expiresAt,
		DaysRemaining: remaining,
		SourceService: trigger.ServiceType,
	}
}

// Active implements appointment.WarrantyChecker.
func (e *Engine) Active(history []appointment.Appointment, asOf time.Time) bool {
	return e.Compute(history, asOf).Active
}

// Applicable reports whether a visit of this service type may be rendered
// free under an active warranty. Activation and applicability are distinct:
// several services renew the warranty, only one consumes it.
func (e *Engine) Applicable(service string) bool {
	return e.cat.IsWarrantyApplicable(service)
}

// Period returns the configured warranty duration.
func (e *Engine) Period() time.Duration {
	return e.period
}

// latestTrigger picks the finished trigger-service visit with the latest
// completion time, breaking ties by the later scheduled time.
func latestTrigger(cat *catalog.Catalog, history []appointment.Appointment) *appointment.Appointment {
	var best *appointment.Appointment
	for i := range history {
		a := &history[i]
		if a.IsBlockout || a.Status != appointment.StatusFinished || a.CompletedAt == nil {
			continue
		}
		if !cat.TriggersWarranty(a.ServiceType) {
			continue
		}
		if best == nil {
			best = a
			continue
		}
		switch {
		case a.CompletedAt.After(*best.CompletedAt):
			best = a
		case a.CompletedAt.Equal(*best.CompletedAt) && a.ScheduledAt.After(best.ScheduledAt):
			best = a
		}
	}
	return best
}
