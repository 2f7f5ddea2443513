// Package summary folds a day's appointments into the cash-reconciliation
// totals the front desk closes the register with.
package summary

import (
	"time"

	"github.com/clinicdesk/appointment-book/internal/appointment"
)

// DailySummary is derived on every read; it is never stored.
type DailySummary struct {
	Date             string `json:"date"` // YYYY-MM-DD in the clinic zone
	Total            int    `json:"total"`
	Finished         int    `json:"finished"`
	FinishedPaid     int    `json:"finished_paid"`
	FinishedWarranty int    `json:"finished_warranty"`
	Pending          int    `json:"pending"`
	Cancelled        int    `json:"cancelled"`
	NoShow           int    `json:"no_show"`
	CashCents        int64  `json:"cash_cents"`
	BankCents        int64  `json:"bank_cents"`
	TotalCents       int64  `json:"total_cents"`
}

// Summarize aggregates the appointments falling on date's calendar day in
// loc. Every appointment on the day counts toward the per-status tallies;
// only finished ones contribute money. Blockouts are calendar furniture and
// are skipped entirely. The fold is order-independent and additive over any
// partition of the input.
func Summarize(appts []appointment.Appointment, date time.Time, loc *time.Location) DailySummary {
	if loc == nil {
		loc = time.UTC
	}

	s := DailySummary{Date: date.In(loc).Format("2006-01-02")}

	for _, a := range appts {
		if a.IsBlockout || !a.ScheduledOn(date, loc) {
			continue
		}

		s.Total++
		switch a.Status {
		case appointment.StatusPending:
			s.Pending++
		case appointment.StatusCancelled:
			s.Cancelled++
		case appointment.StatusNoShow:
			s.NoShow++
		case appointment.StatusFinished:
			s.Finished++
			if a.IsPaid {
				s.FinishedPaid++
			}
			if a.UsedWarranty {
				s.FinishedWarranty++
			}
			switch a.PaymentMethod {
			case appointment.PaymentCash:
				s.CashCents += a.AmountCents
			case appointment.PaymentCard, appointment.PaymentTransfer:
				s.BankCents += a.AmountCents
			}
		}
	}

	s.TotalCents = s.CashCents + s.BankCents
	return s
}
