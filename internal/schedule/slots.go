package schedule

import (
	"sort"
	"time"

	"github.com/clinicdesk/appointment-book/internal/appointment"
)

// Visible hour range of the calendar grid: slots 06:00 through 20:00.
const (
	VisibleStartHour = 6
	VisibleEndHour   = 21
)

type SlotState string

const (
	SlotClosed    SlotState = "closed"
	SlotBlocked   SlotState = "blocked"
	SlotAvailable SlotState = "available"
	SlotOccupied  SlotState = "occupied"
)

// SlotView is one hour of the visible calendar for a given date.
type SlotView struct {
	Hour         int
	State        SlotState
	Appointments []appointment.Appointment
}

// SlotsForDay derives the state of every visible slot on date's calendar day
// from the week schedule and that day's appointments (blockouts included).
// A slot holding both a blockout and real appointments is blocked: blockout
// wins, and callers must not book into it.
func SlotsForDay(ws *WeekSchedule, date time.Time, appts []appointment.Appointment) []SlotView {
	loc := date.Location()

	byHour := make(map[int][]appointment.Appointment)
	for _, a := range appts {
		if !a.ScheduledOn(date, loc) {
			continue
		}
		h := a.ScheduledAt.In(loc).Hour()
		byHour[h] = append(byHour[h], a)
	}

	slots := make([]SlotView, 0, VisibleEndHour-VisibleStartHour)
	for hour := VisibleStartHour; hour < VisibleEndHour; hour++ {
		inSlot := byHour[hour]
		sort.SliceStable(inSlot, func(i, j int) bool {
			return inSlot[i].ScheduledAt.Before(inSlot[j].ScheduledAt)
		})

		slots = append(slots, SlotView{
			Hour:         hour,
			State:        slotState(ws, date, hour, inSlot),
			Appointments: inSlot,
		})
	}

	return slots
}

func slotState(ws *WeekSchedule, date time.Time, hour int, inSlot []appointment.Appointment) SlotState {
	if !ws.IsWorkingHour(date, hour) {
		return SlotClosed
	}

	hasBlockout := false
	hasVisit := false
	for _, a := range inSlot {
		if a.IsBlockout {
			hasBlockout = true
		} else {
			hasVisit = true
		}
	}

	switch {
	case hasBlockout:
		return SlotBlocked
	case hasVisit:
		return SlotOccupied
	default:
		return SlotAvailable
	}
}
