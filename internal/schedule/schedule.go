// Package schedule answers when the clinic is open and what each calendar
// slot of a day holds.
package schedule

import "time"

// DayShifts configures one weekday. Hours are 24h integers; each shift covers
// the half-open range [Start, End). A shift whose start is not before its end
// simply never matches, it is not an error.
type DayShifts struct {
	Open        bool `json:"open"`
	Shift1Start int  `json:"shift1_start"`
	Shift1End   int  `json:"shift1_end"`
	HasShift2   bool `json:"has_shift2"`
	Shift2Start int  `json:"shift2_start"`
	Shift2End   int  `json:"shift2_end"`
}

func (d DayShifts) contains(hour int) bool {
	if !d.Open {
		return false
	}
	if hour >= d.Shift1Start && hour < d.Shift1End {
		return true
	}
	return d.HasShift2 && hour >= d.Shift2Start && hour < d.Shift2End
}

// WeekSchedule holds the seven day records.
type WeekSchedule struct {
	Monday    DayShifts `json:"monday"`
	Tuesday   DayShifts `json:"tuesday"`
	Wednesday DayShifts `json:"wednesday"`
	Thursday  DayShifts `json:"thursday"`
	Friday    DayShifts `json:"friday"`
	Saturday  DayShifts `json:"saturday"`
	Sunday    DayShifts `json:"sunday"`
}

// DefaultWeek is the out-of-the-box schedule: two weekday shifts, a single
// Saturday morning shift, closed Sundays.
func DefaultWeek() *WeekSchedule {
	weekday := DayShifts{
		Open:        true,
		Shift1Start: 9,
		Shift1End:   13,
		HasShift2:   true,
		Shift2Start: 15,
		Shift2End:   19,
	}
	return &WeekSchedule{
		Monday:    weekday,
		Tuesday:   weekday,
		Wednesday: weekday,
		Thursday:  weekday,
		Friday:    weekday,
		Saturday:  DayShifts{Open: true, Shift1Start: 9, Shift1End: 14},
		Sunday:    DayShifts{},
	}
}

// Day returns the record for a weekday.
func (w *WeekSchedule) Day(wd time.Weekday) DayShifts {
	switch wd {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

// IsWorkingHour reports whether the given hour of ts's calendar day is a
// working hour. The weekday is taken from ts in its own location, so callers
// pass clinic-local timestamps.
func (w *WeekSchedule) IsWorkingHour(ts time.Time, hour int) bool {
	return w.Day(ts.Weekday()).contains(hour)
}
