package pricing

import (
	"time"

	"github.com/finastack/folio/models"
)

// Day-count conventions recognized on accrual schedules.
const (
	DayCountActual360 = "day_count_actual_360"
	DayCountActual365 = "day_count_actual_365"
	DayCount30360     = "day_count_30_360"
)

// AccruedAt computes the accrued price at a date from the instrument's
// accrual schedules. The schedule in force is the one with the latest
// start date not after the target date; accrual runs from its start.
func AccruedAt(schedules []models.AccrualCalculationSchedule, date time.Time) float64 {
	var active *models.AccrualCalculationSchedule
	for i := range schedules {
		s := &schedules[i]
		if s.AccrualStartDate.After(date) {
			continue
		}
		if active == nil || s.AccrualStartDate.After(active.AccrualStartDate) {
			active = s
		}
	}
	if active == nil {
		return 0
	}

	size, _ := active.AccrualSize.Float64()
	days := daysBetween(active.AccrualStartDate, date)
	if days <= 0 {
		return 0
	}

	switch active.AccrualCalculationModel {
	case DayCountActual365:
		return size * float64(days) / 365
	case DayCount30360:
		return size * float64(days30360(active.AccrualStartDate, date)) / 360
	default:
		return size * float64(days) / 360
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Truncate(24*time.Hour).Sub(from.Truncate(24*time.Hour)).Hours() / 24)
}

// days30360 is the US 30/360 convention: every month counts thirty
// days.
func days30360(from, to time.Time) int {
	d1, d2 := from.Day(), to.Day()
	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 && d1 == 30 {
		d2 = 30
	}
	return (to.Year()-from.Year())*360 + (int(to.Month())-int(from.Month()))*30 + (d2 - d1)
}
