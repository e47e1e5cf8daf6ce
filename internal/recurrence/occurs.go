package recurrence

import "time"

// OccursOn reports whether the rule produces an occurrence on the civil date
// of the given time. Interval counting is anchored at Rule.Anchor; dates
// before the anchor or after Until never occur. Month and year length
// differences are resolved only by two explicit fallbacks: a rule anchored on
// the last day of a month (day 28 or later) fires on the last day of every
// qualifying month, and a 29-Feb anchor fires on 28 Feb in non-leap years.
// Everything else that doesn't match simply produces no occurrence.
func (r Rule) OccursOn(date time.Time) bool {
	d := civilDate(date)
	anchor := civilDate(r.Anchor)

	if d.Before(anchor) {
		return false
	}
	if r.Until != nil && d.After(civilDate(*r.Until)) {
		return false
	}

	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	switch r.Kind {
	case KindDaily:
		return daysBetween(anchor, d)%interval == 0

	case KindWeekly:
		if (daysBetween(anchor, d)/7)%interval != 0 {
			return false
		}
		return r.OnDay(WeekdayOf(d.Weekday()))

	case KindMonthly:
		months := monthsBetween(firstOfMonth(anchor), firstOfMonth(d))
		if months%interval != 0 {
			return false
		}
		if anchor.Day() == d.Day() {
			return true
		}
		// Month-end anchoring: 31 Jan recurs on 28/29 Feb, 30 Apr, ...
		if anchor.Day() >= 28 && isLastOfMonth(anchor) && isLastOfMonth(d) {
			return true
		}
		return false

	case KindYearly:
		if yearsBetween(anchor, d)%interval != 0 {
			return false
		}
		if anchor.Month() == d.Month() && anchor.Day() == d.Day() {
			return true
		}
		// Leap-day anchor degrades to 28 Feb in non-leap years.
		if anchor.Month() == time.February && anchor.Day() == 29 &&
			d.Month() == time.February && d.Day() == 28 && !isLeapYear(d.Year()) {
			return true
		}
		return false

	default:
		// NONE (and anything unvalidated) never occurs.
		return false
	}
}

// civilDate strips the time of day and zone, leaving a comparable date.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b. Both must be civil dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// monthsBetween counts calendar months between two first-of-month dates.
func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// yearsBetween counts whole elapsed years from a to b, rounding down when
// b's month/day falls earlier in the year than a's.
func yearsBetween(a, b time.Time) int {
	years := b.Year() - a.Year()
	if b.Month() < a.Month() || (b.Month() == a.Month() && b.Day() < a.Day()) {
		years--
	}
	return years
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func isLastOfMonth(t time.Time) bool {
	return t.Day() == daysInMonth(t.Month(), t.Year())
}

// daysInMonth moves to the next month and rolls back a day.
func daysInMonth(month time.Month, year int) int {
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
