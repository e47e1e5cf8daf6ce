// Package recurrence evaluates repeating-event rules against civil dates.
// Rules are pure values; evaluation holds no state and never fails once a
// rule has passed Validate.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind selects the period of a repeating rule.
type Kind string

const (
	KindNone    Kind = "NONE"
	KindDaily   Kind = "DAILY"
	KindWeekly  Kind = "WEEKLY"
	KindMonthly Kind = "MONTHLY"
	KindYearly  Kind = "YEARLY"
)

// ParseKind normalizes a stored repeat kind. An empty string means NONE.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", KindNone:
		return KindNone, nil
	case KindDaily:
		return KindDaily, nil
	case KindWeekly:
		return KindWeekly, nil
	case KindMonthly:
		return KindMonthly, nil
	case KindYearly:
		return KindYearly, nil
	default:
		return KindNone, fmt.Errorf("unknown repeat kind %q", raw)
	}
}

// Weekday is a two-letter weekday code: MO, TU, WE, TH, FR, SA, SU.
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

var weekdayCodes = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// WeekdayOf maps a time.Weekday to its code.
func WeekdayOf(d time.Weekday) Weekday {
	return weekdayCodes[d]
}

// ParseDays parses a comma-separated list of weekday codes, e.g. "MO,WE,FR".
func ParseDays(raw string) ([]Weekday, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var days []Weekday
	for _, part := range strings.Split(raw, ",") {
		code := Weekday(strings.ToUpper(strings.TrimSpace(part)))
		if !code.valid() {
			return nil, fmt.Errorf("unknown weekday code %q", part)
		}
		days = append(days, code)
	}
	return days, nil
}

// FormatDays renders a day set back into its stored comma-separated form.
func FormatDays(days []Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

func (w Weekday) valid() bool {
	switch w {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// Clock is a civil time of day with no date and no zone.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an HH:MM string.
func ParseClock(raw string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", raw)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the offset from midnight in minutes.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Rule is the declarative shape of a repeating event. Anchor and Until are
// civil dates: only their year, month and day are read.
type Rule struct {
	Kind     Kind
	Interval int
	Anchor   time.Time
	Until    *time.Time
	Days     []Weekday
	Start    Clock
	End      Clock
	Timezone string
}

// Validate rejects configuration errors up front so that OccursOn only ever
// sees well-formed rules. A NONE rule is valid but never occurs.
func (r Rule) Validate() error {
	switch r.Kind {
	case KindNone, KindDaily, KindWeekly, KindMonthly, KindYearly:
	default:
		return fmt.Errorf("unknown repeat kind %q", r.Kind)
	}
	if r.Kind == KindNone {
		return nil
	}
	if r.Interval < 1 {
		return fmt.Errorf("repeat interval must be at least 1, got %d", r.Interval)
	}
	if r.Anchor.IsZero() {
		return fmt.Errorf("repeat start date is required")
	}
	if r.Until != nil && civilDate(*r.Until).Before(civilDate(r.Anchor)) {
		return fmt.Errorf("repeat end date is before its start date")
	}
	if r.Kind == KindWeekly {
		if len(r.Days) == 0 {
			return fmt.Errorf("weekly repeat needs at least one weekday")
		}
		for _, d := range r.Days {
			if !d.valid() {
				return fmt.Errorf("unknown weekday code %q", d)
			}
		}
	}
	if r.End.Minutes() <= r.Start.Minutes() {
		return fmt.Errorf("repeat end time %s must be after start time %s", r.End, r.Start)
	}
	return nil
}

// OnDay reports whether the rule's day set contains the given code.
func (r Rule) OnDay(day Weekday) bool {
	for _, d := range r.Days {
		if d == day {
			return true
		}
	}
	return false
}
