package recurrence

import "time"

// Materialize combines a civil date with the rule's start and end clocks and
// resolves the rule's timezone into one absolute interval. Zone resolution is
// best-effort: an unset or unloadable zone name falls back to the given
// location, and a nil fallback means the system's local zone. Materialize
// does not check OccursOn; callers only materialize dates already confirmed
// to occur.
func (r Rule) Materialize(date time.Time, fallback *time.Location) (time.Time, time.Time) {
	loc := fallback
	if loc == nil {
		loc = time.Local
	}
	if r.Timezone != "" {
		if l, err := time.LoadLocation(r.Timezone); err == nil {
			loc = l
		}
	}

	year, month, day := date.Date()
	start := time.Date(year, month, day, r.Start.Hour, r.Start.Minute, 0, 0, loc)
	end := time.Date(year, month, day, r.End.Hour, r.End.Minute, 0, 0, loc)
	return start, end
}
