// Package availability scans every calendar a user may read for events that
// overlap a query window. Event and rule retrieval is delegated to a Source;
// the scan itself holds no state and may run concurrently with any other.
package availability

import (
	"context"
	"fmt"
	"log"
	"time"

	"planmate/internal/recurrence"
)

// CalendarInfo identifies one readable calendar.
type CalendarInfo struct {
	ID   uint
	Name string
}

// BusyInterval is one stored one-off event's absolute window.
type BusyInterval struct {
	Title string
	Start time.Time
	End   time.Time
}

// RecurringEntry pairs a stored recurring event's title with its rule.
type RecurringEntry struct {
	Title string
	Rule  recurrence.Rule
}

// Source supplies the calendars visible to a user and their stored events.
// Implementations own retry and timeout policy; the checker only reads.
type Source interface {
	VisibleCalendars(ctx context.Context, userID uint) ([]CalendarInfo, error)
	OneOffEvents(ctx context.Context, calendarID uint) ([]BusyInterval, error)
	RecurringEvents(ctx context.Context, calendarID uint) ([]RecurringEntry, error)
}

// Conflict is one busy interval overlapping the query window. Conflicts are
// built fresh per query and never persisted.
type Conflict struct {
	Title    string
	Calendar string
	Start    time.Time
	End      time.Time
}

// Result is the outcome of one availability query.
type Result struct {
	Free      bool
	Message   string
	Conflicts []Conflict
}

// Overlaps reports whether the half-open intervals [startA, endA) and
// [startB, endB) intersect. Intervals that merely touch do not overlap.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// Checker runs availability queries against a Source.
type Checker struct {
	source   Source
	fallback *time.Location
}

// NewChecker builds a checker. fallback is the zone used to materialize
// occurrences whose rule carries no resolvable timezone; nil means the
// system's local zone.
func NewChecker(source Source, fallback *time.Location) *Checker {
	return &Checker{source: source, fallback: fallback}
}

// Check scans every calendar visible to userID for events overlapping
// [start, end). Recurring rules are evaluated against the civil date of
// start, in start's own location; a window crossing midnight therefore only
// picks up occurrences anchored to the window's first date. A calendar whose
// events cannot be loaded is logged and skipped so one failing calendar does
// not void the whole answer.
func (c *Checker) Check(ctx context.Context, userID uint, start, end time.Time) (Result, error) {
	if !end.After(start) {
		return Result{}, fmt.Errorf("query end %s must be after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	calendars, err := c.source.VisibleCalendars(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("list visible calendars: %w", err)
	}
	if len(calendars) == 0 {
		return Result{Free: true, Message: "Free: you have no calendars."}, nil
	}

	queryDate := start

	var conflicts []Conflict
	for _, cal := range calendars {
		events, err := c.source.OneOffEvents(ctx, cal.ID)
		if err != nil {
			log.Printf("availability: skip calendar %d (%s): load events: %v", cal.ID, cal.Name, err)
			continue
		}
		for _, ev := range events {
			if Overlaps(ev.Start, ev.End, start, end) {
				conflicts = append(conflicts, Conflict{
					Title:    ev.Title,
					Calendar: cal.Name,
					Start:    ev.Start,
					End:      ev.End,
				})
			}
		}

		recurring, err := c.source.RecurringEvents(ctx, cal.ID)
		if err != nil {
			log.Printf("availability: skip calendar %d (%s): load recurring events: %v", cal.ID, cal.Name, err)
			continue
		}
		for _, re := range recurring {
			if !re.Rule.OccursOn(queryDate) {
				continue
			}
			busyStart, busyEnd := re.Rule.Materialize(queryDate, c.fallback)
			if Overlaps(busyStart, busyEnd, start, end) {
				conflicts = append(conflicts, Conflict{
					Title:    re.Title,
					Calendar: cal.Name,
					Start:    busyStart,
					End:      busyEnd,
				})
			}
		}
	}

	if len(conflicts) == 0 {
		return Result{Free: true, Message: "You are free in this window."}, nil
	}
	return Result{
		Free:      false,
		Message:   fmt.Sprintf("You are busy: %d overlapping event(s).", len(conflicts)),
		Conflicts: conflicts,
	}, nil
}
