package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"planmate/internal/recurrence"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

	tests := []struct {
		name                       string
		startA, endA, startB, endB time.Time
		want                       bool
	}{
		{"partial overlap", at(0), at(60), at(30), at(90), true},
		{"nested", at(0), at(120), at(30), at(60), true},
		{"identical", at(0), at(60), at(0), at(60), true},
		{"touching end to start", at(0), at(60), at(60), at(120), false},
		{"touching start to end", at(60), at(120), at(0), at(60), false},
		{"disjoint", at(0), at(30), at(90), at(120), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.startA, tt.endA, tt.startB, tt.endB); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			// Commutative in the (A, B) pair.
			if got := Overlaps(tt.startB, tt.endB, tt.startA, tt.endA); got != tt.want {
				t.Errorf("Overlaps swapped = %v, want %v", got, tt.want)
			}
		})
	}
}

// fakeSource feeds the checker from in-memory maps.
type fakeSource struct {
	calendars    []CalendarInfo
	calendarsErr error
	oneOff       map[uint][]BusyInterval
	oneOffErr    map[uint]error
	recurring    map[uint][]RecurringEntry
	recurringErr map[uint]error
}

func (f *fakeSource) VisibleCalendars(ctx context.Context, userID uint) ([]CalendarInfo, error) {
	return f.calendars, f.calendarsErr
}

func (f *fakeSource) OneOffEvents(ctx context.Context, calendarID uint) ([]BusyInterval, error) {
	if err := f.oneOffErr[calendarID]; err != nil {
		return nil, err
	}
	return f.oneOff[calendarID], nil
}

func (f *fakeSource) RecurringEvents(ctx context.Context, calendarID uint) ([]RecurringEntry, error) {
	if err := f.recurringErr[calendarID]; err != nil {
		return nil, err
	}
	return f.recurring[calendarID], nil
}

func TestCheck_RejectsEmptyWindow(t *testing.T) {
	checker := NewChecker(&fakeSource{}, time.UTC)
	at := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)

	if _, err := checker.Check(context.Background(), 1, at, at); err == nil {
		t.Error("expected error for zero-length window")
	}
	if _, err := checker.Check(context.Background(), 1, at, at.Add(-time.Hour)); err == nil {
		t.Error("expected error for inverted window")
	}
}

func TestCheck_NoCalendarsIsFree(t *testing.T) {
	checker := NewChecker(&fakeSource{}, time.UTC)
	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)

	result, err := checker.Check(context.Background(), 1, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.Free || len(result.Conflicts) != 0 {
		t.Errorf("want free with no conflicts, got %+v", result)
	}
}

func TestCheck_OneOffConflict(t *testing.T) {
	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	source := &fakeSource{
		calendars: []CalendarInfo{{ID: 1, Name: "Work"}},
		oneOff: map[uint][]BusyInterval{
			1: {
				{Title: "Standup", Start: start.Add(30 * time.Minute), End: start.Add(45 * time.Minute)},
				{Title: "Lunch", Start: start.Add(3 * time.Hour), End: start.Add(4 * time.Hour)},
			},
		},
	}
	checker := NewChecker(source, time.UTC)

	result, err := checker.Check(context.Background(), 1, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.Free {
		t.Fatal("expected a busy result")
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(result.Conflicts))
	}
	c := result.Conflicts[0]
	if c.Title != "Standup" || c.Calendar != "Work" {
		t.Errorf("unexpected conflict %+v", c)
	}
}

func TestCheck_RecurringWeeklyConflict(t *testing.T) {
	// Weekly Monday 09:00-10:00 in Bangkok, anchored 2025-11-17, no end date.
	rule := recurrence.Rule{
		Kind:     recurrence.KindWeekly,
		Interval: 1,
		Anchor:   time.Date(2025, time.November, 17, 0, 0, 0, 0, time.UTC),
		Days:     []recurrence.Weekday{recurrence.Monday},
		Start:    recurrence.Clock{Hour: 9},
		End:      recurrence.Clock{Hour: 10},
		Timezone: "Asia/Bangkok",
	}
	source := &fakeSource{
		calendars: []CalendarInfo{{ID: 7, Name: "Personal"}},
		recurring: map[uint][]RecurringEntry{
			7: {{Title: "Gym", Rule: rule}},
		},
	}
	checker := NewChecker(source, time.UTC)

	bangkok := time.FixedZone("ICT", 7*3600)
	queryStart := time.Date(2025, time.November, 24, 9, 30, 0, 0, bangkok)

	result, err := checker.Check(context.Background(), 1, queryStart, queryStart.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.Free || len(result.Conflicts) != 1 {
		t.Fatalf("want one conflict, got %+v", result)
	}
	if result.Conflicts[0].Title != "Gym" {
		t.Errorf("conflict title = %q", result.Conflicts[0].Title)
	}

	// The same occurrence shifted to a touching boundary does not conflict.
	touching := time.Date(2025, time.November, 24, 10, 0, 0, 0, bangkok)
	result, err = checker.Check(context.Background(), 1, touching, touching.Add(time.Hour))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.Free || len(result.Conflicts) != 0 {
		t.Fatalf("touching window must be free, got %+v", result)
	}
}

func TestCheck_RecurringUsesStartDateOnly(t *testing.T) {
	// A window crossing midnight only evaluates rules against its first
	// civil date.
	rule := recurrence.Rule{
		Kind:     recurrence.KindDaily,
		Interval: 2,
		Anchor:   time.Date(2025, time.November, 25, 0, 0, 0, 0, time.UTC),
		Start:    recurrence.Clock{Hour: 0, Minute: 15},
		End:      recurrence.Clock{Hour: 1},
		Timezone: "UTC",
	}
	source := &fakeSource{
		calendars: []CalendarInfo{{ID: 1, Name: "Night"}},
		recurring: map[uint][]RecurringEntry{
			1: {{Title: "Backup window", Rule: rule}},
		},
	}
	checker := NewChecker(source, time.UTC)

	// 2025-11-24 is not an occurrence; the occurrence lands on the 25th,
	// inside the window, but the scan only asks about the 24th.
	queryStart := time.Date(2025, time.November, 24, 23, 0, 0, 0, time.UTC)
	result, err := checker.Check(context.Background(), 1, queryStart, queryStart.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.Free {
		t.Fatalf("start-date-only evaluation should report free, got %+v", result)
	}
}

func TestCheck_SkipsFailingCalendar(t *testing.T) {
	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	source := &fakeSource{
		calendars: []CalendarInfo{{ID: 1, Name: "Broken"}, {ID: 2, Name: "Work"}},
		oneOffErr: map[uint]error{1: errors.New("store down")},
		oneOff: map[uint][]BusyInterval{
			2: {{Title: "Review", Start: start, End: start.Add(time.Hour)}},
		},
	}
	checker := NewChecker(source, time.UTC)

	result, err := checker.Check(context.Background(), 1, start, start.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].Calendar != "Work" {
		t.Fatalf("failing calendar should be skipped, got %+v", result)
	}
}

func TestCheck_VisibleCalendarsErrorSurfaces(t *testing.T) {
	source := &fakeSource{calendarsErr: errors.New("store down")}
	checker := NewChecker(source, time.UTC)
	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)

	if _, err := checker.Check(context.Background(), 1, start, start.Add(time.Hour)); err == nil {
		t.Error("expected the visible-calendar lookup failure to surface")
	}
}

func TestCheck_DiscoveryOrderWithinCalendar(t *testing.T) {
	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	rule := recurrence.Rule{
		Kind:     recurrence.KindDaily,
		Interval: 1,
		Anchor:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Start:    recurrence.Clock{Hour: 9},
		End:      recurrence.Clock{Hour: 10},
		Timezone: "UTC",
	}
	source := &fakeSource{
		calendars: []CalendarInfo{{ID: 1, Name: "Work"}},
		oneOff: map[uint][]BusyInterval{
			1: {
				{Title: "First", Start: start, End: start.Add(time.Hour)},
				{Title: "Second", Start: start, End: start.Add(2 * time.Hour)},
			},
		},
		recurring: map[uint][]RecurringEntry{
			1: {{Title: "Daily sync", Rule: rule}},
		},
	}
	checker := NewChecker(source, time.UTC)

	result, err := checker.Check(context.Background(), 1, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	want := []string{"First", "Second", "Daily sync"}
	if len(result.Conflicts) != len(want) {
		t.Fatalf("got %d conflicts, want %d", len(result.Conflicts), len(want))
	}
	for i, title := range want {
		if result.Conflicts[i].Title != title {
			t.Errorf("conflict %d = %q, want %q", i, result.Conflicts[i].Title, title)
		}
	}
}
