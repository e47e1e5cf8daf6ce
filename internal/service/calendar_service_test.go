package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"planmate/internal/model"
	"planmate/internal/recurrence"
)

func TestCreateCalendar_FirstBecomesDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, 100, "alice")

	first := env.newCalendar(t, user, "First")
	if !first.IsDefault {
		t.Error("first calendar must become the default")
	}

	second := env.newCalendar(t, user, "Second")
	if second.IsDefault {
		t.Error("second calendar must not steal the default")
	}

	third, err := env.calendarSvc.CreateCalendar(ctx, user, "Third", "", true)
	if err != nil {
		t.Fatalf("CreateCalendar: %v", err)
	}
	if !third.IsDefault {
		t.Error("explicitly default calendar must be default")
	}
	def, err := env.calendarSvc.DefaultCalendar(ctx, user)
	if err != nil {
		t.Fatalf("DefaultCalendar: %v", err)
	}
	if def.ID != third.ID {
		t.Errorf("default = #%d, want #%d", def.ID, third.ID)
	}
}

func TestDeleteCalendar_Guards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, 100, "alice")

	first := env.newCalendar(t, user, "First")

	// The last calendar is protected even if it were not the default.
	if err := env.calendarSvc.DeleteCalendar(ctx, user, first.ID); err == nil {
		t.Error("expected error deleting the only calendar")
	}

	second := env.newCalendar(t, user, "Second")
	if err := env.calendarSvc.DeleteCalendar(ctx, user, first.ID); err == nil {
		t.Error("expected error deleting the default calendar")
	}
	if err := env.calendarSvc.DeleteCalendar(ctx, user, second.ID); err != nil {
		t.Errorf("deleting a spare calendar: %v", err)
	}
}

func TestUpdateCalendar_Permissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, 100, "alice")
	bob := env.newUser(t, 200, "bob")
	calendar := env.newCalendar(t, alice, "Work")

	renamed, err := env.calendarSvc.UpdateCalendar(ctx, alice, calendar.ID, "Office", "team calendar")
	if err != nil {
		t.Fatalf("UpdateCalendar: %v", err)
	}
	if renamed.Name != "Office" || renamed.Description != "team calendar" {
		t.Errorf("got %q / %q after rename", renamed.Name, renamed.Description)
	}

	if err := env.calendarSvc.Share(ctx, alice, calendar.ID, "bob", model.PermissionViewOnly); err != nil {
		t.Fatalf("Share: %v", err)
	}
	if _, err := env.calendarSvc.UpdateCalendar(ctx, bob, calendar.ID, "Bob's now", ""); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("view-only sharee rename: err = %v, want ErrPermissionDenied", err)
	}
}

func TestUpdateTag_OwnOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, 100, "alice")
	bob := env.newUser(t, 200, "bob")

	tag, err := env.tagSvc.CreateTag(ctx, alice, "work", "blue")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	updated, err := env.tagSvc.UpdateTag(ctx, alice, tag.ID, "office", "green")
	if err != nil {
		t.Fatalf("UpdateTag: %v", err)
	}
	if updated.Name != "office" || updated.Color != "green" {
		t.Errorf("got %q / %q after update", updated.Name, updated.Color)
	}

	if _, err := env.tagSvc.UpdateTag(ctx, bob, tag.ID, "stolen", ""); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("foreign tag update: err = %v, want ErrPermissionDenied", err)
	}
}

func TestShare_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, 100, "alice")
	calendar := env.newCalendar(t, user, "Work")

	if err := env.calendarSvc.Share(ctx, user, calendar.ID, "nobody", model.PermissionEdit); err == nil {
		t.Error("expected error sharing with an unregistered user")
	}
	if err := env.calendarSvc.Share(ctx, user, calendar.ID, "alice", model.PermissionEdit); err == nil {
		t.Error("expected error sharing with yourself")
	}
}

func TestShare_OnlyOwnerMayShare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, 100, "alice")
	bob := env.newUser(t, 200, "bob")
	env.newUser(t, 300, "carol")
	calendar := env.newCalendar(t, alice, "Work")

	if err := env.calendarSvc.Share(ctx, bob, calendar.ID, "carol", model.PermissionEdit); err == nil {
		t.Error("a non-owner must not be able to share")
	}
}

func TestVisibleCalendars_OwnedPlusShared(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, 100, "alice")
	bob := env.newUser(t, 200, "bob")

	env.newCalendar(t, bob, "Bob's own")
	aliceCal := env.newCalendar(t, alice, "Alice's")
	if err := env.calendarSvc.Share(ctx, alice, aliceCal.ID, "bob", model.PermissionViewOnly); err != nil {
		t.Fatalf("Share: %v", err)
	}

	visible, err := env.calendarSvc.VisibleCalendars(ctx, bob.ID)
	if err != nil {
		t.Fatalf("VisibleCalendars: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("got %d visible calendars, want 2", len(visible))
	}
	// Owned first, then shared.
	if visible[0].Name != "Bob's own" || visible[1].Name != "Alice's" {
		t.Errorf("unexpected order: %q, %q", visible[0].Name, visible[1].Name)
	}

	// Revoking the share shrinks the set.
	if err := env.calendarSvc.Unshare(ctx, alice, aliceCal.ID, "bob"); err != nil {
		t.Fatalf("Unshare: %v", err)
	}
	visible, err = env.calendarSvc.VisibleCalendars(ctx, bob.ID)
	if err != nil {
		t.Fatalf("VisibleCalendars: %v", err)
	}
	if len(visible) != 1 {
		t.Errorf("got %d visible calendars after unshare, want 1", len(visible))
	}
}

func TestDailyAgenda_ListsBothKinds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, 100, "alice")
	calendar := env.newCalendar(t, user, "Personal")

	start := time.Date(2025, time.November, 24, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	if _, err := env.taskSvc.CreateTask(ctx, user, calendar.ID, TaskInput{
		Title:   "Dentist",
		StartAt: &start,
		EndAt:   &end,
	}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := env.taskSvc.CreateTask(ctx, user, calendar.ID, TaskInput{
		Title: "Standup",
		Repeat: &RepeatInput{
			Kind:     recurrence.KindDaily,
			Interval: 1,
			Anchor:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			Start:    recurrence.Clock{Hour: 9},
			End:      recurrence.Clock{Hour: 9, Minute: 15},
			Timezone: "UTC",
		},
	}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	agendaSvc := NewAgendaService(env.calendarSvc, env.taskRepo, time.UTC)
	agenda, err := agendaSvc.DailyAgenda(ctx, user, time.Date(2025, time.November, 24, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyAgenda: %v", err)
	}
	for _, want := range []string{"Dentist", "Standup", "09:00", "14:00"} {
		if !strings.Contains(agenda, want) {
			t.Errorf("agenda missing %q:\n%s", want, agenda)
		}
	}

	// A quiet day renders the empty state.
	agenda, err = agendaSvc.DailyAgenda(ctx, user, time.Date(2024, time.November, 24, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyAgenda: %v", err)
	}
	if !strings.Contains(agenda, "Nothing scheduled") {
		t.Errorf("expected empty-day agenda, got:\n%s", agenda)
	}
}
