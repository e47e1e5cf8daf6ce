package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"sort"
	"strings"
	"time"

	"planmate/internal/availability"
	"planmate/internal/model"
	"planmate/internal/repository"
)

// AgendaService builds human-readable daily schedules across every calendar
// a user may read.
type AgendaService struct {
	calendarSvc *CalendarService
	taskRepo    *repository.TaskRepository
	fallback    *time.Location
}

func NewAgendaService(calendarSvc *CalendarService, taskRepo *repository.TaskRepository, fallback *time.Location) *AgendaService {
	return &AgendaService{calendarSvc: calendarSvc, taskRepo: taskRepo, fallback: fallback}
}

type agendaEntry struct {
	title     string
	calendar  string
	start     time.Time
	end       time.Time
	allDay    bool
	recurring bool
}

// DailyAgenda renders the user's schedule for the civil date of day,
// interpreted in the service's fallback zone: one-off tasks overlapping the
// day plus every recurring occurrence on it.
func (s *AgendaService) DailyAgenda(ctx context.Context, user *model.User, day time.Time) (string, error) {
	loc := s.fallback
	if loc == nil {
		loc = time.Local
	}
	day = day.In(loc)
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	calendars, err := s.calendarSvc.VisibleCalendars(ctx, user.ID)
	if err != nil {
		return "", err
	}

	var entries []agendaEntry
	for _, cal := range calendars {
		oneOff, err := s.taskRepo.ListOneOffByCalendar(ctx, cal.ID)
		if err != nil {
			log.Printf("agenda: skip calendar %d (%s): %v", cal.ID, cal.Name, err)
			continue
		}
		for _, task := range oneOff {
			if task.StartAt == nil || task.EndAt == nil {
				continue
			}
			if availability.Overlaps(*task.StartAt, *task.EndAt, dayStart, dayEnd) {
				entries = append(entries, agendaEntry{
					title:    task.Title,
					calendar: cal.Name,
					start:    task.StartAt.In(loc),
					end:      task.EndAt.In(loc),
					allDay:   task.AllDay,
				})
			}
		}

		recurring, err := s.taskRepo.ListRecurringByCalendar(ctx, cal.ID)
		if err != nil {
			log.Printf("agenda: skip calendar %d (%s): %v", cal.ID, cal.Name, err)
			continue
		}
		for i := range recurring {
			rule, err := taskRule(&recurring[i])
			if err != nil {
				log.Printf("agenda: skip task %d (%s): %v", recurring[i].ID, recurring[i].Title, err)
				continue
			}
			if !rule.OccursOn(dayStart) {
				continue
			}
			start, end := rule.Materialize(dayStart, s.fallback)
			entries = append(entries, agendaEntry{
				title:     recurring[i].Title,
				calendar:  cal.Name,
				start:     start.In(loc),
				end:       end.In(loc),
				recurring: true,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].start.Before(entries[j].start)
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Your day</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", dayStart.Format("Mon, 02 Jan 2006")))

	if len(entries) == 0 {
		builder.WriteString("Nothing scheduled.")
		return builder.String(), nil
	}

	for _, entry := range entries {
		icon := "🟢"
		if entry.recurring {
			icon = "♻️"
		}
		when := fmt.Sprintf("%s–%s", entry.start.Format("15:04"), entry.end.Format("15:04"))
		if entry.allDay {
			when = "all day"
		}
		builder.WriteString(fmt.Sprintf("%s %s — %s <i>(%s)</i>\n",
			icon, when, html.EscapeString(entry.title), html.EscapeString(entry.calendar)))
	}

	return strings.TrimSpace(builder.String()), nil
}
