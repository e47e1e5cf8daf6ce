package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"planmate/internal/availability"
	"planmate/internal/config"
	"planmate/internal/model"
	"planmate/internal/recurrence"
	"planmate/internal/repository"
	"planmate/internal/service"
)

const defaultCalendarName = "Personal"

const helpText = `<b>PlanMate commands</b>

<b>Calendars</b>
/calendars — list your own and shared calendars
/newcal &lt;name&gt; [| description] — create a calendar
/setdefault &lt;id&gt; — mark a calendar as default
/delcal &lt;id&gt; — delete a calendar
/share &lt;id&gt; @user view|edit — share a calendar
/unshare &lt;id&gt; @user — revoke a share

<b>Tasks</b>
/tasks [id] — list tasks (default calendar if omitted)
/add [#id] YYYY-MM-DD HH:MM-HH:MM title — one-off task
/repeat [#id] daily|weekly|monthly|yearly N YYYY-MM-DD [MO,TU] HH:MM-HH:MM [until:YYYY-MM-DD] title
/del &lt;taskID&gt; — delete a task

<b>Tags</b>
/tags — list your tags
/newtag &lt;name&gt; [color] — create a tag
/deltag &lt;id&gt; — delete a tag

<b>Schedule</b>
/free YYYY-MM-DD HH:MM-HH:MM — check a time window across all visible calendars
/agenda [YYYY-MM-DD] — your day at a glance`

// Bot wires Telegram commands to the services. Commands are structured; no
// free-text parsing.
type Bot struct {
	api             *tgbotapi.BotAPI
	userRepo        *repository.UserRepository
	calendarSvc     *service.CalendarService
	taskSvc         *service.TaskService
	tagSvc          *service.TagService
	availabilitySvc *service.AvailabilityService
	agendaSvc       *service.AgendaService
	config          *config.Config
}

func New(
	token string,
	userRepo *repository.UserRepository,
	calendarSvc *service.CalendarService,
	taskSvc *service.TaskService,
	tagSvc *service.TagService,
	availabilitySvc *service.AvailabilityService,
	agendaSvc *service.AgendaService,
	cfg *config.Config,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:             api,
		userRepo:        userRepo,
		calendarSvc:     calendarSvc,
		taskSvc:         taskSvc,
		tagSvc:          tagSvc,
		availabilitySvc: availabilitySvc,
		agendaSvc:       agendaSvc,
		config:          cfg,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only speak commands. Try /help.")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg, user)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "calendars":
		return b.handleCalendars(ctx, msg.Chat.ID, user)
	case "newcal":
		return b.handleNewCalendar(ctx, msg.Chat.ID, user, args)
	case "setdefault":
		return b.handleSetDefault(ctx, msg.Chat.ID, user, args)
	case "delcal":
		return b.handleDeleteCalendar(ctx, msg.Chat.ID, user, args)
	case "share":
		return b.handleShare(ctx, msg.Chat.ID, user, args)
	case "unshare":
		return b.handleUnshare(ctx, msg.Chat.ID, user, args)
	case "tasks":
		return b.handleTasks(ctx, msg.Chat.ID, user, args)
	case "add":
		return b.handleAdd(ctx, msg.Chat.ID, user, args)
	case "repeat":
		return b.handleRepeat(ctx, msg.Chat.ID, user, args)
	case "del":
		return b.handleDeleteTask(ctx, msg.Chat.ID, user, args)
	case "tags":
		return b.handleTags(ctx, msg.Chat.ID, user)
	case "newtag":
		return b.handleNewTag(ctx, msg.Chat.ID, user, args)
	case "deltag":
		return b.handleDeleteTag(ctx, msg.Chat.ID, user, args)
	case "free":
		return b.handleFree(ctx, msg.Chat.ID, user, args)
	case "agenda":
		return b.handleAgenda(ctx, msg.Chat.ID, user, args)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	// Bootstrap a default calendar so every command has somewhere to land.
	if _, err := b.calendarSvc.DefaultCalendar(ctx, user); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := b.calendarSvc.CreateCalendar(ctx, user, defaultCalendarName, "", true); err != nil {
			return err
		}
	}
	greeting := fmt.Sprintf("Hi, %s! Your calendar is ready. See /help for commands.", html.EscapeString(user.FirstName))
	return b.sendText(msg.Chat.ID, greeting)
}

func (b *Bot) handleCalendars(ctx context.Context, chatID int64, user *model.User) error {
	owned, err := b.calendarSvc.ListOwned(ctx, user)
	if err != nil {
		return err
	}
	shared, err := b.calendarSvc.ListSharedWithMe(ctx, user)
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("🗂 <b>Your calendars</b>\n")
	if len(owned) == 0 {
		builder.WriteString("— none yet, /newcal to create one\n")
	}
	for _, cal := range owned {
		mark := ""
		if cal.IsDefault {
			mark = " ⭐"
		}
		builder.WriteString(fmt.Sprintf("#%d %s%s\n", cal.ID, html.EscapeString(cal.Name), mark))
	}
	if len(shared) > 0 {
		builder.WriteString("\n🤝 <b>Shared with you</b>\n")
		for _, cal := range shared {
			builder.WriteString(fmt.Sprintf("#%d %s\n", cal.ID, html.EscapeString(cal.Name)))
		}
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleNewCalendar(ctx context.Context, chatID int64, user *model.User, args string) error {
	if args == "" {
		return b.sendText(chatID, "Usage: /newcal <name> [| description]")
	}
	name, description := args, ""
	if idx := strings.Index(args, "|"); idx >= 0 {
		name = strings.TrimSpace(args[:idx])
		description = strings.TrimSpace(args[idx+1:])
	}
	calendar, err := b.calendarSvc.CreateCalendar(ctx, user, name, description, false)
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Created calendar #%d %s.", calendar.ID, html.EscapeString(calendar.Name)))
}

func (b *Bot) handleSetDefault(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /setdefault <calendarID>")
	}
	if err := b.calendarSvc.SetDefault(ctx, user, id); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Calendar #%d is now your default.", id))
}

func (b *Bot) handleDeleteCalendar(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /delcal <calendarID>")
	}
	if err := b.calendarSvc.DeleteCalendar(ctx, user, id); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Calendar #%d deleted.", id))
}

func (b *Bot) handleShare(ctx context.Context, chatID int64, user *model.User, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return b.sendText(chatID, "Usage: /share <calendarID> @username view|edit")
	}
	id, err := parseID(fields[0])
	if err != nil {
		return b.sendText(chatID, "Usage: /share <calendarID> @username view|edit")
	}
	username := strings.TrimPrefix(fields[1], "@")
	var permission model.Permission
	switch strings.ToLower(fields[2]) {
	case "view":
		permission = model.PermissionViewOnly
	case "edit":
		permission = model.PermissionEdit
	default:
		return b.sendText(chatID, "Permission must be view or edit.")
	}
	if err := b.calendarSvc.Share(ctx, user, id, username, permission); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Shared calendar #%d with @%s (%s).", id, html.EscapeString(username), strings.ToLower(fields[2])))
}

func (b *Bot) handleUnshare(ctx context.Context, chatID int64, user *model.User, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, "Usage: /unshare <calendarID> @username")
	}
	id, err := parseID(fields[0])
	if err != nil {
		return b.sendText(chatID, "Usage: /unshare <calendarID> @username")
	}
	username := strings.TrimPrefix(fields[1], "@")
	if err := b.calendarSvc.Unshare(ctx, user, id, username); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Revoked @%s's access to calendar #%d.", html.EscapeString(username), id))
}

func (b *Bot) handleTasks(ctx context.Context, chatID int64, user *model.User, args string) error {
	calendarID, err := b.resolveCalendarID(ctx, user, args)
	if err != nil {
		return b.sendError(chatID, err)
	}
	tasks, err := b.taskSvc.ListTasks(ctx, user, calendarID)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No tasks in this calendar.")
	}

	loc := b.config.Timezone
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Tasks in calendar #%d</b>\n", calendarID))
	for i := range tasks {
		builder.WriteString(formatTask(&tasks[i], loc))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

// handleAdd creates a one-off task: /add [#cal] YYYY-MM-DD HH:MM-HH:MM title
func (b *Bot) handleAdd(ctx context.Context, chatID int64, user *model.User, args string) error {
	const usage = "Usage: /add [#calendarID] YYYY-MM-DD HH:MM-HH:MM title [tags:1,2]"

	fields := strings.Fields(args)
	calendarRef, fields := takeCalendarRef(fields)
	tagIDs, fields := takeTagRef(fields)
	if len(fields) < 3 {
		return b.sendText(chatID, usage)
	}

	calendarID, err := b.resolveCalendarID(ctx, user, calendarRef)
	if err != nil {
		return b.sendError(chatID, err)
	}
	day, err := time.ParseInLocation("2006-01-02", fields[0], b.config.Timezone)
	if err != nil {
		return b.sendText(chatID, usage)
	}
	startClock, endClock, err := parseClockRange(fields[1])
	if err != nil {
		return b.sendText(chatID, usage)
	}
	title := strings.Join(fields[2:], " ")

	start := day.Add(time.Duration(startClock.Minutes()) * time.Minute)
	end := day.Add(time.Duration(endClock.Minutes()) * time.Minute)

	task, err := b.taskSvc.CreateTask(ctx, user, calendarID, service.TaskInput{
		Title:   title,
		StartAt: &start,
		EndAt:   &end,
		TagIDs:  tagIDs,
	})
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Added task #%d %s.", task.ID, html.EscapeString(task.Title)))
}

// handleRepeat creates a repeating task:
// /repeat [#cal] kind N YYYY-MM-DD [MO,TU] HH:MM-HH:MM [until:YYYY-MM-DD] title
func (b *Bot) handleRepeat(ctx context.Context, chatID int64, user *model.User, args string) error {
	const usage = "Usage: /repeat [#calendarID] daily|weekly|monthly|yearly N YYYY-MM-DD [MO,TU] HH:MM-HH:MM [until:YYYY-MM-DD] title"

	fields := strings.Fields(args)
	calendarRef, fields := takeCalendarRef(fields)
	tagIDs, fields := takeTagRef(fields)
	until, fields, err := takeUntil(fields, b.config.Timezone)
	if err != nil {
		return b.sendText(chatID, usage)
	}
	if len(fields) < 4 {
		return b.sendText(chatID, usage)
	}

	calendarID, err := b.resolveCalendarID(ctx, user, calendarRef)
	if err != nil {
		return b.sendError(chatID, err)
	}

	kind, err := recurrence.ParseKind(fields[0])
	if err != nil || kind == recurrence.KindNone {
		return b.sendText(chatID, usage)
	}
	interval, err := strconv.Atoi(fields[1])
	if err != nil {
		return b.sendText(chatID, usage)
	}
	anchor, err := time.ParseInLocation("2006-01-02", fields[2], b.config.Timezone)
	if err != nil {
		return b.sendText(chatID, usage)
	}

	rest := fields[3:]
	var days []recurrence.Weekday
	if kind == recurrence.KindWeekly {
		if len(rest) < 2 {
			return b.sendText(chatID, usage)
		}
		days, err = recurrence.ParseDays(rest[0])
		if err != nil {
			return b.sendError(chatID, err)
		}
		rest = rest[1:]
	}
	startClock, endClock, err := parseClockRange(rest[0])
	if err != nil {
		return b.sendText(chatID, usage)
	}
	if len(rest) < 2 {
		return b.sendText(chatID, usage)
	}
	title := strings.Join(rest[1:], " ")

	task, err := b.taskSvc.CreateTask(ctx, user, calendarID, service.TaskInput{
		Title: title,
		Repeat: &service.RepeatInput{
			Kind:     kind,
			Interval: interval,
			Days:     days,
			Anchor:   anchor,
			Until:    until,
			Start:    startClock,
			End:      endClock,
			Timezone: b.config.Timezone.String(),
		},
		TagIDs: tagIDs,
	})
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Added repeating task #%d %s.", task.ID, html.EscapeString(task.Title)))
}

func (b *Bot) handleDeleteTask(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /del <taskID>")
	}
	if err := b.taskSvc.DeleteTask(ctx, user, id); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Task #%d deleted.", id))
}

func (b *Bot) handleTags(ctx context.Context, chatID int64, user *model.User) error {
	tags, err := b.tagSvc.List(ctx, user)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if len(tags) == 0 {
		return b.sendText(chatID, "No tags yet. /newtag to create one.")
	}
	var builder strings.Builder
	builder.WriteString("🏷 <b>Your tags</b>\n")
	for _, tag := range tags {
		builder.WriteString(fmt.Sprintf("#%d %s", tag.ID, html.EscapeString(tag.Name)))
		if tag.Color != "" {
			builder.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(tag.Color)))
		}
		builder.WriteByte('\n')
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleNewTag(ctx context.Context, chatID int64, user *model.User, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return b.sendText(chatID, "Usage: /newtag <name> [color]")
	}
	color := ""
	if len(fields) > 1 {
		color = fields[1]
	}
	tag, err := b.tagSvc.CreateTag(ctx, user, fields[0], color)
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Created tag #%d %s.", tag.ID, html.EscapeString(tag.Name)))
}

func (b *Bot) handleDeleteTag(ctx context.Context, chatID int64, user *model.User, args string) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, "Usage: /deltag <tagID>")
	}
	if err := b.tagSvc.DeleteTag(ctx, user, id); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Tag #%d deleted.", id))
}

// handleFree answers an availability query: /free YYYY-MM-DD HH:MM-HH:MM
func (b *Bot) handleFree(ctx context.Context, chatID int64, user *model.User, args string) error {
	const usage = "Usage: /free YYYY-MM-DD HH:MM-HH:MM"

	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.sendText(chatID, usage)
	}
	day, err := time.ParseInLocation("2006-01-02", fields[0], b.config.Timezone)
	if err != nil {
		return b.sendText(chatID, usage)
	}
	startClock, endClock, err := parseClockRange(fields[1])
	if err != nil {
		return b.sendText(chatID, usage)
	}
	start := day.Add(time.Duration(startClock.Minutes()) * time.Minute)
	end := day.Add(time.Duration(endClock.Minutes()) * time.Minute)

	result, err := b.availabilitySvc.Check(ctx, user.ID, start, end)
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, formatResult(result, b.config.Timezone))
}

func (b *Bot) handleAgenda(ctx context.Context, chatID int64, user *model.User, args string) error {
	day := time.Now().In(b.config.Timezone)
	if args != "" {
		parsed, err := time.ParseInLocation("2006-01-02", args, b.config.Timezone)
		if err != nil {
			return b.sendText(chatID, "Usage: /agenda [YYYY-MM-DD]")
		}
		day = parsed
	}
	agenda, err := b.agendaSvc.DailyAgenda(ctx, user, day)
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, agenda)
}

// SendDailyAgendas pushes today's agenda to every registered user. Driven by
// the cron job.
func (b *Bot) SendDailyAgendas(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	now := time.Now().In(b.config.Timezone)
	for i := range users {
		agenda, err := b.agendaSvc.DailyAgenda(ctx, &users[i], now)
		if err != nil {
			log.Printf("agenda for user %d: %v", users[i].ID, err)
			continue
		}
		if err := b.sendText(users[i].TelegramID, agenda); err != nil {
			log.Printf("send agenda to user %d: %v", users[i].ID, err)
		}
	}
	return nil
}

// resolveCalendarID turns a "#id" or "id" reference into a calendar ID,
// falling back to the user's default calendar when the reference is empty.
func (b *Bot) resolveCalendarID(ctx context.Context, user *model.User, ref string) (uint, error) {
	ref = strings.TrimSpace(strings.TrimPrefix(ref, "#"))
	if ref == "" {
		calendar, err := b.calendarSvc.DefaultCalendar(ctx, user)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("you have no calendars yet, /start to create one")
			}
			return 0, err
		}
		return calendar.ID, nil
	}
	return parseID(ref)
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// sendError reports a failure to the user in plain words.
func (b *Bot) sendError(chatID int64, err error) error {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		return b.sendText(chatID, "You don't have permission to do that.")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return b.sendText(chatID, "Not found.")
	default:
		return b.sendText(chatID, "⚠️ "+html.EscapeString(err.Error()))
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(raw, "#")), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// parseClockRange parses "09:00-10:30" into two clocks.
func parseClockRange(raw string) (recurrence.Clock, recurrence.Clock, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		return recurrence.Clock{}, recurrence.Clock{}, fmt.Errorf("invalid range %q, expected HH:MM-HH:MM", raw)
	}
	start, err := recurrence.ParseClock(parts[0])
	if err != nil {
		return recurrence.Clock{}, recurrence.Clock{}, err
	}
	end, err := recurrence.ParseClock(parts[1])
	if err != nil {
		return recurrence.Clock{}, recurrence.Clock{}, err
	}
	return start, end, nil
}

// takeCalendarRef pulls a leading "#id" token off the argument list.
func takeCalendarRef(fields []string) (string, []string) {
	if len(fields) > 0 && strings.HasPrefix(fields[0], "#") {
		return fields[0], fields[1:]
	}
	return "", fields
}

// takeTagRef pulls a "tags:1,2" token out of the argument list.
func takeTagRef(fields []string) ([]uint, []string) {
	for i, f := range fields {
		if !strings.HasPrefix(f, "tags:") {
			continue
		}
		var ids []uint
		for _, part := range strings.Split(strings.TrimPrefix(f, "tags:"), ",") {
			if id, err := parseID(part); err == nil {
				ids = append(ids, id)
			}
		}
		return ids, append(fields[:i:i], fields[i+1:]...)
	}
	return nil, fields
}

// takeUntil pulls an "until:YYYY-MM-DD" token out of the argument list.
func takeUntil(fields []string, loc *time.Location) (*time.Time, []string, error) {
	for i, f := range fields {
		if !strings.HasPrefix(f, "until:") {
			continue
		}
		until, err := time.ParseInLocation("2006-01-02", strings.TrimPrefix(f, "until:"), loc)
		if err != nil {
			return nil, fields, err
		}
		return &until, append(fields[:i:i], fields[i+1:]...), nil
	}
	return nil, fields, nil
}

func formatTask(task *model.Task, loc *time.Location) string {
	var sb strings.Builder

	if task.Recurring() {
		sb.WriteString(fmt.Sprintf("♻️ #%d %s\n", task.ID, html.EscapeString(task.Title)))
		sb.WriteString(fmt.Sprintf("   🔁 %s", strings.ToLower(task.RepeatKind)))
		if task.RepeatInterval > 1 {
			sb.WriteString(fmt.Sprintf(" (every %d)", task.RepeatInterval))
		}
		if task.RepeatDays != "" {
			sb.WriteString(" on " + task.RepeatDays)
		}
		sb.WriteString(fmt.Sprintf(", %s–%s", task.StartClock, task.EndClock))
		if task.RepeatStart != nil {
			sb.WriteString(fmt.Sprintf(" from %s", task.RepeatStart.Format("2006-01-02")))
		}
		if task.RepeatEnd != nil {
			sb.WriteString(fmt.Sprintf(" until %s", task.RepeatEnd.Format("2006-01-02")))
		}
		sb.WriteByte('\n')
	} else {
		sb.WriteString(fmt.Sprintf("🟢 #%d %s\n", task.ID, html.EscapeString(task.Title)))
		if task.StartAt != nil && task.EndAt != nil {
			start := task.StartAt.In(loc)
			end := task.EndAt.In(loc)
			sb.WriteString(fmt.Sprintf("   🕘 %s %s–%s\n",
				start.Format("2006-01-02"), start.Format("15:04"), end.Format("15:04")))
		}
	}

	if len(task.Tags) > 0 {
		names := make([]string, len(task.Tags))
		for i, tag := range task.Tags {
			names[i] = html.EscapeString(tag.Name)
		}
		sb.WriteString("   🏷 " + strings.Join(names, ", ") + "\n")
	}

	return sb.String()
}

func formatResult(result availability.Result, loc *time.Location) string {
	var sb strings.Builder
	if result.Free {
		sb.WriteString("✅ " + result.Message)
		return sb.String()
	}
	sb.WriteString("❌ " + result.Message + "\n")
	for _, c := range result.Conflicts {
		start := c.Start.In(loc)
		end := c.End.In(loc)
		sb.WriteString(fmt.Sprintf("• %s <i>(%s)</i> %s %s–%s\n",
			html.EscapeString(c.Title), html.EscapeString(c.Calendar),
			start.Format("2006-01-02"), start.Format("15:04"), end.Format("15:04")))
	}
	return strings.TrimSpace(sb.String())
}
