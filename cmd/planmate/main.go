package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planmate/internal/bot"
	"planmate/internal/config"
	"planmate/internal/repository"
	"planmate/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)

	calendarSvc := service.NewCalendarService(calendarRepo, userRepo)
	taskSvc := service.NewTaskService(taskRepo, tagRepo, calendarSvc)
	tagSvc := service.NewTagService(tagRepo)
	availabilitySvc := service.NewAvailabilityService(calendarSvc, taskRepo, cfg.Timezone)
	agendaSvc := service.NewAgendaService(calendarSvc, taskRepo, cfg.Timezone)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, calendarSvc, taskSvc, tagSvc, availabilitySvc, agendaSvc, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(cfg.Timezone)
	if cfg.AgendaTime != "" {
		if _, err := scheduler.ScheduleDaily(cfg.AgendaTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDailyAgendas(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("daily agenda: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule daily agenda: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	log.Println("PlanMate bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
