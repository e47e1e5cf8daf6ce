package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config keeps runtime settings for the service.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	// Timezone is the fallback zone for materializing occurrences whose
	// rule carries no resolvable timezone, and the zone agendas render in.
	Timezone *time.Location
	// AgendaTime is the HH:MM time of the daily agenda job; empty disables it.
	AgendaTime string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AgendaTime:    strings.TrimSpace(os.Getenv("AGENDA_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "planmate.db"
	}

	zone := strings.TrimSpace(os.Getenv("DEFAULT_TIMEZONE"))
	if zone == "" {
		cfg.Timezone = time.UTC
	} else {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return cfg, fmt.Errorf("DEFAULT_TIMEZONE %q: %w", zone, err)
		}
		cfg.Timezone = loc
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}
