package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// config is the process configuration, read from the environment.
type config struct {
	Addr            string
	LogLevel        string
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	MaxSessions     int
	OTLPLogs        bool
}

// loadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

func loadConfig() (config, error) {
	if err := loadDotEnv(); err != nil {
		return config{}, err
	}

	cfg := config{
		Addr:     envString("CALC_ADDR", ":8080"),
		LogLevel: envString("CALC_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.ShutdownTimeout, err = envDuration("CALC_SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return config{}, err
	}
	if cfg.SessionTTL, err = envDuration("CALC_SESSION_TTL", 30*time.Minute); err != nil {
		return config{}, err
	}
	if cfg.SweepInterval, err = envDuration("CALC_SWEEP_INTERVAL", time.Minute); err != nil {
		return config{}, err
	}
	if cfg.MaxSessions, err = envInt("CALC_MAX_SESSIONS", 1000); err != nil {
		return config{}, err
	}
	if cfg.OTLPLogs, err = envBool("CALC_OTLP_LOGS", false); err != nil {
		return config{}, err
	}

	if cfg.SweepInterval <= 0 {
		return config{}, fmt.Errorf("CALC_SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
