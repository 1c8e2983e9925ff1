package main

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"CALC_ADDR", "CALC_LOG_LEVEL", "CALC_SHUTDOWN_TIMEOUT", "CALC_SESSION_TTL", "CALC_SWEEP_INTERVAL", "CALC_MAX_SESSIONS", "CALC_OTLP_LOGS"} {
		t.Setenv(key, "")
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := config{
		Addr:            ":8080",
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		SessionTTL:      30 * time.Minute,
		SweepInterval:   time.Minute,
		MaxSessions:     1000,
	}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CALC_ADDR", ":9090")
	t.Setenv("CALC_SESSION_TTL", "90s")
	t.Setenv("CALC_MAX_SESSIONS", "5")
	t.Setenv("CALC_OTLP_LOGS", "true")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":9090" || cfg.SessionTTL != 90*time.Second || cfg.MaxSessions != 5 || !cfg.OTLPLogs {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"CALC_SESSION_TTL":    "soon",
		"CALC_MAX_SESSIONS":   "many",
		"CALC_OTLP_LOGS":      "perhaps",
		"CALC_SWEEP_INTERVAL": "0s",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := loadConfig(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
