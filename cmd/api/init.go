package main

import (
	"context"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
)

// initMetrics initialises the meter provider and the calculator instruments.
func initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}

// initLogging attaches OTLP log export when enabled; otherwise logs stay on stdout.
func initLogging(ctx context.Context, cfg config) (func(context.Context) error, error) {
	if !cfg.OTLPLogs {
		return func(context.Context) error { return nil }, nil
	}
	return observability.InitLogging(ctx)
}
