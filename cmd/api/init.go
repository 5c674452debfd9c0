package main

import (
	"context"
	"errors"
	"fmt"

	"scicalc/internal/calculator"
	"scicalc/internal/config"
	"scicalc/internal/observability"
	"scicalc/internal/session"
)

// initTelemetry starts tracing, metrics and log export and registers the
// calculator's instruments. The returned function flushes and stops all of
// them.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	settings := observability.Settings{
		ServiceName: cfg.ServiceName,
		ExportOTLP:  cfg.OTLPEnabled,
	}

	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	for _, start := range []func(context.Context, observability.Settings) (func(context.Context) error, error){
		observability.InitTracing,
		observability.InitMetrics,
		observability.InitLogging,
	} {
		stop, err := start(ctx, settings)
		if err != nil {
			_ = shutdown(ctx)
			return nil, err
		}
		shutdowns = append(shutdowns, stop)
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}

// openStore returns the session store selected by CALC_STORE.
func openStore(cfg config.Config) (session.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := session.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.SQLitePath, err)
		}
		return s, nil
	default:
		return session.NewMemory(), nil
	}
}
