package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldgrid/fieldgrid-console/internal/app"
	"github.com/fieldgrid/fieldgrid-console/internal/stubapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	stub := stubapi.New(logger)
	seed(stub)

	server := &http.Server{
		Addr:         cfg.StubAddr,
		Handler:      stub.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("stub api listening", slog.String("addr", cfg.StubAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("stub api", slog.Any("error", err))
		os.Exit(1)
	}
}

// seed loads a small fixture set so the console has something to browse.
func seed(stub *stubapi.Server) {
	stub.Seed("regions", []map[string]any{
		{"name": "North", "code": "N", "status": "Active"},
		{"name": "South", "code": "S", "status": "Active"},
		{"name": "East", "code": "E", "status": "Inactive"},
		{"name": "West", "code": "W", "status": "Active"},
	})
	stub.Seed("states", []map[string]any{
		{"_id": "st-1", "name": "Maharashtra", "region": "West", "status": "Active"},
		{"_id": "st-2", "name": "Karnataka", "region": "South", "status": "Active"},
	})
	stub.Block("states", "st-1", stubapi.Blockers{
		Message: "State is in use and cannot be removed",
		LinkedUsers: []map[string]any{
			{"name": "Asha Pillai", "employeeid": "E1041"},
			{"name": "Ravi Kumar", "employeeid": "E2210"},
		},
		LinkedBranches: []map[string]any{
			{"name": "Mumbai Central", "code": "BR-09"},
		},
	})
	stub.Seed("equipment", []map[string]any{
		{"materialcode": "EQ-1001", "name": "Ventilator V60", "materialgroup": "Respiratory", "status": "Active"},
		{"materialcode": "EQ-1002", "name": "Infusion Pump IP5", "materialgroup": "Infusion", "status": "Active"},
		{"materialcode": "EQ-1003", "name": "Patient Monitor PM12", "materialgroup": "Monitoring", "status": "Inactive"},
	})
	stub.Seed("proposals", []map[string]any{
		{"_id": "pr-1", "proposalno": "QT-2026-014", "customername": "Apex Infra", "discount": 10, "status": "pending"},
	})
	stub.SeedLines("proposals", "pr-1", []map[string]any{
		{"_id": "ln-1", "description": "Boom lift service", "quantity": 2.0, "price": 1500.0, "discount": 10.0},
		{"_id": "ln-2", "description": "Spare kit", "quantity": 1.0, "price": 800.0},
	})
	stub.Seed("cities", []map[string]any{
		{"name": "Mumbai", "state": "Maharashtra", "status": "Active"},
		{"name": "Pune", "state": "Maharashtra", "status": "Active"},
		{"name": "Bengaluru", "state": "Karnataka", "status": "Active"},
	})
}
