// Command reconcile runs one absence sweep and exits. It is meant for operators and external
// schedulers; the API server runs the same sweep on its own timer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/geoattend/attendance-backend-go/internal/config"
	appHTTP "github.com/geoattend/attendance-backend-go/internal/handler/http"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
	"github.com/geoattend/attendance-backend-go/internal/repository/postgresql"
	reconcileService "github.com/geoattend/attendance-backend-go/internal/service/reconcile"
)

func main() {
	date := flag.String("date", "", "office-local day to reconcile (YYYY-MM-DD), defaults to today")
	flag.Parse()

	if err := run(context.Background(), *date); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, date string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	slog.SetDefault(appHTTP.NewLogger(cfg.App))

	if cfg.Database.Driver != config.StorageDriverPostgres {
		return errors.New("reconcile needs STORAGE_DRIVER=postgres")
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	svc := reconcileService.NewReconcileService(
		postgresql.NewUserRepository(db),
		postgresql.NewAttendanceRepository(db),
		postgresql.NewLeaveRequestRepository(db),
		cfg.Calendar(),
		reconcileService.Options{
			TrackedRoles: cfg.Reconcile.TrackedRoles,
			Trigger:      cfg.Reconcile.Time,
			ChunkSize:    cfg.Reconcile.ChunkSize,
			StoreTimeout: cfg.Database.Timeout,
		},
		nil,
	)

	result, err := svc.ReconcileDay(ctx, date)
	fmt.Printf("date=%s created=%d duplicates=%d failed=%d\n", result.Date, result.Created, result.Duplicates, result.Failed)
	if err != nil {
		return fmt.Errorf("reconcile error: %w", err)
	}
	return nil
}
