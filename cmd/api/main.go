package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/config"
	"github.com/geoattend/attendance-backend-go/internal/domain/attendance"
	"github.com/geoattend/attendance-backend-go/internal/domain/leave"
	"github.com/geoattend/attendance-backend-go/internal/domain/report"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	appHTTP "github.com/geoattend/attendance-backend-go/internal/handler/http"
	"github.com/geoattend/attendance-backend-go/internal/pkg/cron"
	"github.com/geoattend/attendance-backend-go/internal/pkg/database"
	"github.com/geoattend/attendance-backend-go/internal/pkg/jwt"
	"github.com/geoattend/attendance-backend-go/internal/pkg/metrics"
	"github.com/geoattend/attendance-backend-go/internal/repository/memory"
	"github.com/geoattend/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/geoattend/attendance-backend-go/internal/service/attendance"
	leaveService "github.com/geoattend/attendance-backend-go/internal/service/leave"
	reconcileService "github.com/geoattend/attendance-backend-go/internal/service/reconcile"
	reportService "github.com/geoattend/attendance-backend-go/internal/service/report"
	userService "github.com/geoattend/attendance-backend-go/internal/service/user"
)

type repositories struct {
	users       user.UserRepository
	attendances attendance.AttendanceRepository
	leaves      leave.LeaveRequestRepository
	reports     report.ReportRepository
	close       func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Database.Driver == config.StorageDriverMemory {
		slog.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:       memory.NewUserRepository(store),
			attendances: memory.NewAttendanceRepository(store),
			leaves:      memory.NewLeaveRequestRepository(store),
			reports:     memory.NewReportRepository(store),
			close:       func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}
	return &repositories{
		users:       postgresql.NewUserRepository(db),
		attendances: postgresql.NewAttendanceRepository(db),
		leaves:      postgresql.NewLeaveRequestRepository(db),
		reports:     postgresql.NewReportRepository(db),
		close:       db.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer repos.close()

	cal := cfg.Calendar()
	appMetrics := metrics.New()
	storeTimeout := cfg.Database.Timeout

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceSvc := attendanceService.NewAttendanceService(repos.attendances, repos.leaves, cal, attendanceService.Policy{
		Fence:           cfg.Fence(),
		MinFullDayHours: cfg.Attendance.MinFullDayHours,
		StoreTimeout:    storeTimeout,
	}, appMetrics)
	leaveSvc := leaveService.NewLeaveService(repos.leaves, cal, storeTimeout)
	reportSvc := reportService.NewReportService(repos.reports, repos.attendances, repos.leaves, cal, storeTimeout)
	userSvc := userService.NewUserService(repos.users, storeTimeout)
	reconcileSvc := reconcileService.NewReconcileService(repos.users, repos.attendances, repos.leaves, cal, reconcileService.Options{
		TrackedRoles: cfg.Reconcile.TrackedRoles,
		Trigger:      cfg.Reconcile.Time,
		ChunkSize:    cfg.Reconcile.ChunkSize,
		StoreTimeout: storeTimeout,
	}, appMetrics)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(reconcileSvc, cal, cfg.Reconcile.Time).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg.App,
		logger,
		JWTService,
		appMetrics,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewUserHandler(userSvc),
		appHTTP.NewReconcileHandler(reconcileSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "office_utc_offset", cal.Location().String(), "storage", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}
