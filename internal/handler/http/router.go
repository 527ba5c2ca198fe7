package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/geoattend/attendance-backend-go/internal/config"
	"github.com/geoattend/attendance-backend-go/internal/handler/http/middleware"
	"github.com/geoattend/attendance-backend-go/internal/pkg/jwt"
	"github.com/geoattend/attendance-backend-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewLogger builds the JSON logger shared by the request logger and the rest of the app.
func NewLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-backend"),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)
}

func NewRouter(
	app config.AppConfig,
	logger *slog.Logger,
	JWTService jwt.Service,
	appMetrics *metrics.Metrics,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	reportHandler ReportHandler,
	userHandler UserHandler,
	reconcileHandler ReconcileHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if appMetrics != nil {
		r.Method(http.MethodGet, "/metrics", appMetrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/users/me", userHandler.GetMe)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/mark", attendanceHandler.Mark)
				r.Get("/me", attendanceHandler.GetMyAttendance)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Post("/apply", leaveHandler.CreateRequest)
				r.Get("/my", leaveHandler.GetMyRequests)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/today", reportHandler.GetTodayReport)
				r.Get("/summary", reportHandler.GetMyMonthlySummary)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/users", userHandler.List)

				r.Route("/attendance", func(r chi.Router) {
					r.Get("/", attendanceHandler.ListByDay)
					r.Post("/reconcile", reconcileHandler.Reconcile)
					r.Get("/users/{id}", attendanceHandler.ListByUser)
					r.Patch("/{id}", attendanceHandler.Update)
					r.Delete("/{id}", attendanceHandler.Delete)
				})

				r.Route("/leave", func(r chi.Router) {
					r.Get("/pending", leaveHandler.ListPending)
					r.Get("/{id}", leaveHandler.GetRequest)
					r.Post("/{id}/approve", leaveHandler.ApproveRequest)
					r.Post("/{id}/reject", leaveHandler.RejectRequest)
				})

				r.Get("/reports/users/{id}/summary", reportHandler.GetUserMonthlySummary)
			})
		})
	})
	return r
}
