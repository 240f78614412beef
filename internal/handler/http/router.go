package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/skponto/skponto-backend-go/internal/config"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/handler/http/middleware"
	"github.com/skponto/skponto-backend-go/internal/pkg/jwt"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	HourBank     HourBankHandler
	TimeRecord   TimeRecordHandler
	Overtime     OvertimeHandler
	Compensation CompensationHandler
	Notification NotificationHandler
}

func NewRouter(JWTService jwt.Service, h Handlers, appCfg config.AppConfig, logLevel slog.Level) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(appCfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
		Level:       logLevel,
	})).With(
		slog.String("app", appCfg.Name),
		slog.String("version", appCfg.Version),
		slog.String("env", appCfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  logLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// SSE authenticates with a short-lived query token.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/hour-bank/me", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionHourBankViewOwn))
				r.Get("/", h.HourBank.GetMyBalance)
				r.Get("/transactions", h.HourBank.ListMyTransactions)
			})

			r.Route("/time-records", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionClockOwn))
				r.Post("/clock-in", h.TimeRecord.ClockIn)
				r.Post("/lunch-out", h.TimeRecord.LunchOut)
				r.Post("/lunch-in", h.TimeRecord.LunchIn)
				r.Post("/clock-out", h.TimeRecord.ClockOut)
				r.Get("/me", h.TimeRecord.ListMine)
			})

			r.Route("/overtime-requests", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionOvertimeRequest))
				r.Post("/", h.Overtime.Submit)
				r.Get("/me", h.Overtime.ListMine)
				r.Get("/{id}", h.Overtime.Get)
				r.Post("/{id}/cancel", h.Overtime.Cancel)
			})
			r.With(middleware.RequirePermission(user.PermissionOvertimeRequest)).
				Get("/overtime-settings/me", h.Overtime.GetMySettings)

			r.Route("/compensations", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionCompensationCreate))
				r.Post("/", h.Compensation.Submit)
				r.Get("/me", h.Compensation.ListMine)
				r.Get("/{id}", h.Compensation.Get)
				r.Post("/{id}/cancel", h.Compensation.Cancel)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Post("/sse-token", h.Notification.GetSSEToken)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/hour-bank", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionHourBankViewAll)).
						Get("/reconcile", h.HourBank.ReconcileAll)
					r.Route("/{userID}", func(r chi.Router) {
						r.With(middleware.RequirePermission(user.PermissionHourBankViewAll)).Group(func(r chi.Router) {
							r.Get("/", h.HourBank.GetBalance)
							r.Get("/transactions", h.HourBank.ListTransactions)
							r.Get("/reconcile", h.HourBank.Reconcile)
						})
						r.With(middleware.RequirePermission(user.PermissionHourBankAdjust)).
							Post("/adjust", h.HourBank.Adjust)
					})
				})

				r.Route("/time-records", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTimeRecordManage))
					r.Post("/{userID}/{date}/settle", h.TimeRecord.Settle)
					r.Put("/{id}", h.TimeRecord.Edit)
					r.Post("/{id}/attestation", h.TimeRecord.AttachAttestation)
				})

				r.Route("/overtime-requests", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionOvertimeApprove))
					r.Get("/", h.Overtime.List)
					r.Post("/{id}/approve", h.Overtime.Approve)
					r.Post("/{id}/reject", h.Overtime.Reject)
					r.Post("/{id}/actual-hours", h.Overtime.CorrectActualHours)
				})

				r.Route("/overtime-settings/{userID}", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionOvertimeSettings))
					r.Get("/", h.Overtime.GetSettings)
					r.Put("/", h.Overtime.UpdateSettings)
				})

				r.Route("/compensations", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCompensationManage))
					r.Get("/", h.Compensation.List)
					r.Post("/{id}/approve", h.Compensation.Approve)
					r.Post("/{id}/reject", h.Compensation.Reject)
				})
			})
		})
	})
	return r
}
