package http

import (
	"log/slog"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	"github.com/cmlabs-hris/erp-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the settings the HTTP layer needs from the app config.
type RouterConfig struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	Concise        bool
	AllowedOrigins []string
	CronSecret     string
}

type Handlers struct {
	Attendance   AttendanceHandler
	WorkRequest  WorkRequestHandler
	Leave        LeaveHandler
	Notification NotificationHandler
}

func NewRouter(cfg RouterConfig, verifier *jwt.Verifier, users user.UserRepository, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS.Concise(cfg.Concise),
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api", func(r chi.Router) {

		// Scheduler endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.CronSecret(cfg.CronSecret))
			r.Post("/attendance/auto-checkout", h.Attendance.AutoCheckout)
			r.Post("/leave/auto-generate-yearly", h.Leave.AutoGenerateYearly)
			r.Post("/leave/auto-generate-monthly", h.Leave.AutoGenerateMonthly)
		})

		// EventSource cannot send headers, so only the stream takes ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(verifier.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(users))
			r.Get("/notifications/stream", h.Notification.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(verifier.JWTAuth(), jwtauth.TokenFromHeader))
			r.Use(middleware.AuthRequired(users))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/status", h.Attendance.Status)

				r.Route("/logs", func(r chi.Router) {
					r.Get("/", h.Attendance.ListLogs)
					r.Get("/{id}", h.Attendance.GetLog)
					r.Patch("/{id}", h.Attendance.UpdateLog)
					r.Post("/{id}/correct-checkout", h.Attendance.CorrectCheckout)

					r.With(middleware.RequirePermission(user.PermissionAttendanceDelete)).
						Delete("/{id}", h.Attendance.DeleteLog)
				})

				r.Get("/pending-auto-checkouts", h.Attendance.PendingAutoCheckouts)
				r.Get("/auto-checkout-history", h.Attendance.AutoCheckoutHistory)

				r.Get("/stats", h.Attendance.Stats)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/team-stats", h.Attendance.TeamStats)
					r.Get("/team-stats/export", h.Attendance.ExportTeamStats)
				})

				r.Route("/admin", func(r chi.Router) {
					// Managers may create logs for their own business unit
					r.With(middleware.RequireManager).Post("/logs", h.Attendance.CreateLog)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).
						Get("/overview", h.Attendance.Overview)
				})

				r.Get("/work-status", h.Attendance.GetWorkStatus)
				r.Put("/work-status", h.Attendance.UpdateWorkStatus)

				r.Route("/work-requests", func(r chi.Router) {
					r.Post("/", h.WorkRequest.Create)
					r.Get("/", h.WorkRequest.List)
					r.With(middleware.RequireManager).Get("/pending", h.WorkRequest.Pending)
					r.Get("/{id}", h.WorkRequest.Get)
					r.Post("/{id}/approve", h.WorkRequest.Approve)
					r.Post("/{id}/reject", h.WorkRequest.Reject)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/balances", h.Leave.GetBalances)

				r.Route("/grants", func(r chi.Router) {
					r.Get("/", h.Leave.ListGrants)
					r.With(middleware.RequirePermission(user.PermissionLeaveGrant)).Post("/", h.Leave.CreateGrant)
				})

				r.Route("/requests", func(r chi.Router) {
					r.Post("/", h.Leave.CreateRequest)
					r.Get("/", h.Leave.ListRequests)
					r.Get("/{id}", h.Leave.GetRequest)
					r.Delete("/{id}", h.Leave.CancelRequest)
					r.Post("/{id}/approve", h.Leave.ApproveRequest)
					r.Post("/{id}/reject", h.Leave.RejectRequest)
				})

				r.Route("/compensatory", func(r chi.Router) {
					r.Post("/", h.Leave.CreateCompensatory)
					r.Get("/", h.Leave.ListCompensatory)
					r.Post("/{id}/approve", h.Leave.ApproveCompensatory)
					r.Post("/{id}/reject", h.Leave.RejectCompensatory)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveTeam))
					r.Get("/pending", h.Leave.Pending)
					r.Get("/team-stats", h.Leave.TeamStats)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Delete("/{id}", h.Notification.Delete)
			})
		})
	})

	return r
}
