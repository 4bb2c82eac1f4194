package http

import (
	"log/slog"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

type Handlers struct {
	Attendance   AttendanceHandler
	Correction   CorrectionHandler
	Leave        LeaveHandler
	Notification NotificationHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1/attendance", func(r chi.Router) {

		// Stream tokens arrive in the query string
		r.Get("/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Post("/stream/token", h.Notification.GetStreamToken)

			// Own attendance
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
				r.Post("/checkin", h.Attendance.CheckIn)
				r.Post("/checkout", h.Attendance.CheckOut)
				r.Post("/break/start", h.Attendance.StartBreak)
				r.Post("/break/end", h.Attendance.EndBreak)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
				r.Get("/status", h.Attendance.Status)
				r.Get("/summary", h.Attendance.Summary)
				r.Get("/me", h.Attendance.GetMyAttendance)
			})

			r.Route("/correction", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionCorrectionCreate)).Post("/", h.Correction.Request)

				// Supervisor only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCorrectionApprove))
					r.Put("/{id}/approve", h.Correction.Approve)
					r.Put("/{id}/reject", h.Correction.Reject)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", h.Leave.Request)

				// Supervisor only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
					r.Put("/{id}/approve", h.Leave.Approve)
					r.Put("/{id}/reject", h.Leave.Reject)
				})
			})

			// Supervisor only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSupervisor)
				r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
				r.Get("/", h.Attendance.List)
				r.Get("/daily", h.Attendance.Daily)
				r.Get("/{id}", h.Attendance.Get)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Use(middleware.RequirePermission(user.PermissionAttendanceDelete))
				r.Delete("/{id}", h.Attendance.Delete)
			})
		})
	})
	return r
}
