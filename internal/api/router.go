package api

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/erazemk/labshaker/internal/blob"
	"github.com/erazemk/labshaker/internal/booking"
	"github.com/erazemk/labshaker/internal/metrics"
	"github.com/erazemk/labshaker/internal/model"
)

// Options holds everything the API needs.
type Options struct {
	Service *booking.Service
	Blobs   blob.Store
	// Metrics should be the recorder Service was built with.
	Metrics   *metrics.Metrics
	JWTSecret string

	LoginPerMinute float64
	LoginBurst     int
	// CORSOrigins lists browser origins allowed to call the API. Empty
	// disables cross-origin access.
	CORSOrigins []string

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRouter creates the API handler with all endpoints registered, wrapped
// in CORS and request logging.
func NewRouter(opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	mux := http.NewServeMux()

	authHandler := &AuthHandler{JWTSecret: opts.JWTSecret}
	devicesHandler := &DevicesHandler{Service: opts.Service, Blobs: opts.Blobs}
	reservationsHandler := &ReservationsHandler{Service: opts.Service, Blobs: opts.Blobs}
	reportsHandler := &ReportsHandler{Service: opts.Service, Now: opts.Now}
	adminHandler := &AdminHandler{Service: opts.Service, Blobs: opts.Blobs, Now: opts.Now}

	authMW := AuthMiddleware(opts.JWTSecret)
	requireAdmin := RequireRole(model.RoleAdmin)
	loginLimiter := NewRateLimiter(opts.LoginPerMinute, opts.LoginBurst)

	// Public.
	mux.Handle("POST /api/auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("GET /api/enums", Enums)
	mux.Handle("GET /metrics", opts.Metrics.Handler())

	// Devices: read (all roles), write (admin).
	mux.Handle("GET /api/devices", authMW(http.HandlerFunc(devicesHandler.List)))
	mux.Handle("POST /api/devices", authMW(requireAdmin(http.HandlerFunc(devicesHandler.Create))))
	mux.Handle("GET /api/devices/{id}", authMW(http.HandlerFunc(devicesHandler.Get)))
	mux.Handle("PUT /api/devices/{id}", authMW(requireAdmin(http.HandlerFunc(devicesHandler.Update))))
	mux.Handle("DELETE /api/devices/{id}", authMW(requireAdmin(http.HandlerFunc(devicesHandler.Delete))))
	mux.Handle("PUT /api/devices/{id}/photo", authMW(requireAdmin(http.HandlerFunc(devicesHandler.UploadPhoto))))
	mux.Handle("GET /api/devices/{id}/photo", authMW(http.HandlerFunc(devicesHandler.GetPhoto)))

	// Reservations (all roles, completion is admin only).
	mux.Handle("GET /api/reservations", authMW(http.HandlerFunc(reservationsHandler.List)))
	mux.Handle("POST /api/reservations", authMW(http.HandlerFunc(reservationsHandler.Create)))
	mux.Handle("GET /api/reservations/{id}", authMW(http.HandlerFunc(reservationsHandler.Get)))
	mux.Handle("POST /api/reservations/{id}/cancel", authMW(http.HandlerFunc(reservationsHandler.Cancel)))
	mux.Handle("POST /api/reservations/{id}/complete", authMW(requireAdmin(http.HandlerFunc(reservationsHandler.Complete))))
	mux.Handle("GET /api/reservations/{id}/slip", authMW(http.HandlerFunc(reservationsHandler.Slip)))
	mux.Handle("GET /api/availability", authMW(http.HandlerFunc(reservationsHandler.Availability)))

	// Reports.
	mux.Handle("GET /api/reports/monthly", authMW(requireAdmin(http.HandlerFunc(reportsHandler.Monthly))))
	mux.Handle("GET /api/calendar", authMW(http.HandlerFunc(reportsHandler.Calendar)))

	// Backups (admin).
	mux.Handle("POST /api/admin/backup", authMW(requireAdmin(http.HandlerFunc(adminHandler.Backup))))
	mux.Handle("GET /api/admin/backups", authMW(requireAdmin(http.HandlerFunc(adminHandler.ListBackups))))

	var handler http.Handler = mux
	// cors treats an empty origin list as "*", so only wrap when configured.
	if len(opts.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         600,
		}).Handler(mux)
	}
	return LoggingMiddleware(opts.Metrics)(handler)
}
