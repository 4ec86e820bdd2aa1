package handler

import (
	"net/http"

	"coworking-reservation-server/internal/config"
	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RouterDeps carries everything the HTTP surface needs. RateLimiter and
// Metrics are optional.
type RouterDeps struct {
	Logger      zerolog.Logger
	JWTSecret   string
	CORS        config.CORSConfig
	RateLimiter *middleware.RateLimiter
	Metrics     http.Handler

	Auth          *AuthHandler
	Users         *UserHandler
	Workspaces    *WorkspaceHandler
	Reservations  *ReservationHandler
	Reports       *ReportHandler
	Notifications *NotificationHandler
	WebSocket     *WebSocketHandler
	Health        *HealthHandler
}

func NewRouter(d RouterDeps) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(d.Logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.CORSMiddleware(
		d.CORS.AllowedOrigins,
		d.CORS.AllowedMethods,
		d.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	public := api.PathPrefix("/auth").Subrouter()
	if d.RateLimiter != nil {
		public.Use(d.RateLimiter.Middleware)
	}
	public.HandleFunc("/register", d.Auth.Register).Methods("POST", "OPTIONS")
	public.HandleFunc("/login", d.Auth.Login).Methods("POST", "OPTIONS")
	public.HandleFunc("/refresh", d.Auth.Refresh).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(d.JWTSecret))
	if d.RateLimiter != nil {
		protected.Use(d.RateLimiter.Middleware)
	}

	protected.HandleFunc("/users/me", d.Users.GetMe).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notifications", d.Notifications.List).Methods("GET", "OPTIONS")

	protected.HandleFunc("/workspaces", d.Workspaces.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/workspaces/{id}", d.Workspaces.Get).Methods("GET", "OPTIONS")

	protected.HandleFunc("/reservations", d.Reservations.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/reservations/me", d.Reservations.Mine).Methods("GET", "OPTIONS")
	protected.HandleFunc("/reservations/{id}", d.Reservations.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/reservations/{id}", d.Reservations.Cancel).Methods("DELETE", "OPTIONS")

	admin := protected.PathPrefix("").Subrouter()
	admin.Use(middleware.RequireRole(domain.RoleAdmin))

	admin.HandleFunc("/workspaces", d.Workspaces.Create).Methods("POST", "OPTIONS")
	admin.HandleFunc("/workspaces/{id}", d.Workspaces.Delete).Methods("DELETE", "OPTIONS")
	admin.HandleFunc("/workspaces/{id}/reservations", d.Workspaces.Reservations).Methods("GET", "OPTIONS")

	admin.HandleFunc("/reservations", d.Reservations.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/reservations/customer/{name}", d.Reservations.ByCustomer).Methods("GET", "OPTIONS")

	admin.HandleFunc("/users", d.Users.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/users/{id}", d.Users.Deactivate).Methods("DELETE", "OPTIONS")

	admin.HandleFunc("/reports/reservations.xlsx", d.Reports.Reservations).Methods("GET", "OPTIONS")

	if d.WebSocket != nil {
		r.HandleFunc("/ws", d.WebSocket.HandleConnection)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics).Methods("GET")
	}
	r.HandleFunc("/health", d.Health.Live).Methods("GET")
	r.HandleFunc("/ready", d.Health.Ready).Methods("GET")

	return r
}
