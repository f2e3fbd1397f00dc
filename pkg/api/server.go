package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/shopadmin/pkg/audit"
	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/httputil"
	"github.com/platinummonkey/shopadmin/pkg/middleware"
	"github.com/platinummonkey/shopadmin/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the HTTP surface
type Options struct {
	Logger   *observability.Logger
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Health   *observability.HealthChecker

	// Audit receives account activity events; nil disables auditing
	Audit audit.Logger

	// LoginLimiter limits login attempts per client IP; nil disables it
	LoginLimiter middleware.Limiter

	CookieSecure   bool
	AllowedOrigins []string
	MaxBodyBytes   int64
	TrustProxy     bool

	// Tracing wraps the handler with OpenTelemetry HTTP instrumentation
	Tracing bool
}

// Server represents our API server
type Server struct {
	router  *mux.Router
	handler http.Handler
	auth    *auth.Service
	opts    Options
	logger  *observability.Logger
}

// NewServer creates a new API server
func NewServer(svc *auth.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 2 << 20
	}

	s := &Server{
		router: mux.NewRouter(),
		auth:   svc,
		opts:   opts,
		logger: opts.Logger,
	}

	s.setupRoutes()

	s.handler = httputil.Chain(
		httputil.RecoveryMiddleware(s.logger),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.SecurityHeadersMiddleware,
		httputil.CORSMiddleware(opts.AllowedOrigins),
		httputil.MaxBytesMiddleware(opts.MaxBodyBytes),
	)(s.router)

	if opts.Tracing {
		s.handler = otelhttp.NewHandler(s.handler, "shopadmin.http")
	}

	return s
}

// setupRoutes configures all the API routes. Fixed paths are registered
// before /api/users/{id} so they are not captured as ids.
func (s *Server) setupRoutes() {
	if s.opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.opts.Metrics))
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "Not Found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteFailed(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	if s.opts.Health != nil {
		observability.RegisterHealthRoutes(s.router, s.opts.Health)
	}
	if s.opts.Registry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(s.opts.Registry)).Methods(http.MethodGet)
	}

	users := NewUserHandlers(s.auth, s.opts)

	var login http.Handler = http.HandlerFunc(users.login)
	if s.opts.LoginLimiter != nil {
		login = middleware.NewRateLimitMiddleware(s.opts.LoginLimiter, "login", s.opts.TrustProxy, s.opts.Metrics, s.logger).Handler(login)
	}

	s.router.HandleFunc("/api/users/register", users.register).Methods(http.MethodPost)
	s.router.Handle("/api/users/login", login).Methods(http.MethodPost)
	s.router.HandleFunc("/api/users/logout", users.logout).Methods(http.MethodPost)

	sessions := middleware.NewSessionMiddleware(s.auth, s.logger)
	protected := s.router.PathPrefix("/api/users").Subrouter()
	protected.Use(sessions.Handler)

	protected.HandleFunc("/profile", users.profile).Methods(http.MethodGet)
	protected.Handle("", middleware.RequireAdmin(http.HandlerFunc(users.listUsers))).Methods(http.MethodGet)
	protected.HandleFunc("/{id}", users.getUser).Methods(http.MethodGet)
	protected.HandleFunc("/{id}", users.updateUser).Methods(http.MethodPut)
	protected.HandleFunc("/{id}", users.deleteUser).Methods(http.MethodDelete)
}

// Router returns the route table, for introspection in tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
