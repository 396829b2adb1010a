package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"kesef/internal/log"
	"kesef/internal/middleware/ratelimit"
	"kesef/internal/middleware/security"
	"kesef/internal/middleware/trace"
	"kesef/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the operations the API exposes.
type Services struct {
	Users        *services.UserService
	Transactions *services.TransactionService
	Budget       *services.BudgetService
}

type Options struct {
	Logger             *log.Logger
	Store              Pinger
	RateLimitPerMinute int
}

type appMetrics struct {
	transactionsCreated int64
	transactionsDeleted int64
	outliersDetected    int64
	registrations       int64
	failedLogins        int64
	started             time.Time
}

type Server struct {
	http.Server
	svc      Services
	store    Pinger
	logger   *log.Logger
	validate *validator.Validate

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	metrics          appMetrics
}

// NewServer wires routes and middleware. Mutating routes are rate limited
// per client IP.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		svc:              svc,
		store:            opts.Store,
		logger:           logger,
		validate:         newValidator(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		metrics:          appMetrics{started: time.Now()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("POST /register", s.limited(s.handleRegister))
	mux.Handle("POST /login", s.limited(s.handleLogin))

	mux.Handle("POST /transactions", s.limited(s.withUser(s.handleAddTransaction)))
	mux.Handle("GET /transactions/{userId}", s.withUser(s.handleListTransactions))
	mux.Handle("DELETE /transactions/{id}", s.limited(s.withUser(s.handleDeleteTransaction)))

	mux.Handle("POST /budget-preferences", s.limited(s.withUser(s.handleSavePreferences)))
	mux.Handle("GET /budget-preferences/{userId}", s.withUser(s.handleGetPreferences))
	mux.Handle("GET /budget-summary/{userId}", s.withUser(s.handleBudgetSummary))
	mux.Handle("GET /dashboard/{userId}", s.withUser(s.handleDashboard))

	mux.Handle("GET /admin/users-data", s.withAdmin(s.handleUsersData))
	mux.Handle("POST /admin/make-admin", s.limited(s.withAdmin(s.handleMakeAdmin)))

	var handler http.Handler = mux
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	})(h)
}

// Shutdown stops accepting requests and releases background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) countOutlier(outlier bool) {
	atomic.AddInt64(&s.metrics.transactionsCreated, 1)
	if outlier {
		atomic.AddInt64(&s.metrics.outliersDetected, 1)
	}
}
