package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"wedplan/internal/backend"
	"wedplan/internal/cache"
	applog "wedplan/internal/log"
	"wedplan/internal/middleware/ratelimit"
	"wedplan/internal/middleware/security"
	"wedplan/internal/middleware/trace"
	appweb "wedplan/web"
)

// handlerTimeout bounds every service call made while serving a request.
const handlerTimeout = 7 * time.Second

// Pinger reports whether the store can serve requests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune the server; zero values fall back to defaults.
type Options struct {
	SessionTTL         time.Duration
	SessionCacheSize   int
	RateLimitPerMinute int
	Logger             *applog.Logger

	// Assets overrides the embedded templates and static files.
	Assets fs.FS
}

type Server struct {
	http.Server
	templates *template.Template
	svc       backend.Services
	store     Pinger
	logger    *applog.Logger

	sessions    *cache.LRUCache[session]
	caches      *cache.Manager
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracing     *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc backend.Services, store Pinger, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.SessionCacheSize <= 0 {
		opts.SessionCacheSize = 1000
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Assets == nil {
		opts.Assets = appweb.FS
	}

	s := &Server{
		svc:      svc,
		store:    store,
		logger:   opts.Logger.WithComponent(applog.ComponentHTTP),
		sessions: newSessionStore(opts.SessionCacheSize, opts.SessionTTL),
		caches:   cache.NewManager(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		detector: security.NewDetector(),
	}
	s.tracing = trace.NewMiddleware(s.detector.ExtractClientIP, opts.Logger)

	s.caches.Register(s.sessions)
	s.caches.StartCleanup(10 * time.Minute)

	t, err := parseTemplates(opts.Assets)
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()
	s.routes(mux, opts.Assets)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutating, s.rateLimited)
	logs := applog.Middleware(opts.Logger, trace.GetRequestID)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracing.Middleware(headers.Middleware(s.detector.Middleware(limit(logs(mux))))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux, assets fs.FS) {
	if sub, err := fs.Sub(assets, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.Handle("GET /dashboard", s.authed(s.handleDashboard))

	mux.Handle("GET /guests", s.authed(s.handleGuests))
	mux.Handle("POST /guests", s.authed(s.handleCreateGuest))
	mux.Handle("GET /guests/{id}", s.authed(s.handleGuest))
	mux.Handle("PUT /guests/{id}", s.authed(s.handleUpdateGuest))
	mux.Handle("DELETE /guests/{id}", s.authed(s.handleDeleteGuest))

	mux.Handle("GET /budget", s.authed(s.handleBudget))
	mux.Handle("POST /budget/categories", s.authed(s.handleCreateCategory))
	mux.Handle("GET /budget/categories/{id}", s.authed(s.handleCategory))
	mux.Handle("PUT /budget/categories/{id}", s.authed(s.handleUpdateCategory))
	mux.Handle("DELETE /budget/categories/{id}", s.authed(s.handleDeleteCategory))
	mux.Handle("POST /budget/expenses", s.authed(s.handleCreateExpense))
	mux.Handle("GET /budget/expenses/{id}", s.authed(s.handleExpense))
	mux.Handle("PUT /budget/expenses/{id}", s.authed(s.handleUpdateExpense))
	mux.Handle("DELETE /budget/expenses/{id}", s.authed(s.handleDeleteExpense))

	mux.Handle("GET /tasks", s.authed(s.handleTasks))
	mux.Handle("POST /tasks", s.authed(s.handleCreateTask))
	mux.Handle("GET /tasks/{id}", s.authed(s.handleTask))
	mux.Handle("PUT /tasks/{id}", s.authed(s.handleUpdateTask))
	mux.Handle("PATCH /tasks/{id}", s.authed(s.handlePatchTask))
	mux.Handle("PATCH /tasks/{id}/status", s.authed(s.handleTaskStatus))
	mux.Handle("DELETE /tasks/{id}", s.authed(s.handleDeleteTask))

	mux.Handle("GET /settings", s.authed(s.handleSettings))
	mux.Handle("PUT /settings", s.authed(s.handleUpdateSettings))
	mux.Handle("POST /settings", s.authed(s.handleUpdateSettings))
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	s.respondStatus(w, r, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.store == nil {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	if err := s.store.Ping(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics writes counters in a plain "name value" format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	req := s.tracing.GetMetrics()
	rl := s.rateLimiter.GetMetrics()
	sec := s.detector.GetMetrics()

	var b strings.Builder
	fmt.Fprintf(&b, "http_requests_total %d\n", req.TotalRequests)
	fmt.Fprintf(&b, "http_requests_2xx %d\n", req.Status2xx)
	fmt.Fprintf(&b, "http_requests_3xx %d\n", req.Status3xx)
	fmt.Fprintf(&b, "http_requests_4xx %d\n", req.Status4xx)
	fmt.Fprintf(&b, "http_requests_5xx %d\n", req.Status5xx)
	fmt.Fprintf(&b, "http_response_time_avg_ms %.3f\n", float64(req.AverageResponseTime().Microseconds())/1000)
	fmt.Fprintf(&b, "rate_limit_hits_total %d\n", rl.TotalHits)
	fmt.Fprintf(&b, "rate_limit_clients %d\n", rl.ClientCount)
	fmt.Fprintf(&b, "suspicious_requests_total %d\n", sec.SuspiciousRequests)
	fmt.Fprintf(&b, "sessions_active %d\n", s.sessions.Size())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.currentAuth(r.Context(), r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
