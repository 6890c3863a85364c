package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"qayd/internal/cache"
	"qayd/internal/core"
	"qayd/internal/log"
	"qayd/internal/middleware/ratelimit"
	"qayd/internal/middleware/security"
	"qayd/internal/middleware/trace"
	"qayd/internal/services"
	appweb "qayd/web"
)

const (
	summaryCacheKeyExpenses = "summary:expenses"
	summaryCacheKeyIncome   = "summary:income"
)

type Server struct {
	http.Server
	templates *template.Template
	service   *services.RecordService
	logger    *log.Logger

	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	// Aggregates are recomputed from the full ledger on every request, so
	// the dashboard endpoints cache them briefly. Purged on every write.
	summaryCache *cache.LRUCache[core.Summary]
	reportCache  *cache.LRUCache[core.Report]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware, and templates, returning a
// ready-to-run server.
func NewServer(addr string, service *services.RecordService, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		service:      service,
		logger:       logger.WithComponent(log.ComponentHTTP),
		detector:     security.NewDetector(),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		summaryCache: cache.NewLRUCache[core.Summary](8, 5*time.Minute),
		reportCache:  cache.NewLRUCache[core.Report](64, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /report", s.handleReportPage)
	mux.HandleFunc("GET /report/print", s.handleReportPrint)

	// Mutations, rate limited per client IP.
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, nil)
	mux.Handle("POST /expenses", limited(http.HandlerFunc(s.handleCreateExpense)))
	mux.Handle("POST /expenses/{id}/delete", limited(http.HandlerFunc(s.handleDeleteExpense)))
	mux.Handle("POST /income", limited(http.HandlerFunc(s.handleCreateIncome)))
	mux.Handle("POST /income/{id}/delete", limited(http.HandlerFunc(s.handleDeleteIncome)))

	// JSON API
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/income", s.handleListIncome)
	mux.HandleFunc("GET /api/summary/expenses", s.handleExpenseSummary)
	mux.HandleFunc("GET /api/summary/income", s.handleIncomeSummary)
	mux.HandleFunc("GET /api/plans", s.handlePlans)
	mux.HandleFunc("GET /api/report", s.handleReportAPI)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Error("Failed to mount embedded static FS", "error", err)
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	requestLog := log.Middleware(s.logger)
	handler := s.tracer.Middleware(headers.Middleware(requestLog(s.detectProbes(mux))))

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// detectProbes logs hostile-looking requests before they reach the mux.
func (s *Server) detectProbes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				log.FieldPath, r.URL.Path,
				log.FieldMethod, r.Method,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// invalidateCaches drops all derived data after a ledger mutation.
func (s *Server) invalidateCaches() {
	s.summaryCache.Purge()
	s.reportCache.Purge()
}

// Shutdown stops the server and all background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready once the store answers a list call.
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := s.service.ListExpenses(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", "error", err)
		http.Error(w, "store not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
