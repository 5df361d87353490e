package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"hisab/internal/cache"
	applog "hisab/internal/log"
	"hisab/internal/report"
	"hisab/internal/services"
)

type Server struct {
	http.Server
	tracker     *services.Tracker
	rateLimiter *rateLimiter

	// Derived views are cached per filter and dropped on every write.
	listCache   *cache.LRUCache[services.ListResult]
	reportCache *cache.LRUCache[report.InvestmentReport]
	chartCache  *cache.LRUCache[services.ChartData]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run http.Server.
func NewServer(addr string, tracker *services.Tracker) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		tracker:      tracker,
		rateLimiter:  newRateLimiter(),
		listCache:    cache.NewLRUCache[services.ListResult](100, 5*time.Minute),
		reportCache:  cache.NewLRUCache[report.InvestmentReport](10, 5*time.Minute),
		chartCache:   cache.NewLRUCache[services.ChartData](50, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.listCache)
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.Register(s.chartCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withSecurityHeaders(s.handleTransactionByIndex))
	mux.HandleFunc("/api/investments", s.withSecurityHeaders(s.handleInvestments))
	mux.HandleFunc("/api/investments/report", s.withSecurityHeaders(s.handleInvestmentReport))
	mux.HandleFunc("/api/charts/", s.withSecurityHeaders(s.handleChart))

	return s
}

// invalidateCaches drops every cached view after a table write.
func (s *Server) invalidateCaches() {
	s.listCache.Clear()
	s.reportCache.Clear()
	s.chartCache.Clear()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		fields := applog.NewFields().
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"))

		slog.InfoContext(ctx, "Request started", fields.ToSlice()...)

		// Apply rate limiting to mutating requests
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		fields.WithHTTPResponse(rw.statusCode, duration.Milliseconds(), rw.statusCode < http.StatusBadRequest)
		slog.InfoContext(ctx, "Request completed", fields.ToSlice()...)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
