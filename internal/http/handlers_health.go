package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Field("status", "ok").
		Field("timestamp", time.Now().UTC().Format(time.RFC3339)).
		Field("uptime", time.Since(s.metrics.started).Round(time.Second).String()).
		Write(w)
}

// handleReady reports 503 while the store is unreachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{
		"rate_limiter": map[string]any{"active_clients": s.rateLimiter.ActiveClients(), "status": "ok"},
	}
	if s.svc.Users != nil {
		stats := s.svc.Users.CacheStats()
		checks["user_cache"] = map[string]any{"entries": stats.Size, "status": "ok"}
	}

	status := "ready"
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			status = "not_ready"
			checks["store"] = map[string]any{"status": "error", "error": err.Error()}
		} else {
			checks["store"] = map[string]any{"status": "ok"}
		}
	}

	resp := NewJSONResponse().
		Field("status", status).
		Field("timestamp", time.Now().UTC().Format(time.RFC3339)).
		Field("checks", checks)
	if status != "ready" {
		resp = ErrorResponse(http.StatusServiceUnavailable, "store unavailable").
			Field("status", status).
			Field("checks", checks)
	}
	resp.Write(w)
}

type metric struct {
	name, help, kind string
	value            any
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()
	metrics := []metric{
		{"http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests},
		{"http_client_errors_total", "Responses with a 4xx status", "counter", traceMetrics.ClientErrors},
		{"http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.ServerErrors},
		{"http_response_time_avg_ms", "Average response time in milliseconds", "gauge", traceMetrics.AverageResponseTime.Milliseconds()},
		{"transactions_created_total", "Transactions stored", "counter", atomic.LoadInt64(&s.metrics.transactionsCreated)},
		{"transactions_deleted_total", "Transactions deleted", "counter", atomic.LoadInt64(&s.metrics.transactionsDeleted)},
		{"outliers_detected_total", "Transactions flagged as unusual", "counter", atomic.LoadInt64(&s.metrics.outliersDetected)},
		{"registrations_total", "Users registered", "counter", atomic.LoadInt64(&s.metrics.registrations)},
		{"failed_logins_total", "Rejected login attempts", "counter", atomic.LoadInt64(&s.metrics.failedLogins)},
		{"rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", s.rateLimiter.Hits()},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", s.rateLimiter.ActiveClients()},
		{"suspicious_requests_total", "Suspicious requests detected", "counter", s.securityDetector.SuspiciousRequests()},
	}
	if s.svc.Users != nil {
		stats := s.svc.Users.CacheStats()
		metrics = append(metrics,
			metric{"user_cache_hits_total", "User cache hits", "counter", stats.Hits},
			metric{"user_cache_misses_total", "User cache misses", "counter", stats.Misses},
			metric{"user_cache_entries", "Users currently cached", "gauge", stats.Size},
		)
	}
	metrics = append(metrics, metric{"uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.metrics.started).Seconds())})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}
