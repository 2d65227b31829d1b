package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/zwehtet-dev/talent2income-rating/pkg/httputil"
	"github.com/zwehtet-dev/talent2income-rating/pkg/logger"
)

var rateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_rate_limited_total",
		Help: "Total number of HTTP requests rejected by the rate limiter",
	},
	[]string{"service"},
)

// clientLimiter is the token bucket of one client IP.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one token bucket per client IP. Buckets idle for longer
// than idleTTL are evicted on the next sweep.
type limiterSet struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	nowFunc func() time.Time
}

func newLimiterSet(rps float64, burst int, idleTTL time.Duration) *limiterSet {
	return &limiterSet{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		nowFunc: time.Now,
	}
}

// allow consumes one token from the bucket of ip.
func (s *limiterSet) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	c, ok := s.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// sweep evicts buckets not used within idleTTL.
func (s *limiterSet) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for ip, c := range s.clients {
		if now.Sub(c.lastSeen) > s.idleTTL {
			delete(s.clients, ip)
		}
	}
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RateLimit returns middleware that enforces a per-client-IP token bucket of
// rps requests per second with the given burst. Rejected requests get
// 429 Too Many Requests.
func RateLimit(serviceName string, rps float64, burst int, l *slog.Logger) func(http.Handler) http.Handler {
	const idleTTL = 3 * time.Minute
	set := newLimiterSet(rps, burst, idleTTL)

	go func() {
		ticker := time.NewTicker(idleTTL)
		defer ticker.Stop()
		for range ticker.C {
			set.sweep()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !set.allow(ip) {
				rateLimitedTotal.WithLabelValues(serviceName).Inc()
				l.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:      "RATE_LIMITED",
						Message:   "too many requests",
						RequestID: logger.CorrelationIDFromContext(r.Context()),
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the originating client address, preferring the first valid
// entry of X-Forwarded-For, then X-Real-IP, then the connection address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
