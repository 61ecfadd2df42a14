package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"ftlnomad/internal/apperrors"
	"ftlnomad/internal/config"
	"ftlnomad/internal/response"
)

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	cfg     config.RateLimitConfig
	logger  *slog.Logger
	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

// NewRateLimiter starts a sweeper that drops idle clients until ctx is done.
func NewRateLimiter(ctx context.Context, cfg config.RateLimitConfig, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg,
		logger:  logger.With("middleware", "rate_limit"),
		clients: make(map[string]*rate.Limiter),
	}
	if cfg.Enabled {
		go rl.sweep(ctx, time.Minute)
	}
	return rl
}

func (rl *RateLimiter) limiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.clients[client]
	if !ok {
		l = rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
		rl.clients[client] = l
	}
	return l
}

func (rl *RateLimiter) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for client, l := range rl.clients {
				if l.TokensAt(now) >= float64(rl.cfg.Burst) {
					delete(rl.clients, client)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := ClientIP(r, rl.cfg.TrustProxy)
		if !rl.limiter(client).Allow() {
			w.Header().Set("Retry-After", "1")
			err := &apperrors.AppError{Type: apperrors.TypeRateLimited, Message: "rate limit exceeded"}
			response.Error(w, r, rl.logger.With("client_ip", client), err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP prefers proxy headers only when trustProxy is set.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
