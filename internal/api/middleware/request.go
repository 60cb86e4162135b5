package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jarinsubahh/buet-exchange/pkg/metrics"
)

// attemptQuietWindow is how long an address must stay quiet before its
// attempt count (and block) lapses.
const attemptQuietWindow = 30 * time.Second

type IPAttemptTracker struct {
	attempts     map[string]*IPAttemptInfo
	maxAttempts  int
	mu           sync.RWMutex
	cleanupEvery time.Duration
}

type IPAttemptInfo struct {
	Count       int
	LastAttempt time.Time
	Blocked     bool
}

func NewIPAttemptTracker(maxAttempts int) *IPAttemptTracker {
	tracker := &IPAttemptTracker{
		attempts:     make(map[string]*IPAttemptInfo),
		maxAttempts:  maxAttempts,
		cleanupEvery: 5 * time.Minute,
	}

	go tracker.startCleanup()

	return tracker
}

func (t *IPAttemptTracker) startCleanup() {
	ticker := time.NewTicker(t.cleanupEvery)
	defer ticker.Stop()

	for range ticker.C {
		t.cleanOldEntries()
	}
}

func (t *IPAttemptTracker) cleanOldEntries() {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiry := time.Now().Add(-attemptQuietWindow)
	for ip, info := range t.attempts {
		if info.LastAttempt.Before(expiry) {
			delete(t.attempts, ip)
		}
	}
}

func (t *IPAttemptTracker) RecordAttempt(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	info, exists := t.attempts[ip]
	if !exists || time.Since(info.LastAttempt) > attemptQuietWindow {
		info = &IPAttemptInfo{}
		t.attempts[ip] = info
	}

	info.Count++
	info.LastAttempt = time.Now()

	if info.Count > t.maxAttempts {
		info.Blocked = true
	}
}

func (t *IPAttemptTracker) IsBlocked(ip string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	info, exists := t.attempts[ip]
	if !exists {
		return false
	}
	// The cleanup ticker is coarse; lapse the block here too so a quiet
	// address frees itself as soon as the window passes.
	if time.Since(info.LastAttempt) > attemptQuietWindow {
		return false
	}
	return info.Blocked
}

type RequestMiddleware struct {
	logger         *zap.Logger
	metrics        *metrics.MetricsCollector
	attemptTracker *IPAttemptTracker
}

func NewRequestMiddleware(logger *zap.Logger, metricsCollector *metrics.MetricsCollector, maxLoginAttempts int) *RequestMiddleware {
	return &RequestMiddleware{
		logger:         logger,
		metrics:        metricsCollector,
		attemptTracker: NewIPAttemptTracker(maxLoginAttempts),
	}
}

func (rm *RequestMiddleware) ProcessRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		rm.metrics.ObserveLatency("http.request", duration)
		rm.metrics.IncrementCounter("http.requests", map[string]string{"path": c.FullPath()})
		rm.logger.Info("Request completed",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}

// LoginAttemptMiddleware throttles repeated sign-in attempts from one
// address. The counter window is short; a blocked address frees itself
// after 30 seconds of quiet.
func (rm *RequestMiddleware) LoginAttemptMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost && c.FullPath() == "/login" {
			clientIP := c.ClientIP()
			if rm.attemptTracker.IsBlocked(clientIP) {
				rm.logger.Warn("Throttling login attempts",
					zap.String("client_ip", clientIP))
				rm.metrics.IncrementCounter("auth.logins_throttled", nil)
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error": "too many sign-in attempts, wait a moment",
				})
				return
			}
			rm.attemptTracker.RecordAttempt(clientIP)
		}
		c.Next()
	}
}

func (rm *RequestMiddleware) RecoverPanic() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := c.GetString("request_id")
				rm.logger.Error("Panic recovered",
					zap.String("request_id", requestID),
					zap.Any("error", err),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
