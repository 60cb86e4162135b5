package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jarinsubahh/buet-exchange/internal/db/models"
	"github.com/jarinsubahh/buet-exchange/pkg/metrics"
)

// SessionUser is the identity snapshot carried for the lifetime of a
// session: everything the presentation layer needs without a user lookup
// per request.
type SessionUser struct {
	ID         uint
	Email      string
	Name       string
	Department string
	Phone      string
	IsAdmin    bool
}

type SessionData struct {
	User      SessionUser
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
}

type sessionStore struct {
	sessions map[string]SessionData
	mutex    sync.RWMutex
}

type SessionService struct {
	store    *sessionStore
	ttl      time.Duration
	logger   *zap.Logger
	metrics  *metrics.MetricsCollector
	stopChan chan struct{}
}

func NewSessionService(ttl time.Duration, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *SessionService {
	ss := &SessionService{
		store: &sessionStore{
			sessions: make(map[string]SessionData),
		},
		ttl:      ttl,
		logger:   logger.With(zap.String("service", "session_service")),
		metrics:  metricsCollector,
		stopChan: make(chan struct{}),
	}

	go ss.startBackgroundCleanup(context.Background())

	return ss
}

func (ss *SessionService) startBackgroundCleanup(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ss.stopChan:
			return
		case <-ticker.C:
			ss.cleanupExpiredSessions()
		}
	}
}

func (ss *SessionService) cleanupExpiredSessions() {
	ss.store.mutex.Lock()
	defer ss.store.mutex.Unlock()

	now := time.Now()
	for token, session := range ss.store.sessions {
		if now.After(session.ExpiresAt) {
			delete(ss.store.sessions, token)
			ss.metrics.IncrementCounter("session_service.sessions_expired", nil)
		}
	}
}

// CreateSession issues a token for a signed-in user. The session carries a
// snapshot of the identity, fixed until sign-out.
func (ss *SessionService) CreateSession(user *models.User, ip, userAgent string) string {
	token := uuid.New().String()

	ss.store.mutex.Lock()
	defer ss.store.mutex.Unlock()

	ss.store.sessions[token] = SessionData{
		User: SessionUser{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Department: user.Department,
			Phone:      user.Phone,
			IsAdmin:    user.IsAdmin(),
		},
		ExpiresAt: time.Now().Add(ss.ttl),
		IPAddress: ip,
		UserAgent: userAgent,
	}

	ss.metrics.IncrementCounter("session_service.sessions_created", nil)
	return token
}

// ResolveSession returns the identity bound to a token, if the token is
// live.
func (ss *SessionService) ResolveSession(token string) (SessionUser, bool) {
	ss.store.mutex.RLock()
	defer ss.store.mutex.RUnlock()

	session, exists := ss.store.sessions[token]
	if !exists || time.Now().After(session.ExpiresAt) {
		return SessionUser{}, false
	}
	return session.User, true
}

func (ss *SessionService) DeleteSession(token string) {
	ss.store.mutex.Lock()
	defer ss.store.mutex.Unlock()

	if _, exists := ss.store.sessions[token]; exists {
		delete(ss.store.sessions, token)
		ss.metrics.IncrementCounter("session_service.sessions_deleted", nil)
	}
}

func (ss *SessionService) Stop() {
	close(ss.stopChan)
}
