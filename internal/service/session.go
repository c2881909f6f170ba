package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/caps24escola/pixel-world/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	sessionIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	sessionIDLength   = 12
)

// SessionService manages the registry of controller sessions.
type SessionService struct {
	sessionRepo repository.SessionRepository
	ttl         time.Duration
	idleTimeout time.Duration
	now         func() time.Time
}

// NewSessionService creates a SessionService. Records expire ttl after their
// last activity; the sweeper closes sessions idle for idleTimeout.
func NewSessionService(sessionRepo repository.SessionRepository, ttl, idleTimeout time.Duration) *SessionService {
	if sessionRepo == nil {
		panic("SessionRepository cannot be nil for SessionService")
	}
	if ttl <= 0 {
		panic("session ttl must be positive")
	}
	if idleTimeout <= 0 {
		panic("session idle timeout must be positive")
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		ttl:         ttl,
		idleTimeout: idleTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service's time source. Intended for tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// CreateSession registers a new session under a fresh random ID.
func (s *SessionService) CreateSession(ctx context.Context) (*domain.Session, error) {
	const maxAttempts = 5

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		id, err := generateSessionID()
		if err != nil {
			logrus.WithError(err).Error("Failed to generate session ID")
			return nil, ErrInternalServer
		}
		now := s.now()
		session := &domain.Session{ID: id, CreatedAt: now, LastActive: now}

		err = s.sessionRepo.Save(ctx, session, s.ttl)
		if err == nil {
			logrus.WithField("session_id", id).Info("Session created")
			return session, nil
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logrus.WithField("session_id", id).Warnf("Session ID collision, retrying (attempt %d)", attempt)
			continue
		}
		logrus.WithError(err).Error("Failed to save session")
		return nil, ErrInternalServer
	}
	logrus.Errorf("Failed to allocate a unique session ID after %d attempts", maxAttempts)
	return nil, ErrInternalServer
}

// GetSession returns the session record or ErrSessionNotFound.
func (s *SessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if !ValidSessionID(id) {
		return nil, ErrSessionNotFound
	}
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).WithField("session_id", id).Error("Failed to load session")
		}
		return nil, mapRepoError(err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// TouchSession records activity on a session.
func (s *SessionService) TouchSession(ctx context.Context, id string) error {
	if !ValidSessionID(id) {
		return ErrSessionNotFound
	}
	if err := s.sessionRepo.Touch(ctx, id, s.now(), s.ttl); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).WithField("session_id", id).Warn("Failed to touch session")
		}
		return mapRepoError(err)
	}
	return nil
}

// EndSession removes the session record.
func (s *SessionService) EndSession(ctx context.Context, id string) error {
	if !ValidSessionID(id) {
		return ErrSessionNotFound
	}
	exists, err := s.sessionRepo.Exists(ctx, id)
	if err != nil {
		logrus.WithError(err).WithField("session_id", id).Error("Failed to check session")
		return ErrInternalServer
	}
	if !exists {
		return ErrSessionNotFound
	}
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		logrus.WithError(err).WithField("session_id", id).Error("Failed to delete session")
		return ErrInternalServer
	}
	logrus.WithField("session_id", id).Info("Session ended")
	return nil
}

// SweepIdleSessions checks the given live sessions and returns the IDs that
// should be closed: those whose record expired and those idle past the
// timeout. Records of idle sessions are deleted. Lookup failures keep the
// session open.
func (s *SessionService) SweepIdleSessions(ctx context.Context, ids []string) []string {
	now := s.now()
	var closing []string
	for _, id := range ids {
		logCtx := logrus.WithField("session_id", id)
		session, err := s.GetSession(ctx, id)
		switch {
		case errors.Is(err, ErrSessionNotFound):
			logCtx.Info("Session record expired, closing")
			closing = append(closing, id)
		case err != nil:
			logCtx.WithError(err).Warn("Skipping session during sweep")
		case session.IdleSince(now, s.idleTimeout):
			logCtx.WithField("last_active", session.LastActive).Info("Session idle, closing")
			if err := s.sessionRepo.Delete(ctx, id); err != nil {
				logCtx.WithError(err).Warn("Failed to delete idle session record")
			}
			closing = append(closing, id)
		}
	}
	return closing
}

// ValidSessionID reports whether id has the shape of a generated session ID.
func ValidSessionID(id string) bool {
	if len(id) != sessionIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}

func generateSessionID() (string, error) {
	b := make([]byte, sessionIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i := range b {
		b[i] = sessionIDAlphabet[int(b[i])%len(sessionIDAlphabet)]
	}
	return string(b), nil
}
