// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/stretchr/testify/mock"
)

// SessionRepository is a mock of repository.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	var s *domain.Session
	if v := args.Get(0); v != nil {
		s = v.(*domain.Session)
	}
	return s, args.Error(1)
}

func (m *SessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *SessionRepository) Touch(ctx context.Context, id string, at time.Time, ttl time.Duration) error {
	args := m.Called(ctx, id, at, ttl)
	return args.Error(0)
}

func (m *SessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
