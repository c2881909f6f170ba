package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/caps24escola/pixel-world/internal/repository"
)

// RedisSessionRepository is the Redis implementation of repository.SessionRepository.
// Each session is one JSON string key with an expiry.
type RedisSessionRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSessionRepository creates a RedisSessionRepository.
func NewRedisSessionRepository(client *redis.Client, keyPrefix string) *RedisSessionRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisSessionRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "px:"
	}
	return &RedisSessionRepository{client: client, keyPrefix: keyPrefix}
}

func (r *RedisSessionRepository) sessionKey(id string) string {
	return fmt.Sprintf("%ssession:%s", r.keyPrefix, id)
}

// Save stores the session only if its key is free.
func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	key := r.sessionKey(session.ID)
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal session %s: %w", session.ID, err)
	}
	ok, err := r.client.SetNX(ctx, key, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis: failed to save session on key %s: %w", key, err)
	}
	if !ok {
		return repository.ErrDuplicateEntry
	}
	return nil
}

// FindByID loads a session record.
func (r *RedisSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	key := r.sessionKey(id)
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis: failed to get session from %s: %w", key, err)
	}
	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("redis: failed to unmarshal session from %s: %w", key, err)
	}
	return &session, nil
}

// Exists checks for the session key without loading it.
func (r *RedisSessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	key := r.sessionKey(id)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to check session key %s: %w", key, err)
	}
	return n > 0, nil
}

// Touch records activity. The read-modify-write runs under WATCH so a
// concurrent Delete is not undone.
func (r *RedisSessionRepository) Touch(ctx context.Context, id string, at time.Time, ttl time.Duration) error {
	key := r.sessionKey(id)
	txf := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return repository.ErrSessionNotFound
			}
			return err
		}
		var session domain.Session
		if err := json.Unmarshal(payload, &session); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if at.After(session.LastActive) {
			session.LastActive = at
		}
		updated, err := json.Marshal(&session)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, ttl)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		logrus.WithField("session_id", id).Debug("redis: session touch lost a race, skipping")
		return nil
	}
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("redis: failed to touch session on key %s: %w", key, err)
	}
	return nil
}

// Delete removes the session key.
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	key := r.sessionKey(id)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete session key %s: %w", key, err)
	}
	return nil
}
