package redisstate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/caps24escola/pixel-world/internal/repository"
)

const testID = "abc123def456"

var created = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionRepository(client, "test:"), mr
}

func newSession() *domain.Session {
	return &domain.Session{ID: testID, CreatedAt: created, LastActive: created}
}

func TestRedisSessionRepository_Keys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{name: "default prefix", prefix: "", want: "px:session:abc123def456"},
		{name: "custom prefix", prefix: "test:", want: "test:session:abc123def456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewRedisSessionRepository(client, tt.prefix)
			assert.Equal(t, tt.want, repo.sessionKey("abc123def456"))
		})
	}
}

func TestNewRedisSessionRepository_PanicsOnNilClient(t *testing.T) {
	assert.Panics(t, func() { NewRedisSessionRepository(nil, "px:") })
}

func TestRedisSessionRepository_SaveAndFind(t *testing.T) {
	// Arrange
	repo, mr := setupRepo(t)
	ctx := context.Background()

	// Act
	err := repo.Save(ctx, newSession(), time.Hour)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("test:session:"+testID))

	found, err := repo.FindByID(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, testID, found.ID)
	assert.True(t, found.CreatedAt.Equal(created))
	assert.True(t, found.LastActive.Equal(created))

	exists, err := repo.Exists(ctx, testID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRedisSessionRepository_SaveRejectsTakenID(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newSession(), time.Hour))

	other := newSession()
	other.CreatedAt = created.Add(time.Minute)
	err := repo.Save(ctx, other, time.Hour)

	assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
	found, err := repo.FindByID(ctx, testID)
	require.NoError(t, err)
	assert.True(t, found.CreatedAt.Equal(created), "the first record must be kept")
}

func TestRedisSessionRepository_FindMissing(t *testing.T) {
	repo, _ := setupRepo(t)

	found, err := repo.FindByID(context.Background(), testID)

	assert.Nil(t, found)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRedisSessionRepository_ExpiredRecordIsGone(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newSession(), time.Minute))

	mr.FastForward(time.Minute + time.Second)

	_, err := repo.FindByID(ctx, testID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	exists, err := repo.Exists(ctx, testID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisSessionRepository_TouchRefreshesTTL(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newSession(), time.Minute))
	mr.FastForward(40 * time.Second)

	touchedAt := created.Add(40 * time.Second)
	err := repo.Touch(ctx, testID, touchedAt, time.Minute)

	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("test:session:"+testID))
	found, err := repo.FindByID(ctx, testID)
	require.NoError(t, err)
	assert.True(t, found.LastActive.Equal(touchedAt))

	// Past the original expiry, the touched record is still there.
	mr.FastForward(40 * time.Second)
	_, err = repo.FindByID(ctx, testID)
	assert.NoError(t, err)
}

func TestRedisSessionRepository_TouchNeverMovesBackwards(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	session := newSession()
	session.LastActive = created.Add(time.Hour)
	require.NoError(t, repo.Save(ctx, session, time.Hour))

	err := repo.Touch(ctx, testID, created.Add(time.Minute), time.Hour)

	require.NoError(t, err)
	found, err := repo.FindByID(ctx, testID)
	require.NoError(t, err)
	assert.True(t, found.LastActive.Equal(created.Add(time.Hour)))
}

func TestRedisSessionRepository_TouchMissing(t *testing.T) {
	repo, mr := setupRepo(t)

	err := repo.Touch(context.Background(), testID, created, time.Hour)

	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	assert.False(t, mr.Exists("test:session:"+testID), "touch must not create a record")
}

func TestRedisSessionRepository_Delete(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, newSession(), time.Hour))

	require.NoError(t, repo.Delete(ctx, testID))

	exists, err := repo.Exists(ctx, testID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, repo.Delete(ctx, testID), "deleting a missing key is not an error")
}

func TestRedisSessionRepository_CorruptRecord(t *testing.T) {
	repo, mr := setupRepo(t)
	require.NoError(t, mr.Set("test:session:"+testID, "{not json"))

	_, err := repo.FindByID(context.Background(), testID)

	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrNotFound))
}

func TestRedisSessionRepository_ConnectionFailure(t *testing.T) {
	repo, mr := setupRepo(t)
	mr.Close()

	err := repo.Save(context.Background(), newSession(), time.Hour)

	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrDuplicateEntry))
}
