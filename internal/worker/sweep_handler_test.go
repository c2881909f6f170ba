package worker

import (
	"context"
	"testing"

	"github.com/caps24escola/pixel-world/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	active []string
	closed []string
}

func (f *fakeHub) GetActiveSessionIDs() []string { return f.active }

func (f *fakeHub) CloseSession(id string) bool {
	f.closed = append(f.closed, id)
	return true
}

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) SweepIdleSessions(ctx context.Context, ids []string) []string {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.([]string)
	}
	return nil
}

func newSweepTask(t *testing.T) *asynq.Task {
	t.Helper()
	return tasks.NewSessionSweepTask()
}

func TestSessionSweepHandler_ClosesIdleSessions(t *testing.T) {
	// Arrange
	hub := &fakeHub{active: []string{"aaaaaaaaaaaa", "bbbbbbbbbbbb", "cccccccccccc"}}
	sweeper := new(mockSweeper)
	sweeper.On("SweepIdleSessions", mock.Anything, hub.active).Return([]string{"bbbbbbbbbbbb"}).Once()
	handler := NewSessionSweepHandler(hub, sweeper)

	// Act
	err := handler.ProcessTask(context.Background(), newSweepTask(t))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"bbbbbbbbbbbb"}, hub.closed)
	sweeper.AssertExpectations(t)
}

func TestSessionSweepHandler_NoActiveSessions(t *testing.T) {
	hub := &fakeHub{}
	sweeper := new(mockSweeper)
	handler := NewSessionSweepHandler(hub, sweeper)

	err := handler.ProcessTask(context.Background(), newSweepTask(t))

	require.NoError(t, err)
	assert.Empty(t, hub.closed)
	sweeper.AssertNotCalled(t, "SweepIdleSessions", mock.Anything, mock.Anything)
}

func TestNewSessionSweepHandler_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewSessionSweepHandler(nil, new(mockSweeper)) })
	assert.Panics(t, func() { NewSessionSweepHandler(&fakeHub{}, nil) })
}

func TestWorkerServer_MuxRoutesSweep(t *testing.T) {
	hub := &fakeHub{active: []string{"aaaaaaaaaaaa"}}
	sweeper := new(mockSweeper)
	sweeper.On("SweepIdleSessions", mock.Anything, hub.active).Return([]string{"aaaaaaaaaaaa"}).Once()
	ws := &WorkerServer{hub: hub, sweeper: sweeper}

	err := ws.NewServeMux().ProcessTask(context.Background(), newSweepTask(t))

	require.NoError(t, err)
	assert.Equal(t, []string{"aaaaaaaaaaaa"}, hub.closed)
}
