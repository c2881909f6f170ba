package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// SessionHub is the part of the hub the sweep needs.
type SessionHub interface {
	GetActiveSessionIDs() []string
	CloseSession(id string) bool
}

// IdleSweeper decides which live sessions should be closed.
type IdleSweeper interface {
	SweepIdleSessions(ctx context.Context, ids []string) []string
}

// SessionSweepHandler processes periodic session sweep tasks.
type SessionSweepHandler struct {
	hub     SessionHub
	sweeper IdleSweeper
}

// NewSessionSweepHandler creates a SessionSweepHandler.
func NewSessionSweepHandler(hub SessionHub, sweeper IdleSweeper) *SessionSweepHandler {
	if hub == nil {
		panic("Hub cannot be nil for SessionSweepHandler")
	}
	if sweeper == nil {
		panic("IdleSweeper cannot be nil for SessionSweepHandler")
	}
	return &SessionSweepHandler{hub: hub, sweeper: sweeper}
}

// ProcessTask implements asynq.Handler.
func (h *SessionSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
	})

	active := h.hub.GetActiveSessionIDs()
	if len(active) == 0 {
		logCtx.Debug("No active sessions, skipping sweep")
		return nil
	}

	closed := 0
	for _, id := range h.sweeper.SweepIdleSessions(ctx, active) {
		if h.hub.CloseSession(id) {
			closed++
		}
	}
	logCtx.WithFields(logrus.Fields{
		"active": len(active),
		"closed": closed,
	}).Info("Session sweep finished")
	return nil
}
