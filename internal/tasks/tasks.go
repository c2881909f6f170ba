package tasks

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeSessionSweep closes idle controller sessions.
	TypeSessionSweep = "session:sweep"
)

// NewSessionSweepTask returns the periodic sweep task. It carries no payload:
// the handler reads the live hub state when it runs. A missed sweep is not
// retried because the next tick does the same work.
func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TypeSessionSweep, nil, asynq.MaxRetry(0), asynq.Timeout(30*time.Second))
}
