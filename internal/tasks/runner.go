package tasks

import (
	"context"
	"time"

	"github.com/dework-labs/marketsync/internal/logger"
)

// Task is a unit of periodic work. Run performs one invocation and
// returns how long to sleep before the next one; a non-positive value
// falls back to Interval.
type Task interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) (time.Duration, error)
}

// Run executes the task in a loop until ctx is cancelled. Errors are
// logged and the loop continues on the task's normal cadence, so a
// transient failure never stops the task permanently.
func Run(ctx context.Context, task Task, log *logger.Logger) error {
	log = log.WithComponent(task.Name())
	log.Infof("starting, interval %s", task.Interval())

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping")
			return ctx.Err()
		case <-timer.C:
		}

		next, err := task.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("stopping")
				return ctx.Err()
			}
			log.Errorf("run failed: %v", err)
		}
		if next <= 0 {
			next = task.Interval()
		}

		timer.Reset(next)
	}
}
