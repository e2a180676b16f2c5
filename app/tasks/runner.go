package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner drains a finite set of tasks through a bounded worker pool and
// returns when all of them are done. Feeds are independent, so one task per
// feed may run concurrently; each feed is handled by exactly one worker.
type Runner struct {
	workerCount int
	taskTimeout time.Duration
}

func NewRunner(workerCount int) *Runner {
	return &Runner{
		workerCount: workerCount,
		taskTimeout: 5 * time.Minute,
	}
}

func (r *Runner) Run(ctx context.Context, taskList []TaskInterface) {
	taskQueue := make(chan TaskInterface, len(taskList))
	for _, task := range taskList {
		taskQueue <- task
	}
	close(taskQueue)

	var wg sync.WaitGroup
	for i := 0; i < r.workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r.worker(ctx, id, taskQueue)
		}(i)
	}

	wg.Wait()
}

func (r *Runner) worker(ctx context.Context, id int, taskQueue <-chan TaskInterface) {
	for {
		select {
		case task, ok := <-taskQueue:
			if !ok {
				return
			}
			r.executeTask(ctx, id, task)

		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) executeTask(ctx context.Context, workerID int, task TaskInterface) {
	task.Start()

	for {
		taskCtx, cancel := context.WithTimeout(ctx, r.taskTimeout)
		err := task.Execute(taskCtx)
		cancel()

		if err == nil {
			return
		}

		if ctx.Err() != nil {
			slog.Debug("Run cancelled, abandoning task", "type", string(task.GetType()), "id", task.GetID())
			return
		}

		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "feed", task.GetFeedName(), "retry_count", task.GetRetryCount(), "error", err)

		if !task.CanRetry() {
			slog.Error("Task failed after maximum retries, feed skipped this run", "type", string(task.GetType()), "feed", task.GetFeedName(), "max_retries", task.GetMaxRetries(), "last_error", err)
			return
		}

		task.IncrementRetryCount()
		retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}

		slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed", task.GetFeedName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}
