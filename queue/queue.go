// Package queue exposes controllers over a background worker pool. It is the
// asynchronous Registrar: operations attached through AddRoute become named
// tasks that Dispatch runs on pooled goroutines.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/controller"
	"github.com/km-arc/go-ioc/intercept"
)

// Worker runs registered operations on an ants goroutine pool.
type Worker struct {
	pool *ants.Pool
	log  *zap.Logger

	mu    sync.RWMutex
	tasks map[string]task
}

type task struct {
	op   intercept.Operation
	meta controller.Metadata
}

// NewWorker builds a Worker backed by a pool of size goroutines.
func NewWorker(size int, log *zap.Logger) (*Worker, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("queue: creating pool: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{pool: pool, log: log, tasks: make(map[string]task)}, nil
}

// AddRoute registers an operation as a dispatchable task. Method and Path in
// the metadata are HTTP concerns and are ignored here; Summary is logged.
func (w *Worker) AddRoute(name string, op intercept.Operation, meta controller.Metadata) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tasks[name] = task{op: op, meta: meta}
}

// Dispatch submits the named task to the pool with the given payload. The
// call returns once the task is queued; the operation itself runs on a pool
// goroutine. Errors that escape the operation's pipeline are logged, not
// returned — by the time a task runs there is nobody left to hand them to.
func (w *Worker) Dispatch(ctx context.Context, name string, payload any) error {
	w.mu.RLock()
	tk, ok := w.tasks[name]
	w.mu.RUnlock()
	if !ok {
		return fmt.Errorf("queue: unknown task [%s]", name)
	}

	// The task outlives the caller — an HTTP request context would be
	// cancelled before the pool goroutine runs. Keep the caller's values
	// (trace context, request id), drop its cancellation.
	ctx = context.WithoutCancel(ctx)

	job := uuid.NewString()
	err := w.pool.Submit(func() {
		if _, opErr := tk.op(ctx, payload); opErr != nil {
			w.log.Error("task failed",
				zap.String("task", name),
				zap.String("job_id", job),
				zap.Error(opErr),
			)
			return
		}
		w.log.Debug("task completed",
			zap.String("task", name),
			zap.String("job_id", job),
		)
	})
	if err != nil {
		return fmt.Errorf("queue: dispatching [%s]: %w", name, err)
	}
	return nil
}

// Tasks returns the registered task names.
func (w *Worker) Tasks() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.tasks))
	for name := range w.tasks {
		names = append(names, name)
	}
	return names
}

// Release shuts the pool down. Pending tasks are abandoned.
func (w *Worker) Release() {
	w.pool.Release()
}
