package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-ioc/controller"
	"github.com/km-arc/go-ioc/queue"
)

func TestDispatch_RunsTaskWithPayload(t *testing.T) {
	w, err := queue.NewWorker(2, zap.NewNop())
	require.NoError(t, err)
	defer w.Release()

	got := make(chan any, 1)
	w.AddRoute("emails.send", func(ctx context.Context, in any) (any, error) {
		got <- in
		return nil, nil
	}, controller.Metadata{Summary: "Send a queued email"})

	require.NoError(t, w.Dispatch(context.Background(), "emails.send", "to: alice"))

	select {
	case payload := <-got:
		assert.Equal(t, "to: alice", payload)
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestDispatch_TaskOutlivesCallerContext(t *testing.T) {
	w, err := queue.NewWorker(1, zap.NewNop())
	require.NoError(t, err)
	defer w.Release()

	ctxErrs := make(chan error, 1)
	w.AddRoute("emails.send", func(ctx context.Context, in any) (any, error) {
		ctxErrs <- ctx.Err()
		return nil, nil
	}, controller.Metadata{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // request already finished when the task runs
	require.NoError(t, w.Dispatch(ctx, "emails.send", nil))

	select {
	case ctxErr := <-ctxErrs:
		assert.NoError(t, ctxErr, "the task context must not inherit the caller's cancellation")
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestDispatch_UnknownTaskFails(t *testing.T) {
	w, err := queue.NewWorker(1, zap.NewNop())
	require.NoError(t, err)
	defer w.Release()

	err = w.Dispatch(context.Background(), "nope", nil)
	assert.ErrorContains(t, err, "unknown task")
}

func TestDispatch_LogsEscapedErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	w, err := queue.NewWorker(1, zap.New(core))
	require.NoError(t, err)
	defer w.Release()

	done := make(chan struct{})
	w.AddRoute("reports.build", func(ctx context.Context, in any) (any, error) {
		defer close(done)
		return nil, errors.New("disk full")
	}, controller.Metadata{})

	require.NoError(t, w.Dispatch(context.Background(), "reports.build", nil))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}

	// The pool goroutine logs after the op returns; give it a beat.
	deadline := time.After(time.Second)
	for logs.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("error never logged")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	entry := logs.All()[0]
	assert.Equal(t, "task failed", entry.Message)
	assert.Equal(t, "reports.build", entry.ContextMap()["task"])
}

func TestTasks_ListsRegisteredNames(t *testing.T) {
	w, err := queue.NewWorker(1, nil)
	require.NoError(t, err)
	defer w.Release()

	w.AddRoute("a", func(ctx context.Context, in any) (any, error) { return nil, nil }, controller.Metadata{})
	w.AddRoute("b", func(ctx context.Context, in any) (any, error) { return nil, nil }, controller.Metadata{})

	assert.ElementsMatch(t, []string{"a", "b"}, w.Tasks())
}
