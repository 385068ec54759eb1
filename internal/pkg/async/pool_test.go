package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExecute(t *testing.T) {
	pool := NewPool(2)
	boom := errors.New("boom")

	results := pool.Execute(context.Background(), []Task{
		{Name: "one", Execute: func(context.Context) (any, error) { return 1, nil }},
		{Name: "two", Execute: func(context.Context) (any, error) { return "two", nil }},
		{Name: "fail", Execute: func(context.Context) (any, error) { return nil, boom }},
	})

	require.Len(t, results, 3)
	assert.Equal(t, 1, results["one"].Data)
	assert.Equal(t, "two", results["two"].Data)
	assert.ErrorIs(t, results["fail"].Err, boom)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	pool := NewPool(2)

	var running, peak atomic.Int32
	task := func(context.Context) (any, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil, nil
	}

	tasks := make([]Task, 6)
	for i := range tasks {
		tasks[i] = Task{Name: string(rune('a' + i)), Execute: task}
	}

	results := pool.Execute(context.Background(), tasks)
	assert.Len(t, results, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPoolIsReusable(t *testing.T) {
	pool := NewPool(3)
	task := []Task{{Name: "x", Execute: func(context.Context) (any, error) { return true, nil }}}

	for i := 0; i < 3; i++ {
		results := pool.Execute(context.Background(), task)
		assert.Equal(t, true, results["x"].Data)
	}
}

func TestPoolCancelledContext(t *testing.T) {
	pool := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Bool
	results := pool.Execute(ctx, []Task{
		{Name: "skipped", Execute: func(context.Context) (any, error) {
			called.Store(true)
			return nil, nil
		}},
	})

	assert.False(t, called.Load())
	assert.ErrorIs(t, results["skipped"].Err, context.Canceled)
}

func TestPoolNoTasks(t *testing.T) {
	assert.Empty(t, NewPool(0).Execute(context.Background(), nil))
}
