package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesTasks(t *testing.T) {
	var mu sync.Mutex
	seen := make([]string, 0)
	done := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, task Task) error {
		mu.Lock()
		seen = append(seen, task.ID)
		mu.Unlock()
		if len(seen) == 2 {
			close(done)
		}
		return nil
	}, Options{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit(Task{ID: "a"}))
	require.NoError(t, q.Submit(Task{ID: "b"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks not processed in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b"}, seen)
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, task Task) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, Options{Workers: 1, MaxRetries: 5, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit(Task{ID: "flaky"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never succeeded")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestQueueSubmitBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, task Task) error { return nil }, Options{})
	assert.Error(t, q.Submit(Task{ID: "early"}))
}
