package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()

	err := queue.Enqueue(&ImportTask{JobID: 1, ProjectID: 1})
	if err == nil {
		t.Error("Enqueue before SetProcessor should be rejected")
	}
}

func TestSyncQueue_EnqueueRunsProcessor(t *testing.T) {
	queue := NewSyncQueue()

	var mu sync.Mutex
	var got *ImportTask
	var hasDeadline bool
	done := make(chan struct{})

	queue.SetProcessor(func(ctx context.Context, task *ImportTask) error {
		mu.Lock()
		got = task
		_, hasDeadline = ctx.Deadline()
		mu.Unlock()
		close(done)
		return nil
	})

	if err := queue.Enqueue(&ImportTask{JobID: 7, ProjectID: 3}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if got.JobID != 7 {
		t.Errorf("JobID = %d, expected 7", got.JobID)
	}
	if got.ProjectID != 3 {
		t.Errorf("ProjectID = %d, expected 3", got.ProjectID)
	}
	if !hasDeadline {
		t.Error("processor context should carry the import timeout")
	}
}

func TestSyncQueue_Basics(t *testing.T) {
	queue := NewSyncQueue()

	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
	if err := queue.Close(); err != nil {
		t.Errorf("SyncQueue.Close() should return nil, got %v", err)
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}
