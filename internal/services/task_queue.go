package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/danodev/daworks/internal/config"
	"github.com/danodev/daworks/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeImport = "marketing:import_expenses"

	// Imports run on their own queue so a batch of slow CSV jobs
	// cannot starve anything else we may enqueue later.
	importQueueName = "imports"

	importTaskTimeout = 15 * time.Minute
)

// ImportTask represents an expense CSV import job to be processed
type ImportTask struct {
	JobID     uint   `json:"job_id"`
	ProjectID uint   `json:"project_id"`
	UserID    uint   `json:"user_id"`
	FilePath  string `json:"file_path"`
}

// TaskQueue defines the interface for import job processing
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *ImportTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue picks the queue implementation. With Redis enabled and
// reachable imports go through asynq, otherwise they run in-process.
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		globalTaskQueue = buildTaskQueue(cfg)
	})
	return globalTaskQueue
}

func buildTaskQueue(cfg *config.Config) TaskQueue {
	if !cfg.Redis.Enabled {
		logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
		return NewSyncQueue()
	}

	queue, err := NewAsyncQueue(&cfg.Redis)
	if err != nil {
		logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
		return NewSyncQueue()
	}

	logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
	return queue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue hands import jobs to asynq workers over Redis.
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates the asynq client and verifies Redis is
// actually reachable before anyone enqueues.
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds an import task to the async queue
func (q *AsyncQueue) Enqueue(task *ImportTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	info, err := q.client.Enqueue(asynq.NewTask(TaskTypeImport, payload),
		asynq.Queue(importQueueName),
		asynq.MaxRetry(3),
		asynq.Timeout(importTaskTimeout),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Import job %d enqueued: id=%s, queue=%s", task.JobID, info.ID, info.Queue)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue runs imports in-process when Redis is not around. Jobs
// still run off the request goroutine so uploads return immediately.
type SyncQueue struct {
	processor func(context.Context, *ImportTask) error
}

// NewSyncQueue creates a new synchronous queue
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function to process tasks synchronously
func (q *SyncQueue) SetProcessor(processor func(context.Context, *ImportTask) error) {
	q.processor = processor
}

// Enqueue runs the task on a fresh goroutine. Enqueueing before a
// processor is registered is a startup ordering bug, so the job is
// rejected rather than silently dropped into a stuck pending state.
func (q *SyncQueue) Enqueue(task *ImportTask) error {
	if q.processor == nil {
		return errors.New("import queue has no processor registered")
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), importTaskTimeout)
		defer cancel()
		if err := q.processor(ctx, task); err != nil {
			logger.Errorf("[SyncQueue] Import job %d failed: %v", task.JobID, err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncQueue) Close() error {
	return nil
}
