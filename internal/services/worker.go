package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/danodev/daworks/internal/config"
	"github.com/danodev/daworks/pkg/logger"
	"github.com/hibiken/asynq"
)

// Imports insert rows one by one, so a couple of concurrent jobs is
// plenty. More would just contend on the database.
const importWorkerConcurrency = 2

// Worker consumes import jobs from the asynq queue.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *ImportTask) error
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// NewWorker creates a worker bound to the imports queue. Returns nil
// when Redis is disabled, the caller skips starting it then.
func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: importWorkerConcurrency,
			Queues: map[string]int{
				importQueueName: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Errorf("[Worker] Task %s failed: %v", task.Type(), err)
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// SetProcessor sets the function to process import tasks
func (w *Worker) SetProcessor(processor func(context.Context, *ImportTask) error) {
	w.processor = processor
}

// Start begins processing tasks
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeImport, w.handleImportTask)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[Worker] Starting import worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Errorf("[Worker] Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[Worker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Infof("[Worker] Shutdown complete")
}

// handleImportTask decodes one queued job and hands it to the
// registered processor. Returning an error lets asynq retry.
func (w *Worker) handleImportTask(ctx context.Context, t *asynq.Task) error {
	var task ImportTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		logger.Errorf("[Worker] Undecodable import payload: %v", err)
		return err
	}

	logger.Infof("[Worker] Processing import: job_id=%d, project_id=%d, file=%s",
		task.JobID, task.ProjectID, task.FilePath)

	if w.processor == nil {
		return errors.New("import worker has no processor registered")
	}

	return w.processor(ctx, &task)
}

// Global worker instance
var (
	globalWorker *Worker
	workerOnce   sync.Once
)

// InitWorker initializes the global worker
func InitWorker(cfg *config.RedisConfig) *Worker {
	workerOnce.Do(func() {
		globalWorker = NewWorker(cfg)
	})
	return globalWorker
}

// GetWorker returns the global worker instance
func GetWorker() *Worker {
	return globalWorker
}
