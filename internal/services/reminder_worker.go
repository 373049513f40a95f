package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/sisgic/backend/internal/config"
	"github.com/sisgic/backend/pkg/logger"
)

// ReminderWorker consumes reminder tasks from the async queue.
type ReminderWorker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *ReminderTask) error
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// NewReminderWorker returns nil when Redis is disabled; the sync queue
// handles processing in that case.
func NewReminderWorker(cfg *config.RedisConfig) *ReminderWorker {
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
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Infof("[ReminderWorker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &ReminderWorker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// SetProcessor sets the function that handles reminders.
func (w *ReminderWorker) SetProcessor(processor func(context.Context, *ReminderTask) error) {
	w.processor = processor
}

func (w *ReminderWorker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeReminder, w.handleReminderTask)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[ReminderWorker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Infof("[ReminderWorker] Server error: %v", err)
		}
	}()

	return nil
}

func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[ReminderWorker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Infof("[ReminderWorker] Shutdown complete")
}

func (w *ReminderWorker) handleReminderTask(ctx context.Context, t *asynq.Task) error {
	var task ReminderTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		logger.Infof("[ReminderWorker] Failed to unmarshal task: %v", err)
		return err
	}

	if w.processor == nil {
		logger.Infof("[ReminderWorker] Warning: no processor set")
		return nil
	}

	return w.processor(ctx, &task)
}
