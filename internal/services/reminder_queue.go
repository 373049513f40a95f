package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sisgic/backend/internal/config"
	"github.com/sisgic/backend/pkg/logger"
)

const (
	TaskTypeReminder = "meeting:reminder"
)

// ReminderTask carries a pending meeting reminder through the queue.
type ReminderTask struct {
	MeetingID   uint      `json:"meeting_id"`
	ProjectID   uint      `json:"project_id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// ReminderQueue dispatches reminder tasks, asynchronously over Redis when
// available or inline otherwise.
type ReminderQueue interface {
	Enqueue(task *ReminderTask) error
	IsAsync() bool
	Close() error
}

// NewReminderQueue builds the queue from config, falling back to the sync
// queue when Redis is disabled or unreachable.
func NewReminderQueue(cfg *config.Config) ReminderQueue {
	if cfg.Redis.Enabled {
		queue, err := NewAsyncReminderQueue(&cfg.Redis)
		if err != nil {
			logger.Infof("[ReminderQueue] Redis unavailable, falling back to sync mode: %v", err)
			return NewSyncReminderQueue()
		}
		logger.Infof("[ReminderQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
		return queue
	}
	logger.Infof("[ReminderQueue] Sync queue initialized (Redis disabled)")
	return NewSyncReminderQueue()
}

// AsyncReminderQueue implements ReminderQueue over asynq.
type AsyncReminderQueue struct {
	client *asynq.Client
}

func NewAsyncReminderQueue(cfg *config.RedisConfig) (*AsyncReminderQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncReminderQueue{client: client}, nil
}

func (q *AsyncReminderQueue) Enqueue(task *ReminderTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeReminder, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[ReminderQueue] Task enqueued: id=%s, meeting=%d", info.ID, task.MeetingID)
	return nil
}

func (q *AsyncReminderQueue) IsAsync() bool {
	return true
}

func (q *AsyncReminderQueue) Close() error {
	return q.client.Close()
}

// SyncReminderQueue processes reminders inline, for deployments without
// Redis.
type SyncReminderQueue struct {
	processor func(context.Context, *ReminderTask) error
}

func NewSyncReminderQueue() *SyncReminderQueue {
	return &SyncReminderQueue{}
}

// SetProcessor sets the function that handles reminders.
func (q *SyncReminderQueue) SetProcessor(processor func(context.Context, *ReminderTask) error) {
	q.processor = processor
}

func (q *SyncReminderQueue) Enqueue(task *ReminderTask) error {
	if q.processor == nil {
		logger.Infof("[ReminderQueue] Warning: no processor set, task will be dropped")
		return nil
	}

	// Run off the scheduler goroutine so a slow SMTP server never stalls it
	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			logger.Errorf("[ReminderQueue] Task processing failed: %v", err)
			LogError("meetings", "reminder",
				fmt.Sprintf("reminder for meeting %d failed: %v", task.MeetingID, err),
				nil, "", "", nil)
		}
	}()

	return nil
}

func (q *SyncReminderQueue) IsAsync() bool {
	return false
}

func (q *SyncReminderQueue) Close() error {
	return nil
}
