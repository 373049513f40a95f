package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sisgic/backend/internal/models"
	"github.com/sisgic/backend/pkg/logger"
	"gorm.io/gorm"
)

// ReminderService finds meetings entering the reminder window and pushes
// them through the queue to be emailed.
type ReminderService struct {
	db            *gorm.DB
	queue         ReminderQueue
	emailSvc      *EmailService
	configSvc     *SystemConfigService
	cronScheduler *cron.Cron
}

func NewReminderService(db *gorm.DB, queue ReminderQueue, emailSvc *EmailService) *ReminderService {
	return &ReminderService{
		db:        db,
		queue:     queue,
		emailSvc:  emailSvc,
		configSvc: NewSystemConfigService(db),
	}
}

// StartScheduler checks for due reminders every minute.
func (s *ReminderService) StartScheduler() {
	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc("* * * * *", func() {
		if err := s.EnqueueDue(); err != nil {
			logger.Error().Err(err).Msg("Reminder scan failed")
		}
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to schedule reminder scan")
	}

	s.cronScheduler.Start()
	logger.Info().Msg("Reminder scheduler started")
}

func (s *ReminderService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// EnqueueDue enqueues a reminder for every meeting inside the lead window
// that has not been reminded yet. Meetings already past are skipped.
func (s *ReminderService) EnqueueDue() error {
	lead := s.leadMinutes()
	now := time.Now()
	windowEnd := now.Add(time.Duration(lead) * time.Minute)

	var meetings []models.Meeting
	err := s.db.Where("reminder_sent_at IS NULL AND scheduled_at > ? AND scheduled_at <= ?", now, windowEnd).
		Find(&meetings).Error
	if err != nil {
		return err
	}

	for _, m := range meetings {
		task := &ReminderTask{
			MeetingID:   m.ID,
			ProjectID:   m.ProjectID,
			Title:       m.Title,
			ScheduledAt: m.ScheduledAt,
		}
		if err := s.queue.Enqueue(task); err != nil {
			logger.Warn().Uint("meeting_id", m.ID).Err(err).Msg("Failed to enqueue reminder")
			continue
		}
		// Mark immediately so the next scan does not enqueue it again
		if err := s.db.Model(&models.Meeting{}).Where("id = ?", m.ID).
			Update("reminder_sent_at", now).Error; err != nil {
			logger.Warn().Uint("meeting_id", m.ID).Err(err).Msg("Failed to mark reminder sent")
		}
	}
	return nil
}

// Process sends the reminder email for one queued task. Wired as the
// processor for both the sync queue and the async worker.
func (s *ReminderService) Process(ctx context.Context, task *ReminderTask) error {
	var meeting models.Meeting
	err := s.db.Preload("Project").
		Preload("Project.Advisor").
		Preload("Project.Student").
		First(&meeting, task.MeetingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Meeting was deleted after enqueueing; nothing to send
			return nil
		}
		return err
	}

	var recipients []string
	if meeting.Project != nil {
		if meeting.Project.Advisor != nil && meeting.Project.Advisor.Email != "" {
			recipients = append(recipients, meeting.Project.Advisor.Email)
		}
		if meeting.Project.Student != nil && meeting.Project.Student.Email != "" {
			recipients = append(recipients, meeting.Project.Student.Email)
		}
	}

	return s.emailSvc.SendMeetingReminder(&meeting, recipients)
}

func (s *ReminderService) leadMinutes() int {
	value := s.configSvc.GetWithDefault("meeting_reminder_lead_minutes", "60")
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return 60
	}
	return minutes
}
