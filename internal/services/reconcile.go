package services

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sisgic/backend/internal/models"
	"github.com/sisgic/backend/pkg/logger"
	"gorm.io/gorm"
)

// ReconcileService keeps attachment rows and stored objects in agreement.
// Deletion paths remove objects after their rows commit, so a crash or a
// storage error can leave an orphan on either side; the nightly sweep pairs
// them back up.
type ReconcileService struct {
	db            *gorm.DB
	store         ObjectStore
	logSvc        *SystemLogService
	cronScheduler *cron.Cron
}

func NewReconcileService(db *gorm.DB, store ObjectStore, logSvc *SystemLogService) *ReconcileService {
	return &ReconcileService{db: db, store: store, logSvc: logSvc}
}

// StartScheduler runs the sweep and the system log cleanup nightly.
func (s *ReconcileService) StartScheduler() {
	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc("30 3 * * *", func() {
		if err := s.Sweep(); err != nil {
			logger.Error().Err(err).Msg("Storage reconciliation sweep failed")
		}
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to schedule reconciliation sweep")
	}

	if _, err := s.cronScheduler.AddFunc("0 4 * * *", func() {
		s.logSvc.RunCleanup()
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to schedule log cleanup")
	}

	s.cronScheduler.Start()
	logger.Info().Msg("Maintenance scheduler started")
}

func (s *ReconcileService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// Sweep removes stored objects that no attachment row references and reports
// rows whose object is missing. Rows are never deleted here: a missing object
// is surfaced for an operator because silently dropping metadata would hide
// data loss.
func (s *ReconcileService) Sweep() error {
	keys, err := s.store.List()
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}

	var rows []models.Attachment
	if err := s.db.Select("id", "storage_path").Find(&rows).Error; err != nil {
		return fmt.Errorf("list attachment rows: %w", err)
	}

	referenced := make(map[string]bool, len(rows))
	for _, row := range rows {
		referenced[row.StoragePath] = true
	}

	stored := make(map[string]bool, len(keys))
	removed := 0
	for _, key := range keys {
		stored[key] = true
		if referenced[key] {
			continue
		}
		if err := s.store.Remove(key); err != nil {
			logger.Warn().Str("key", key).Err(err).Msg("Failed to remove orphaned object")
			continue
		}
		removed++
	}

	missing := 0
	for _, row := range rows {
		if !stored[row.StoragePath] {
			missing++
			LogWarning("attachments", "reconcile",
				fmt.Sprintf("attachment %d references missing object %s", row.ID, row.StoragePath),
				nil, "", "", nil)
		}
	}

	logger.Info().
		Int("objects", len(keys)).
		Int("rows", len(rows)).
		Int("removed_orphans", removed).
		Int("missing_objects", missing).
		Msg("Storage reconciliation sweep completed")
	return nil
}
