package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/sisgic/backend/internal/models"
	"gorm.io/gorm"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

type AttachmentService struct {
	db    *gorm.DB
	store ObjectStore
}

func NewAttachmentService(db *gorm.DB, store ObjectStore) *AttachmentService {
	return &AttachmentService{db: db, store: store}
}

// Upload writes the file bytes to the object store and then inserts the
// metadata row. If the row insert fails the stored object is removed again so
// neither half outlives the other. Both the advisor and the assigned student
// may upload to tasks of their own projects.
func (s *AttachmentService) Upload(taskID, userID uint, role, fileName string, size int64, contentType string, reader io.Reader) (*models.Attachment, error) {
	if err := s.checkTaskVisible(taskID, userID, role); err != nil {
		return nil, err
	}

	key := ObjectKey(taskID, fileName)
	if err := s.store.Put(key, reader); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	attachment := models.Attachment{
		FileName:    fileName,
		StoragePath: key,
		Size:        size,
		ContentType: contentType,
		TaskID:      taskID,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		if rmErr := s.store.Remove(key); rmErr != nil {
			LogWarning("attachments", "create", "orphaned object "+key+": "+rmErr.Error(), &userID, "", "", nil)
		}
		return nil, err
	}

	attachment.PublicURL = s.store.PublicURL(key)
	return &attachment, nil
}

// Delete removes the stored object first and the metadata row second. When
// object removal fails the row stays, so the attachment remains listed and
// the delete can be retried.
func (s *AttachmentService) Delete(id, advisorID uint) error {
	attachment, err := s.ownedAttachment(id, advisorID)
	if err != nil {
		return err
	}

	if err := s.store.Remove(attachment.StoragePath); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}

	return s.db.Delete(attachment).Error
}

// ProjectIDForAttachment resolves the project an attachment belongs to.
func (s *AttachmentService) ProjectIDForAttachment(id uint) (uint, error) {
	var projectID uint
	err := s.db.Model(&models.Attachment{}).
		Joins("JOIN tasks ON tasks.id = attachments.task_id").
		Joins("JOIN stages ON stages.id = tasks.stage_id").
		Where("attachments.id = ?", id).
		Select("stages.project_id").
		Scan(&projectID).Error
	return projectID, err
}

func (s *AttachmentService) ownedAttachment(id, advisorID uint) (*models.Attachment, error) {
	var attachment models.Attachment
	err := s.db.Joins("JOIN tasks ON tasks.id = attachments.task_id").
		Joins("JOIN stages ON stages.id = tasks.stage_id").
		Joins("JOIN projects ON projects.id = stages.project_id").
		Where("attachments.id = ? AND projects.advisor_id = ? AND projects.deleted_at IS NULL", id, advisorID).
		First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

// checkTaskVisible verifies the task sits inside a project the caller
// belongs to, by advisor or student membership.
func (s *AttachmentService) checkTaskVisible(taskID, userID uint, role string) error {
	query := s.db.Model(&models.Task{}).
		Joins("JOIN stages ON stages.id = tasks.stage_id").
		Joins("JOIN projects ON projects.id = stages.project_id")

	switch role {
	case models.RoleAdvisor:
		query = query.Where("tasks.id = ? AND projects.advisor_id = ? AND projects.deleted_at IS NULL", taskID, userID)
	case models.RoleStudent:
		query = query.Where("tasks.id = ? AND projects.student_id = ? AND projects.deleted_at IS NULL", taskID, userID)
	default:
		return fmt.Errorf("unknown role: %s", role)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrTaskNotFound
	}
	return nil
}
