package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sisgic/backend/internal/models"
	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskService struct {
	db    *gorm.DB
	store ObjectStore
}

func NewTaskService(db *gorm.DB, store ObjectStore) *TaskService {
	return &TaskService{db: db, store: store}
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Create adds a task to a stage. A title that is blank after trimming is
// rejected before any write happens.
func (s *TaskService) Create(stageID, advisorID uint, req *CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errors.New("task title is required")
	}

	if err := s.checkStageOwner(stageID, advisorID); err != nil {
		return nil, err
	}

	task := models.Task{
		Title:       title,
		Description: req.Description,
		Status:      models.StatusNotStarted,
		StageID:     stageID,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Update(id, advisorID uint, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.visibleTask(id, advisorID, models.RoleAdvisor)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errors.New("task title is required")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return task, nil
}

// UpdateStatus moves a task to any of the known statuses. There is no
// ordering constraint between statuses; a completed task can go back to not
// started. Both the advisor and the assigned student may move a task, scoped
// to their own projects.
func (s *TaskService) UpdateStatus(id, userID uint, role, status string) (*models.Task, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	task, err := s.visibleTask(id, userID, role)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(task).Update("status", status).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task with its attachments; objects are removed after the
// rows commit.
func (s *TaskService) Delete(id, advisorID uint) error {
	task, err := s.visibleTask(id, advisorID, models.RoleAdvisor)
	if err != nil {
		return err
	}

	var attachments []models.Attachment
	if err := s.db.Where("task_id = ?", task.ID).Find(&attachments).Error; err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return err
	}

	for _, att := range attachments {
		if err := s.store.Remove(att.StoragePath); err != nil {
			LogWarning("tasks", "delete", "orphaned object "+att.StoragePath+": "+err.Error(), &advisorID, "", "", nil)
		}
	}
	return nil
}

// ProjectIDForTask resolves the project a task belongs to, for event routing.
func (s *TaskService) ProjectIDForTask(id uint) (uint, error) {
	var projectID uint
	err := s.db.Model(&models.Task{}).
		Joins("JOIN stages ON stages.id = tasks.stage_id").
		Where("tasks.id = ?", id).
		Select("stages.project_id").
		Scan(&projectID).Error
	return projectID, err
}

// visibleTask resolves a task scoped to the caller's project membership:
// advisors reach tasks of projects they own, students tasks of the projects
// they are assigned to.
func (s *TaskService) visibleTask(id, userID uint, role string) (*models.Task, error) {
	query := s.db.Joins("JOIN stages ON stages.id = tasks.stage_id").
		Joins("JOIN projects ON projects.id = stages.project_id")

	switch role {
	case models.RoleAdvisor:
		query = query.Where("tasks.id = ? AND projects.advisor_id = ? AND projects.deleted_at IS NULL", id, userID)
	case models.RoleStudent:
		query = query.Where("tasks.id = ? AND projects.student_id = ? AND projects.deleted_at IS NULL", id, userID)
	default:
		return nil, fmt.Errorf("unknown role: %s", role)
	}

	var task models.Task
	if err := query.First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) checkStageOwner(stageID, advisorID uint) error {
	var count int64
	err := s.db.Model(&models.Stage{}).
		Joins("JOIN projects ON projects.id = stages.project_id").
		Where("stages.id = ? AND projects.advisor_id = ? AND projects.deleted_at IS NULL", stageID, advisorID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrStageNotFound
	}
	return nil
}
