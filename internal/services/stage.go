package services

import (
	"errors"
	"strings"

	"github.com/sisgic/backend/internal/models"
	"gorm.io/gorm"
)

var ErrStageNotFound = errors.New("stage not found")

type StageService struct {
	db    *gorm.DB
	store ObjectStore
}

func NewStageService(db *gorm.DB, store ObjectStore) *StageService {
	return &StageService{db: db, store: store}
}

type CreateStageRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Position    *int   `json:"position"`
}

type UpdateStageRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Position    *int    `json:"position"`
}

// ListForProject returns the stages of a project ordered by position, with
// tasks and their attachments nested. Ties on position break by id so the
// ordering is stable. The caller must have checked project visibility first.
func (s *StageService) ListForProject(projectID uint) ([]models.Stage, error) {
	var stages []models.Stage
	err := s.db.Where("project_id = ?", projectID).
		Order("position ASC, id ASC").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.id ASC")
		}).
		Preload("Tasks.Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("attachments.id ASC")
		}).
		Find(&stages).Error
	if err != nil {
		return nil, err
	}

	for i := range stages {
		for j := range stages[i].Tasks {
			for k := range stages[i].Tasks[j].Attachments {
				att := &stages[i].Tasks[j].Attachments[k]
				att.PublicURL = s.store.PublicURL(att.StoragePath)
			}
		}
	}
	return stages, nil
}

// Create appends a stage to a project. When no position is given the stage
// goes after the current last one.
func (s *StageService) Create(projectID, advisorID uint, req *CreateStageRequest) (*models.Stage, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errors.New("stage title is required")
	}

	if err := s.checkProjectOwner(projectID, advisorID); err != nil {
		return nil, err
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		var maxPos *int
		if err := s.db.Model(&models.Stage{}).Where("project_id = ?", projectID).
			Select("MAX(position)").Scan(&maxPos).Error; err != nil {
			return nil, err
		}
		if maxPos != nil {
			position = *maxPos + 1
		}
	}

	stage := models.Stage{
		Title:       title,
		Description: req.Description,
		Position:    position,
		ProjectID:   projectID,
	}
	if err := s.db.Create(&stage).Error; err != nil {
		return nil, err
	}
	return &stage, nil
}

func (s *StageService) Update(id, advisorID uint, req *UpdateStageRequest) (*models.Stage, error) {
	stage, err := s.ownedStage(id, advisorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errors.New("stage title is required")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}

	if len(updates) > 0 {
		if err := s.db.Model(stage).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return stage, nil
}

// Delete removes a stage with its tasks and attachments. Objects are removed
// after the rows commit, same as project deletion.
func (s *StageService) Delete(id, advisorID uint) error {
	stage, err := s.ownedStage(id, advisorID)
	if err != nil {
		return err
	}

	var taskIDs []uint
	if err := s.db.Model(&models.Task{}).Where("stage_id = ?", stage.ID).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}

	var attachments []models.Attachment
	if len(taskIDs) > 0 {
		if err := s.db.Where("task_id IN ?", taskIDs).Find(&attachments).Error; err != nil {
			return err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(stage).Error
	})
	if err != nil {
		return err
	}

	for _, att := range attachments {
		if err := s.store.Remove(att.StoragePath); err != nil {
			LogWarning("stages", "delete", "orphaned object "+att.StoragePath+": "+err.Error(), &advisorID, "", "", nil)
		}
	}
	return nil
}

// ProjectIDForStage resolves the project a stage belongs to, for event
// routing.
func (s *StageService) ProjectIDForStage(id uint) (uint, error) {
	var projectID uint
	err := s.db.Model(&models.Stage{}).
		Where("id = ?", id).
		Select("project_id").
		Scan(&projectID).Error
	return projectID, err
}

// ownedStage loads a stage and verifies the advisor owns its project.
func (s *StageService) ownedStage(id, advisorID uint) (*models.Stage, error) {
	var stage models.Stage
	err := s.db.Joins("JOIN projects ON projects.id = stages.project_id").
		Where("stages.id = ? AND projects.advisor_id = ? AND projects.deleted_at IS NULL", id, advisorID).
		First(&stage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return &stage, nil
}

func (s *StageService) checkProjectOwner(projectID, advisorID uint) error {
	var count int64
	if err := s.db.Model(&models.Project{}).
		Where("id = ? AND advisor_id = ?", projectID, advisorID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrProjectNotFound
	}
	return nil
}
