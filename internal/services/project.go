package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sisgic/backend/internal/models"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectService struct {
	db    *gorm.DB
	store ObjectStore
}

func NewProjectService(db *gorm.DB, store ObjectStore) *ProjectService {
	return &ProjectService{db: db, store: store}
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Type        string `json:"type"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	StudentID   *uint  `json:"student_id"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	StudentID   *uint   `json:"student_id"`
}

// ListForUser returns the projects visible to a user, newest first. Advisors
// see the projects they own with the assigned student joined; students see
// the projects assigned to them with the advisor joined.
func (s *ProjectService) ListForUser(userID uint, role string) ([]models.Project, error) {
	var projects []models.Project
	query := s.db.Order("created_at DESC")

	switch role {
	case models.RoleAdvisor:
		query = query.Where("advisor_id = ?", userID).Preload("Student")
	case models.RoleStudent:
		query = query.Where("student_id = ?", userID).Preload("Advisor")
	default:
		return nil, fmt.Errorf("unknown role: %s", role)
	}

	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// GetByID fetches a single project scoped to the caller's visibility.
func (s *ProjectService) GetByID(id, userID uint, role string) (*models.Project, error) {
	var project models.Project
	query := s.db.Preload("Advisor").Preload("Student")

	switch role {
	case models.RoleAdvisor:
		query = query.Where("id = ? AND advisor_id = ?", id, userID)
	case models.RoleStudent:
		query = query.Where("id = ? AND student_id = ?", id, userID)
	default:
		return nil, fmt.Errorf("unknown role: %s", role)
	}

	if err := query.First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// VisibleProjectIDs returns the ids of every project the user can see. Used
// by the meeting listing to scope the schedule to the user's projects.
func (s *ProjectService) VisibleProjectIDs(userID uint, role string) ([]uint, error) {
	var ids []uint
	query := s.db.Model(&models.Project{})

	switch role {
	case models.RoleAdvisor:
		query = query.Where("advisor_id = ?", userID)
	case models.RoleStudent:
		query = query.Where("student_id = ?", userID)
	default:
		return nil, fmt.Errorf("unknown role: %s", role)
	}

	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *ProjectService) Create(req *CreateProjectRequest, advisorID uint) (*models.Project, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errors.New("project title is required")
	}

	if req.StudentID != nil {
		if err := s.validateStudent(*req.StudentID); err != nil {
			return nil, err
		}
	}

	project := models.Project{
		Title:       title,
		Type:        req.Type,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AdvisorID:   advisorID,
		StudentID:   req.StudentID,
		CreatedBy:   advisorID,
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Update(id, advisorID uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.ownedProject(id, advisorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errors.New("project title is required")
		}
		updates["title"] = title
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.StudentID != nil {
		if *req.StudentID != 0 {
			if err := s.validateStudent(*req.StudentID); err != nil {
				return nil, err
			}
			updates["student_id"] = *req.StudentID
		} else {
			updates["student_id"] = nil
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetByID(id, advisorID, models.RoleAdvisor)
}

// Delete removes a project and everything under it: meetings, stages, tasks,
// attachments, and the attachments' stored objects. Row deletion runs in one
// transaction; object removal happens after commit so a storage failure never
// leaves half-deleted rows (the reconciliation sweep picks up orphans).
func (s *ProjectService) Delete(id, advisorID uint) error {
	project, err := s.ownedProject(id, advisorID)
	if err != nil {
		return err
	}

	var stageIDs []uint
	if err := s.db.Model(&models.Stage{}).Where("project_id = ?", project.ID).Pluck("id", &stageIDs).Error; err != nil {
		return err
	}

	var taskIDs []uint
	if len(stageIDs) > 0 {
		if err := s.db.Model(&models.Task{}).Where("stage_id IN ?", stageIDs).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
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
		if len(stageIDs) > 0 {
			if err := tx.Where("id IN ?", stageIDs).Delete(&models.Stage{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Meeting{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		return err
	}

	for _, att := range attachments {
		if err := s.store.Remove(att.StoragePath); err != nil {
			LogWarning("projects", "delete", fmt.Sprintf("orphaned object %s: %v", att.StoragePath, err), &advisorID, "", "", nil)
		}
	}

	return nil
}

func (s *ProjectService) ownedProject(id, advisorID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Where("id = ? AND advisor_id = ?", id, advisorID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) validateStudent(studentID uint) error {
	var student models.User
	if err := s.db.Where("id = ? AND role = ?", studentID, models.RoleStudent).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("student not found")
		}
		return err
	}
	if !student.IsActive {
		return errors.New("student is disabled")
	}
	return nil
}
