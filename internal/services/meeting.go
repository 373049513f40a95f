package services

import (
	"errors"
	"strings"
	"time"

	"github.com/sisgic/backend/internal/models"
	"gorm.io/gorm"
)

var ErrMeetingNotFound = errors.New("meeting not found")

type MeetingService struct {
	db         *gorm.DB
	projectSvc *ProjectService
}

func NewMeetingService(db *gorm.DB, projectSvc *ProjectService) *MeetingService {
	return &MeetingService{db: db, projectSvc: projectSvc}
}

type CreateMeetingRequest struct {
	Title       string    `json:"title" binding:"required"`
	Agenda      string    `json:"agenda"`
	Link        string    `json:"link"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	ProjectID   uint      `json:"project_id" binding:"required"`
}

type UpdateMeetingRequest struct {
	Title       *string    `json:"title"`
	Agenda      *string    `json:"agenda"`
	Link        *string    `json:"link"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// ListForUser returns the meetings of every project the user can see, soonest
// first, with the project and its counterpart joined for display: advisors
// see the student on each card, students the advisor. A user with no projects
// gets an empty list without touching the meetings table.
func (s *MeetingService) ListForUser(userID uint, role string) ([]models.Meeting, error) {
	projectIDs, err := s.projectSvc.VisibleProjectIDs(userID, role)
	if err != nil {
		return nil, err
	}
	if len(projectIDs) == 0 {
		return []models.Meeting{}, nil
	}

	query := s.db.Where("project_id IN ?", projectIDs).
		Order("scheduled_at ASC").
		Preload("Project")
	switch role {
	case models.RoleAdvisor:
		query = query.Preload("Project.Student")
	case models.RoleStudent:
		query = query.Preload("Project.Advisor")
	}

	var meetings []models.Meeting
	if err := query.Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func (s *MeetingService) GetByID(id uint) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := s.db.Preload("Project").First(&meeting, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

func (s *MeetingService) Create(req *CreateMeetingRequest, advisorID uint) (*models.Meeting, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errors.New("meeting title is required")
	}

	var count int64
	if err := s.db.Model(&models.Project{}).
		Where("id = ? AND advisor_id = ?", req.ProjectID, advisorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrProjectNotFound
	}

	meeting := models.Meeting{
		Title:       title,
		Agenda:      req.Agenda,
		Link:        req.Link,
		ScheduledAt: req.ScheduledAt,
		ProjectID:   req.ProjectID,
		CreatedBy:   advisorID,
	}
	if err := s.db.Create(&meeting).Error; err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (s *MeetingService) Update(id, advisorID uint, req *UpdateMeetingRequest) (*models.Meeting, error) {
	meeting, err := s.ownedMeeting(id, advisorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errors.New("meeting title is required")
		}
		updates["title"] = title
	}
	if req.Agenda != nil {
		updates["agenda"] = *req.Agenda
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	if req.ScheduledAt != nil {
		updates["scheduled_at"] = *req.ScheduledAt
		// Rescheduling re-arms the reminder
		updates["reminder_sent_at"] = nil
	}

	if len(updates) > 0 {
		if err := s.db.Model(meeting).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return meeting, nil
}

func (s *MeetingService) Delete(id, advisorID uint) error {
	meeting, err := s.ownedMeeting(id, advisorID)
	if err != nil {
		return err
	}
	return s.db.Delete(meeting).Error
}

func (s *MeetingService) ownedMeeting(id, advisorID uint) (*models.Meeting, error) {
	var meeting models.Meeting
	err := s.db.Joins("JOIN projects ON projects.id = meetings.project_id").
		Where("meetings.id = ? AND projects.advisor_id = ? AND projects.deleted_at IS NULL", id, advisorID).
		First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}
