package services

import (
	"errors"
	"time"

	"github.com/sisgic/backend/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db         *gorm.DB
	projectSvc *ProjectService
}

func NewDashboardService(db *gorm.DB, projectSvc *ProjectService) *DashboardService {
	return &DashboardService{db: db, projectSvc: projectSvc}
}

type DashboardOverview struct {
	ProjectCount    int64            `json:"project_count"`
	StudentCount    int64            `json:"student_count"`
	MeetingCount    int64            `json:"meeting_count"`
	TaskCounts      map[string]int64 `json:"task_counts"`
	RecentProjects  []models.Project `json:"recent_projects"`
	UpcomingMeeting *models.Meeting  `json:"upcoming_meeting,omitempty"`
}

// Overview assembles the landing-page summary for a user: counts, the five
// newest projects, and the next scheduled meeting.
func (s *DashboardService) Overview(userID uint, role string) (*DashboardOverview, error) {
	projectIDs, err := s.projectSvc.VisibleProjectIDs(userID, role)
	if err != nil {
		return nil, err
	}

	overview := &DashboardOverview{
		ProjectCount:   int64(len(projectIDs)),
		TaskCounts:     map[string]int64{},
		RecentProjects: []models.Project{},
	}

	if role == models.RoleAdvisor {
		var studentCount int64
		if err := s.db.Model(&models.Project{}).
			Where("advisor_id = ? AND student_id IS NOT NULL", userID).
			Distinct("student_id").
			Count(&studentCount).Error; err != nil {
			return nil, err
		}
		overview.StudentCount = studentCount
	}

	if len(projectIDs) == 0 {
		return overview, nil
	}

	if err := s.db.Model(&models.Meeting{}).
		Where("project_id IN ?", projectIDs).
		Count(&overview.MeetingCount).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err = s.db.Model(&models.Task{}).
		Joins("JOIN stages ON stages.id = tasks.stage_id").
		Where("stages.project_id IN ?", projectIDs).
		Select("tasks.status AS status, COUNT(*) AS count").
		Group("tasks.status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		overview.TaskCounts[c.Status] = c.Count
	}

	var recent []models.Project
	query := s.db.Where("id IN ?", projectIDs).Order("created_at DESC").Limit(5)
	if role == models.RoleAdvisor {
		query = query.Preload("Student")
	} else {
		query = query.Preload("Advisor")
	}
	if err := query.Find(&recent).Error; err != nil {
		return nil, err
	}
	overview.RecentProjects = recent

	var next models.Meeting
	err = s.db.Where("project_id IN ? AND scheduled_at >= ?", projectIDs, time.Now()).
		Order("scheduled_at ASC").
		Preload("Project").
		First(&next).Error
	if err == nil {
		overview.UpcomingMeeting = &next
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return overview, nil
}
