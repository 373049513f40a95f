package services

import (
	"github.com/sisgic/backend/internal/models"
	"gorm.io/gorm"
)

type StudentService struct {
	db *gorm.DB
}

func NewStudentService(db *gorm.DB) *StudentService {
	return &StudentService{db: db}
}

// AdvisedStudent is a student as seen from an advisor's roster, with the
// projects linking them.
type AdvisedStudent struct {
	models.User
	Projects []models.Project `json:"projects"`
}

// ListForAdvisor returns the distinct students assigned to the advisor's
// projects, with those projects nested.
func (s *StudentService) ListForAdvisor(advisorID uint) ([]AdvisedStudent, error) {
	var projects []models.Project
	err := s.db.Where("advisor_id = ? AND student_id IS NOT NULL", advisorID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	byStudent := map[uint][]models.Project{}
	var order []uint
	for _, p := range projects {
		id := *p.StudentID
		if _, seen := byStudent[id]; !seen {
			order = append(order, id)
		}
		byStudent[id] = append(byStudent[id], p)
	}

	if len(order) == 0 {
		return []AdvisedStudent{}, nil
	}

	var users []models.User
	if err := s.db.Where("id IN ?", order).Find(&users).Error; err != nil {
		return nil, err
	}
	usersByID := map[uint]models.User{}
	for _, u := range users {
		usersByID[u.ID] = u
	}

	students := make([]AdvisedStudent, 0, len(order))
	for _, id := range order {
		user, ok := usersByID[id]
		if !ok {
			continue
		}
		students = append(students, AdvisedStudent{User: user, Projects: byStudent[id]})
	}
	return students, nil
}

// ListAll returns every active student account, for the project assignment
// picker.
func (s *StudentService) ListAll() ([]models.User, error) {
	var students []models.User
	err := s.db.Where("role = ? AND is_active = ?", models.RoleStudent, true).
		Order("full_name ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
