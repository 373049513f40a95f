package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sisgic/backend/internal/middleware"
	"github.com/sisgic/backend/internal/services"
	"github.com/sisgic/backend/pkg/response"
	"gorm.io/gorm"
)

type StudentHandler struct {
	studentService *services.StudentService
}

func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{
		studentService: services.NewStudentService(db),
	}
}

// List returns the advisor's roster: distinct students across their
// projects, with the linking projects nested
// GET /api/students
func (h *StudentHandler) List(c *gin.Context) {
	advisorID := middleware.GetUserID(c)

	students, err := h.studentService.ListForAdvisor(advisorID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, students)
}

// ListAll returns every active student, for the project assignment picker
// GET /api/users/students
func (h *StudentHandler) ListAll(c *gin.Context) {
	students, err := h.studentService.ListAll()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, students)
}
