package services

import (
	"errors"
	"testing"

	"github.com/sisgic/backend/internal/models"
	"gorm.io/gorm"
)

func setupTaskFixture(t *testing.T) (*gorm.DB, *TaskService, *models.User, *models.Stage) {
	t.Helper()
	db := newTestDB(t)
	svc := NewTaskService(db, newTestStore(t))
	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	project := createProject(t, db, "TCC Analysis", advisor.ID, nil)
	stage := createStage(t, db, project.ID, "Writing", 0)
	return db, svc, advisor, stage
}

func TestTaskCreate_TrimsTitle(t *testing.T) {
	_, svc, advisor, stage := setupTaskFixture(t)

	task, err := svc.Create(stage.ID, advisor.ID, &CreateTaskRequest{Title: "  Draft chapter 1  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.Title != "Draft chapter 1" {
		t.Errorf("title = %q, want trimmed", task.Title)
	}
	if task.Status != models.StatusNotStarted {
		t.Errorf("new task status = %q, want %q", task.Status, models.StatusNotStarted)
	}
}

func TestTaskCreate_RejectsBlankTitle(t *testing.T) {
	db, svc, advisor, stage := setupTaskFixture(t)

	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Create(stage.ID, advisor.ID, &CreateTaskRequest{Title: title}); err == nil {
			t.Errorf("title %q should be rejected", title)
		}
	}

	// A rejected create must not write anything
	var count int64
	db.Model(&models.Task{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no tasks after rejected creates, got %d", count)
	}
}

func TestTaskUpdateStatus_AnyTransition(t *testing.T) {
	_, svc, advisor, stage := setupTaskFixture(t)

	task, err := svc.Create(stage.ID, advisor.ID, &CreateTaskRequest{Title: "Draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Forward and backward moves are both allowed
	for _, status := range []string{
		models.StatusCompleted,
		models.StatusNotStarted,
		models.StatusInProgress,
	} {
		updated, err := svc.UpdateStatus(task.ID, advisor.ID, models.RoleAdvisor, status)
		if err != nil {
			t.Fatalf("UpdateStatus(%q) failed: %v", status, err)
		}
		if updated.Status != status {
			t.Errorf("status = %q, want %q", updated.Status, status)
		}
	}
}

func TestTaskUpdateStatus_RejectsUnknown(t *testing.T) {
	_, svc, advisor, stage := setupTaskFixture(t)

	task, err := svc.Create(stage.ID, advisor.ID, &CreateTaskRequest{Title: "Draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.UpdateStatus(task.ID, advisor.ID, models.RoleAdvisor, "Done"); err == nil {
		t.Error("unknown status should be rejected")
	}
}

func TestTaskUpdateStatus_StudentOnOwnProject(t *testing.T) {
	db, svc, advisor, stage := setupTaskFixture(t)

	student := createUser(t, db, "student1", "João Lima", models.RoleStudent)
	db.Model(&models.Project{}).Where("id = ?", stage.ProjectID).Update("student_id", student.ID)

	task, err := svc.Create(stage.ID, advisor.ID, &CreateTaskRequest{Title: "Draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.UpdateStatus(task.ID, student.ID, models.RoleStudent, models.StatusInProgress)
	if err != nil {
		t.Fatalf("assigned student should be able to move the task: %v", err)
	}
	if updated.Status != models.StatusInProgress {
		t.Errorf("status = %q, want %q", updated.Status, models.StatusInProgress)
	}

	// A student outside the project sees nothing
	other := createUser(t, db, "student2", "Maria Silva", models.RoleStudent)
	if _, err := svc.UpdateStatus(task.ID, other.ID, models.RoleStudent, models.StatusCompleted); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound for an unassigned student, got %v", err)
	}
}

func TestTaskCreate_UnknownStage(t *testing.T) {
	_, svc, advisor, _ := setupTaskFixture(t)

	_, err := svc.Create(9999, advisor.ID, &CreateTaskRequest{Title: "Draft"})
	if !errors.Is(err, ErrStageNotFound) {
		t.Errorf("expected ErrStageNotFound, got %v", err)
	}
}

func TestTaskUpdate_WrongAdvisor(t *testing.T) {
	db, svc, advisor, stage := setupTaskFixture(t)

	task, err := svc.Create(stage.ID, advisor.ID, &CreateTaskRequest{Title: "Draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	other := createUser(t, db, "advisor2", "Second Advisor", models.RoleAdvisor)
	title := "Renamed"
	if _, err := svc.Update(task.ID, other.ID, &UpdateTaskRequest{Title: &title}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound for another advisor, got %v", err)
	}
}
