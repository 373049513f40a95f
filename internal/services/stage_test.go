package services

import (
	"strings"
	"testing"

	"github.com/sisgic/backend/internal/models"
)

func TestStageListForProject_OrderedByPosition(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	svc := NewStageService(db, store)

	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	project := createProject(t, db, "TCC Analysis", advisor.ID, nil)

	createStage(t, db, project.ID, "Defense", 2)
	createStage(t, db, project.ID, "Research", 0)
	createStage(t, db, project.ID, "Writing", 1)

	stages, err := svc.ListForProject(project.ID)
	if err != nil {
		t.Fatalf("ListForProject failed: %v", err)
	}

	want := []string{"Research", "Writing", "Defense"}
	if len(stages) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(stages))
	}
	for i, s := range stages {
		if s.Title != want[i] {
			t.Errorf("stage %d = %q, want %q", i, s.Title, want[i])
		}
	}
}

func TestStageListForProject_TiesBreakByID(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	svc := NewStageService(db, store)

	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	project := createProject(t, db, "TCC Analysis", advisor.ID, nil)

	first := createStage(t, db, project.ID, "A", 1)
	second := createStage(t, db, project.ID, "B", 1)

	stages, err := svc.ListForProject(project.ID)
	if err != nil {
		t.Fatalf("ListForProject failed: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if stages[0].ID != first.ID || stages[1].ID != second.ID {
		t.Error("equal positions should order by insertion id")
	}
}

func TestStageListForProject_NestsTasksAndAttachments(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	svc := NewStageService(db, store)

	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	project := createProject(t, db, "TCC Analysis", advisor.ID, nil)
	stage := createStage(t, db, project.ID, "Writing", 0)
	task := createTask(t, db, stage.ID, "Draft chapter 1")

	attSvc := NewAttachmentService(db, store)
	if _, err := attSvc.Upload(task.ID, advisor.ID, models.RoleAdvisor, "draft.pdf", 4, "application/pdf", strings.NewReader("data")); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	stages, err := svc.ListForProject(project.ID)
	if err != nil {
		t.Fatalf("ListForProject failed: %v", err)
	}
	if len(stages) != 1 || len(stages[0].Tasks) != 1 {
		t.Fatal("expected one stage with one task")
	}

	atts := stages[0].Tasks[0].Attachments
	if len(atts) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(atts))
	}
	if atts[0].PublicURL == "" {
		t.Error("nested attachments should carry public URLs")
	}
	if !strings.Contains(atts[0].PublicURL, "/files/") {
		t.Errorf("public URL should point at the files route, got %q", atts[0].PublicURL)
	}
}

func TestStageCreate_AppendsAfterLastPosition(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	svc := NewStageService(db, store)

	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	project := createProject(t, db, "TCC Analysis", advisor.ID, nil)

	createStage(t, db, project.ID, "Research", 3)

	stage, err := svc.Create(project.ID, advisor.ID, &CreateStageRequest{Title: "Writing"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if stage.Position != 4 {
		t.Errorf("new stage position = %d, want 4", stage.Position)
	}
}

func TestStageCreate_BlankTitle(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	svc := NewStageService(db, store)

	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	project := createProject(t, db, "TCC Analysis", advisor.ID, nil)

	if _, err := svc.Create(project.ID, advisor.ID, &CreateStageRequest{Title: "  "}); err == nil {
		t.Error("blank stage title should be rejected")
	}
}

func TestStageDelete_CascadesTasksAndAttachments(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	svc := NewStageService(db, store)

	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	project := createProject(t, db, "TCC Analysis", advisor.ID, nil)
	stage := createStage(t, db, project.ID, "Writing", 0)
	task := createTask(t, db, stage.ID, "Draft chapter 1")

	attSvc := NewAttachmentService(db, store)
	att, err := attSvc.Upload(task.ID, advisor.ID, models.RoleAdvisor, "draft.pdf", 4, "application/pdf", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if err := svc.Delete(stage.ID, advisor.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var taskCount, attCount int64
	db.Model(&models.Task{}).Where("stage_id = ?", stage.ID).Count(&taskCount)
	db.Model(&models.Attachment{}).Where("task_id = ?", task.ID).Count(&attCount)
	if taskCount != 0 || attCount != 0 {
		t.Errorf("cascade left %d tasks and %d attachments", taskCount, attCount)
	}

	exists, _ := store.Exists(att.StoragePath)
	if exists {
		t.Error("stored object should be removed after the cascade")
	}
}
