package services

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sisgic/backend/internal/models"
	"gorm.io/gorm"
)

// failingStore rejects removals, standing in for an unreachable object store.
type failingStore struct {
	*DiskStore
	removeErr error
}

func (f *failingStore) Remove(paths ...string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.DiskStore.Remove(paths...)
}

func setupAttachmentFixture(t *testing.T) (*gorm.DB, *DiskStore, *models.User, *models.Task) {
	t.Helper()
	db := newTestDB(t)
	store := newTestStore(t)
	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	project := createProject(t, db, "TCC Analysis", advisor.ID, nil)
	stage := createStage(t, db, project.ID, "Writing", 0)
	task := createTask(t, db, stage.ID, "Draft chapter 1")
	return db, store, advisor, task
}

func TestAttachmentUpload_StoresObjectAndRow(t *testing.T) {
	db, store, advisor, task := setupAttachmentFixture(t)
	svc := NewAttachmentService(db, store)

	att, err := svc.Upload(task.ID, advisor.ID, models.RoleAdvisor, "notes.txt", 5, "text/plain", strings.NewReader("notes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	exists, _ := store.Exists(att.StoragePath)
	if !exists {
		t.Error("uploaded object should be stored")
	}

	var count int64
	db.Model(&models.Attachment{}).Where("task_id = ?", task.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 attachment row, got %d", count)
	}

	if att.PublicURL == "" {
		t.Error("uploaded attachment should carry a public URL")
	}
}

func TestAttachmentUpload_UnknownTask(t *testing.T) {
	db, store, advisor, _ := setupAttachmentFixture(t)
	svc := NewAttachmentService(db, store)

	_, err := svc.Upload(9999, advisor.ID, models.RoleAdvisor, "notes.txt", 5, "text/plain", strings.NewReader("notes"))
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	// Nothing should have been stored
	keys, _ := store.List()
	if len(keys) != 0 {
		t.Errorf("no object should be stored for a rejected upload, got %v", keys)
	}
}

func TestAttachmentUpload_StudentOnOwnProject(t *testing.T) {
	db, store, _, task := setupAttachmentFixture(t)
	svc := NewAttachmentService(db, store)

	student := createUser(t, db, "student1", "João Lima", models.RoleStudent)
	var stage models.Stage
	db.First(&stage, task.StageID)
	db.Model(&models.Project{}).Where("id = ?", stage.ProjectID).Update("student_id", student.ID)

	att, err := svc.Upload(task.ID, student.ID, models.RoleStudent, "notes.txt", 5, "text/plain", strings.NewReader("notes"))
	if err != nil {
		t.Fatalf("assigned student should be able to upload: %v", err)
	}
	exists, _ := store.Exists(att.StoragePath)
	if !exists {
		t.Error("uploaded object should be stored")
	}

	// A student outside the project sees nothing
	other := createUser(t, db, "student2", "Maria Silva", models.RoleStudent)
	_, err = svc.Upload(task.ID, other.ID, models.RoleStudent, "notes.txt", 5, "text/plain", strings.NewReader("notes"))
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound for an unassigned student, got %v", err)
	}
}

func TestAttachmentDelete_RemovesObjectThenRow(t *testing.T) {
	db, store, advisor, task := setupAttachmentFixture(t)
	svc := NewAttachmentService(db, store)

	att, err := svc.Upload(task.ID, advisor.ID, models.RoleAdvisor, "notes.txt", 5, "text/plain", strings.NewReader("notes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if err := svc.Delete(att.ID, advisor.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	exists, _ := store.Exists(att.StoragePath)
	if exists {
		t.Error("object should be removed")
	}

	var count int64
	db.Model(&models.Attachment{}).Where("id = ?", att.ID).Count(&count)
	if count != 0 {
		t.Error("row should be removed")
	}
}

func TestAttachmentDelete_KeepsRowWhenStorageFails(t *testing.T) {
	db, store, advisor, task := setupAttachmentFixture(t)

	uploadSvc := NewAttachmentService(db, store)
	att, err := uploadSvc.Upload(task.ID, advisor.ID, models.RoleAdvisor, "notes.txt", 5, "text/plain", strings.NewReader("notes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	broken := &failingStore{DiskStore: store, removeErr: io.ErrClosedPipe}
	svc := NewAttachmentService(db, broken)

	if err := svc.Delete(att.ID, advisor.ID); err == nil {
		t.Fatal("Delete should fail when the store fails")
	}

	// The row must survive a failed object removal so the attachment stays
	// listed and the delete can be retried
	var count int64
	db.Model(&models.Attachment{}).Where("id = ?", att.ID).Count(&count)
	if count != 1 {
		t.Error("row should remain after a failed object removal")
	}
}

func TestAttachmentDelete_WrongAdvisor(t *testing.T) {
	db, store, advisor, task := setupAttachmentFixture(t)
	svc := NewAttachmentService(db, store)

	att, err := svc.Upload(task.ID, advisor.ID, models.RoleAdvisor, "notes.txt", 5, "text/plain", strings.NewReader("notes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	other := createUser(t, db, "advisor2", "Second Advisor", models.RoleAdvisor)
	if err := svc.Delete(att.ID, other.ID); !errors.Is(err, ErrAttachmentNotFound) {
		t.Errorf("expected ErrAttachmentNotFound for another advisor, got %v", err)
	}
}
