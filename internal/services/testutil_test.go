package services

import (
	"path/filepath"
	"testing"

	"github.com/sisgic/backend/internal/config"
	"github.com/sisgic/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Stage{},
		&models.Task{},
		&models.Attachment{},
		&models.Meeting{},
		&models.RefreshToken{},
		&models.SystemConfig{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// newTestStore returns a disk store rooted in a temp dir.
func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	return NewDiskStore(&config.StorageConfig{
		Root:   t.TempDir(),
		Bucket: "task-attachments",
	}, "http://localhost:8080")
}

func createUser(t *testing.T, db *gorm.DB, username, fullName, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		FullName: fullName,
		Role:     role,
		AuthType: "local",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createProject(t *testing.T, db *gorm.DB, title string, advisorID uint, studentID *uint) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:     title,
		AdvisorID: advisorID,
		StudentID: studentID,
		CreatedBy: advisorID,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("create project %s: %v", title, err)
	}
	return project
}

func createStage(t *testing.T, db *gorm.DB, projectID uint, title string, position int) *models.Stage {
	t.Helper()
	stage := &models.Stage{
		Title:     title,
		Position:  position,
		ProjectID: projectID,
	}
	if err := db.Create(stage).Error; err != nil {
		t.Fatalf("create stage %s: %v", title, err)
	}
	return stage
}

func createTask(t *testing.T, db *gorm.DB, stageID uint, title string) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:   title,
		Status:  models.StatusNotStarted,
		StageID: stageID,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}
