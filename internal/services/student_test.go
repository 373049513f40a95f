package services

import (
	"testing"

	"github.com/sisgic/backend/internal/models"
)

func TestStudentListForAdvisor_DistinctWithProjects(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)

	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	s1 := createUser(t, db, "student1", "João Lima", models.RoleStudent)
	s2 := createUser(t, db, "student2", "Maria Silva", models.RoleStudent)

	// s1 appears on two projects but must be listed once
	createProject(t, db, "Project A", advisor.ID, &s1.ID)
	createProject(t, db, "Project B", advisor.ID, &s1.ID)
	createProject(t, db, "Project C", advisor.ID, &s2.ID)
	createProject(t, db, "Unassigned", advisor.ID, nil)

	students, err := svc.ListForAdvisor(advisor.ID)
	if err != nil {
		t.Fatalf("ListForAdvisor failed: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 distinct students, got %d", len(students))
	}

	byName := map[string]int{}
	for _, s := range students {
		byName[s.FullName] = len(s.Projects)
	}
	if byName["João Lima"] != 2 {
		t.Errorf("João Lima should carry 2 projects, got %d", byName["João Lima"])
	}
	if byName["Maria Silva"] != 1 {
		t.Errorf("Maria Silva should carry 1 project, got %d", byName["Maria Silva"])
	}
}

func TestStudentListForAdvisor_Empty(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)

	advisor := createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)

	students, err := svc.ListForAdvisor(advisor.ID)
	if err != nil {
		t.Fatalf("ListForAdvisor failed: %v", err)
	}
	if students == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(students) != 0 {
		t.Errorf("expected no students, got %d", len(students))
	}
}

func TestStudentListAll_OnlyActiveStudents(t *testing.T) {
	db := newTestDB(t)
	svc := NewStudentService(db)

	createUser(t, db, "advisor1", "Ana Souza", models.RoleAdvisor)
	createUser(t, db, "student1", "João Lima", models.RoleStudent)
	disabled := createUser(t, db, "student2", "Maria Silva", models.RoleStudent)
	db.Model(disabled).Update("is_active", false)

	students, err := svc.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("expected 1 active student, got %d", len(students))
	}
	if students[0].Role != models.RoleStudent {
		t.Errorf("listing should contain students only, got role %q", students[0].Role)
	}
}
