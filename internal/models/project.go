package models

import (
	"time"

	"gorm.io/gorm"
)

// Project represents an advising project owned by one advisor and assigned
// to at most one student
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:300;not null" json:"title"`
	Type        string         `gorm:"size:100" json:"type"` // e.g. TCC, scientific initiation, masters
	Description string         `gorm:"type:text" json:"description"`
	StartDate   string         `gorm:"size:10" json:"start_date"` // YYYY-MM-DD
	EndDate     string         `gorm:"size:10" json:"end_date"`   // YYYY-MM-DD
	AdvisorID   uint           `gorm:"index;not null" json:"advisor_id"`
	Advisor     *User          `gorm:"foreignKey:AdvisorID" json:"advisor,omitempty"`
	StudentID   *uint          `gorm:"index" json:"student_id"`
	Student     *User          `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }

// Stage is an ordered phase within a project. Stages render in ascending
// Position order; ties break by id.
type Stage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	ProjectID   uint      `gorm:"index;not null" json:"project_id"`
	Tasks       []Task    `gorm:"foreignKey:StageID" json:"tasks,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Stage) TableName() string { return "stages" }

// Meeting is a scheduled advising event tied to a project
type Meeting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Agenda      string    `gorm:"type:text" json:"agenda"`
	Link        string    `gorm:"size:500" json:"link"`
	ScheduledAt time.Time `gorm:"index;not null" json:"scheduled_at"`
	// ReminderSentAt marks that the pre-meeting reminder email went out, so
	// the scheduler never sends it twice.
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
	ProjectID      uint       `gorm:"index;not null" json:"project_id"`
	Project        *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatedBy      uint       `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Meeting) TableName() string { return "meetings" }
