package models

import "time"

// Task statuses. Transitions are unrestricted: any status may be set from
// any other via the status selector.
const (
	StatusNotStarted = "Not started"
	StatusInProgress = "In progress"
	StatusCompleted  = "Completed"
)

// Task is a unit of work within a stage, carrying a tri-state status
type Task struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:300;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      string       `gorm:"size:50;default:Not started" json:"status"`
	StageID     uint         `gorm:"index;not null" json:"stage_id"`
	Attachments []Attachment `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// Badge is the icon/color pair a task status renders with
type Badge struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var statusBadges = map[string]Badge{
	StatusNotStarted: {Icon: "pause-circle", Color: "gray"},
	StatusInProgress: {Icon: "person-digging", Color: "blue"},
	StatusCompleted:  {Icon: "check-circle", Color: "green"},
}

// StatusBadge maps a task status to its badge. Unrecognized or missing
// statuses fall back to the "Not started" pair.
func StatusBadge(status string) Badge {
	if b, ok := statusBadges[status]; ok {
		return b
	}
	return statusBadges[StatusNotStarted]
}

// ValidStatus reports whether status is one of the three task states.
func ValidStatus(status string) bool {
	_, ok := statusBadges[status]
	return ok
}
