package models

import "time"

// Attachment is a file tied to a task. The bytes live in the object
// store under StoragePath; this row is the metadata half and must not
// outlive the stored object, nor the object the row.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FileName    string    `gorm:"size:300;not null" json:"file_name"`
	StoragePath string    `gorm:"size:500;not null" json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	TaskID      uint      `gorm:"index;not null" json:"task_id"`
	CreatedAt   time.Time `json:"created_at"`

	// PublicURL is derived from StoragePath at render time, never persisted.
	PublicURL string `gorm:"-" json:"public_url,omitempty"`
}

func (Attachment) TableName() string { return "attachments" }
