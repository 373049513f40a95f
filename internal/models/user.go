package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User roles. A user is either an advisor who owns projects or a student
// assigned to at most one project each.
const (
	RoleAdvisor = "advisor"
	RoleStudent = "student"
)

// User represents an advisor or student account
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password, empty for LDAP users
	Email     string         `gorm:"size:255" json:"email"`
	FullName  string         `gorm:"size:200;not null" json:"full_name"`
	Role      string         `gorm:"size:50;default:student" json:"role"`    // advisor, student
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Initials returns the two-letter badge derived from the full name: first
// letter of each word, uppercased, truncated to 2 characters. Falls back to
// the username when the full name is blank.
func (u *User) Initials() string {
	name := strings.TrimSpace(u.FullName)
	if name == "" {
		name = u.Username
	}

	var letters []rune
	for _, word := range strings.Fields(name) {
		letters = append(letters, []rune(word)[0])
		if len(letters) == 2 {
			break
		}
	}
	return strings.ToUpper(string(letters))
}
