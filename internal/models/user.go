// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User status values. Deactivation is a status flip, never a row delete.
const (
	UserStatusActive      = "active"
	UserStatusDeactivated = "deactivated"
)

// User represents a registered account in the Inkwell application.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `gorm:"not null" json:"last_name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Status    string    `gorm:"not null;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Posts     []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// FullName returns the display name used in issued tokens and post bylines.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
