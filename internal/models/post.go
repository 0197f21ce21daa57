// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post status values. Deleting a post flips the flag; rows are never removed.
const (
	PostStatusPublished = "published"
	PostStatusDeleted   = "deleted"
)

// Post represents a blog post in the Inkwell application.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Category string `gorm:"index" json:"category"`
	Content  string `gorm:"type:text;not null" json:"content"`
	// ImageURL points into the external blob store; the API treats it as opaque.
	ImageURL  string    `json:"image_url,omitempty"`
	Status    string    `gorm:"not null;default:published;index" json:"status"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthorName returns the author's display name for transfer objects.
func (p *Post) AuthorName() string {
	return p.User.FullName()
}
