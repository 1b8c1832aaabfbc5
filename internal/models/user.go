// Package models contains the persistent entities of the blog and the error types shared across layers.
package models

import "time"

// User is an account that can log in, author posts and comment.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Username   string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email      string     `gorm:"size:254" json:"email"`
	Password   string     `gorm:"size:128;not null" json:"-"`
	IsStaff    bool       `gorm:"not null;default:false" json:"is_staff"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	DateJoined time.Time  `gorm:"autoCreateTime" json:"date_joined"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

func (u User) String() string {
	return u.Username
}
