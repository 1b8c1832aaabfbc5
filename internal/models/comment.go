package models

import (
	"fmt"
	"time"
)

// AnonymousName is shown instead of the author for anonymous or orphaned comments.
const AnonymousName = "Anonymous"

// Comment is a reader's reply to a post. New comments stay hidden until approved.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"not null;index" json:"post_id"`
	Post        Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID    *uint     `gorm:"index" json:"author_id,omitempty"`
	Author      *User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"author,omitempty"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	IsApproved  bool      `gorm:"not null;default:false;index" json:"is_approved"`
	CreatedAt   time.Time `gorm:"<-:create" json:"created_at"`
}

// DisplayName is the name readers see next to the comment.
func (c Comment) DisplayName() string {
	if c.IsAnonymous || c.Author == nil {
		return AnonymousName
	}
	return c.Author.Username
}

func (c Comment) String() string {
	author := "None"
	if c.Author != nil {
		author = c.Author.Username
	}
	return fmt.Sprintf("Comment by %s on %s", author, c.Post.Title)
}
