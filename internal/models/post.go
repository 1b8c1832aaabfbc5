package models

import "time"

// PostStatus is the visibility state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is one of the two known statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Label is the human readable status name.
func (s PostStatus) Label() string {
	switch s {
	case PostStatusPublished:
		return "Published"
	default:
		return "Draft"
	}
}

// Post is a blog entry written by a single author.
type Post struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	ShortDescription string     `gorm:"size:500;not null" json:"short_description"`
	Image            string     `gorm:"size:255;not null" json:"image"`
	FullDescription  string     `gorm:"type:text;not null" json:"full_description"`
	AuthorID         uint       `gorm:"not null;index" json:"author_id"`
	Author           User       `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Status           PostStatus `gorm:"size:10;not null;default:draft" json:"status"`
	PubDate          time.Time  `gorm:"<-:create;autoCreateTime;index" json:"pub_date"`
}

func (p Post) String() string {
	return p.Title
}

// IsPublished reports whether the post is publicly published.
func (p Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
