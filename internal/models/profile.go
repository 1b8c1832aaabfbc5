package models

// UserProfile holds optional public details for a user.
type UserProfile struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         *uint  `gorm:"uniqueIndex" json:"user_id,omitempty"`
	User           *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	Bio            string `gorm:"type:text" json:"bio"`
	ProfilePicture string `gorm:"size:255" json:"profile_picture,omitempty"`
}

func (p UserProfile) String() string {
	if p.User == nil {
		return ""
	}
	return p.User.Username
}
