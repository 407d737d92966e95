package models

import (
	"fmt"
	"time"
)

const (
	DefaultBio    = "no bio.."
	DefaultAvatar = "avatar.png"
)

// Profile carries the display data of a user. Friends are stored as user ids in
// profile_friends and are always kept symmetric by the relationship service.
type Profile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User      User      `json:"user" gorm:"constraint:OnDelete:CASCADE"`
	FirstName string    `json:"first_name" gorm:"size:200"`
	LastName  string    `json:"last_name" gorm:"size:200"`
	Bio       string    `json:"bio" gorm:"type:text;default:'no bio..'"`
	Avatar    string    `json:"avatar" gorm:"default:'avatar.png'"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// String needs User to be loaded.
func (p Profile) String() string {
	return fmt.Sprintf("%s-%s", p.User.Username, p.CreatedAt.Format("2006-01-02 15:04:05"))
}

// ProfileFriend is one member of a profile's friends set.
type ProfileFriend struct {
	ProfileID uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"primaryKey;index"`
	Profile   Profile   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProfileFriend) TableName() string {
	return "profile_friends"
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" form:"first_name" validate:"omitempty,max=200"`
	LastName  *string `json:"last_name" form:"last_name" validate:"omitempty,max=200"`
	Bio       *string `json:"bio" form:"bio" validate:"omitempty,max=1000"`
}

// ProfileStats are the on-demand counters shown on a profile page.
type ProfileStats struct {
	FriendsCount       int64 `json:"friends_count"`
	PostsCount         int64 `json:"posts_count"`
	LikesGivenCount    int64 `json:"likes_given_count"`
	LikesReceivedCount int64 `json:"likes_received_count"`
}
