package models

import "time"

type LikeValue string

const (
	LikeValueLike   LikeValue = "Like"
	LikeValueUnlike LikeValue = "Unlike"
)

// Like records the last like/unlike action of a profile on a post. There is at
// most one row per (profile, post).
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProfileID uint      `json:"profile_id" gorm:"not null;uniqueIndex:idx_like_profile_post"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_like_profile_post"`
	Value     LikeValue `json:"value" gorm:"type:varchar(8);not null"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// LikeResult is returned by a like toggle.
type LikeResult struct {
	Liked    bool  `json:"liked"`
	NumLikes int64 `json:"num_likes"`
}
