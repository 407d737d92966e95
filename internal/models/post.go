package models

import "time"

// Post is ordered newest first everywhere it is listed.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Author    Profile   `json:"author" gorm:"constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created" gorm:"index"`
	UpdatedAt time.Time `json:"updated"`
}

const postStringLen = 20

// String is the first 20 characters of the content.
func (p Post) String() string {
	r := []rune(p.Content)
	if len(r) > postStringLen {
		return string(r[:postStringLen])
	}
	return p.Content
}

// PostLike is one member of a post's liked-by set.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey"`
	ProfileID uint      `gorm:"primaryKey;index"`
	Post      Post      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Profile   Profile   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostLike) TableName() string {
	return "post_likes"
}

type CreatePostRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1"`
}

type UpdatePostRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1"`
}

// PostView is a post as rendered in a listing.
type PostView struct {
	Post
	NumLikes    int64 `json:"num_likes"`
	NumComments int64 `json:"num_comments"`
	IsLiked     bool  `json:"is_liked"`
}
