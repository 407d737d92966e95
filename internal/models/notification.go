package models

import "time"

const (
	NotificationInviteSent     = "invite_sent"
	NotificationInviteAccepted = "invite_accepted"
	NotificationPostLiked      = "post_liked"
	NotificationPostCommented  = "post_commented"
)

// Notification is addressed to a profile. ActorID and RecipientID are profile ids.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	TargetID    uint      `json:"target_id"`
	TargetType  string    `json:"target_type" gorm:"size:20"` // post, profile
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
