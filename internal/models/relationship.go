package models

import (
	"fmt"
	"time"
)

type RelationshipStatus string

const (
	StatusSend     RelationshipStatus = "send"
	StatusAccepted RelationshipStatus = "accepted"
)

// Relationship is a directed friend request from Sender to Receiver. A rejected
// or removed relationship is deleted rather than stored with a third status.
type Relationship struct {
	ID         uint               `json:"id" gorm:"primaryKey"`
	SenderID   uint               `json:"sender_id" gorm:"not null;index;uniqueIndex:idx_relationship_pair"`
	Sender     Profile            `json:"sender" gorm:"constraint:OnDelete:CASCADE"`
	ReceiverID uint               `json:"receiver_id" gorm:"not null;index;uniqueIndex:idx_relationship_pair"`
	Receiver   Profile            `json:"receiver" gorm:"constraint:OnDelete:CASCADE"`
	Status     RelationshipStatus `json:"status" gorm:"type:varchar(8);not null;default:'send'"`
	CreatedAt  time.Time          `json:"created"`
	UpdatedAt  time.Time          `json:"updated"`
}

// String needs Sender.User and Receiver.User to be loaded.
func (r Relationship) String() string {
	return fmt.Sprintf("%s-%s-%s", r.Sender, r.Receiver, r.Status)
}

type SendInviteRequest struct {
	ProfileID uint `json:"profile_id" validate:"required"`
}
