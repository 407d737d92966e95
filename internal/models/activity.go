package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActivityInviteSent     = "invite_sent"
	ActivityInviteAccepted = "invite_accepted"
	ActivityInviteRejected = "invite_rejected"
	ActivityFriendRemoved  = "friend_removed"
	ActivityPostCreated    = "post_created"
	ActivityPostUpdated    = "post_updated"
	ActivityPostDeleted    = "post_deleted"
	ActivityPostLiked      = "post_liked"
	ActivityPostUnliked    = "post_unliked"
	ActivityCommentAdded   = "comment_added"
	ActivityCommentDeleted = "comment_deleted"
	ActivityProfileUpdated = "profile_updated"
)

// Activity is an entry of a profile's activity log, stored in MongoDB
type Activity struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProfileID uint               `json:"profile_id" bson:"profile_id"`
	Kind      string             `json:"kind" bson:"kind"`
	TargetID  uint               `json:"target_id" bson:"target_id"`
	Summary   string             `json:"summary" bson:"summary"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
