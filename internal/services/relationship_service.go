package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/apperror"
)

// RelationshipService drives the friend request state machine. Every status
// change that affects the friends sets runs in one transaction together with
// the updates of both sets.
type RelationshipService struct {
	db            *gorm.DB
	profiles      repositories.ProfileRepository
	relationships repositories.RelationshipRepository
	notifications repositories.NotificationRepository
	activity      activityLog
}

func NewRelationshipService(
	db *gorm.DB,
	profiles repositories.ProfileRepository,
	relationships repositories.RelationshipRepository,
	notifications repositories.NotificationRepository,
	activity repositories.ActivityRepository,
) *RelationshipService {
	return &RelationshipService{
		db:            db,
		profiles:      profiles,
		relationships: relationships,
		notifications: notifications,
		activity:      newActivityLog(activity),
	}
}

// SendInvite creates a pending relationship from sender to receiverID. A
// pending invite in either direction is ErrDuplicateInvite, an accepted one is
// ErrConflict.
func (s *RelationshipService) SendInvite(ctx context.Context, sender *models.Profile, receiverID uint) (*models.Relationship, error) {
	if sender.ID == receiverID {
		return nil, apperror.ErrSelfInvite
	}

	receiver, err := s.profiles.GetByID(ctx, receiverID)
	if err != nil {
		return nil, notFound(err, "profile %d", receiverID)
	}

	rel := &models.Relationship{SenderID: sender.ID, ReceiverID: receiver.ID, Status: models.StatusSend}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rels := s.relationships.WithTx(tx)

		// One relationship per pair, whichever side sent it.
		existing, err := rels.FindBetween(ctx, sender.ID, receiver.ID)
		if err == nil {
			if existing.Status == models.StatusAccepted {
				return fmt.Errorf("already friends with profile %d: %w", receiver.ID, apperror.ErrConflict)
			}
			return apperror.ErrDuplicateInvite
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := rels.Create(ctx, rel); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.ErrDuplicateInvite
			}
			return err
		}

		return notify(ctx, s.notifications.WithTx(tx), &models.Notification{
			Type:        models.NotificationInviteSent,
			ActorID:     sender.ID,
			RecipientID: receiver.ID,
			TargetID:    sender.ID,
			TargetType:  "profile",
			Message:     fmt.Sprintf("%s sent you a friend request", sender.User.Username),
		})
	})
	if err != nil {
		return nil, err
	}

	rel.Sender = *sender
	rel.Receiver = *receiver
	s.activity.record(ctx, sender.ID, models.ActivityInviteSent, receiver.ID, "sent a friend request to "+receiver.User.Username)
	return rel, nil
}

// AcceptInvite accepts the invite senderID sent to receiver and adds each
// account to the other's friends. An already accepted relationship is
// returned unchanged.
func (s *RelationshipService) AcceptInvite(ctx context.Context, receiver *models.Profile, senderID uint) (*models.Relationship, error) {
	var rel *models.Relationship
	accepted := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rel, err = s.relationships.WithTx(tx).Get(ctx, senderID, receiver.ID)
		if err != nil {
			return notFound(err, "invite from profile %d", senderID)
		}
		if rel.Status == models.StatusAccepted {
			return nil
		}

		if err := s.accept(ctx, tx, rel); err != nil {
			return err
		}
		accepted = true

		return notify(ctx, s.notifications.WithTx(tx), &models.Notification{
			Type:        models.NotificationInviteAccepted,
			ActorID:     receiver.ID,
			RecipientID: senderID,
			TargetID:    receiver.ID,
			TargetType:  "profile",
			Message:     fmt.Sprintf("%s accepted your friend request", receiver.User.Username),
		})
	})
	if err != nil {
		return nil, err
	}

	if accepted {
		s.activity.record(ctx, receiver.ID, models.ActivityInviteAccepted, senderID, "accepted a friend request from "+rel.Sender.User.Username)
	}
	return rel, nil
}

// accept marks rel accepted and links both friends sets. rel must carry the
// sender and receiver profiles.
func (s *RelationshipService) accept(ctx context.Context, tx *gorm.DB, rel *models.Relationship) error {
	if err := s.relationships.WithTx(tx).UpdateStatus(ctx, rel.ID, models.StatusAccepted); err != nil {
		return err
	}
	profiles := s.profiles.WithTx(tx)
	if err := profiles.AddFriend(ctx, rel.ReceiverID, rel.Sender.UserID); err != nil {
		return err
	}
	if err := profiles.AddFriend(ctx, rel.SenderID, rel.Receiver.UserID); err != nil {
		return err
	}
	rel.Status = models.StatusAccepted
	return nil
}

// RejectInvite deletes a relationship between actor and otherID in either
// direction.
func (s *RelationshipService) RejectInvite(ctx context.Context, actor *models.Profile, otherID uint) error {
	return s.deleteBetween(ctx, actor, otherID, models.ActivityInviteRejected)
}

// RemoveFriend deletes a relationship between actor and otherID in either
// direction.
func (s *RelationshipService) RemoveFriend(ctx context.Context, actor *models.Profile, otherID uint) error {
	return s.deleteBetween(ctx, actor, otherID, models.ActivityFriendRemoved)
}

func (s *RelationshipService) deleteBetween(ctx context.Context, actor *models.Profile, otherID uint, kind string) error {
	var rel *models.Relationship
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rel, err = s.relationships.WithTx(tx).FindBetween(ctx, actor.ID, otherID)
		if err != nil {
			return notFound(err, "relationship with profile %d", otherID)
		}
		return s.deleteRelationship(ctx, tx, rel)
	})
	if err != nil {
		return err
	}

	s.activity.record(ctx, actor.ID, kind, otherID, fmt.Sprintf("%s: %s", kind, rel))
	return nil
}

// DeleteRelationship deletes rel and removes each side's account from the
// other's friends set. Running it again on the same relationship changes
// nothing.
func (s *RelationshipService) DeleteRelationship(ctx context.Context, rel *models.Relationship) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.deleteRelationship(ctx, tx, rel)
	})
}

func (s *RelationshipService) deleteRelationship(ctx context.Context, tx *gorm.DB, rel *models.Relationship) error {
	if err := s.relationships.WithTx(tx).Delete(ctx, rel.ID); err != nil {
		return err
	}
	profiles := s.profiles.WithTx(tx)
	if err := profiles.RemoveFriend(ctx, rel.SenderID, rel.Receiver.UserID); err != nil {
		return err
	}
	return profiles.RemoveFriend(ctx, rel.ReceiverID, rel.Sender.UserID)
}

// ProfilesToInvite lists every other profile without an accepted relationship
// to actor. Profiles with a pending invite in either direction are included.
func (s *RelationshipService) ProfilesToInvite(ctx context.Context, actor *models.Profile) ([]models.Profile, error) {
	return s.profiles.ListInvitable(ctx, actor.ID)
}

// InvitesReceived lists the pending invites addressed to actor.
func (s *RelationshipService) InvitesReceived(ctx context.Context, actor *models.Profile) ([]models.Relationship, error) {
	return s.relationships.InvitesReceived(ctx, actor.ID)
}

func (s *RelationshipService) InvitesReceivedCount(ctx context.Context, actor *models.Profile) (int64, error) {
	return s.relationships.CountInvitesReceived(ctx, actor.ID)
}
