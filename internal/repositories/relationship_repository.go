package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/nano-social/backend/internal/models"
)

// RelationshipRepository defines the interface for friend request data operations
type RelationshipRepository interface {
	Create(ctx context.Context, rel *models.Relationship) error
	Get(ctx context.Context, senderID, receiverID uint) (*models.Relationship, error)
	FindBetween(ctx context.Context, a, b uint) (*models.Relationship, error)
	UpdateStatus(ctx context.Context, id uint, status models.RelationshipStatus) error
	Delete(ctx context.Context, id uint) error
	InvitesReceived(ctx context.Context, receiverID uint) ([]models.Relationship, error)
	CountInvitesReceived(ctx context.Context, receiverID uint) (int64, error)
	DeleteByProfile(ctx context.Context, profileID uint) error
	WithTx(tx *gorm.DB) RelationshipRepository
}

// PostgresRelationshipRepository implements RelationshipRepository for PostgreSQL
type PostgresRelationshipRepository struct {
	db *gorm.DB
}

func NewPostgresRelationshipRepository(db *gorm.DB) *PostgresRelationshipRepository {
	return &PostgresRelationshipRepository{db: db}
}

func (r *PostgresRelationshipRepository) WithTx(tx *gorm.DB) RelationshipRepository {
	return &PostgresRelationshipRepository{db: tx}
}

func (r *PostgresRelationshipRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Sender.User").Preload("Receiver.User")
}

func (r *PostgresRelationshipRepository) Create(ctx context.Context, rel *models.Relationship) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rel).Error
}

// Get returns the relationship sent by senderID to receiverID.
func (r *PostgresRelationshipRepository) Get(ctx context.Context, senderID, receiverID uint) (*models.Relationship, error) {
	var rel models.Relationship
	err := r.preloaded(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// FindBetween returns a relationship between a and b regardless of direction.
func (r *PostgresRelationshipRepository) FindBetween(ctx context.Context, a, b uint) (*models.Relationship, error) {
	var rel models.Relationship
	err := r.preloaded(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("id").
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *PostgresRelationshipRepository) UpdateStatus(ctx context.Context, id uint, status models.RelationshipStatus) error {
	return r.db.WithContext(ctx).Model(&models.Relationship{}).Where("id = ?", id).Update("status", status).Error
}

func (r *PostgresRelationshipRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Relationship{}, id).Error
}

// InvitesReceived lists pending invites addressed to receiverID, newest first.
func (r *PostgresRelationshipRepository) InvitesReceived(ctx context.Context, receiverID uint) ([]models.Relationship, error) {
	var rels []models.Relationship
	err := r.preloaded(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, models.StatusSend).
		Order("created_at DESC, id DESC").
		Find(&rels).Error
	return rels, err
}

func (r *PostgresRelationshipRepository) CountInvitesReceived(ctx context.Context, receiverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Relationship{}).
		Where("receiver_id = ? AND status = ?", receiverID, models.StatusSend).
		Count(&count).Error
	return count, err
}

func (r *PostgresRelationshipRepository) DeleteByProfile(ctx context.Context, profileID uint) error {
	return r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", profileID, profileID).
		Delete(&models.Relationship{}).Error
}
