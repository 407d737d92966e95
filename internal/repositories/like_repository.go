package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/nano-social/backend/internal/models"
)

// LikeRepository stores the Like/Unlike record of each (profile, post) pair.
type LikeRepository interface {
	Upsert(ctx context.Context, profileID, postID uint, value models.LikeValue) error
	CountGiven(ctx context.Context, profileID uint) (int64, error)
	DeleteByPosts(ctx context.Context, postIDs []uint) error
	DeleteByProfile(ctx context.Context, profileID uint) error
	WithTx(tx *gorm.DB) LikeRepository
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) WithTx(tx *gorm.DB) LikeRepository {
	return &PostgresLikeRepository{db: tx}
}

// Upsert creates the record or overwrites its value.
func (r *PostgresLikeRepository) Upsert(ctx context.Context, profileID, postID uint, value models.LikeValue) error {
	like := models.Like{ProfileID: profileID, PostID: postID, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_id"}, {Name: "post_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": time.Now(),
		}),
	}).Create(&like).Error
}

// CountGiven counts records whose value is Like.
func (r *PostgresLikeRepository) CountGiven(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("profile_id = ? AND value = ?", profileID, models.LikeValueLike).
		Count(&count).Error
	return count, err
}

func (r *PostgresLikeRepository) DeleteByPosts(ctx context.Context, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) DeleteByProfile(ctx context.Context, profileID uint) error {
	return r.db.WithContext(ctx).Where("profile_id = ?", profileID).Delete(&models.Like{}).Error
}
