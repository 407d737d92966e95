package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/nano-social/backend/internal/models"
)

// ProfileRepository covers profiles and their friends sets.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	GetBySlug(ctx context.Context, slug string) (*models.Profile, error)
	SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	DeleteProfile(ctx context.Context, id uint) error

	ListExcept(ctx context.Context, profileID uint) ([]models.Profile, error)
	ListInvitable(ctx context.Context, profileID uint) ([]models.Profile, error)
	Search(ctx context.Context, query string, excludeID uint) ([]models.Profile, error)

	AddFriend(ctx context.Context, profileID, userID uint) error
	RemoveFriend(ctx context.Context, profileID, userID uint) error
	Friends(ctx context.Context, profileID uint) ([]models.User, error)
	FriendsCount(ctx context.Context, profileID uint) (int64, error)
	DeleteFriendships(ctx context.Context, profileID, userID uint) error

	WithTx(tx *gorm.DB) ProfileRepository
}

// PostgresProfileRepository implements ProfileRepository with GORM.
type PostgresProfileRepository struct {
	db *gorm.DB
}

func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) WithTx(tx *gorm.DB) ProfileRepository {
	return &PostgresProfileRepository{db: tx}
}

func (r *PostgresProfileRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Preload("User").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProfileRepository) GetBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).Preload("User").Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SlugTaken reports whether another profile than excludeID already uses slug.
func (r *PostgresProfileRepository) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Model(profile).Omit(clause.Associations).
		Select("first_name", "last_name", "bio", "avatar", "slug", "updated_at").
		Updates(profile).Error
}

func (r *PostgresProfileRepository) DeleteProfile(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Profile{}, id).Error
}

func (r *PostgresProfileRepository) ListExcept(ctx context.Context, profileID uint) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Preload("User").
		Where("id <> ?", profileID).
		Order("id").
		Find(&profiles).Error
	return profiles, err
}

// ListInvitable returns every other profile that has no accepted relationship
// with profileID in either direction. Pending invites do not exclude.
func (r *PostgresProfileRepository) ListInvitable(ctx context.Context, profileID uint) ([]models.Profile, error) {
	db := r.db.WithContext(ctx)
	sent := db.Model(&models.Relationship{}).Select("receiver_id").
		Where("sender_id = ? AND status = ?", profileID, models.StatusAccepted)
	received := db.Model(&models.Relationship{}).Select("sender_id").
		Where("receiver_id = ? AND status = ?", profileID, models.StatusAccepted)

	var profiles []models.Profile
	err := db.Preload("User").
		Where("id <> ?", profileID).
		Where("id NOT IN (?)", sent).
		Where("id NOT IN (?)", received).
		Order("id").
		Find(&profiles).Error
	return profiles, err
}

// Search matches username, first name or last name, case-insensitively.
func (r *PostgresProfileRepository) Search(ctx context.Context, query string, excludeID uint) ([]models.Profile, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var profiles []models.Profile
	err := r.db.WithContext(ctx).Preload("User").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("profiles.id <> ?", excludeID).
		Where("LOWER(users.username) LIKE ? OR LOWER(profiles.first_name) LIKE ? OR LOWER(profiles.last_name) LIKE ?",
			pattern, pattern, pattern).
		Order("profiles.id").
		Find(&profiles).Error
	return profiles, err
}

func (r *PostgresProfileRepository) AddFriend(ctx context.Context, profileID, userID uint) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProfileFriend{ProfileID: profileID, UserID: userID}).Error
}

func (r *PostgresProfileRepository) RemoveFriend(ctx context.Context, profileID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("profile_id = ? AND user_id = ?", profileID, userID).
		Delete(&models.ProfileFriend{}).Error
}

func (r *PostgresProfileRepository) Friends(ctx context.Context, profileID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN profile_friends ON profile_friends.user_id = users.id").
		Where("profile_friends.profile_id = ?", profileID).
		Order("users.username").
		Find(&users).Error
	return users, err
}

func (r *PostgresProfileRepository) FriendsCount(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProfileFriend{}).
		Where("profile_id = ?", profileID).
		Count(&count).Error
	return count, err
}

// DeleteFriendships drops the profile's own friends set and every membership
// of userID in other profiles' sets.
func (r *PostgresProfileRepository) DeleteFriendships(ctx context.Context, profileID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("profile_id = ? OR user_id = ?", profileID, userID).
		Delete(&models.ProfileFriend{}).Error
}
