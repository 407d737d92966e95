package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/nano-social/backend/internal/models"
)

// PostRepository covers posts and their liked-by sets.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	ListPosts(ctx context.Context, skip, limit int) ([]models.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)

	AddLike(ctx context.Context, postID, profileID uint) error
	RemoveLike(ctx context.Context, postID, profileID uint) error
	IsLikedBy(ctx context.Context, postID, profileID uint) (bool, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
	CountLikesByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	LikedPostIDs(ctx context.Context, profileID uint, postIDs []uint) (map[uint]bool, error)
	CountLikesReceived(ctx context.Context, authorID uint) (int64, error)
	DeleteLikesByPosts(ctx context.Context, postIDs []uint) error
	DeleteLikesByProfile(ctx context.Context, profileID uint) error

	WithTx(tx *gorm.DB) PostRepository
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) WithTx(tx *gorm.DB) PostRepository {
	return &PostgresPostRepository{db: tx}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author.User").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Model(post).Omit(clause.Associations).
		Select("content", "image", "updated_at").
		Updates(post).Error
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// ListPosts returns posts newest first.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, skip, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).Preload("Author.User").Order("created_at DESC, id DESC").Offset(skip)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) ListPostsByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Preload("Author.User").
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *PostgresPostRepository) AddLike(ctx context.Context, postID, profileID uint) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostLike{PostID: postID, ProfileID: profileID}).Error
}

func (r *PostgresPostRepository) RemoveLike(ctx context.Context, postID, profileID uint) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND profile_id = ?", postID, profileID).
		Delete(&models.PostLike{}).Error
}

func (r *PostgresPostRepository) IsLikedBy(ctx context.Context, postID, profileID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("post_id = ? AND profile_id = ?", postID, profileID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresPostRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

type idCount struct {
	ID    uint
	Count int64
}

func (r *PostgresPostRepository) CountLikesByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	var rows []idCount
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Select("post_id AS id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}

// LikedPostIDs reports which of postIDs profileID has liked.
func (r *PostgresPostRepository) LikedPostIDs(ctx context.Context, profileID uint, postIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	var liked []uint
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("profile_id = ? AND post_id IN ?", profileID, postIDs).
		Pluck("post_id", &liked).Error
	if err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// CountLikesReceived counts liked-by memberships across every post of authorID.
func (r *PostgresPostRepository) CountLikesReceived(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *PostgresPostRepository) DeleteLikesByPosts(ctx context.Context, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&models.PostLike{}).Error
}

func (r *PostgresPostRepository) DeleteLikesByProfile(ctx context.Context, profileID uint) error {
	return r.db.WithContext(ctx).Where("profile_id = ?", profileID).Delete(&models.PostLike{}).Error
}
