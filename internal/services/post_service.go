package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/apperror"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/anonto42/nano-social/backend/pkg/storage"
)

const (
	warnNotAuthorUpdate = "You need to be the author of the post in order to update it"
	warnNotAuthorDelete = "You need to be the author of the post in order to delete it"
)

// ImageUpload is an image file sent along with a post or profile form.
type ImageUpload struct {
	Name   string
	Reader io.Reader
}

// PostResult is the outcome of an author-only operation. When the actor is not
// the author the post is returned untouched and Warning says why.
type PostResult struct {
	Post    *models.Post `json:"post,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

type PostService struct {
	db            *gorm.DB
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	likes         repositories.LikeRepository
	notifications repositories.NotificationRepository
	images        storage.ImageStorage
	activity      activityLog
}

func NewPostService(
	db *gorm.DB,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	likes repositories.LikeRepository,
	notifications repositories.NotificationRepository,
	images storage.ImageStorage,
	activity repositories.ActivityRepository,
) *PostService {
	return &PostService{
		db:            db,
		posts:         posts,
		comments:      comments,
		likes:         likes,
		notifications: notifications,
		images:        images,
		activity:      newActivityLog(activity),
	}
}

func uploadImage(ctx context.Context, images storage.ImageStorage, img *ImageUpload) (string, error) {
	if img == nil {
		return "", nil
	}
	if err := storage.ValidateImageName(img.Name); err != nil {
		return "", err
	}
	if images == nil {
		return "", fmt.Errorf("image uploads are not configured: %w", apperror.ErrBadRequest)
	}
	return images.UploadImage(ctx, img.Reader, img.Name)
}

func dropImage(ctx context.Context, images storage.ImageStorage, url string) {
	if images == nil || url == "" || url == models.DefaultAvatar {
		return
	}
	if err := images.DeleteImage(ctx, url); err != nil {
		logger.Warn("failed to delete image", zap.String("url", url), zap.Error(err))
	}
}

func (s *PostService) CreatePost(ctx context.Context, author *models.Profile, content string, image *ImageUpload) (*models.Post, error) {
	url, err := uploadImage(ctx, s.images, image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: author.ID, Content: content, Image: url}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		dropImage(ctx, s.images, url)
		return nil, err
	}
	post.Author = *author

	s.activity.record(ctx, author.ID, models.ActivityPostCreated, post.ID, post.String())
	return post, nil
}

// UpdatePost replaces the content, and the image when one is given. Only the
// author may update; anyone else gets a warning and the post is left as is.
func (s *PostService) UpdatePost(ctx context.Context, actor *models.Profile, postID uint, content string, image *ImageUpload) (*PostResult, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post %d", postID)
	}
	if post.AuthorID != actor.ID {
		return &PostResult{Post: post, Warning: warnNotAuthorUpdate}, nil
	}

	url, err := uploadImage(ctx, s.images, image)
	if err != nil {
		return nil, err
	}

	oldImage := post.Image
	post.Content = content
	if url != "" {
		post.Image = url
	}
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		dropImage(ctx, s.images, url)
		return nil, err
	}
	if url != "" {
		dropImage(ctx, s.images, oldImage)
	}

	s.activity.record(ctx, actor.ID, models.ActivityPostUpdated, post.ID, post.String())
	return &PostResult{Post: post}, nil
}

// DeletePost removes the post with its comments, like records and liked-by
// set. Only the author may delete; anyone else gets a warning.
func (s *PostService) DeletePost(ctx context.Context, actor *models.Profile, postID uint) (*PostResult, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post %d", postID)
	}
	if post.AuthorID != actor.ID {
		return &PostResult{Post: post, Warning: warnNotAuthorDelete}, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.deletePosts(ctx, tx, []uint{post.ID})
	})
	if err != nil {
		return nil, err
	}

	dropImage(ctx, s.images, post.Image)
	s.activity.record(ctx, actor.ID, models.ActivityPostDeleted, post.ID, post.String())
	return &PostResult{}, nil
}

// deletePosts removes postIDs and everything hanging off them.
func (s *PostService) deletePosts(ctx context.Context, tx *gorm.DB, postIDs []uint) error {
	if len(postIDs) == 0 {
		return nil
	}
	if err := s.comments.WithTx(tx).DeleteByPosts(ctx, postIDs); err != nil {
		return err
	}
	if err := s.likes.WithTx(tx).DeleteByPosts(ctx, postIDs); err != nil {
		return err
	}
	posts := s.posts.WithTx(tx)
	if err := posts.DeleteLikesByPosts(ctx, postIDs); err != nil {
		return err
	}
	if err := s.notifications.WithTx(tx).DeleteByTarget(ctx, "post", postIDs); err != nil {
		return err
	}
	for _, id := range postIDs {
		if err := posts.DeletePost(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ToggleLike adds actor to the post's liked-by set, or removes it when already
// there, and records the matching Like or Unlike value.
func (s *PostService) ToggleLike(ctx context.Context, actor *models.Profile, postID uint) (*models.LikeResult, error) {
	result := &models.LikeResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)
		likes := s.likes.WithTx(tx)

		post, err := posts.GetPostByID(ctx, postID)
		if err != nil {
			return notFound(err, "post %d", postID)
		}

		liked, err := posts.IsLikedBy(ctx, postID, actor.ID)
		if err != nil {
			return err
		}

		if liked {
			if err := posts.RemoveLike(ctx, postID, actor.ID); err != nil {
				return err
			}
			if err := likes.Upsert(ctx, actor.ID, postID, models.LikeValueUnlike); err != nil {
				return err
			}
		} else {
			if err := posts.AddLike(ctx, postID, actor.ID); err != nil {
				return err
			}
			if err := likes.Upsert(ctx, actor.ID, postID, models.LikeValueLike); err != nil {
				return err
			}
			err := notify(ctx, s.notifications.WithTx(tx), &models.Notification{
				Type:        models.NotificationPostLiked,
				ActorID:     actor.ID,
				RecipientID: post.AuthorID,
				TargetID:    post.ID,
				TargetType:  "post",
				Message:     fmt.Sprintf("%s liked your post", actor.User.Username),
			})
			if err != nil {
				return err
			}
		}

		result.Liked = !liked
		result.NumLikes, err = posts.CountLikes(ctx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}

	kind := models.ActivityPostUnliked
	if result.Liked {
		kind = models.ActivityPostLiked
	}
	s.activity.record(ctx, actor.ID, kind, postID, "")
	return result, nil
}

func (s *PostService) AddComment(ctx context.Context, actor *models.Profile, postID uint, body string) (*models.Comment, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post %d", postID)
	}

	comment := &models.Comment{ProfileID: actor.ID, PostID: post.ID, Body: body}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.comments.WithTx(tx).CreateComment(ctx, comment); err != nil {
			return err
		}
		return notify(ctx, s.notifications.WithTx(tx), &models.Notification{
			Type:        models.NotificationPostCommented,
			ActorID:     actor.ID,
			RecipientID: post.AuthorID,
			TargetID:    post.ID,
			TargetType:  "post",
			Message:     fmt.Sprintf("%s commented on your post", actor.User.Username),
		})
	})
	if err != nil {
		return nil, err
	}
	comment.Profile = *actor

	s.activity.record(ctx, actor.ID, models.ActivityCommentAdded, post.ID, body)
	return comment, nil
}

// DeleteComment lets a comment's own author remove it.
func (s *PostService) DeleteComment(ctx context.Context, actor *models.Profile, commentID uint) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return notFound(err, "comment %d", commentID)
	}
	if comment.ProfileID != actor.ID {
		return apperror.ErrForbidden
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.activity.record(ctx, actor.ID, models.ActivityCommentDeleted, comment.PostID, "")
	return nil
}

func (s *PostService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, notFound(err, "post %d", postID)
	}
	return s.comments.GetCommentsByPostID(ctx, postID)
}

func (s *PostService) GetPost(ctx context.Context, actor *models.Profile, postID uint) (*models.PostView, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post %d", postID)
	}
	views, err := s.enrich(ctx, actor, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListPosts returns every post newest first with its counts and whether actor
// liked it.
func (s *PostService) ListPosts(ctx context.Context, actor *models.Profile, skip, limit int) ([]models.PostView, error) {
	posts, err := s.posts.ListPosts(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, actor, posts)
}

func (s *PostService) ListPostsByAuthor(ctx context.Context, actor *models.Profile, authorID uint) ([]models.PostView, error) {
	posts, err := s.posts.ListPostsByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, actor, posts)
}

func (s *PostService) enrich(ctx context.Context, actor *models.Profile, posts []models.Post) ([]models.PostView, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likeCounts, err := s.posts.CountLikesByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.comments.CountByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.posts.LikedPostIDs(ctx, actor.ID, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		views[i] = models.PostView{
			Post:        p,
			NumLikes:    likeCounts[p.ID],
			NumComments: commentCounts[p.ID],
			IsLiked:     liked[p.ID],
		}
	}
	return views, nil
}

func (s *PostService) NumLikes(ctx context.Context, postID uint) (int64, error) {
	return s.posts.CountLikes(ctx, postID)
}

func (s *PostService) NumComments(ctx context.Context, postID uint) (int64, error) {
	return s.comments.CountByPost(ctx, postID)
}
