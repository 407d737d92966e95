package services

import (
	"context"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/storage"
)

type ProfileService struct {
	profiles repositories.ProfileRepository
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	images   storage.ImageStorage
	activity activityLog
}

func NewProfileService(
	profiles repositories.ProfileRepository,
	posts repositories.PostRepository,
	likes repositories.LikeRepository,
	images storage.ImageStorage,
	activity repositories.ActivityRepository,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		posts:    posts,
		likes:    likes,
		images:   images,
		activity: newActivityLog(activity),
	}
}

func (s *ProfileService) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "profile of user %d", userID)
	}
	return p, nil
}

func (s *ProfileService) GetBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	p, err := s.profiles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "profile %s", slug)
	}
	return p, nil
}

// UpdateProfile applies the set fields of req and the avatar, if given. The
// slug is recomputed when a name changes or the slug is empty.
func (s *ProfileService) UpdateProfile(ctx context.Context, profile *models.Profile, req models.UpdateProfileRequest, avatar *ImageUpload) (*models.Profile, error) {
	updated := *profile
	if req.FirstName != nil {
		updated.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updated.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		updated.Bio = *req.Bio
	}

	if updated.FirstName != profile.FirstName || updated.LastName != profile.LastName || updated.Slug == "" {
		slug, err := uniqueSlug(ctx, profileSlugBase(updated.FirstName, updated.LastName, profile.User.Username), func(ctx context.Context, slug string) (bool, error) {
			return s.profiles.SlugTaken(ctx, slug, profile.ID)
		})
		if err != nil {
			return nil, err
		}
		updated.Slug = slug
	}

	url, err := uploadImage(ctx, s.images, avatar)
	if err != nil {
		return nil, err
	}
	if url != "" {
		updated.Avatar = url
	}

	if err := s.profiles.UpdateProfile(ctx, &updated); err != nil {
		dropImage(ctx, s.images, url)
		return nil, err
	}
	if url != "" {
		dropImage(ctx, s.images, profile.Avatar)
	}

	s.activity.record(ctx, profile.ID, models.ActivityProfileUpdated, profile.ID, updated.Slug)
	return &updated, nil
}

// Stats computes the profile counters on demand.
func (s *ProfileService) Stats(ctx context.Context, profile *models.Profile) (*models.ProfileStats, error) {
	var (
		stats models.ProfileStats
		err   error
	)
	if stats.FriendsCount, err = s.profiles.FriendsCount(ctx, profile.ID); err != nil {
		return nil, err
	}
	if stats.PostsCount, err = s.posts.CountByAuthor(ctx, profile.ID); err != nil {
		return nil, err
	}
	if stats.LikesGivenCount, err = s.likes.CountGiven(ctx, profile.ID); err != nil {
		return nil, err
	}
	if stats.LikesReceivedCount, err = s.posts.CountLikesReceived(ctx, profile.ID); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ProfileService) Friends(ctx context.Context, profile *models.Profile) ([]models.User, error) {
	return s.profiles.Friends(ctx, profile.ID)
}

// AllProfiles lists every profile except the actor's.
func (s *ProfileService) AllProfiles(ctx context.Context, actor *models.Profile) ([]models.Profile, error) {
	return s.profiles.ListExcept(ctx, actor.ID)
}

func (s *ProfileService) Search(ctx context.Context, actor *models.Profile, query string) ([]models.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Profile{}, nil
	}
	return s.profiles.Search(ctx, query, actor.ID)
}
