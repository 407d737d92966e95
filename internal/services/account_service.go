package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/apperror"
	"github.com/anonto42/nano-social/backend/pkg/logger"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// AccountService owns account creation and deletion. Creating an account
// always creates its profile, and deleting one removes everything the profile
// owns.
type AccountService struct {
	db            *gorm.DB
	users         repositories.UserRepository
	profiles      repositories.ProfileRepository
	relationships repositories.RelationshipRepository
	posts         *PostService
	activity      repositories.ActivityRepository
}

func NewAccountService(
	db *gorm.DB,
	users repositories.UserRepository,
	profiles repositories.ProfileRepository,
	relationships repositories.RelationshipRepository,
	posts *PostService,
	activity repositories.ActivityRepository,
) *AccountService {
	if activity == nil {
		activity = repositories.NopActivityRepository{}
	}
	return &AccountService{
		db:            db,
		users:         users,
		profiles:      profiles,
		relationships: relationships,
		posts:         posts,
		activity:      activity,
	}
}

// CreateAccountWithProfile creates the user and its profile in one transaction.
func (s *AccountService) CreateAccountWithProfile(ctx context.Context, req models.SignUpRequest) (*models.User, *models.Profile, error) {
	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, nil, fmt.Errorf("username %s: %w", req.Username, apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, nil, fmt.Errorf("email %s: %w", req.Email, apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: req.Username, Email: req.Email, Password: string(hashed)}
	profile, err := s.create(ctx, user, req.FirstName, req.LastName)
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

func (s *AccountService) create(ctx context.Context, user *models.User, firstName, lastName string) (*models.Profile, error) {
	var profile *models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).CreateUser(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("user %s: %w", user.Username, apperror.ErrConflict)
			}
			return err
		}

		profiles := s.profiles.WithTx(tx)
		slug, err := uniqueSlug(ctx, profileSlugBase(firstName, lastName, user.Username), func(ctx context.Context, slug string) (bool, error) {
			return profiles.SlugTaken(ctx, slug, 0)
		})
		if err != nil {
			return err
		}

		profile = &models.Profile{
			UserID:    user.ID,
			FirstName: firstName,
			LastName:  lastName,
			Bio:       models.DefaultBio,
			Avatar:    models.DefaultAvatar,
			Slug:      slug,
		}
		return profiles.CreateProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	profile.User = *user
	return profile, nil
}

// SignIn checks a username and password pair.
func (s *AccountService) SignIn(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, apperror.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	return user, nil
}

// FirebaseAccount finds the account linked to a Firebase uid. An account with
// the same email is linked on first login; otherwise a new account and profile
// are created.
func (s *AccountService) FirebaseAccount(ctx context.Context, uid, email, displayName string) (*models.User, error) {
	user, err := s.users.GetUserByFirebaseUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if email == "" {
		return nil, fmt.Errorf("firebase account has no email: %w", apperror.ErrBadRequest)
	}

	user, err = s.users.GetUserByEmail(ctx, email)
	if err == nil {
		if err := s.users.SetFirebaseUID(ctx, user.ID, uid); err != nil {
			return nil, err
		}
		user.FirebaseUID = &uid
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := s.freeUsername(ctx, email)
	if err != nil {
		return nil, err
	}

	firstName, lastName := splitName(displayName)
	user = &models.User{Username: username, Email: email, FirebaseUID: &uid}
	if _, err := s.create(ctx, user, firstName, lastName); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) freeUsername(ctx context.Context, email string) (string, error) {
	base := nonAlnum.ReplaceAllString(strings.ToLower(strings.SplitN(email, "@", 2)[0]), "")
	if len(base) < 3 {
		base = "user" + base
	}
	if len(base) > 140 {
		base = base[:140]
	}

	name := base
	for {
		taken, err := s.users.UsernameExists(ctx, name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
		name = base + RandomCode()
	}
}

func splitName(displayName string) (string, string) {
	fields := strings.Fields(displayName)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// DeleteAccount removes the account with its profile, posts, comments, like
// records, liked-by memberships, relationships, friends set memberships in
// both directions and notifications.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return notFound(err, "profile of user %d", userID)
	}

	var posts []models.Post
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		posts, err = s.posts.posts.WithTx(tx).ListPostsByAuthor(ctx, profile.ID)
		if err != nil {
			return err
		}
		postIDs := make([]uint, len(posts))
		for i, p := range posts {
			postIDs[i] = p.ID
		}
		if err := s.posts.deletePosts(ctx, tx, postIDs); err != nil {
			return err
		}

		if err := s.posts.comments.WithTx(tx).DeleteByProfile(ctx, profile.ID); err != nil {
			return err
		}
		if err := s.posts.likes.WithTx(tx).DeleteByProfile(ctx, profile.ID); err != nil {
			return err
		}
		if err := s.posts.posts.WithTx(tx).DeleteLikesByProfile(ctx, profile.ID); err != nil {
			return err
		}
		if err := s.posts.notifications.WithTx(tx).DeleteByProfile(ctx, profile.ID); err != nil {
			return err
		}
		if err := s.relationships.WithTx(tx).DeleteByProfile(ctx, profile.ID); err != nil {
			return err
		}

		profiles := s.profiles.WithTx(tx)
		if err := profiles.DeleteFriendships(ctx, profile.ID, userID); err != nil {
			return err
		}
		if err := profiles.DeleteProfile(ctx, profile.ID); err != nil {
			return err
		}
		return s.users.WithTx(tx).DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	for _, p := range posts {
		dropImage(ctx, s.posts.images, p.Image)
	}
	dropImage(ctx, s.posts.images, profile.Avatar)
	if err := s.activity.DeleteByProfile(ctx, profile.ID); err != nil {
		logger.Warn("failed to delete activity log", zap.Uint("profile_id", profile.ID), zap.Error(err))
	}
	return nil
}
