package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/testutil"
)

// memActivity keeps the activity log in memory.
type memActivity struct {
	mu      sync.Mutex
	entries []models.Activity
}

func (m *memActivity) Record(_ context.Context, a *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *a)
	return nil
}

func (m *memActivity) ListByProfile(_ context.Context, profileID uint, _, _ int64) ([]models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Activity
	for _, a := range m.entries {
		if a.ProfileID == profileID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memActivity) DeleteByProfile(_ context.Context, profileID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, a := range m.entries {
		if a.ProfileID != profileID {
			kept = append(kept, a)
		}
	}
	m.entries = kept
	return nil
}

func (m *memActivity) kinds(profileID uint) []string {
	entries, _ := m.ListByProfile(context.Background(), profileID, 0, 0)
	kinds := make([]string, len(entries))
	for i, e := range entries {
		kinds[i] = e.Kind
	}
	return kinds
}

// memImages pretends to be a blob store.
type memImages struct {
	mu      sync.Mutex
	stored  map[string][]byte
	deleted []string
}

func (m *memImages) UploadImage(_ context.Context, r io.Reader, fileName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		m.stored = map[string][]byte{}
	}
	url := fmt.Sprintf("https://res.cloudinary.com/test/image/upload/v1/%d-%s", len(m.stored), fileName)
	m.stored[url] = data
	return url, nil
}

func (m *memImages) DeleteImage(_ context.Context, fileURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, fileURL)
	delete(m.stored, fileURL)
	return nil
}

type fixture struct {
	db            *gorm.DB
	activity      *memActivity
	images        *memImages
	accounts      *AccountService
	profiles      *ProfileService
	relationships *RelationshipService
	posts         *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	activity := &memActivity{}
	images := &memImages{}

	userRepo := repositories.NewPostgresUserRepository(db)
	profileRepo := repositories.NewPostgresProfileRepository(db)
	relRepo := repositories.NewPostgresRelationshipRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	notifRepo := repositories.NewPostgresNotificationRepository(db)

	posts := NewPostService(db, postRepo, commentRepo, likeRepo, notifRepo, images, activity)
	return &fixture{
		db:            db,
		activity:      activity,
		images:        images,
		accounts:      NewAccountService(db, userRepo, profileRepo, relRepo, posts, activity),
		profiles:      NewProfileService(profileRepo, postRepo, likeRepo, images, activity),
		relationships: NewRelationshipService(db, profileRepo, relRepo, notifRepo, activity),
		posts:         posts,
	}
}

func (f *fixture) signUp(t *testing.T, username string) *models.Profile {
	t.Helper()
	_, profile, err := f.accounts.CreateAccountWithProfile(context.Background(), models.SignUpRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "testpass123",
	})
	require.NoError(t, err)
	return profile
}

func (f *fixture) friendIDs(t *testing.T, p *models.Profile) []uint {
	t.Helper()
	users, err := f.profiles.Friends(context.Background(), p)
	require.NoError(t, err)
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
