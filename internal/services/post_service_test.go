package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/pkg/apperror"
)

func TestToggleLikeRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signUp(t, "author")
	fan := f.signUp(t, "fan")

	post, err := f.posts.CreatePost(ctx, author, "Test post", nil)
	require.NoError(t, err)

	before, err := f.posts.NumLikes(ctx, post.ID)
	require.NoError(t, err)

	res, err := f.posts.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, before+1, res.NumLikes)

	like := models.Like{}
	require.NoError(t, f.db.Where("profile_id = ? AND post_id = ?", fan.ID, post.ID).First(&like).Error)
	assert.Equal(t, models.LikeValueLike, like.Value)

	res, err = f.posts.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, before, res.NumLikes)

	require.NoError(t, f.db.Where("profile_id = ? AND post_id = ?", fan.ID, post.ID).First(&like).Error)
	assert.Equal(t, models.LikeValueUnlike, like.Value)
	assert.Equal(t, int64(1), f.count(t, &models.Like{}, "post_id = ?", post.ID))

	// only the first like notified the author
	assert.Equal(t, int64(1), f.count(t, &models.Notification{}, "type = ?", models.NotificationPostLiked))
}

func TestToggleLikeOwnPostDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signUp(t, "author")

	post, err := f.posts.CreatePost(ctx, author, "mine", nil)
	require.NoError(t, err)
	_, err = f.posts.ToggleLike(ctx, author, post.ID)
	require.NoError(t, err)
	assert.Zero(t, f.count(t, &models.Notification{}, "1 = 1"))

	_, err = f.posts.ToggleLike(ctx, author, 4242)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdatePostByNonAuthorIsSoftNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signUp(t, "author")
	other := f.signUp(t, "other")

	post, err := f.posts.CreatePost(ctx, author, "original", nil)
	require.NoError(t, err)

	res, err := f.posts.UpdatePost(ctx, other, post.ID, "hacked", nil)
	require.NoError(t, err)
	assert.Equal(t, warnNotAuthorUpdate, res.Warning)

	view, err := f.posts.GetPost(ctx, author, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", view.Content)

	res, err = f.posts.UpdatePost(ctx, author, post.ID, "edited", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
	assert.Equal(t, "edited", res.Post.Content)

	_, err = f.posts.UpdatePost(ctx, author, 777, "x", nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeletePostByNonAuthorIsSoftNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signUp(t, "author")
	other := f.signUp(t, "other")

	post, err := f.posts.CreatePost(ctx, author, "keep me", nil)
	require.NoError(t, err)

	res, err := f.posts.DeletePost(ctx, other, post.ID)
	require.NoError(t, err)
	assert.Equal(t, warnNotAuthorDelete, res.Warning)
	assert.Equal(t, int64(1), f.count(t, &models.Post{}, "id = ?", post.ID))
}

func TestDeletePostCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signUp(t, "author")
	fan := f.signUp(t, "fan")

	post, err := f.posts.CreatePost(ctx, author, "doomed", nil)
	require.NoError(t, err)
	survivor, err := f.posts.CreatePost(ctx, author, "survivor", nil)
	require.NoError(t, err)

	_, err = f.posts.AddComment(ctx, fan, post.ID, "nice")
	require.NoError(t, err)
	_, err = f.posts.AddComment(ctx, fan, survivor.ID, "also nice")
	require.NoError(t, err)
	_, err = f.posts.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)

	res, err := f.posts.DeletePost(ctx, author, post.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Warning)

	assert.Zero(t, f.count(t, &models.Post{}, "id = ?", post.ID))
	assert.Zero(t, f.count(t, &models.Comment{}, "post_id = ?", post.ID))
	assert.Zero(t, f.count(t, &models.Like{}, "post_id = ?", post.ID))
	assert.Zero(t, f.count(t, &models.PostLike{}, "post_id = ?", post.ID))
	assert.Zero(t, f.count(t, &models.Notification{}, "target_type = ? AND target_id = ?", "post", post.ID))
	assert.Equal(t, int64(1), f.count(t, &models.Comment{}, "post_id = ?", survivor.ID))
}

func TestCommentsAndOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signUp(t, "author")
	fan := f.signUp(t, "fan")

	post, err := f.posts.CreatePost(ctx, author, "talk to me", nil)
	require.NoError(t, err)

	comment, err := f.posts.AddComment(ctx, fan, post.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "fan", comment.Profile.User.Username)

	n, err := f.posts.NumComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	comments, err := f.posts.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "hello", comments[0].Body)

	assert.ErrorIs(t, f.posts.DeleteComment(ctx, author, comment.ID), apperror.ErrForbidden)
	require.NoError(t, f.posts.DeleteComment(ctx, fan, comment.ID))
	assert.ErrorIs(t, f.posts.DeleteComment(ctx, fan, comment.ID), apperror.ErrNotFound)

	_, err = f.posts.AddComment(ctx, fan, 999, "lost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListPostsNewestFirstWithLikeState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signUp(t, "author")
	fan := f.signUp(t, "fan")

	first, err := f.posts.CreatePost(ctx, author, "First post", nil)
	require.NoError(t, err)
	second, err := f.posts.CreatePost(ctx, author, "Second post", nil)
	require.NoError(t, err)
	_, err = f.posts.ToggleLike(ctx, fan, first.ID)
	require.NoError(t, err)
	_, err = f.posts.AddComment(ctx, author, first.ID, "self reply")
	require.NoError(t, err)

	views, err := f.posts.ListPosts(ctx, fan, 0, 20)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ID)
	assert.False(t, views[0].IsLiked)
	assert.Equal(t, first.ID, views[1].ID)
	assert.True(t, views[1].IsLiked)
	assert.Equal(t, int64(1), views[1].NumLikes)
	assert.Equal(t, int64(1), views[1].NumComments)
	assert.Equal(t, "author", views[1].Author.User.Username)

	byAuthor, err := f.posts.ListPostsByAuthor(ctx, fan, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, byAuthor)
}

func TestPostImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signUp(t, "author")

	_, err := f.posts.CreatePost(ctx, author, "gif", &ImageUpload{Name: "cat.gif", Reader: strings.NewReader("GIF89a")})
	assert.ErrorIs(t, err, apperror.ErrInvalidImage)

	post, err := f.posts.CreatePost(ctx, author, "png", &ImageUpload{Name: "cat.png", Reader: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Contains(t, post.Image, "cat.png")

	res, err := f.posts.UpdatePost(ctx, author, post.ID, "jpg now", &ImageUpload{Name: "dog.jpg", Reader: strings.NewReader("jpg")})
	require.NoError(t, err)
	assert.Contains(t, res.Post.Image, "dog.jpg")
	assert.Contains(t, f.images.deleted, post.Image)

	_, err = f.posts.DeletePost(ctx, author, post.ID)
	require.NoError(t, err)
	assert.Contains(t, f.images.deleted, res.Post.Image)
}
