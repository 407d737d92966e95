package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/anonto42/nano-social/backend/validators"
)

const jwtSecret = "handler-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T, verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}) *api {
	t.Helper()
	deps := router.Dependencies{
		DB:        testutil.NewTestDB(t),
		JWTSecret: jwtSecret,
		JWTTTL:    time.Hour,
	}
	if verifier != nil {
		deps.Verifier = verifier
	}
	e := router.NewServer(deps)
	e.Validator = validators.NewValidator()
	return &api{t: t, e: e}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// data decodes the envelope's data field of a response with the given status.
func (a *api) data(rec *httptest.ResponseRecorder, status int, out interface{}) {
	a.t.Helper()
	require.Equal(a.t, status, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
}

type profileJSON struct {
	ID   uint   `json:"id"`
	Slug string `json:"slug"`
	Bio  string `json:"bio"`
	User struct {
		Username string `json:"username"`
	} `json:"user"`
}

func (a *api) signUp(username string) (string, profileJSON) {
	a.t.Helper()
	var out struct {
		Token   string      `json:"token"`
		Profile profileJSON `json:"profile"`
	}
	rec := a.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username":   username,
		"email":      username + "@example.com",
		"password":   "password123",
		"first_name": username,
		"last_name":  "Tester",
	})
	a.data(rec, http.StatusCreated, &out)
	require.NotEmpty(a.t, out.Token)
	return out.Token, out.Profile
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t, nil)

	_, profile := a.signUp("alice")
	assert.Equal(t, "alice", profile.User.Username)
	assert.Equal(t, "alice-tester", profile.Slug)
	assert.Equal(t, "no bio..", profile.Bio)

	rec := a.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "x", "email": "not-an-email", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var signin struct {
		Token string `json:"token"`
	}
	rec = a.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"username": "alice", "password": "password123"})
	a.data(rec, http.StatusOK, &signin)
	assert.NotEmpty(t, signin.Token)

	rec = a.do(http.MethodPost, "/api/v1/auth/signin", "", map[string]string{"username": "alice", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var me profileJSON
	a.data(a.do(http.MethodGet, "/api/v1/profile", signin.Token, nil), http.StatusOK, &me)
	assert.Equal(t, profile.ID, me.ID)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/v1/profile", "", nil).Code)

	rec = a.do(http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"id_token": "abc"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != "good-token" {
		return nil, errors.New("bad token")
	}
	return &auth.Token{
		UID:    "firebase-uid-1",
		Claims: map[string]interface{}{"email": "fire.user@example.com", "name": "Fire User"},
	}, nil
}

func TestFirebaseLogin(t *testing.T) {
	a := newAPI(t, fakeVerifier{})

	rec := a.do(http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"id_token": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var out struct {
		Token string `json:"token"`
	}
	a.data(a.do(http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"id_token": "good-token"}), http.StatusOK, &out)

	var me profileJSON
	a.data(a.do(http.MethodGet, "/api/v1/profile", out.Token, nil), http.StatusOK, &me)
	assert.Equal(t, "fireuser", me.User.Username)

	// A second login reuses the account.
	var again struct {
		Token string `json:"token"`
	}
	a.data(a.do(http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"id_token": "good-token"}), http.StatusOK, &again)
	var me2 profileJSON
	a.data(a.do(http.MethodGet, "/api/v1/profile", again.Token, nil), http.StatusOK, &me2)
	assert.Equal(t, me.ID, me2.ID)
}

func TestInviteAndFriendship(t *testing.T) {
	a := newAPI(t, nil)
	aliceToken, alice := a.signUp("alice")
	bobToken, bob := a.signUp("bob")

	var available []profileJSON
	a.data(a.do(http.MethodGet, "/api/v1/invites/available", aliceToken, nil), http.StatusOK, &available)
	require.Len(t, available, 1)
	assert.Equal(t, bob.ID, available[0].ID)

	rec := a.do(http.MethodPost, "/api/v1/invites", aliceToken, map[string]uint{"profile_id": bob.ID})
	a.data(rec, http.StatusCreated, nil)

	rec = a.do(http.MethodPost, "/api/v1/invites", aliceToken, map[string]uint{"profile_id": bob.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/invites", aliceToken, map[string]uint{"profile_id": alice.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count struct {
		Count int64 `json:"count"`
	}
	a.data(a.do(http.MethodGet, "/api/v1/invites/count", bobToken, nil), http.StatusOK, &count)
	assert.EqualValues(t, 1, count.Count)

	var rel struct {
		Status string `json:"status"`
	}
	a.data(a.do(http.MethodPost, fmt.Sprintf("/api/v1/invites/%d/accept", alice.ID), bobToken, nil), http.StatusOK, &rel)
	assert.Equal(t, "accepted", rel.Status)

	rec = a.do(http.MethodPost, "/api/v1/invites", bobToken, map[string]uint{"profile_id": alice.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var friends []struct {
		Username string `json:"username"`
	}
	a.data(a.do(http.MethodGet, "/api/v1/profiles/"+alice.Slug+"/friends", bobToken, nil), http.StatusOK, &friends)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Username)

	a.data(a.do(http.MethodGet, "/api/v1/invites/available", aliceToken, nil), http.StatusOK, &available)
	assert.Empty(t, available)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, fmt.Sprintf("/api/v1/friends/%d", bob.ID), aliceToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, fmt.Sprintf("/api/v1/friends/%d", bob.ID), aliceToken, nil).Code)

	a.data(a.do(http.MethodGet, "/api/v1/profiles/"+alice.Slug+"/friends", bobToken, nil), http.StatusOK, &friends)
	assert.Empty(t, friends)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/v1/invites/abc/reject", bobToken, nil).Code)
}

func TestPostsLikesAndComments(t *testing.T) {
	a := newAPI(t, nil)
	aliceToken, alice := a.signUp("alice")
	bobToken, _ := a.signUp("bob")

	var post struct {
		ID      uint   `json:"id"`
		Content string `json:"content"`
	}
	a.data(a.do(http.MethodPost, "/api/v1/posts", aliceToken, map[string]string{"content": "hello world"}), http.StatusCreated, &post)
	assert.Equal(t, "hello world", post.Content)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/v1/posts", aliceToken, map[string]string{"content": ""}).Code)

	likePath := fmt.Sprintf("/api/v1/posts/%d/like", post.ID)
	var like struct {
		Liked    bool  `json:"liked"`
		NumLikes int64 `json:"num_likes"`
	}
	a.data(a.do(http.MethodPost, likePath, bobToken, nil), http.StatusOK, &like)
	assert.True(t, like.Liked)
	assert.EqualValues(t, 1, like.NumLikes)
	a.data(a.do(http.MethodPost, likePath, bobToken, nil), http.StatusOK, &like)
	assert.False(t, like.Liked)
	assert.EqualValues(t, 0, like.NumLikes)
	a.data(a.do(http.MethodPost, likePath, bobToken, nil), http.StatusOK, &like)

	commentsPath := fmt.Sprintf("/api/v1/posts/%d/comments", post.ID)
	var comment struct {
		ID   uint   `json:"id"`
		Body string `json:"body"`
	}
	a.data(a.do(http.MethodPost, commentsPath, bobToken, map[string]string{"body": "nice"}), http.StatusCreated, &comment)
	assert.Equal(t, "nice", comment.Body)

	var comments []struct {
		Body string `json:"body"`
	}
	a.data(a.do(http.MethodGet, commentsPath, aliceToken, nil), http.StatusOK, &comments)
	require.Len(t, comments, 1)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", comment.ID), aliceToken, nil).Code)

	var views []struct {
		ID          uint  `json:"id"`
		NumLikes    int64 `json:"num_likes"`
		NumComments int64 `json:"num_comments"`
		IsLiked     bool  `json:"is_liked"`
	}
	a.data(a.do(http.MethodGet, "/api/v1/posts", bobToken, nil), http.StatusOK, &views)
	require.Len(t, views, 1)
	assert.EqualValues(t, 1, views[0].NumLikes)
	assert.EqualValues(t, 1, views[0].NumComments)
	assert.True(t, views[0].IsLiked)

	a.data(a.do(http.MethodGet, "/api/v1/profiles/"+alice.Slug+"/posts", bobToken, nil), http.StatusOK, &views)
	require.Len(t, views, 1)

	postPath := fmt.Sprintf("/api/v1/posts/%d", post.ID)
	var result struct {
		Warning string `json:"warning"`
	}
	rec := a.do(http.MethodPut, postPath, bobToken, map[string]string{"content": "hijacked"})
	a.data(rec, http.StatusOK, &result)
	assert.NotEmpty(t, result.Warning)

	rec = a.do(http.MethodDelete, postPath, bobToken, nil)
	a.data(rec, http.StatusOK, &result)
	assert.NotEmpty(t, result.Warning)

	var unread struct {
		Count int64 `json:"count"`
	}
	a.data(a.do(http.MethodGet, "/api/v1/notifications/unread-count", aliceToken, nil), http.StatusOK, &unread)
	assert.EqualValues(t, 3, unread.Count)

	var stats struct {
		PostsCount         int64 `json:"posts_count"`
		LikesReceivedCount int64 `json:"likes_received_count"`
	}
	a.data(a.do(http.MethodGet, "/api/v1/profile/stats", aliceToken, nil), http.StatusOK, &stats)
	assert.EqualValues(t, 1, stats.PostsCount)
	assert.EqualValues(t, 1, stats.LikesReceivedCount)

	a.data(a.do(http.MethodDelete, postPath, aliceToken, nil), http.StatusOK, &result)
	assert.Empty(t, result.Warning)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, postPath, aliceToken, nil).Code)
}

func TestNotifications(t *testing.T) {
	a := newAPI(t, nil)
	aliceToken, _ := a.signUp("alice")
	bobToken, bob := a.signUp("bob")

	a.data(a.do(http.MethodPost, "/api/v1/invites", aliceToken, map[string]uint{"profile_id": bob.ID}), http.StatusCreated, nil)

	var page struct {
		Notifications []struct {
			ID    uint   `json:"id"`
			Type  string `json:"type"`
			Actor struct {
				Username string `json:"username"`
			} `json:"actor"`
		} `json:"notifications"`
	}
	a.data(a.do(http.MethodGet, "/api/v1/notifications", bobToken, nil), http.StatusOK, &page)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "invite_sent", page.Notifications[0].Type)
	assert.Equal(t, "alice", page.Notifications[0].Actor.Username)

	readPath := fmt.Sprintf("/api/v1/notifications/%d/read", page.Notifications[0].ID)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPut, readPath, aliceToken, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodPut, readPath, bobToken, nil).Code)

	var unread struct {
		Count int64 `json:"count"`
	}
	a.data(a.do(http.MethodGet, "/api/v1/notifications/unread-count", bobToken, nil), http.StatusOK, &unread)
	assert.EqualValues(t, 0, unread.Count)

	a.data(a.do(http.MethodGet, "/api/v1/notifications/grouped", bobToken, nil), http.StatusOK, nil)
	a.data(a.do(http.MethodPut, "/api/v1/notifications/read-all", bobToken, nil), http.StatusOK, nil)
}

func TestProfileUpdateSearchAndDelete(t *testing.T) {
	a := newAPI(t, nil)
	aliceToken, alice := a.signUp("alice")
	bobToken, _ := a.signUp("bob")

	var updated profileJSON
	rec := a.do(http.MethodPut, "/api/v1/profile", aliceToken, map[string]string{"first_name": "Alicia", "bio": "hi there"})
	a.data(rec, http.StatusOK, &updated)
	assert.Equal(t, "hi there", updated.Bio)
	assert.Equal(t, "alicia-tester", updated.Slug)
	assert.NotEqual(t, alice.Slug, updated.Slug)

	var found []profileJSON
	a.data(a.do(http.MethodGet, "/api/v1/profiles/search?q=ALI", bobToken, nil), http.StatusOK, &found)
	require.Len(t, found, 1)
	assert.Equal(t, alice.ID, found[0].ID)

	var all []profileJSON
	a.data(a.do(http.MethodGet, "/api/v1/profiles", bobToken, nil), http.StatusOK, &all)
	require.Len(t, all, 1)

	a.data(a.do(http.MethodGet, "/api/v1/activity", aliceToken, nil), http.StatusOK, nil)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/v1/profile", aliceToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/v1/profile", aliceToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/profiles/"+updated.Slug, bobToken, nil).Code)
}

func TestHealthCheck(t *testing.T) {
	a := newAPI(t, nil)
	rec := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
