package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"inkwell/app/apiclient/mock"
	"inkwell/app/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var testSession = &models.Session{Token: "tok", Username: "alice"}

func setupPostService(t *testing.T) (*PostService, *mock.API) {
	api := mock.NewAPI()
	return NewPostService(api, api, 10*time.Second, testLogger), api
}

func seedPosts(api *mock.API, n int) {
	var posts []*models.Post
	for i := 1; i <= n; i++ {
		posts = append(posts, &models.Post{ID: models.ID(i), Title: "Post", Body: "Body", Date: "2024-01-01"})
	}
	api.Seed(posts, nil)
}

func TestPostServiceListPosts(t *testing.T) {
	ctx := context.Background()

	t.Run("lists every post", func(t *testing.T) {
		service, api := setupPostService(t)
		seedPosts(api, 3)

		posts := service.ListPosts(ctx)
		assert.Len(t, posts, 3)
	})

	t.Run("empty collection", func(t *testing.T) {
		service, _ := setupPostService(t)

		posts := service.ListPosts(ctx)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("fetch failure degrades to empty list", func(t *testing.T) {
		service, api := setupPostService(t)
		seedPosts(api, 2)
		api.FailOn("GET /posts", errors.New("connection refused"))

		posts := service.ListPosts(ctx)
		assert.Empty(t, posts)
	})

	t.Run("cached within the revalidation interval", func(t *testing.T) {
		service, api := setupPostService(t)
		seedPosts(api, 2)
		now := time.Now()
		service.now = func() time.Time { return now }

		service.ListPosts(ctx)
		service.ListPosts(ctx)
		assert.Equal(t, []string{"GET /posts"}, api.Calls())

		now = now.Add(11 * time.Second)
		service.ListPosts(ctx)
		assert.Equal(t, []string{"GET /posts", "GET /posts"}, api.Calls())
	})

	t.Run("refetches after a write", func(t *testing.T) {
		service, api := setupPostService(t)
		seedPosts(api, 1)

		assert.Len(t, service.ListPosts(ctx), 1)
		_, err := service.CreatePost(ctx, models.PostForm{Title: "New", Body: "Post", Date: "2024-05-05"})
		require.NoError(t, err)

		assert.Len(t, service.ListPosts(ctx), 2)
	})

	t.Run("failure does not serve a stale snapshot", func(t *testing.T) {
		service, api := setupPostService(t)
		seedPosts(api, 2)
		now := time.Now()
		service.now = func() time.Time { return now }

		assert.Len(t, service.ListPosts(ctx), 2)
		now = now.Add(time.Minute)
		api.FailOn("GET /posts", errors.New("boom"))
		assert.Empty(t, service.ListPosts(ctx))
	})
}

func TestPostServiceGetPost(t *testing.T) {
	ctx := context.Background()
	service, api := setupPostService(t)
	api.Seed(
		[]*models.Post{{ID: 1, Title: "Hello", Body: "World", Date: "2024-01-01"}},
		[]*models.Comment{
			{ID: 10, PostID: 1, Author: "bob", Content: "first"},
			{ID: 11, PostID: 1, Author: "eve", Content: "second"},
			{ID: 12, PostID: 2, Author: "eve", Content: "elsewhere"},
		},
	)

	t.Run("post with comments", func(t *testing.T) {
		post, err := service.GetPost(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Hello", post.Title)
		require.Len(t, post.Comments, 2)
		assert.Equal(t, "first", post.Comments[0].Content)
	})

	t.Run("missing post", func(t *testing.T) {
		post, err := service.GetPost(ctx, 999)
		assert.Nil(t, post)
		require.Error(t, err)
	})

	t.Run("comments fetch failure", func(t *testing.T) {
		api.FailOn("GET /comments?postId=1", errors.New("boom"))
		defer api.FailOn("GET /comments?postId=1", nil)

		_, err := service.GetPost(ctx, 1)
		assert.Error(t, err)
	})
}

func TestPostServiceCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	service, api := setupPostService(t)

	t.Run("blank field makes no call", func(t *testing.T) {
		_, err := service.CreatePost(ctx, models.PostForm{Title: "T", Body: "", Date: "2024-01-01"})
		assert.ErrorIs(t, err, models.ErrFieldsRequired)
		assert.Empty(t, api.Calls())
	})

	t.Run("create post", func(t *testing.T) {
		post, err := service.CreatePost(ctx, models.PostForm{Title: "T", Body: "B", Date: "2024-01-01"})
		require.NoError(t, err)
		assert.NotZero(t, post.ID)
		assert.True(t, api.HasPost(post.ID))
	})

	t.Run("update post", func(t *testing.T) {
		api.Seed([]*models.Post{{ID: 5, Title: "Old", Body: "Old", Date: "2024-01-01"}}, nil)

		updated, err := service.UpdatePost(ctx, 5, models.EditForm{Title: "New", Body: "Text"})
		require.NoError(t, err)
		assert.Equal(t, "New", updated.Title)
		assert.Equal(t, "2024-01-01", updated.Date)
	})

	t.Run("update blank title makes no call", func(t *testing.T) {
		api.ResetCalls()
		_, err := service.UpdatePost(ctx, 5, models.EditForm{Title: " ", Body: "Text"})
		assert.ErrorIs(t, err, models.ErrFieldsRequired)
		assert.Empty(t, api.Calls())
	})

	t.Run("update failure", func(t *testing.T) {
		_, err := service.UpdatePost(ctx, 404, models.EditForm{Title: "New", Body: "Text"})
		assert.Error(t, err)
	})
}

func TestPostServiceDeletePost(t *testing.T) {
	ctx := context.Background()

	seed := func(api *mock.API) {
		api.Seed(
			[]*models.Post{{ID: 1, Title: "Hello", Body: "World", Date: "2024-01-01"}},
			[]*models.Comment{
				{ID: 1, PostID: 1, Content: "c1"},
				{ID: 2, PostID: 1, Content: "c2"},
				{ID: 3, PostID: 1, Content: "c3"},
			},
		)
	}

	t.Run("requires a session", func(t *testing.T) {
		service, api := setupPostService(t)
		seed(api)

		err := service.DeletePost(ctx, nil, 1)
		assert.ErrorIs(t, err, ErrAuthRequired)
		assert.Empty(t, api.Calls())
		assert.True(t, api.HasPost(1))
	})

	t.Run("deletes each comment before the post", func(t *testing.T) {
		service, api := setupPostService(t)
		seed(api)

		require.NoError(t, service.DeletePost(ctx, testSession, 1))

		calls := api.Calls()
		require.Len(t, calls, 5)
		assert.Equal(t, "GET /comments?postId=1", calls[0])
		assert.ElementsMatch(t, []string{
			"DELETE /comments/1",
			"DELETE /comments/2",
			"DELETE /comments/3",
		}, calls[1:4])
		assert.Equal(t, "DELETE /posts/1", calls[4])
		assert.False(t, api.HasPost(1))
		assert.Zero(t, api.CommentCount(1))
	})

	t.Run("post without comments", func(t *testing.T) {
		service, api := setupPostService(t)
		api.Seed([]*models.Post{{ID: 7, Title: "Lonely"}}, nil)

		require.NoError(t, service.DeletePost(ctx, testSession, 7))
		assert.Equal(t, []string{"GET /comments?postId=7", "DELETE /posts/7"}, api.Calls())
	})

	t.Run("failed comment delete keeps the post", func(t *testing.T) {
		service, api := setupPostService(t)
		seed(api)
		api.FailOn("DELETE /comments/2", errors.New("boom"))

		err := service.DeletePost(ctx, testSession, 1)
		require.Error(t, err)

		var cascadeErr *CascadeError
		require.True(t, errors.As(err, &cascadeErr))
		assert.Equal(t, models.ID(1), cascadeErr.PostID)
		assert.Equal(t, []models.ID{2}, cascadeErr.FailedCommentIDs)
		assert.Contains(t, err.Error(), "2")

		assert.NotContains(t, api.Calls(), "DELETE /posts/1")
		assert.True(t, api.HasPost(1))
		assert.Equal(t, 1, api.CommentCount(1))
	})

	t.Run("failed post delete", func(t *testing.T) {
		service, api := setupPostService(t)
		seed(api)
		api.FailOn("DELETE /posts/1", errors.New("boom"))

		err := service.DeletePost(ctx, testSession, 1)
		var cascadeErr *CascadeError
		require.True(t, errors.As(err, &cascadeErr))
		assert.Empty(t, cascadeErr.FailedCommentIDs)
		assert.Zero(t, api.CommentCount(1))
	})
}

func TestPostServiceFindPost(t *testing.T) {
	ctx := context.Background()
	service, api := setupPostService(t)
	api.Seed([]*models.Post{{ID: 3, Title: "Edit me", Body: "Body"}}, nil)

	post, err := service.FindPost(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Edit me", post.Title)
	assert.Equal(t, []string{"GET /posts/3"}, api.Calls())

	_, err = service.FindPost(ctx, 4)
	assert.Error(t, err)
}
