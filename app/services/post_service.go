package services

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"inkwell/app/apiclient"
	"inkwell/app/models"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// maxParallelDeletes bounds the comment deletes issued at once during a cascade.
const maxParallelDeletes = 8

// PostService handles the listing, detail, create/edit and delete flows for posts
type PostService struct {
	posts      apiclient.PostAPI
	comments   apiclient.CommentAPI
	revalidate time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mutex     sync.Mutex
	snapshot  []*models.Post
	fetchedAt time.Time
}

// NewPostService creates a new PostService. The post listing is refetched at
// most once per revalidate interval and after every successful post write.
func NewPostService(posts apiclient.PostAPI, comments apiclient.CommentAPI, revalidate time.Duration, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		posts:      posts,
		comments:   comments,
		revalidate: revalidate,
		logger:     logger,
		now:        time.Now,
	}
}

// ListPosts returns every post. A failed fetch degrades to an empty list.
func (s *PostService) ListPosts(ctx context.Context) []*models.Post {
	s.mutex.Lock()
	if s.snapshot != nil && s.now().Sub(s.fetchedAt) < s.revalidate {
		posts := s.snapshot
		s.mutex.Unlock()
		return posts
	}
	s.mutex.Unlock()

	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		s.logger.Error("error fetching posts", "error", err)
		s.Invalidate()
		return []*models.Post{}
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	s.mutex.Lock()
	s.snapshot = posts
	s.fetchedAt = s.now()
	s.mutex.Unlock()
	return posts
}

// Invalidate drops the cached listing so the next ListPosts refetches.
func (s *PostService) Invalidate() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.snapshot = nil
	s.fetchedAt = time.Time{}
}

// GetPost retrieves a post by ID with its comments. Both are fetched at once.
func (s *PostService) GetPost(ctx context.Context, id models.ID) (*models.Post, error) {
	var (
		post     *models.Post
		comments []*models.Comment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		post, err = s.posts.GetPost(gctx, id)
		return errors.Wrapf(err, "fetch post %d", id)
	})
	g.Go(func() error {
		var err error
		comments, err = s.comments.ListComments(gctx, id)
		return errors.Wrapf(err, "fetch comments of post %d", id)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	post.Comments = comments
	return post, nil
}

// FindPost retrieves a post without its comments, for the edit form.
func (s *PostService) FindPost(ctx context.Context, id models.ID) (*models.Post, error) {
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch post %d", id)
	}
	return post, nil
}

// CreatePost validates the form and creates the post.
func (s *PostService) CreatePost(ctx context.Context, form models.PostForm) (*models.Post, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	created, err := s.posts.CreatePost(ctx, form.Post())
	if err != nil {
		return nil, errors.Wrap(err, "create post")
	}
	s.Invalidate()
	return created, nil
}

// UpdatePost validates the form and replaces the post's title and body.
// There is no version check: the last write wins.
func (s *PostService) UpdatePost(ctx context.Context, id models.ID, form models.EditForm) (*models.Post, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.posts.UpdatePost(ctx, id, form.Update())
	if err != nil {
		return nil, errors.Wrapf(err, "update post %d", id)
	}
	s.Invalidate()
	return updated, nil
}

// DeletePost deletes every comment of the post, then the post. Comment
// deletes run concurrently. If any of them fails the post is not deleted and
// a *CascadeError names the comments that are left.
func (s *PostService) DeletePost(ctx context.Context, session *models.Session, id models.ID) error {
	if session == nil {
		return ErrAuthRequired
	}

	comments, err := s.comments.ListComments(ctx, id)
	if err != nil {
		return &CascadeError{PostID: id, Err: errors.Wrap(err, "list comments")}
	}

	var (
		mu     sync.Mutex
		failed []models.ID
		merr   *multierror.Error
	)
	var g errgroup.Group
	g.SetLimit(maxParallelDeletes)
	for _, comment := range comments {
		g.Go(func() error {
			if err := s.comments.DeleteComment(ctx, comment.ID); err != nil {
				mu.Lock()
				failed = append(failed, comment.ID)
				merr = multierror.Append(merr, errors.Wrapf(err, "delete comment %d", comment.ID))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
		s.logger.Error("cascade delete incomplete", "post_id", id, "failed_comments", failed, "error", merr)
		return &CascadeError{PostID: id, FailedCommentIDs: failed, Err: merr.ErrorOrNil()}
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		return &CascadeError{PostID: id, Err: errors.Wrap(err, "delete post")}
	}
	s.Invalidate()
	s.logger.Info("post deleted", "post_id", id, "comments_deleted", len(comments))
	return nil
}
