package services

import (
	"context"
	"log/slog"

	"inkwell/app/apiclient"
	"inkwell/app/models"

	"github.com/pkg/errors"
)

// CommentService handles adding and removing comments
type CommentService struct {
	comments apiclient.CommentAPI
	logger   *slog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(comments apiclient.CommentAPI, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		comments: comments,
		logger:   logger,
	}
}

// AddComment creates a comment on postID authored by the session's user.
// Nothing is sent to the API unless there is a session and the content is
// not blank.
func (s *CommentService) AddComment(ctx context.Context, session *models.Session, postID models.ID, form models.CommentForm) (*models.Comment, error) {
	if session == nil {
		return nil, ErrAuthRequired
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	comment := models.NewComment(postID, session.Username, form.Content)
	created, err := s.comments.CreateComment(ctx, comment)
	if err != nil {
		return nil, errors.Wrapf(err, "add comment to post %d", postID)
	}
	s.logger.Info("comment added", "post_id", postID, "comment_id", created.ID, "author", created.Author)
	return created, nil
}

// DeleteComment deletes a comment. No session is required.
func (s *CommentService) DeleteComment(ctx context.Context, id models.ID) error {
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return errors.Wrapf(err, "delete comment %d", id)
	}
	s.logger.Info("comment deleted", "comment_id", id)
	return nil
}
