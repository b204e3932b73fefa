package apiclient

import (
	"context"

	"inkwell/app/models"
)

// PostAPI defines the remote operations on the posts resource
type PostAPI interface {
	ListPosts(ctx context.Context) ([]*models.Post, error)
	GetPost(ctx context.Context, id models.ID) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id models.ID, update models.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id models.ID) error
}

// CommentAPI defines the remote operations on the comments resource
type CommentAPI interface {
	ListComments(ctx context.Context, postID models.ID) ([]*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	DeleteComment(ctx context.Context, id models.ID) error
}
