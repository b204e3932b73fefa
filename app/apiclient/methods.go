package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"inkwell/app/models"
)

// ListPosts fetches every post. The API may omit comments.
func (c *Client) ListPosts(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := c.do(ctx, "list posts", http.MethodGet, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches a single post by ID.
func (c *Client) GetPost(ctx context.Context, id models.ID) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, "get post", http.MethodGet, "/posts/"+id.String(), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost sends {id, title, body, date} and returns the stored post.
func (c *Client) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	payload := struct {
		ID    models.ID `json:"id"`
		Title string    `json:"title"`
		Body  string    `json:"body"`
		Date  string    `json:"date"`
	}{post.ID, post.Title, post.Body, post.Date}

	var created models.Post
	if err := c.do(ctx, "create post", http.MethodPost, "/posts", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePost replaces the title and body of a post.
func (c *Client) UpdatePost(ctx context.Context, id models.ID, update models.PostUpdate) (*models.Post, error) {
	var updated models.Post
	if err := c.do(ctx, "update post", http.MethodPut, "/posts/"+id.String(), update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePost deletes a post. Its comments are not touched.
func (c *Client) DeletePost(ctx context.Context, id models.ID) error {
	return c.do(ctx, "delete post", http.MethodDelete, "/posts/"+id.String(), nil, nil)
}

// ListComments fetches the comments whose postId matches.
func (c *Client) ListComments(ctx context.Context, postID models.ID) ([]*models.Comment, error) {
	query := url.Values{"postId": {postID.String()}}
	var comments []*models.Comment
	if err := c.do(ctx, "list comments", http.MethodGet, "/comments?"+query.Encode(), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment sends {id, content, author, postId} and returns the stored comment.
func (c *Client) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	var created models.Comment
	if err := c.do(ctx, "create comment", http.MethodPost, "/comments", comment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteComment deletes a single comment.
func (c *Client) DeleteComment(ctx context.Context, id models.ID) error {
	return c.do(ctx, "delete comment", http.MethodDelete, "/comments/"+id.String(), nil, nil)
}
