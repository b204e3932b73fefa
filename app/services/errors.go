package services

import (
	"fmt"
	"strings"

	"inkwell/app/models"

	"github.com/pkg/errors"
)

var (
	// ErrAuthRequired is returned when an action needs a session and none was given.
	ErrAuthRequired = errors.New("authentication required")
	// ErrUserExists is returned by Signup for a taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned by Login when no user matches.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNoSession is returned by Authenticate for unknown tokens.
	ErrNoSession = errors.New("no such session")
)

// CascadeError reports a post delete that did not complete. When any comment
// delete fails the post itself is left in place, so FailedCommentIDs lists
// what is still attached and the delete can be retried.
type CascadeError struct {
	PostID           models.ID
	FailedCommentIDs []models.ID
	Err              error
}

func (e *CascadeError) Error() string {
	if len(e.FailedCommentIDs) > 0 {
		ids := make([]string, len(e.FailedCommentIDs))
		for i, id := range e.FailedCommentIDs {
			ids[i] = id.String()
		}
		return fmt.Sprintf("delete post %d: failed to delete comments %s: %v", e.PostID, strings.Join(ids, ", "), e.Err)
	}
	return fmt.Sprintf("delete post %d: %v", e.PostID, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
