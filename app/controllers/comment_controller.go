package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"inkwell/app/models"
	"inkwell/app/services"

	"github.com/pkg/errors"
)

// CommentController handles HTTP requests for comments. Failures re-render
// the post page through the PostController.
type CommentController struct {
	commentService *services.CommentService
	posts          *PostController
	logger         *slog.Logger
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, posts *PostController, logger *slog.Logger) *CommentController {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentController{
		commentService: commentService,
		posts:          posts,
		logger:         logger,
	}
}

// Create adds a comment by the signed-in user and redirects back to the post
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "id")
	if !ok {
		cc.posts.renderer.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	form := models.CommentForm{Content: r.FormValue("content")}

	session := services.SessionFromContext(r.Context())
	_, err := cc.commentService.AddComment(r.Context(), session, postID, form)
	switch {
	case errors.Is(err, services.ErrAuthRequired):
		cc.posts.renderShow(w, r, postID, http.StatusUnauthorized, &Page{Error: MsgLoginToComment}, form.Content)
	case errors.Is(err, models.ErrCommentRequired):
		cc.posts.renderShow(w, r, postID, http.StatusUnprocessableEntity, &Page{Error: MsgCommentRequired}, form.Content)
	case err != nil:
		cc.logger.Error("error adding comment", "post_id", postID, "error", err)
		cc.posts.renderShow(w, r, postID, http.StatusBadGateway, &Page{Error: MsgCommentFailed}, form.Content)
	default:
		http.Redirect(w, r, withFlash(postPath(postID), FlashCommentAdded), http.StatusSeeOther)
	}
}

// Delete removes a single comment and redirects back to the post
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "id")
	if !ok {
		cc.posts.renderer.NotFound(w, r)
		return
	}
	commentID, ok := pathID(r, "commentId")
	if !ok {
		cc.posts.renderer.NotFound(w, r)
		return
	}

	if err := cc.commentService.DeleteComment(r.Context(), commentID); err != nil {
		cc.logger.Error("error deleting comment", "post_id", postID, "comment_id", commentID, "error", err)
		cc.posts.renderShow(w, r, postID, http.StatusBadGateway, &Page{Error: MsgCommentDeleteFailed}, "")
		return
	}
	http.Redirect(w, r, withFlash(postPath(postID), FlashCommentDeleted), http.StatusSeeOther)
}

func postPath(id models.ID) string {
	return "/post/" + strconv.Itoa(int(id))
}
