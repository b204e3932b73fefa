package controllers

import (
	"log/slog"
	"net/http"

	"inkwell/app/models"
	"inkwell/app/services"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
	renderer    *Renderer
	logger      *slog.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, renderer *Renderer, logger *slog.Logger) *PostController {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostController{
		postService: postService,
		renderer:    renderer,
		logger:      logger,
	}
}

type indexData struct {
	Posts []*models.Post
}

type showData struct {
	Post    *models.Post
	Content string
}

type postFormData struct {
	ID   models.ID
	Form interface{}
}

// Index handles listing all posts. A failing API renders an empty list.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts := pc.postService.ListPosts(r.Context())
	pc.renderer.Render(w, r, http.StatusOK, "index", &Page{
		Message: flashFrom(r),
		Data:    indexData{Posts: posts},
	})
}

// Show handles displaying a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		pc.renderer.NotFound(w, r)
		return
	}
	pc.renderShow(w, r, id, http.StatusOK, &Page{Message: flashFrom(r)}, "")
}

// renderShow fetches the post and renders the detail page with page's
// messages. Any fetch failure renders the not-found page.
func (pc *PostController) renderShow(w http.ResponseWriter, r *http.Request, id models.ID, status int, page *Page, content string) {
	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		pc.logger.Warn("post unavailable", "post_id", id, "error", err)
		pc.renderer.NotFound(w, r)
		return
	}
	page.Title = post.Title
	page.Data = showData{Post: post, Content: content}
	pc.renderer.Render(w, r, status, "show", page)
}

// New displays the form for creating a new post
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	pc.renderer.Render(w, r, http.StatusOK, "new", &Page{
		Title: "New Post",
		Data:  postFormData{Form: models.PostForm{Date: models.Today()}},
	})
}

// Create handles the new post form. On success the form is shown again,
// empty, with a confirmation.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	form := models.PostForm{
		Title: r.FormValue("title"),
		Body:  r.FormValue("body"),
		Date:  r.FormValue("date"),
	}

	page := &Page{Title: "New Post", Data: postFormData{Form: form}}
	_, err := pc.postService.CreatePost(r.Context(), form)
	switch {
	case errors.Is(err, models.ErrFieldsRequired):
		page.Error = MsgFieldsRequired
		pc.renderer.Render(w, r, http.StatusUnprocessableEntity, "new", page)
	case err != nil:
		pc.logger.Error("error adding post", "error", err)
		page.Error = MsgPostAddFailed
		pc.renderer.Render(w, r, http.StatusBadGateway, "new", page)
	default:
		page.Message = MsgPostAdded
		page.Data = postFormData{Form: models.PostForm{Date: models.Today()}}
		pc.renderer.Render(w, r, http.StatusOK, "new", page)
	}
}

// Edit displays the edit form pre-filled with the current post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		pc.renderer.NotFound(w, r)
		return
	}

	post, err := pc.postService.FindPost(r.Context(), id)
	if err != nil {
		pc.logger.Warn("post unavailable", "post_id", id, "error", err)
		pc.renderer.NotFound(w, r)
		return
	}
	pc.renderer.Render(w, r, http.StatusOK, "edit", &Page{
		Title: "Edit Post",
		Data:  postFormData{ID: id, Form: models.EditForm{Title: post.Title, Body: post.Body}},
	})
}

// Update handles the edit form and redirects to the listing on success
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		pc.renderer.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	form := models.EditForm{
		Title: r.FormValue("title"),
		Body:  r.FormValue("body"),
	}

	page := &Page{Title: "Edit Post", Data: postFormData{ID: id, Form: form}}
	_, err := pc.postService.UpdatePost(r.Context(), id, form)
	switch {
	case errors.Is(err, models.ErrFieldsRequired):
		page.Error = MsgFieldsRequired
		pc.renderer.Render(w, r, http.StatusUnprocessableEntity, "edit", page)
	case err != nil:
		pc.logger.Error("error updating post", "post_id", id, "error", err)
		page.Error = MsgPostUpdateFailed
		pc.renderer.Render(w, r, http.StatusBadGateway, "edit", page)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Delete removes the post and all of its comments, then returns to the listing
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		pc.renderer.NotFound(w, r)
		return
	}

	session := services.SessionFromContext(r.Context())
	err := pc.postService.DeletePost(r.Context(), session, id)
	switch {
	case errors.Is(err, services.ErrAuthRequired):
		pc.renderShow(w, r, id, http.StatusUnauthorized, &Page{Error: MsgLoginToDelete}, "")
	case err != nil:
		pc.logger.Error("error deleting post", "post_id", id, "error", err)
		pc.renderShow(w, r, id, http.StatusBadGateway, &Page{Error: deleteFailureMessage(err)}, "")
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// deleteFailureMessage names the comments that are still attached when a
// cascade stopped part way.
func deleteFailureMessage(err error) string {
	var cascadeErr *services.CascadeError
	if !errors.As(err, &cascadeErr) || len(cascadeErr.FailedCommentIDs) == 0 {
		return MsgPostDeleteFailed
	}
	msg := MsgPostDeleteFailed + " Comments not deleted:"
	for i, id := range cascadeErr.FailedCommentIDs {
		if i > 0 {
			msg += ","
		}
		msg += " " + id.String()
	}
	return msg
}

// pathID parses a mux path variable. Anything that is not a positive
// integer counts as missing.
func pathID(r *http.Request, name string) (models.ID, bool) {
	id, err := models.ParseID(mux.Vars(r)[name])
	if err != nil {
		return 0, false
	}
	return id, true
}
