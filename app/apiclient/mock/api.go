package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"inkwell/app/apiclient"
	"inkwell/app/models"
)

// API is an in-memory stand-in for the remote posts/comments API. It records
// every call as "METHOD /path" in the order received.
type API struct {
	posts    map[models.ID]*models.Post
	comments map[models.ID]*models.Comment
	order    []models.ID
	calls    []string
	failures map[string]error
	mutex    sync.RWMutex
}

var _ apiclient.PostAPI = (*API)(nil)
var _ apiclient.CommentAPI = (*API)(nil)

// NewAPI returns an empty API with no failures configured.
func NewAPI() *API {
	return &API{
		posts:    make(map[models.ID]*models.Post),
		comments: make(map[models.ID]*models.Comment),
		failures: make(map[string]error),
	}
}

// FailOn makes the call matching "METHOD /path" return err.
func (m *API) FailOn(call string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failures[call] = err
}

// Calls returns the calls made so far.
func (m *API) Calls() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]string(nil), m.calls...)
}

// ResetCalls clears the call log.
func (m *API) ResetCalls() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = nil
}

// Seed stores posts and comments without recording calls.
func (m *API) Seed(posts []*models.Post, comments []*models.Comment) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, p := range posts {
		cp := *p
		cp.Comments = nil
		if _, exists := m.posts[cp.ID]; !exists {
			m.order = append(m.order, cp.ID)
		}
		m.posts[cp.ID] = &cp
	}
	for _, c := range comments {
		cc := *c
		m.comments[cc.ID] = &cc
	}
}

// record must be called with the lock held.
func (m *API) record(call string) error {
	m.calls = append(m.calls, call)
	return m.failures[call]
}

func notFound(op string) error {
	return &apiclient.APIError{Op: op, Status: 404, Msg: "Not Found"}
}

// PostAPI implementation
func (m *API) ListPosts(ctx context.Context) ([]*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record("GET /posts"); err != nil {
		return nil, err
	}
	posts := make([]*models.Post, 0, len(m.order))
	for _, id := range m.order {
		if post, exists := m.posts[id]; exists {
			cp := *post
			posts = append(posts, &cp)
		}
	}
	return posts, nil
}

func (m *API) GetPost(ctx context.Context, id models.ID) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record(fmt.Sprintf("GET /posts/%d", id)); err != nil {
		return nil, err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, notFound("get post")
	}
	cp := *post
	return &cp, nil
}

func (m *API) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record("POST /posts"); err != nil {
		return nil, err
	}
	cp := *post
	m.posts[cp.ID] = &cp
	m.order = append(m.order, cp.ID)
	created := cp
	return &created, nil
}

func (m *API) UpdatePost(ctx context.Context, id models.ID, update models.PostUpdate) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record(fmt.Sprintf("PUT /posts/%d", id)); err != nil {
		return nil, err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, notFound("update post")
	}
	post.Title = update.Title
	post.Body = update.Body
	cp := *post
	return &cp, nil
}

func (m *API) DeletePost(ctx context.Context, id models.ID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record(fmt.Sprintf("DELETE /posts/%d", id)); err != nil {
		return err
	}
	if _, exists := m.posts[id]; !exists {
		return notFound("delete post")
	}
	delete(m.posts, id)
	return nil
}

// CommentAPI implementation
func (m *API) ListComments(ctx context.Context, postID models.ID) ([]*models.Comment, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record(fmt.Sprintf("GET /comments?postId=%d", postID)); err != nil {
		return nil, err
	}
	comments := []*models.Comment{}
	for _, comment := range m.comments {
		if comment.PostID == postID {
			cc := *comment
			comments = append(comments, &cc)
		}
	}
	sortComments(comments)
	return comments, nil
}

func (m *API) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record("POST /comments"); err != nil {
		return nil, err
	}
	cc := *comment
	m.comments[cc.ID] = &cc
	created := cc
	return &created, nil
}

func (m *API) DeleteComment(ctx context.Context, id models.ID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := m.record(fmt.Sprintf("DELETE /comments/%d", id)); err != nil {
		return err
	}
	if _, exists := m.comments[id]; !exists {
		return notFound("delete comment")
	}
	delete(m.comments, id)
	return nil
}

// CommentCount returns how many comments are stored for postID.
func (m *API) CommentCount(postID models.ID) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	count := 0
	for _, comment := range m.comments {
		if comment.PostID == postID {
			count++
		}
	}
	return count
}

// HasPost reports whether id is still stored.
func (m *API) HasPost(id models.ID) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, exists := m.posts[id]
	return exists
}

func sortComments(comments []*models.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
}
