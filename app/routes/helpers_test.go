package routes

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"inkwell/app/apiclient"
	"inkwell/app/models"
	"inkwell/app/repositories"
	"inkwell/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeJSONServer mimics the posts/comments REST API the blog reads from.
type fakeJSONServer struct {
	mu       sync.Mutex
	posts    []*models.Post
	comments []*models.Comment
	requests []string
}

func (f *fakeJSONServer) handler() http.Handler {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.requests = append(f.requests, req.Method+" "+req.URL.RequestURI())
			f.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/posts", f.listPosts).Methods("GET")
	r.HandleFunc("/posts", f.createPost).Methods("POST")
	r.HandleFunc("/posts/{id}", f.getPost).Methods("GET")
	r.HandleFunc("/posts/{id}", f.updatePost).Methods("PUT")
	r.HandleFunc("/posts/{id}", f.deletePost).Methods("DELETE")
	r.HandleFunc("/comments", f.listComments).Methods("GET")
	r.HandleFunc("/comments", f.createComment).Methods("POST")
	r.HandleFunc("/comments/{id}", f.deleteComment).Methods("DELETE")
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func varID(r *http.Request) models.ID {
	id, _ := models.ParseID(mux.Vars(r)["id"])
	return id
}

func (f *fakeJSONServer) listPosts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.posts)
}

func (f *fakeJSONServer) findPost(id models.ID) (int, *models.Post) {
	for i, p := range f.posts {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (f *fakeJSONServer) getPost(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, post := f.findPost(varID(r)); post != nil {
		writeJSON(w, http.StatusOK, post)
		return
	}
	writeJSON(w, http.StatusNotFound, struct{}{})
}

func (f *fakeJSONServer) createPost(w http.ResponseWriter, r *http.Request) {
	var post models.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		writeJSON(w, http.StatusBadRequest, struct{}{})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, &post)
	writeJSON(w, http.StatusCreated, post)
}

func (f *fakeJSONServer) updatePost(w http.ResponseWriter, r *http.Request) {
	var update models.PostUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, struct{}{})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, post := f.findPost(varID(r))
	if post == nil {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	post.Title, post.Body = update.Title, update.Body
	writeJSON(w, http.StatusOK, post)
}

func (f *fakeJSONServer) deletePost(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, post := f.findPost(varID(r))
	if post == nil {
		writeJSON(w, http.StatusNotFound, struct{}{})
		return
	}
	f.posts = append(f.posts[:i], f.posts[i+1:]...)
	writeJSON(w, http.StatusOK, struct{}{})
}

func (f *fakeJSONServer) listComments(w http.ResponseWriter, r *http.Request) {
	postID, _ := models.ParseID(r.URL.Query().Get("postId"))
	f.mu.Lock()
	defer f.mu.Unlock()
	comments := []*models.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (f *fakeJSONServer) createComment(w http.ResponseWriter, r *http.Request) {
	var comment models.Comment
	if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
		writeJSON(w, http.StatusBadRequest, struct{}{})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, &comment)
	writeJSON(w, http.StatusCreated, comment)
}

func (f *fakeJSONServer) deleteComment(w http.ResponseWriter, r *http.Request) {
	id := varID(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.comments {
		if c.ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, struct{}{})
}

func (f *fakeJSONServer) seed(posts ...*models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, posts...)
}

func (f *fakeJSONServer) allPosts() []*models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Post(nil), f.posts...)
}

func (f *fakeJSONServer) commentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.comments)
}

func (f *fakeJSONServer) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

type testEnv struct {
	router http.Handler
	api    *fakeJSONServer
	auth   *services.AuthService
}

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWithOptions(t, Options{RedirectDelay: time.Second})
}

func setupTestEnvWithOptions(t *testing.T, opts Options) *testEnv {
	api := &fakeJSONServer{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	db, err := repositories.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := apiclient.New(srv.URL, 5*time.Second)
	auth := services.NewAuthService(
		repositories.NewBadgerUserRepository(db),
		repositories.NewBadgerSessionRepository(db),
		0,
		testLogger,
	)
	auth.SetHashCost(bcrypt.MinCost)

	router := SetupRoutes(Services{
		Posts:    services.NewPostService(client, client, 10*time.Second, testLogger),
		Comments: services.NewCommentService(client, testLogger),
		Auth:     auth,
	}, opts, testLogger)

	return &testEnv{router: router, api: api, auth: auth}
}
