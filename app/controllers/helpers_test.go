package controllers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inkwell/app/apiclient/mock"
	"inkwell/app/middleware"
	"inkwell/app/models"
	"inkwell/app/repositories"
	"inkwell/app/services"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testApp struct {
	router *mux.Router
	api    *mock.API
	auth   *services.AuthService
}

func setupTestApp(t *testing.T) *testApp {
	db, err := repositories.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	api := mock.NewAPI()
	postService := services.NewPostService(api, api, time.Nanosecond, testLogger)
	commentService := services.NewCommentService(api, testLogger)
	authService := services.NewAuthService(
		repositories.NewBadgerUserRepository(db),
		repositories.NewBadgerSessionRepository(db),
		0,
		testLogger,
	)
	authService.SetHashCost(bcrypt.MinCost)

	renderer := NewRenderer(testLogger)
	postController := NewPostController(postService, renderer, testLogger)
	commentController := NewCommentController(commentService, postController, testLogger)
	authController := NewAuthController(authService, renderer, AuthOptions{RedirectDelay: time.Second}, testLogger)

	// Register routes manually to keep these tests independent of the routes package.
	router := mux.NewRouter()
	router.Use(middleware.Session(authService, false, testLogger))
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/post/{id}", postController.Show).Methods("GET")
	router.HandleFunc("/post/{id}/delete", postController.Delete).Methods("POST")
	router.HandleFunc("/post/{id}/comments", commentController.Create).Methods("POST")
	router.HandleFunc("/post/{id}/comments/{commentId}/delete", commentController.Delete).Methods("POST")
	router.HandleFunc("/new-post", postController.New).Methods("GET")
	router.HandleFunc("/new-post", postController.Create).Methods("POST")
	router.HandleFunc("/edit-post/{id}", postController.Edit).Methods("GET")
	router.HandleFunc("/edit-post/{id}", postController.Update).Methods("POST")
	router.HandleFunc("/login", authController.LoginForm).Methods("GET")
	router.HandleFunc("/login", authController.Login).Methods("POST")
	router.HandleFunc("/sign_up", authController.SignupForm).Methods("GET")
	router.HandleFunc("/sign_up", authController.Signup).Methods("POST")
	router.HandleFunc("/logout", authController.Logout).Methods("POST")

	return &testApp{router: router, api: api, auth: authService}
}

// login registers username and returns a cookie for a fresh session.
func (a *testApp) login(t *testing.T, username string) *http.Cookie {
	creds := models.Credentials{Username: username, Password: "secret"}
	_, err := a.auth.Signup(creds)
	require.NoError(t, err)
	session, err := a.auth.Login(creds)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: session.Token}
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) post(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func parseDoc(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return doc
}

func flashText(doc *goquery.Document, kind string) string {
	return strings.TrimSpace(doc.Find(".flash." + kind).Text())
}
