package routes

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"inkwell/app/controllers"
	"inkwell/app/middleware"
	"inkwell/app/services"
	"inkwell/app/views"

	"github.com/gorilla/mux"
)

// Services are the dependencies the handlers are built from.
type Services struct {
	Posts    *services.PostService
	Comments *services.CommentService
	Auth     *services.AuthService
}

// Options tune the session cookie and the post-auth redirect.
type Options struct {
	SessionTTL    time.Duration
	CookieSecure  bool
	RedirectDelay time.Duration
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(svc Services, opts Options, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.Default()
	}
	router := mux.NewRouter()

	// Apply global middleware
	chain := []mux.MiddlewareFunc{
		middleware.Logger(logger),
		middleware.Recoverer(logger),
		middleware.Session(svc.Auth, opts.CookieSecure, logger),
	}
	router.Use(chain...)

	renderer := controllers.NewRenderer(logger)
	postController := controllers.NewPostController(svc.Posts, renderer, logger)
	commentController := controllers.NewCommentController(svc.Comments, postController, logger)
	authController := controllers.NewAuthController(svc.Auth, renderer, controllers.AuthOptions{
		SessionTTL:    opts.SessionTTL,
		CookieSecure:  opts.CookieSecure,
		RedirectDelay: opts.RedirectDelay,
	}, logger)

	// Unmatched requests bypass router.Use, so wrap the 404 page in the same chain.
	var notFound http.Handler = http.HandlerFunc(renderer.NotFound)
	for i := len(chain) - 1; i >= 0; i-- {
		notFound = chain[i](notFound)
	}
	router.NotFoundHandler = notFound

	// Serve static files
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(views.Static()))))
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "OK")
	}).Methods("GET")

	// Posts
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/post/{id}", postController.Show).Methods("GET")
	router.HandleFunc("/post/{id}/delete", postController.Delete).Methods("POST")
	router.HandleFunc("/new-post", postController.New).Methods("GET")
	router.HandleFunc("/new-post", postController.Create).Methods("POST")
	router.HandleFunc("/edit-post/{id}", postController.Edit).Methods("GET")
	router.HandleFunc("/edit-post/{id}", postController.Update).Methods("POST")

	// Comments
	router.HandleFunc("/post/{id}/comments", commentController.Create).Methods("POST")
	router.HandleFunc("/post/{id}/comments/{commentId}/delete", commentController.Delete).Methods("POST")

	// Auth
	router.HandleFunc("/login", authController.LoginForm).Methods("GET")
	router.HandleFunc("/login", authController.Login).Methods("POST")
	router.HandleFunc("/sign_up", authController.SignupForm).Methods("GET")
	router.HandleFunc("/sign_up", authController.Signup).Methods("POST")
	router.HandleFunc("/logout", authController.Logout).Methods("POST")

	return router
}

// NewServer wraps router in an http.Server with conservative timeouts.
func NewServer(addr string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
