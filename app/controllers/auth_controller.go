package controllers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inkwell/app/middleware"
	"inkwell/app/models"
	"inkwell/app/services"

	"github.com/pkg/errors"
)

// AuthOptions configures the session cookie and the post-auth redirect.
type AuthOptions struct {
	SessionTTL    time.Duration
	CookieSecure  bool
	RedirectDelay time.Duration
}

// AuthController handles login, signup and logout
type AuthController struct {
	authService *services.AuthService
	renderer    *Renderer
	opts        AuthOptions
	logger      *slog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, renderer *Renderer, opts AuthOptions, logger *slog.Logger) *AuthController {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthController{
		authService: authService,
		renderer:    renderer,
		opts:        opts,
		logger:      logger,
	}
}

type authData struct {
	Username string
	Errors   *models.ValidationError
}

// LoginForm displays the login form
func (ac *AuthController) LoginForm(w http.ResponseWriter, r *http.Request) {
	ac.renderer.Render(w, r, http.StatusOK, "login", &Page{Title: "Log in", Data: authData{}})
}

// Login checks the credentials, sets the session cookie and sends the
// browser home after the redirect delay.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	creds, ok := ac.parseCredentials(w, r)
	if !ok {
		return
	}

	page := &Page{Title: "Log in", Data: authData{Username: creds.Username}}
	session, err := ac.authService.Login(creds)
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		page.Data = authData{Username: creds.Username, Errors: verr}
		ac.renderer.Render(w, r, http.StatusUnprocessableEntity, "login", page)
	case errors.Is(err, services.ErrInvalidCredentials):
		page.Error = MsgInvalidCredentials
		ac.renderer.Render(w, r, http.StatusUnauthorized, "login", page)
	case err != nil:
		ac.logger.Error("error logging in", "error", err)
		page.Error = MsgLoginFailed
		ac.renderer.Render(w, r, http.StatusInternalServerError, "login", page)
	default:
		middleware.SetSessionCookie(w, session.Token, ac.opts.SessionTTL, ac.opts.CookieSecure)
		page.Session = session
		page.Message = MsgLoginSucceeded
		page.Redirect = &Redirect{URL: "/", Seconds: redirectSeconds(ac.opts.RedirectDelay)}
		ac.renderer.Render(w, r, http.StatusOK, "login", page)
	}
}

// SignupForm displays the signup form
func (ac *AuthController) SignupForm(w http.ResponseWriter, r *http.Request) {
	ac.renderer.Render(w, r, http.StatusOK, "signup", &Page{Title: "Sign up", Data: authData{}})
}

// Signup registers the user and sends the browser to the login page after
// the redirect delay.
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	creds, ok := ac.parseCredentials(w, r)
	if !ok {
		return
	}

	page := &Page{Title: "Sign up", Data: authData{Username: creds.Username}}
	_, err := ac.authService.Signup(creds)
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		page.Data = authData{Username: creds.Username, Errors: verr}
		ac.renderer.Render(w, r, http.StatusUnprocessableEntity, "signup", page)
	case errors.Is(err, services.ErrUserExists):
		page.Error = MsgUserExists
		ac.renderer.Render(w, r, http.StatusConflict, "signup", page)
	case err != nil:
		ac.logger.Error("error signing up", "error", err)
		page.Error = MsgSignupFailed
		ac.renderer.Render(w, r, http.StatusInternalServerError, "signup", page)
	default:
		page.Message = MsgSignupSucceeded
		page.Redirect = &Redirect{URL: "/login", Seconds: redirectSeconds(ac.opts.RedirectDelay)}
		ac.renderer.Render(w, r, http.StatusOK, "signup", page)
	}
}

// Logout ends the session and returns to the page the request came from
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := ac.authService.Logout(cookie.Value); err != nil {
			ac.logger.Error("error logging out", "error", err)
		}
	}
	middleware.ClearSessionCookie(w, ac.opts.CookieSecure)
	http.Redirect(w, r, withFlash(localReferer(r), FlashSignedOut), http.StatusSeeOther)
}

func (ac *AuthController) parseCredentials(w http.ResponseWriter, r *http.Request) (models.Credentials, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return models.Credentials{}, false
	}
	return models.Credentials{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}, true
}

// localReferer returns the path of a same-host Referer, or "/".
func localReferer(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") || strings.Contains(ref.Path, "\\") {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	if ref.Path == "/login" || ref.Path == "/sign_up" {
		return "/"
	}
	return ref.Path
}
