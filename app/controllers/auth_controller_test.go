package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/app/middleware"
	"inkwell/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestAuthControllerSignup(t *testing.T) {
	app := setupTestApp(t)

	t.Run("form", func(t *testing.T) {
		w := app.get("/sign_up")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, parseDoc(t, w).Find(`form[action="/sign_up"]`).Length())
	})

	t.Run("missing fields", func(t *testing.T) {
		w := app.post("/sign_up", url.Values{"username": {""}, "password": {""}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		doc := parseDoc(t, w)
		errs := doc.Find(".field-error")
		require.Equal(t, 2, errs.Length())
		assert.Equal(t, "Username is required", errs.Eq(0).Text())
		assert.Equal(t, "Password is required", errs.Eq(1).Text())
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		w := app.post("/sign_up", url.Values{"username": {"alice"}, "password": {strings.Repeat("p", 73)}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		doc := parseDoc(t, w)
		assert.Equal(t, "Password must be at most 72 bytes", doc.Find(".field-error").Text())
		assert.Empty(t, flashText(doc, "error"))
	})

	t.Run("success redirects to login", func(t *testing.T) {
		w := app.post("/sign_up", url.Values{"username": {"alice"}, "password": {"pw1"}})
		require.Equal(t, http.StatusOK, w.Code)

		doc := parseDoc(t, w)
		assert.Equal(t, "Signup successful! You can now log in.", flashText(doc, "success"))
		refresh, _ := doc.Find(`meta[http-equiv="refresh"]`).Attr("content")
		assert.Equal(t, "1;url=/login", refresh)
		assert.Nil(t, sessionCookie(w))
	})

	t.Run("duplicate username", func(t *testing.T) {
		w := app.post("/sign_up", url.Values{"username": {"alice"}, "password": {"other"}})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "User already exists", flashText(parseDoc(t, w), "error"))

		users, err := app.auth.ListUsers()
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestAuthControllerLogin(t *testing.T) {
	app := setupTestApp(t)
	_, err := app.auth.Signup(models.Credentials{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		w := app.post("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", flashText(parseDoc(t, w), "error"))
		assert.Nil(t, sessionCookie(w))
	})

	t.Run("missing password", func(t *testing.T) {
		w := app.post("/login", url.Values{"username": {"alice"}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Password is required", parseDoc(t, w).Find(".field-error").Text())
	})

	t.Run("success sets the cookie", func(t *testing.T) {
		w := app.post("/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
		require.Equal(t, http.StatusOK, w.Code)

		doc := parseDoc(t, w)
		assert.Equal(t, "Login successful!", flashText(doc, "success"))
		refresh, _ := doc.Find(`meta[http-equiv="refresh"]`).Attr("content")
		assert.Equal(t, "1;url=/", refresh)

		cookie := sessionCookie(w)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)

		home := parseDoc(t, app.get("/", cookie))
		assert.Contains(t, home.Find(".whoami").Text(), "alice")
	})
}

func TestAuthControllerLogout(t *testing.T) {
	app := setupTestApp(t)
	seedPost(app, 1)
	cookie := app.login(t, "alice")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Referer", "http://example.com/post/1")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/post/1?msg=signed-out", w.Header().Get("Location"))
	cleared := sessionCookie(w)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	doc := parseDoc(t, app.get("/post/1?msg=signed-out", cookie))
	assert.Equal(t, "Signed out successfully!", flashText(doc, "success"))
	assert.Zero(t, doc.Find(".whoami").Length())

	t.Run("without a session", func(t *testing.T) {
		w := app.post("/logout", nil)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/?msg=signed-out", w.Header().Get("Location"))
	})
}

func TestLocalReferer(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{"", "/"},
		{"http://example.com/post/3", "/post/3"},
		{"http://evil.test/post/3", "/"},
		{"/edit-post/2", "/edit-post/2"},
		{"http://example.com/login", "/"},
		{"//evil.test/x", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.referer, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/logout", nil)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			assert.Equal(t, tt.want, localReferer(req))
		})
	}
}
