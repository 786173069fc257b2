package handlers_test

import (
	"net/http"
	"testing"

	"keepcooking/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupLogsUserIn(t *testing.T) {
	r, _ := newTestApp(t)

	cookies := signup(t, r, "alice")
	cookie := sessionCookie(cookies)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	w := doJSON(r, http.MethodGet, "/api/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, float64(0), body["points"])
	assert.Equal(t, float64(0), body["level"])
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	r, _ := newTestApp(t)
	signup(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/signup", gin.H{
		"username": "alice",
		"email":    "other@example.com",
		"password": "hunter2!",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already taken", decodeBody(t, w)["error"])

	// A duplicate email with a fresh username is allowed.
	w = doJSON(r, http.MethodPost, "/api/signup", gin.H{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "hunter2!",
	}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSignupValidation(t *testing.T) {
	r, _ := newTestApp(t)

	tests := []struct {
		name string
		body gin.H
		want string
	}{
		{"missing username", gin.H{"email": "a@b.com", "password": "x"}, "Username required"},
		{"missing email", gin.H{"username": "a", "password": "x"}, "Email required"},
		{"missing password", gin.H{"username": "a", "email": "a@b.com"}, "Password required"},
		{"bad email", gin.H{"username": "a", "email": "not-an-email", "password": "x"}, "Please enter a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/signup", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decodeBody(t, w)["error"])
		})
	}
}

func TestLogin(t *testing.T) {
	r, _ := newTestApp(t)
	signup(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/login", gin.H{
		"username": "alice", "password": "hunter2!",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessionCookie(w.Result().Cookies()))

	w = doJSON(r, http.MethodPost, "/api/login", gin.H{
		"username": "alice", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, w)["error"])

	w = doJSON(r, http.MethodPost, "/api/login", gin.H{
		"username": "nobody", "password": "hunter2!",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/login", gin.H{"username": "alice"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username and Password required", decodeBody(t, w)["error"])
}

func TestMeUnauthenticated(t *testing.T) {
	r, _ := newTestApp(t)

	w := doJSON(r, http.MethodGet, "/api/me", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["authenticated"])
}

func TestLogoutClearsSession(t *testing.T) {
	r, _ := newTestApp(t)
	cookies := signup(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := sessionCookie(w.Result().Cookies())
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r, _ := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/my-posts"},
		{http.MethodPost, "/api/search"},
		{http.MethodPost, "/api/posts/1/upvote"},
		{http.MethodPost, "/api/remove-account"},
	} {
		w := doJSON(r, route.method, route.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.Equal(t, "Not authenticated", decodeBody(t, w)["error"])
	}
}

func TestRemoveAccount(t *testing.T) {
	r, gdb := newTestApp(t)
	cookies := signup(t, r, "alice")
	alice := userByName(t, gdb, "alice")
	seedPost(t, gdb, alice.ID, false)

	w := doJSON(r, http.MethodPost, "/api/remove-account", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var users, posts int64
	require.NoError(t, gdb.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, gdb.Model(&models.Post{}).Count(&posts).Error)
	assert.EqualValues(t, 0, users)
	assert.EqualValues(t, 0, posts)

	// The old cookie now resolves to nothing.
	w = doJSON(r, http.MethodGet, "/api/me", nil, cookies)
	assert.Equal(t, false, decodeBody(t, w)["authenticated"])
}
