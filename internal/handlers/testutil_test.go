package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"keepcooking/internal/db"
	"keepcooking/internal/models"
	"keepcooking/internal/router"
	"keepcooking/internal/services"
	"keepcooking/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestApp wires the full router against an in-memory database and a fake
// LLM endpoint. The fake answers rating requests (recognized by their JSON
// response format) with a fixed verdict and everything else with a fixed
// recipe.
func newTestApp(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "handler-test-secret")
	t.Setenv("IMAGE_UPLOAD_DIR", t.TempDir())
	t.Setenv("THEMEALDB_API_KEY", "1")
	t.Setenv("THEMEALDB_BASE_URL", "http://unused.invalid")

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req services.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" {
			fmt.Fprint(w, chatReply(`{"rating": 4, "response": "Well cooked.", "valid_image": true}`))
			return
		}
		fmt.Fprint(w, chatReply(`{"title": "Beef Rendang", "message": "Simmer the beef.", "image_url": "https://example.com/rendang.jpg", "video_url": ""}`))
	}))
	t.Cleanup(llm.Close)
	t.Setenv("LLM_BASE_URL", llm.URL)
	t.Setenv("LLM_TOKEN", "test-token")
	t.Setenv("LLM_MODEL", "test-model")

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	r := gin.New()
	router.RegisterRoutes(r, gdb)
	return r, gdb
}

func chatReply(content string) string {
	encoded, _ := json.Marshal(content)
	return fmt.Sprintf(`{"choices": [{"message": {"role": "assistant", "content": %s}, "finish_reason": "stop"}]}`, encoded)
}

func doJSON(r *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// signup registers a fresh account and returns its session cookies.
func signup(t *testing.T, r *gin.Engine, username string) []*http.Cookie {
	t.Helper()

	w := doJSON(r, http.MethodPost, "/api/signup", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter2!",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func userByName(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, gdb.Where("username = ?", username).First(&user).Error)
	return &user
}

func seedPost(t *testing.T, gdb *gorm.DB, userID uint, hidden bool) *models.Post {
	t.Helper()

	post := models.Post{
		UserID:     userID,
		Hidden:     hidden,
		Title:      "Beef Rendang",
		Message:    "Simmer the beef until tender.",
		DatePosted: time.Now(),
	}
	require.NoError(t, gdb.Create(&post).Error)
	return &post
}

func sessionCookie(cookies []*http.Cookie) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == utils.CookieName {
			return cookie
		}
	}
	return nil
}
