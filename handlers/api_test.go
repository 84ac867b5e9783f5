package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"keijiban/auth"
	"keijiban/config"
	"keijiban/handlers"
	"keijiban/models"
	"keijiban/routes"
	"keijiban/services"
	"keijiban/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, mode, adminKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:          "0",
		AuthMode:      mode,
		AdminKey:      adminKey,
		JWTSecret:     "test-secret",
		StorageDriver: config.DriverFile,
		DataFile:      filepath.Join(t.TempDir(), "db.json"),
	}
	st := store.NewFileStore(cfg.DataFile, services.BootstrapDocument(mode == config.AuthModeRole))

	h := &handlers.Handler{Cfg: cfg, Posts: services.NewPostService(st)}
	if mode == config.AuthModeRole {
		users := services.NewUserService(st)
		h.Users = users
		h.Authz = &auth.RoleAuthorizer{Users: users}
	} else {
		h.Authz = &auth.KeyAuthorizer{Key: adminKey}
	}
	return routes.SetupRouter(cfg, h)
}

func do(t *testing.T, router *gin.Engine, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func login(t *testing.T, router *gin.Engine, username, password string) (userID, token string) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/kanri/login", gin.H{"username": username, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]any](t, w)
	require.Equal(t, true, resp["success"])
	return resp["userId"].(string), resp["token"].(string)
}

func TestBoardEndToEnd(t *testing.T) {
	router := newServer(t, config.AuthModeRole, "")

	// An empty board lists as [], not null.
	w := do(t, router, http.MethodGet, "/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())

	w = do(t, router, http.MethodPost, "/posts",
		gin.H{"title": "T", "author": "A", "content": "C", "category": "cat1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/posts?category=cat1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decode[[]models.Post](t, w)
	require.Len(t, posts, 1)
	require.Equal(t, "T", posts[0].Title)
	post := posts[0]

	w = do(t, router, http.MethodGet, "/posts?category=other", nil, nil)
	require.JSONEq(t, "[]", w.Body.String())

	w = do(t, router, http.MethodPost, "/posts/no-such-id/comments",
		gin.H{"author": "X", "content": "hi"}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, "/posts/"+post.ID+"/comments",
		gin.H{"author": "X", "content": "hi"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/posts", nil, nil)
	posts = decode[[]models.Post](t, w)
	require.Len(t, posts[0].Comments, 1)

	adminID, _ := login(t, router, "admin", "admin123")

	w = do(t, router, http.MethodPost, "/kanri/delete-post/"+post.ID+"?userId="+adminID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())

	w = do(t, router, http.MethodGet, "/posts", nil, nil)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newServer(t, config.AuthModeRole, "")

	w := do(t, router, http.MethodPost, "/kanri/login",
		gin.H{"username": "admin", "password": "nope"}, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPost, "/kanri/login",
		gin.H{"username": "ghost", "password": "admin123"}, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminEndpointsRejectNonAdmins(t *testing.T) {
	router := newServer(t, config.AuthModeRole, "")
	adminID, _ := login(t, router, "admin", "admin123")

	w := do(t, router, http.MethodPost, "/kanri/create-user",
		gin.H{"username": "alice", "password": "pw", "role": "user", "adminId": adminID}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[map[string]any](t, w)
	aliceID := created["user"].(map[string]any)["id"].(string)

	w = do(t, router, http.MethodPost, "/posts", gin.H{"title": "keep"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{
		"/kanri/data?userId=" + aliceID,
		"/kanri/data?userId=unknown",
		"/kanri/data",
		"/kanri/users?userId=" + aliceID,
	} {
		w = do(t, router, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusForbidden, w.Code, path)
	}

	w = do(t, router, http.MethodPost, "/kanri/delete-post/some-id?userId="+aliceID, nil, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPost, "/kanri/create-user",
		gin.H{"username": "bob", "password": "pw", "role": "user", "adminId": aliceID}, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Nothing changed behind the rejections.
	w = do(t, router, http.MethodGet, "/posts", nil, nil)
	posts := decode[[]models.Post](t, w)
	require.Len(t, posts, 1)
	w = do(t, router, http.MethodGet, "/kanri/users?userId="+adminID, nil, nil)
	users := decode[[]models.User](t, w)
	require.Len(t, users, 2)
}

func TestUserManagement(t *testing.T) {
	router := newServer(t, config.AuthModeRole, "")
	adminID, _ := login(t, router, "admin", "admin123")

	w := do(t, router, http.MethodPost, "/kanri/create-user",
		gin.H{"username": "alice", "password": "pw", "role": "user", "adminId": adminID}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	aliceID := decode[map[string]any](t, w)["user"].(map[string]any)["id"].(string)

	// Password material never appears in responses.
	w = do(t, router, http.MethodGet, "/kanri/users?userId="+adminID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "password")
	require.NotContains(t, w.Body.String(), "$2a$")

	w = do(t, router, http.MethodPost, "/kanri/update-role/"+aliceID,
		gin.H{"userId": adminID, "newRole": "admin"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]any](t, w)
	require.Equal(t, "admin", resp["user"].(map[string]any)["role"])

	// Unknown target: success with a null user, nothing else changes.
	w = do(t, router, http.MethodPost, "/kanri/update-role/never-existed",
		gin.H{"userId": adminID, "newRole": "admin"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[map[string]any](t, w)
	require.Nil(t, resp["user"])

	w = do(t, router, http.MethodPost, "/kanri/delete-user/"+aliceID+"?userId="+adminID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())

	w = do(t, router, http.MethodPost, "/kanri/delete-user/"+aliceID+"?userId="+adminID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/kanri/users?userId="+adminID, nil, nil)
	users := decode[[]models.User](t, w)
	require.Len(t, users, 1)
}

func TestBearerTokenAuthorizesAdmin(t *testing.T) {
	router := newServer(t, config.AuthModeRole, "")
	_, token := login(t, router, "admin", "admin123")

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	w := do(t, router, http.MethodGet, "/kanri/data", nil, header)
	require.Equal(t, http.StatusOK, w.Code)

	header = http.Header{"Authorization": []string{"Bearer not-a-token"}}
	w = do(t, router, http.MethodGet, "/kanri/data", nil, header)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestKanriPage(t *testing.T) {
	router := newServer(t, config.AuthModeRole, "")
	w := do(t, router, http.MethodGet, "/kanri", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Admin login")
	require.Contains(t, w.Body.String(), "loadPosts")
}

func TestUnknownEndpointIsJSON404(t *testing.T) {
	router := newServer(t, config.AuthModeRole, "")
	w := do(t, router, http.MethodGet, "/api/no-such-thing", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[map[string]any](t, w)
	require.Equal(t, "endpoint not found", resp["error"])
}
