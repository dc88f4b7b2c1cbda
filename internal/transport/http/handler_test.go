package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	authErrors "github.com/taskflowhq/taskflow/internal/auth/errors"
	"github.com/taskflowhq/taskflow/internal/auth/hash"
	"github.com/taskflowhq/taskflow/internal/auth/jwt"
	"github.com/taskflowhq/taskflow/internal/auth/model"
	authservice "github.com/taskflowhq/taskflow/internal/auth/service"
	"github.com/taskflowhq/taskflow/internal/config"
	"github.com/taskflowhq/taskflow/internal/tasks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type userRepoStub struct {
	users  map[string]model.User
	nextID int64
}

func (u *userRepoStub) CreateUser(ctx context.Context, m model.User) (int64, error) {
	if _, ok := u.users[m.Email]; ok {
		return 0, authErrors.ErrAlreadyExists
	}
	u.nextID++
	m.ID = u.nextID
	u.users[m.Email] = m
	return m.ID, nil
}

func (u *userRepoStub) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	m, ok := u.users[email]
	if !ok {
		return model.User{}, authErrors.ErrNotFound
	}
	return m, nil
}

func (u *userRepoStub) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	for _, m := range u.users {
		if m.ID == id {
			return m, nil
		}
	}
	return model.User{}, authErrors.ErrNotFound
}

type taskRepoStub struct {
	tasks  map[int64]tasks.Task
	nextID int64
}

func (r *taskRepoStub) Create(ctx context.Context, task *tasks.Task) error {
	r.nextID++
	task.ID = r.nextID
	r.tasks[task.ID] = *task
	return nil
}

func (r *taskRepoStub) ListByUser(ctx context.Context, userID int64) ([]tasks.Task, error) {
	var out []tasks.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *taskRepoStub) GetOwned(ctx context.Context, id, userID int64) (tasks.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return tasks.Task{}, authErrors.ErrNotFound
	}
	return t, nil
}

func (r *taskRepoStub) Save(ctx context.Context, task *tasks.Task) error {
	r.tasks[task.ID] = *task
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTokenTTL:   time.Minute,
		RefreshTokenTTL:  time.Hour,
		JWTIssuer:        "test",
		Environment:      "development",
	}
	v := validator.New()
	issuer := jwt.NewTokenIssuer(cfg)
	authSvc := authservice.New(&userRepoStub{users: make(map[string]model.User)}, nil, issuer, hash.New(""), v)
	taskSvc := tasks.NewService(&taskRepoStub{tasks: make(map[int64]tasks.Task)}, v)

	h := NewHandler(authSvc, taskSvc, issuer, cfg, zap.NewNop())
	return NewRouter(h, zap.NewNop(), cfg)
}

func doJSON(router *gin.Engine, method, path, body string, mod func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if mod != nil {
		mod(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine, email, password string) (accessToken string, refreshCookie *http.Cookie) {
	t.Helper()

	creds := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	w := doJSON(router, http.MethodPost, "/auth/register", creds, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/login", creds, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie)
	return resp.AccessToken, refreshCookie
}

func TestRegister_Lifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"pw123456"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"message":"User registered successfully","userId":1}`, w.Body.String())

	w = doJSON(router, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"other"}`, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.JSONEq(t, `{"error":"Email already registered"}`, w.Body.String())
}

func TestRegister_MissingFields(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/register", `{"email":"a@x.com"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Email and password are required"}`, w.Body.String())
}

func TestLogin_SetsProtectedCookie(t *testing.T) {
	router := newTestRouter(t)

	_, cookie := registerAndLogin(t, router, "a@x.com", "pw123456")

	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	require.False(t, cookie.Secure) // development mode
	require.InDelta(t, time.Hour.Seconds(), float64(cookie.MaxAge), 5)
	require.Equal(t, "/", cookie.Path)
}

func TestLogin_FailuresAreByteIdentical(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"pw123456"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	unknown := doJSON(router, http.MethodPost, "/auth/login", `{"email":"nobody@x.com","password":"pw123456"}`, nil)
	wrongPw := doJSON(router, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"wrong"}`, nil)

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	require.Equal(t, unknown.Body.Bytes(), wrongPw.Body.Bytes())
	require.JSONEq(t, `{"error":"Invalid email or password"}`, unknown.Body.String())
}

func TestRefresh_Lifecycle(t *testing.T) {
	router := newTestRouter(t)

	// No cookie at all.
	w := doJSON(router, http.MethodPost, "/auth/refresh", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"No refresh token provided"}`, w.Body.String())

	_, cookie := registerAndLogin(t, router, "a@x.com", "pw123456")

	w = doJSON(router, http.MethodPost, "/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(cookie)
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	// Refresh must not rotate the cookie.
	require.Empty(t, w.Result().Cookies())
}

func TestRefresh_TamperedToken(t *testing.T) {
	router := newTestRouter(t)

	_, cookie := registerAndLogin(t, router, "a@x.com", "pw123456")

	parts := strings.Split(cookie.Value, ".")
	tampered := &http.Cookie{
		Name:  cookie.Name,
		Value: parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2])),
	}

	w := doJSON(router, http.MethodPost, "/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(tampered)
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"Invalid or expired refresh token"}`, w.Body.String())
}

func TestLogout_ClearsCookie(t *testing.T) {
	router := newTestRouter(t)

	_, cookie := registerAndLogin(t, router, "a@x.com", "pw123456")

	w := doJSON(router, http.MethodPost, "/auth/logout", "", func(r *http.Request) {
		r.AddCookie(cookie)
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Logged out successfully"}`, w.Body.String())

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)
}

func TestAuthorizationGate(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/tasks", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"No token provided"}`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/tasks", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"Invalid or expired token"}`, w.Body.String())

	access, cookie := registerAndLogin(t, router, "a@x.com", "pw123456")

	// A refresh token must not pass the access gate.
	w = doJSON(router, http.MethodGet, "/tasks", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+cookie.Value)
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/tasks", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access)
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Tasks retrieved successfully","tasks":[]}`, w.Body.String())
}

func TestTasks_CrudAndOwnership(t *testing.T) {
	router := newTestRouter(t)

	alice, _ := registerAndLogin(t, router, "alice@x.com", "pw123456")
	bob, _ := registerAndLogin(t, router, "bob@x.com", "pw123456")

	bearer := func(token string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
	}

	w := doJSON(router, http.MethodPost, "/tasks", `{"inputText":"crunch numbers"}`, bearer(alice))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Task tasks.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, tasks.StatusPending, created.Task.Status)

	w = doJSON(router, http.MethodPost, "/tasks", `{}`, bearer(alice))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"inputText is required"}`, w.Body.String())

	taskPath := fmt.Sprintf("/tasks/%d", created.Task.ID)

	// Foreign task and absent task return the same 404 shape.
	foreign := doJSON(router, http.MethodGet, taskPath, "", bearer(bob))
	absent := doJSON(router, http.MethodGet, "/tasks/9999", "", bearer(bob))
	require.Equal(t, http.StatusNotFound, foreign.Code)
	require.Equal(t, http.StatusNotFound, absent.Code)
	require.Equal(t, foreign.Body.Bytes(), absent.Body.Bytes())

	w = doJSON(router, http.MethodPatch, taskPath+"/progress", `{"progress":40}`, bearer(alice))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Task progress updated","progress":40}`, w.Body.String())

	w = doJSON(router, http.MethodPut, taskPath, `{"result":"42"}`, bearer(alice))
	require.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Task tasks.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, tasks.StatusCompleted, updated.Task.Status)
	require.Equal(t, 100, updated.Task.Progress)
}
