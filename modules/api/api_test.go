package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/task-tracker/domain/apperror"
	domain "github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "6f1c2a9e-3b4d-4c5e-8f70-112233445566"
	bob   = "0a9b8c7d-6e5f-4a3b-9c2d-aabbccddeeff"
)

type mockAccounts struct {
	signupFunc     func(ctx context.Context, req *auth.SignupRequest) (*auth.SessionResponse, error)
	signinFunc     func(ctx context.Context, req *auth.SigninRequest) (*auth.SessionResponse, error)
	getProfileFunc func(ctx context.Context, userID string) (*auth.GetProfileResponse, error)
}

func (m *mockAccounts) Signup(ctx context.Context, req *auth.SignupRequest) (*auth.SessionResponse, error) {
	if m.signupFunc != nil {
		return m.signupFunc(ctx, req)
	}
	return nil, fmt.Errorf("signup not expected")
}

func (m *mockAccounts) Signin(ctx context.Context, req *auth.SigninRequest) (*auth.SessionResponse, error) {
	if m.signinFunc != nil {
		return m.signinFunc(ctx, req)
	}
	return nil, fmt.Errorf("signin not expected")
}

func (m *mockAccounts) GetProfile(ctx context.Context, userID string) (*auth.GetProfileResponse, error) {
	if m.getProfileFunc != nil {
		return m.getProfileFunc(ctx, userID)
	}
	return nil, fmt.Errorf("get profile not expected")
}

type mockTasks struct {
	createFunc   func(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskResponse, error)
	listFunc     func(ctx context.Context, userID string) (*task.ListTasksResponse, error)
	getFunc      func(ctx context.Context, userID string, taskID uint) (*task.TaskResponse, error)
	updateFunc   func(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error)
	completeFunc func(ctx context.Context, userID string, taskID uint) (*task.TaskResponse, error)
	deleteFunc   func(ctx context.Context, userID string, taskID uint) error
}

func (m *mockTasks) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.TaskResponse, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, fmt.Errorf("create not expected")
}

func (m *mockTasks) ListTasks(ctx context.Context, userID string) (*task.ListTasksResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID)
	}
	return nil, fmt.Errorf("list not expected")
}

func (m *mockTasks) GetTask(ctx context.Context, userID string, taskID uint) (*task.TaskResponse, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID, taskID)
	}
	return nil, fmt.Errorf("get not expected")
}

func (m *mockTasks) UpdateTask(ctx context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, req)
	}
	return nil, fmt.Errorf("update not expected")
}

func (m *mockTasks) CompleteTask(ctx context.Context, userID string, taskID uint) (*task.TaskResponse, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, userID, taskID)
	}
	return nil, fmt.Errorf("complete not expected")
}

func (m *mockTasks) DeleteTask(ctx context.Context, userID string, taskID uint) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID, taskID)
	}
	return fmt.Errorf("delete not expected")
}

type mockActivity struct {
	counts map[string]activity.Counts
}

func (m *mockActivity) GetActivity(_ context.Context, userID string) (*activity.ActivityResponse, error) {
	return &activity.ActivityResponse{Counts: m.counts[userID]}, nil
}

type stubCheck struct {
	name    string
	healthy bool
}

func (s stubCheck) Name() string { return s.name }

func (s stubCheck) Health(context.Context) mono.HealthStatus {
	return mono.HealthStatus{Healthy: s.healthy, Message: "stub"}
}

type testServer struct {
	app    *fiber.App
	module *APIModule
	tokens *auth.JWTManager
	now    time.Time
}

func newTestServer(t *testing.T, accounts auth.AccountPort, tasks task.TaskPort, checks ...HealthChecker) *testServer {
	t.Helper()
	s := &testServer{now: time.Now()}

	tokens, err := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:     "api-test-secret",
		TokenDuration: 15 * time.Minute,
		Issuer:        "api-test",
	}, auth.WithClock(func() time.Time { return s.now }))
	require.NoError(t, err)
	s.tokens = tokens

	m := NewModule(Config{Addr: ":0"}, auth.NewIdentityResolver(tokens), checks...)
	m.accounts = accounts
	m.tasks = tasks
	m.activity = &mockActivity{}
	s.module = m
	s.app = m.newApp()
	return s
}

func (s *testServer) withActivity(port activity.ActivityPort) *testServer {
	s.module.activity = port
	s.app = s.module.newApp()
	return s
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.tokens.Issue(userID, userID+"@example.com")
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func sampleTask(id uint, owner string) *task.TaskResponse {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &task.TaskResponse{
		ID:          id,
		Title:       "write tests",
		Completed:   false,
		OwnerUserID: owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestAuthMiddleware_RejectsWithUniformResponse(t *testing.T) {
	s := newTestServer(t, &mockAccounts{}, &mockTasks{})
	valid := s.token(t, alice)

	s.now = s.now.Add(-time.Hour)
	expired := s.token(t, alice)
	s.now = s.now.Add(time.Hour)

	tests := []struct {
		name          string
		authorization string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + valid},
		{"no token", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
		{"extra fields", "Bearer " + valid + " extra"},
		{"expired token", "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			resp, err := s.app.Test(req, -1)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
			body := decode[ErrorResponse](t, resp)
			assert.Equal(t, ErrorResponse{Error: "unauthorized", Message: "Invalid or missing credentials"}, body)
		})
	}
}

func TestAuthMiddleware_AcceptsLowercaseScheme(t *testing.T) {
	tasks := &mockTasks{
		listFunc: func(_ context.Context, userID string) (*task.ListTasksResponse, error) {
			return &task.ListTasksResponse{Tasks: []task.TaskResponse{}}, nil
		},
	}
	s := newTestServer(t, &mockAccounts{}, tasks)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "bearer "+s.token(t, alice))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSignup(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	accounts := &mockAccounts{
		signupFunc: func(_ context.Context, req *auth.SignupRequest) (*auth.SessionResponse, error) {
			switch req.Email {
			case "taken@example.com":
				return nil, apperror.ErrEmailTaken
			case "bad":
				return nil, apperror.Validation("invalid email format")
			}
			return &auth.SessionResponse{
				User:  domain.Profile{ID: alice, Email: req.Email, CreatedAt: created, UpdatedAt: created},
				Token: "signed-token",
			}, nil
		},
	}
	s := newTestServer(t, accounts, &mockTasks{})

	t.Run("created", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/auth/signup", `{"email":"a@example.com","password":"password123"}`, "")
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		raw := decode[map[string]any](t, resp)
		assert.Equal(t, "signed-token", raw["token"])
		user, ok := raw["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, alice, user["id"])
		assert.Equal(t, "a@example.com", user["email"])
		assert.Contains(t, user, "created_at")
		assert.NotContains(t, user, "password_hash")
	})

	t.Run("email taken", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/auth/signup", `{"email":"taken@example.com","password":"password123"}`, "")
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, "email_taken", decode[ErrorResponse](t, resp).Error)
	})

	t.Run("validation reason", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/auth/signup", `{"email":"bad","password":"password123"}`, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		body := decode[ErrorResponse](t, resp)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "invalid email format", body.Message)
	})

	t.Run("malformed json", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/auth/signup", `{"email":`, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "bad_request", decode[ErrorResponse](t, resp).Error)
	})
}

func TestSignin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid credentials", apperror.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{"remote invalid credentials", apperror.FromRemote(fmt.Errorf("signin request failed: %s", apperror.ErrInvalidCredentials)), fiber.StatusUnauthorized},
		{"transient", apperror.Transient("find user", fmt.Errorf("database is locked")), fiber.StatusServiceUnavailable},
		{"unclassified", fmt.Errorf("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &mockAccounts{
				signinFunc: func(context.Context, *auth.SigninRequest) (*auth.SessionResponse, error) {
					return nil, tt.err
				},
			}
			s := newTestServer(t, accounts, &mockTasks{})

			resp := s.do(t, http.MethodPost, "/api/auth/signin", `{"email":"a@example.com","password":"password123"}`, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[ErrorResponse](t, resp)
			assert.NotContains(t, body.Message, "database is locked")
			assert.NotContains(t, body.Message, "boom")
		})
	}
}

func TestMe(t *testing.T) {
	var asked string
	accounts := &mockAccounts{
		getProfileFunc: func(_ context.Context, userID string) (*auth.GetProfileResponse, error) {
			asked = userID
			return &auth.GetProfileResponse{User: domain.Profile{ID: userID, Email: "alice@example.com"}}, nil
		},
	}
	s := newTestServer(t, accounts, &mockTasks{})

	resp := s.do(t, http.MethodGet, "/api/auth/me", "", s.token(t, alice))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[UserResponse](t, resp)
	assert.Equal(t, alice, body.ID)
	assert.Equal(t, alice, asked)

	resp = s.do(t, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateTask_OwnerComesFromToken(t *testing.T) {
	var got *task.CreateTaskRequest
	tasks := &mockTasks{
		createFunc: func(_ context.Context, req *task.CreateTaskRequest) (*task.TaskResponse, error) {
			got = req
			resp := sampleTask(1, req.UserID)
			resp.Title = req.Title
			resp.Description = req.Description
			return resp, nil
		},
	}
	s := newTestServer(t, &mockAccounts{}, tasks)

	body := fmt.Sprintf(`{"title":"buy milk","description":"2 liters","user_id":%q,"owner_user_id":%q}`, bob, bob)
	resp := s.do(t, http.MethodPost, "/api/tasks", body, s.token(t, alice))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created := decode[TaskResponse](t, resp)
	assert.Equal(t, alice, created.OwnerUserID)
	require.NotNil(t, got)
	assert.Equal(t, alice, got.UserID)
	assert.Equal(t, "buy milk", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, "2 liters", *got.Description)
}

func TestListTasks_ReturnsArray(t *testing.T) {
	tasks := &mockTasks{
		listFunc: func(_ context.Context, userID string) (*task.ListTasksResponse, error) {
			if userID == bob {
				return &task.ListTasksResponse{Tasks: []task.TaskResponse{}}, nil
			}
			return &task.ListTasksResponse{
				Tasks: []task.TaskResponse{*sampleTask(1, alice), *sampleTask(2, alice)},
				Total: 2,
			}, nil
		},
	}
	s := newTestServer(t, &mockAccounts{}, tasks)

	resp := s.do(t, http.MethodGet, "/api/tasks", "", s.token(t, alice))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[[]TaskResponse](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, uint(1), list[0].ID)
	assert.Equal(t, uint(2), list[1].ID)

	resp = s.do(t, http.MethodGet, "/api/tasks", "", s.token(t, bob))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestTaskRoutes_InvalidID(t *testing.T) {
	s := newTestServer(t, &mockAccounts{}, &mockTasks{})
	token := s.token(t, alice)

	for _, id := range []string{"abc", "0", "-3", "1.5", "99999999999999999999"} {
		for _, route := range []struct{ method, path, body string }{
			{http.MethodGet, "/api/tasks/" + id, ""},
			{http.MethodPut, "/api/tasks/" + id, `{"title":"x"}`},
			{http.MethodPatch, "/api/tasks/" + id + "/complete", ""},
			{http.MethodDelete, "/api/tasks/" + id, ""},
		} {
			resp := s.do(t, route.method, route.path, route.body, token)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "%s %s", route.method, route.path)
		}
	}
}

func TestTaskRoutes_NotFoundAndOwner(t *testing.T) {
	type call struct {
		userID string
		taskID uint
	}
	var calls []call
	notFound := func(userID string, taskID uint) error {
		calls = append(calls, call{userID, taskID})
		return apperror.ErrNotFound
	}
	tasks := &mockTasks{
		getFunc: func(_ context.Context, userID string, taskID uint) (*task.TaskResponse, error) {
			return nil, notFound(userID, taskID)
		},
		updateFunc: func(_ context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error) {
			return nil, notFound(req.UserID, req.TaskID)
		},
		completeFunc: func(_ context.Context, userID string, taskID uint) (*task.TaskResponse, error) {
			return nil, notFound(userID, taskID)
		},
		deleteFunc: func(_ context.Context, userID string, taskID uint) error {
			return notFound(userID, taskID)
		},
	}
	s := newTestServer(t, &mockAccounts{}, tasks)
	token := s.token(t, bob)

	for _, route := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/tasks/7", ""},
		{http.MethodPut, "/api/tasks/7", `{"title":"x"}`},
		{http.MethodPatch, "/api/tasks/7/complete", ""},
		{http.MethodDelete, "/api/tasks/7", ""},
	} {
		resp := s.do(t, route.method, route.path, route.body, token)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "%s %s", route.method, route.path)
		assert.Equal(t, "not_found", decode[ErrorResponse](t, resp).Error)
	}

	require.Len(t, calls, 4)
	for _, c := range calls {
		assert.Equal(t, call{bob, 7}, c)
	}
}

func TestUpdateCompleteDelete(t *testing.T) {
	tasks := &mockTasks{
		updateFunc: func(_ context.Context, req *task.UpdateTaskRequest) (*task.TaskResponse, error) {
			if req.Title == "" {
				return nil, apperror.Validation("title is required")
			}
			resp := sampleTask(req.TaskID, req.UserID)
			resp.Title = req.Title
			return resp, nil
		},
		completeFunc: func(_ context.Context, userID string, taskID uint) (*task.TaskResponse, error) {
			resp := sampleTask(taskID, userID)
			resp.Completed = true
			return resp, nil
		},
		deleteFunc: func(context.Context, string, uint) error {
			return nil
		},
	}
	s := newTestServer(t, &mockAccounts{}, tasks)
	token := s.token(t, alice)

	resp := s.do(t, http.MethodPut, "/api/tasks/3", `{"title":"renamed"}`, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "renamed", decode[TaskResponse](t, resp).Title)

	resp = s.do(t, http.MethodPut, "/api/tasks/3", `{"title":""}`, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "title is required", decode[ErrorResponse](t, resp).Message)

	resp = s.do(t, http.MethodPatch, "/api/tasks/3/complete", "", token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decode[TaskResponse](t, resp).Completed)

	resp = s.do(t, http.MethodDelete, "/api/tasks/3", "", token)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t, &mockAccounts{}, &mockTasks{}, stubCheck{"auth", true}, stubCheck{"task", true})
		for _, path := range []string{"/", "/health"} {
			resp := s.do(t, http.MethodGet, path, "", "")
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			body := decode[HealthResponse](t, resp)
			assert.Equal(t, "healthy", body.Status)
			assert.Len(t, body.Modules, 2)
		}
	})

	t.Run("degraded", func(t *testing.T) {
		s := newTestServer(t, &mockAccounts{}, &mockTasks{}, stubCheck{"auth", true}, stubCheck{"task", false})
		resp := s.do(t, http.MethodGet, "/health", "", "")
		require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		body := decode[HealthResponse](t, resp)
		assert.Equal(t, "degraded", body.Status)
		assert.False(t, body.Modules["task"].Healthy)
	})
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, &mockAccounts{}, &mockTasks{})
	resp := s.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestActivity(t *testing.T) {
	s := newTestServer(t, &mockAccounts{}, &mockTasks{}).withActivity(&mockActivity{
		counts: map[string]activity.Counts{alice: {Created: 3, Completed: 1}},
	})

	resp := s.do(t, http.MethodGet, "/api/activity", "", s.token(t, alice))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, ActivityResponse{Created: 3, Completed: 1}, decode[ActivityResponse](t, resp))

	resp = s.do(t, http.MethodGet, "/api/activity", "", s.token(t, bob))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, ActivityResponse{}, decode[ActivityResponse](t, resp))

	resp = s.do(t, http.MethodGet, "/api/activity", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
