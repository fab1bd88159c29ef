package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/domain/tasks"
	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

var (
	alice = models.Identity{ID: 1, Name: "Alice", Email: "alice@example.com"}
	bob   = models.Identity{ID: 2, Name: "Bob", Email: "bob@example.com"}
)

type mockAuthService struct {
	RegisterFunc     func(ctx context.Context, params services.RegisterParams) (*services.LoginResult, error)
	LoginFunc        func(ctx context.Context, params services.LoginParams) (*services.LoginResult, error)
	AuthenticateFunc func(ctx context.Context, token string) (*models.Identity, error)
}

func (m *mockAuthService) Register(ctx context.Context, params services.RegisterParams) (*services.LoginResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, params)
	}
	return nil, errors.New("register not mocked")
}

func (m *mockAuthService) Login(ctx context.Context, params services.LoginParams) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, params)
	}
	return nil, errors.New("login not mocked")
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	switch token {
	case "alice-token":
		identity := alice
		return &identity, nil
	case "bob-token":
		identity := bob
		return &identity, nil
	}
	return nil, fmt.Errorf("%w: unknown token", services.ErrUnauthenticated)
}

type mockUserService struct {
	ListUsersFunc   func(ctx context.Context) ([]*models.User, error)
	GetUserByIDFunc func(ctx context.Context, userID int64) (*models.User, error)
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return []*models.User{
		{ID: alice.ID, Name: alice.Name, Email: alice.Email},
		{ID: bob.ID, Name: bob.Name, Email: bob.Email},
	}, nil
}

func (m *mockUserService) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, userID)
	}
	for _, identity := range []models.Identity{alice, bob} {
		if identity.ID == userID {
			created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
			return &models.User{
				ID:        identity.ID,
				Name:      identity.Name,
				Email:     identity.Email,
				CreatedAt: created,
				UpdatedAt: created,
			}, nil
		}
	}
	return nil, services.ErrUserNotFound
}

// memTaskService keeps tasks in memory and enforces the same permission
// rules as the Postgres-backed service.
type memTaskService struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*models.Task
	users  map[int64]string
}

func newMemTaskService() *memTaskService {
	return &memTaskService{
		tasks: make(map[int64]*models.Task),
		users: map[int64]string{alice.ID: alice.Name, bob.ID: bob.Name},
	}
}

func (s *memTaskService) lookup(caller models.Identity, action tasks.Action, taskID int64) (*models.Task, error) {
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	if d := tasks.Evaluate(caller, action, task); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", services.ErrTaskForbidden, d.Reason)
	}
	return task, nil
}

func (s *memTaskService) CreateTask(_ context.Context, caller models.Identity, draft tasks.Draft) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, err := draft.Validate()
	if err != nil {
		return nil, err
	}
	assigneeName, ok := s.users[fields.AssigneeID]
	if !ok {
		return nil, services.ErrAssigneeNotFound
	}

	s.nextID++
	now := time.Now()
	task := &models.Task{
		ID:           s.nextID,
		Title:        fields.Title,
		Description:  fields.Description,
		Status:       models.StatusAssigned,
		Priority:     fields.Priority,
		DueDate:      fields.DueDate,
		AssignerID:   caller.ID,
		AssignerName: caller.Name,
		AssigneeID:   fields.AssigneeID,
		AssigneeName: assigneeName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.tasks[task.ID] = task
	copied := *task
	return &copied, nil
}

func (s *memTaskService) GetTask(_ context.Context, caller models.Identity, taskID int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.lookup(caller, tasks.ActionRead, taskID)
	if err != nil {
		return nil, err
	}
	copied := *task
	return &copied, nil
}

func (s *memTaskService) ListTasks(_ context.Context, _ models.Identity, filter tasks.Filter) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter.Match(task) {
			copied := *task
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (s *memTaskService) UpdateTask(_ context.Context, caller models.Identity, taskID int64, draft tasks.Draft) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.lookup(caller, tasks.ActionUpdate, taskID)
	if err != nil {
		return nil, err
	}
	fields, err := draft.Validate()
	if err != nil {
		return nil, err
	}
	assigneeName, ok := s.users[fields.AssigneeID]
	if !ok {
		return nil, services.ErrAssigneeNotFound
	}

	task.Title = fields.Title
	task.Description = fields.Description
	task.Priority = fields.Priority
	task.DueDate = fields.DueDate
	task.AssigneeID = fields.AssigneeID
	task.AssigneeName = assigneeName
	copied := *task
	return &copied, nil
}

func (s *memTaskService) UpdateTaskStatus(_ context.Context, caller models.Identity, taskID int64, status string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.lookup(caller, tasks.ActionSetStatus, taskID)
	if err != nil {
		return nil, err
	}
	newStatus, err := tasks.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	task.Status = newStatus
	copied := *task
	return &copied, nil
}

func (s *memTaskService) DeleteTask(_ context.Context, caller models.Identity, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(caller, tasks.ActionDelete, taskID); err != nil {
		return err
	}
	delete(s.tasks, taskID)
	return nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type testServer struct {
	auth   *mockAuthService
	users  *mockUserService
	tasks  *memTaskService
	pinger pingerFunc
	router *gin.Engine
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)

	s := &testServer{
		auth:   &mockAuthService{},
		users:  &mockUserService{},
		tasks:  newMemTaskService(),
		pinger: func(context.Context) error { return nil },
	}
	pinger := pingerFunc(func(ctx context.Context) error { return s.pinger(ctx) })
	h := New(zerolog.Nop(), pinger, s.auth, s.users, s.tasks)

	s.router = gin.New()
	s.router.Use(h.HandleRequestLog)
	RegisterRoutes(s.router, h)
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}
