package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/go-task-tracker/internal/domain/tasks"
	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var (
	ErrUnauthenticated      = errors.New("not authorized")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrInvalidUserInput     = errors.New("invalid user input")
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskForbidden        = errors.New("user not authorized for this task")
	ErrInvalidTaskInput     = tasks.ErrInvalidInput
	ErrAssigneeNotFound     = fmt.Errorf("%w: assignee does not exist", tasks.ErrInvalidInput)
)

// PgPool is the subset of *pgxpool.Pool the services depend on.
type PgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AuthService interface {
	// Register creates a user with the given name, email and password
	// and issues a bearer token for it.
	//
	// It returns ErrUserAlreadyExists if the email is taken.
	Register(ctx context.Context, params RegisterParams) (*LoginResult, error)

	// Login authenticates the user by email and password and issues a
	// bearer token.
	//
	// It returns ErrUserNotFound if no user has the given email or
	// ErrUserPasswordMismatch if the password doesn't match.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Authenticate resolves a bearer token to the identity of an existing
	// user. Missing, malformed, expired or orphaned tokens all yield
	// ErrUnauthenticated.
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

type UserService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

// TaskService applies the task permission rules to every operation.
//
// Mutations return ErrTaskNotFound when the task doesn't exist,
// ErrTaskForbidden when the caller has the wrong relationship to it and
// an error wrapping ErrInvalidTaskInput when the input is malformed.
type TaskService interface {
	CreateTask(ctx context.Context, caller models.Identity, draft tasks.Draft) (*models.Task, error)
	GetTask(ctx context.Context, caller models.Identity, taskID int64) (*models.Task, error)
	ListTasks(ctx context.Context, caller models.Identity, filter tasks.Filter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, caller models.Identity, taskID int64, draft tasks.Draft) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, caller models.Identity, taskID int64, status string) (*models.Task, error)
	DeleteTask(ctx context.Context, caller models.Identity, taskID int64) error
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	User                 *models.User
	AccessToken          string
	AccessTokenExpiresAt time.Time
}
