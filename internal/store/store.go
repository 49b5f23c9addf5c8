package store

import (
	"context"
	"errors"

	"github.com/taskdeck-dev/taskdeck/internal/models"
)

// Sentinels shared by every Store implementation so handlers can map
// them to HTTP statuses with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// TaskPatch carries a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Store owns users, tasks and sessions. Implementations must be safe for
// concurrent use; gin serves every request on its own goroutine.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)

	CreateSession(ctx context.Context, session *models.Session) error
	SessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error

	TasksByUser(ctx context.Context, userID uint) ([]models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, userID, taskID uint, patch TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID uint) error
}

// Active is the process-wide store, set once at startup.
var Active Store

func Use(s Store) {
	Active = s
}
