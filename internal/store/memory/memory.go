// Package memory implements the Store over plain in-process collections.
// It is the default backend when DATABASE_URL is not configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/taskdeck-dev/taskdeck/internal/models"
	"github.com/taskdeck-dev/taskdeck/internal/store"
)

type Memory struct {
	mu sync.RWMutex

	users    []models.User
	tasks    []models.Task
	sessions map[string]models.Session

	// Counters only ever increase, so ids are never reused after a delete.
	nextUserID uint
	nextTaskID uint
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		sessions:   make(map[string]models.Session),
		nextUserID: 1,
		nextTaskID: 1,
	}
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}

	user.ID = m.nextUserID
	m.nextUserID++

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	m.users = append(m.users, *user)
	return nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.users {
		if m.users[i].Email == email {
			user := m.users[i]
			return &user, nil
		}
	}

	return nil, store.ErrNotFound
}

func (m *Memory) UserByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.users {
		if m.users[i].ID == id {
			user := m.users[i]
			return &user, nil
		}
	}

	return nil, store.ErrNotFound
}

func (m *Memory) CreateSession(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	m.sessions[session.Token] = *session
	return nil
}

func (m *Memory) SessionByToken(_ context.Context, token string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[token]

	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, store.ErrNotFound
	}

	return &session, nil
}

func (m *Memory) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

func (m *Memory) TasksByUser(_ context.Context, userID uint) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := make([]models.Task, 0)

	for i := range m.tasks {
		if m.tasks[i].UserID == userID {
			tasks = append(tasks, m.tasks[i])
		}
	}

	return tasks, nil
}

func (m *Memory) CreateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	task.ID = m.nextTaskID
	m.nextTaskID++

	task.Completed = false

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	m.tasks = append(m.tasks, *task)
	return nil
}

func (m *Memory) UpdateTask(_ context.Context, userID, taskID uint, patch store.TaskPatch) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tasks {
		if m.tasks[i].ID != taskID || m.tasks[i].UserID != userID {
			continue
		}

		if patch.Title != nil {
			m.tasks[i].Title = *patch.Title
		}
		if patch.Description != nil {
			m.tasks[i].Description = *patch.Description
		}
		if patch.Completed != nil {
			m.tasks[i].Completed = *patch.Completed
		}

		task := m.tasks[i]
		return &task, nil
	}

	return nil, store.ErrNotFound
}

func (m *Memory) DeleteTask(_ context.Context, userID, taskID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tasks {
		if m.tasks[i].ID == taskID && m.tasks[i].UserID == userID {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}

	return store.ErrNotFound
}
