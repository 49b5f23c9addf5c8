// Package gormstore implements the Store over Postgres via gorm.
// Selected at startup when DATABASE_URL is set.
package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskdeck-dev/taskdeck/internal/models"
	"github.com/taskdeck-dev/taskdeck/internal/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// uniqueViolationCode is the Postgres error code for unique_violation.
const uniqueViolationCode = "23505"

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

type GormStore struct {
	db *gorm.DB
}

var _ store.Store = (*GormStore)(nil)

func Connect(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return nil, err
	}

	return &GormStore{db: db}, nil
}

func (g *GormStore) Migrate() error {
	models := []interface{}{
		&models.User{},
		&models.Task{},
		&models.Session{},
	}

	migrator := g.db.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := g.db.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	var existing models.User

	err := g.db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error

	if err == nil {
		return store.ErrDuplicateEmail
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// The check above races with concurrent registrations; the uniqueIndex
	// on email is the real guard, so its violation maps to the same error.
	if err := g.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return store.ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (g *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	if err := g.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (g *GormStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	if err := g.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (g *GormStore) CreateSession(ctx context.Context, session *models.Session) error {
	return g.db.WithContext(ctx).Create(session).Error
}

func (g *GormStore) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session

	err := g.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return &session, nil
}

func (g *GormStore) DeleteSession(ctx context.Context, token string) error {
	return g.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error
}

func (g *GormStore) TasksByUser(ctx context.Context, userID uint) ([]models.Task, error) {
	tasks := make([]models.Task, 0)

	err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&tasks).Error

	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (g *GormStore) CreateTask(ctx context.Context, task *models.Task) error {
	task.Completed = false
	return g.db.WithContext(ctx).Create(task).Error
}

func (g *GormStore) UpdateTask(ctx context.Context, userID, taskID uint, patch store.TaskPatch) (*models.Task, error) {
	var task models.Task

	err := g.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&task).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	updates := make(map[string]interface{})

	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}

	if len(updates) > 0 {
		if err := g.db.WithContext(ctx).Model(&task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &task, nil
}

func (g *GormStore) DeleteTask(ctx context.Context, userID, taskID uint) error {
	result := g.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&models.Task{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}

	return nil
}
