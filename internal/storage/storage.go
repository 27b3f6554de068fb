// storage задаёт контракт внешнего хранилища пользователей.
// Сервисный слой знает только этот интерфейс; конкретная реализация
// (postgres) выбирается при сборке приложения.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medbook/auth-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/phone).
	ErrAlreadyExists = errors.New("already exists")
)

// Users выполняет операции над пользователями.
type Users interface {
	// SaveUser создаёт нового пользователя.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByPhone находит пользователя по номеру телефона.
	UserByPhone(ctx context.Context, phone string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	Users
	Close()
}
