package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medbook/auth-service/internal/models"
)

// UserByID возвращает пользователя по идентификатору.
// Ошибки хранилища (включая storage.ErrNotFound) прокидываются как есть —
// маппинг в HTTP-статусы происходит на транспортном слое.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service.users.UserByID"

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
