// auth — per-request guard: превращает токены из транспорта (cookie/заголовок)
// в аутентифицированный контекст запроса.
//
// Resolve никогда не возвращает ошибку: отсутствие или невалидность токенов
// даёт анонимный контекст, потому что не все операции требуют аутентификации.
// Требования к уровню доступа навешиваются поверх через RequireAuthenticated
// и RequireAdmin.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/medbook/auth-service/internal/models"
	"github.com/medbook/auth-service/internal/pkg/log"
	"github.com/medbook/auth-service/internal/service"
)

var (
	// ErrUnauthenticated — операция требует аутентификации, а контекст анонимный.
	// Транспорт: 401.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrPermissionDenied — пользователь аутентифицирован, но роль недостаточна.
	// Транспорт: 403.
	ErrPermissionDenied = errors.New("permission denied")
)

// Identity — разрешённая личность запроса.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Context — результат разрешения токенов для одного запроса.
// Живёт в контексте запроса и нигде не сохраняется; источник истины —
// сами токены и хранилище отозванных.
type Context struct {
	Identity      *Identity
	Token         string
	Authenticated bool
}

// Guard раскручивает токены транспорта в Context.
type Guard struct {
	svc *service.Service
}

// New создаёт Guard поверх сервисного слоя.
func New(svc *service.Service) *Guard {
	return &Guard{svc: svc}
}

// Resolve пытается аутентифицировать запрос.
//
// Порядок: сначала access-токен (подпись+вид+отзыв+учётка); если он
// отсутствует или невалиден — refresh-токен, по которому выпускается
// новый access-токен (возвращается вторым значением, транспорт обязан
// переустановить cookie). Любой сбой внешнего хранилища — анонимный
// контекст, не ошибка.
func (g *Guard) Resolve(ctx context.Context, accessToken, refreshToken string) (Context, *models.AccessToken) {
	const op = "auth.guard.Resolve"

	if accessToken != "" {
		user, err := g.svc.Authenticate(ctx, accessToken)
		if err == nil {
			return authenticated(user, accessToken), nil
		}

		log.From(ctx).Debug("access_token_rejected", slog.String("op", op))
	}

	if refreshToken != "" {
		issued, user, err := g.svc.RefreshToken(ctx, refreshToken)
		if err == nil {
			return authenticated(user, issued.Token), issued
		}

		log.From(ctx).Debug("refresh_token_rejected", slog.String("op", op))
	}

	return Context{}, nil
}

func authenticated(user *models.User, token string) Context {
	return Context{
		Identity: &Identity{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		},
		Token:         token,
		Authenticated: true,
	}
}

// RequireAuthenticated возвращает личность запроса либо ErrUnauthenticated.
func RequireAuthenticated(c Context) (*Identity, error) {
	if !c.Authenticated || c.Identity == nil {
		return nil, ErrUnauthenticated
	}

	return c.Identity, nil
}

// RequireAdmin возвращает личность запроса с повышенной ролью.
// Аутентификация проверяется первой: анонимный запрос получает
// ErrUnauthenticated, а не ErrPermissionDenied — порядок является
// частью контракта.
func RequireAdmin(c Context) (*Identity, error) {
	identity, err := RequireAuthenticated(c)
	if err != nil {
		return nil, err
	}

	if identity.Role != models.RoleAdmin {
		return nil, ErrPermissionDenied
	}

	return identity, nil
}

type ctxKey struct{}

// IntoContext кладёт разрешённый Context в контекст запроса.
func IntoContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext достаёт Context запроса; если его нет — анонимный.
func FromContext(ctx context.Context) Context {
	if v := ctx.Value(ctxKey{}); v != nil {
		if c, ok := v.(Context); ok {
			return c
		}
	}

	return Context{}
}
