package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medbook/auth-service/internal/models"
	"github.com/medbook/auth-service/internal/pkg/log"
	"github.com/medbook/auth-service/internal/pkg/redact"
	"github.com/medbook/auth-service/internal/revocation"
	"github.com/medbook/auth-service/internal/storage"
)

// minPasswordLen — минимальная длина пароля при регистрации.
const minPasswordLen = 8

// RegisterUser регистрирует нового пользователя и выпускает пару токенов.
// Пароль хэшируется до любого обращения к хранилищу на запись.
func (s *Service) RegisterUser(ctx context.Context, email, name, phone, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.RegisterUser"

	normEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if len([]rune(password)) < minPasswordLen {
		return nil, nil, fmt.Errorf("%s: %w", op, &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", minPasswordLen),
		})
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, &ValidationError{Field: "phone", Message: "phone is required"})
	}

	if _, err := s.users.UserByEmail(ctx, normEmail); err == nil {
		return nil, nil, fmt.Errorf("%s: %w", op, &ValidationError{Field: "email", Message: "already registered"})
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.users.UserByPhone(ctx, phone); err == nil {
		return nil, nil, fmt.Errorf("%s: %w", op, &ValidationError{Field: "phone", Message: "already registered"})
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		Name:         strings.TrimSpace(name),
		Phone:        phone,
		Role:         models.RolePatient,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// Гонка с параллельной регистрацией: уникальность добила БД.
			return nil, nil, fmt.Errorf("%s: %w", op, &ValidationError{Field: "email", Message: "already registered"})
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered",
		slog.String("op", op),
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(user.Email)),
	)

	pair, err := s.issueTokenPair(user, now)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user, nil
}

// LoginUser выполняет вход по email+пароль.
//
// Возвращает ErrInvalidCredentials одинаково для несуществующего email,
// гостевой учётки без пароля и неверного пароля — различать причины
// снаружи нельзя.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.LoginUser"

	normEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if password == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	// Гостевая учётка: пароля нет, вход по паролю запрещён.
	if user.PasswordHash == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issueTokenPair(user, time.Now().UTC())
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user, nil
}

// RefreshToken выпускает новый access-токен по валидному refresh-токену.
// Сам refresh-токен не ротируется и продолжает действовать до своего
// истечения или отзыва.
//
// Пользователь разрешается заново через хранилище: удалённая учётка или
// сменившаяся роль отражаются в новом access-токене немедленно.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*models.AccessToken, *models.User, error) {
	const op = "service.auth.RefreshToken"

	claims, err := s.verifyToken(refreshToken, kindRefresh)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, revocation.TokenID(refreshToken))
	if err != nil {
		log.From(ctx).Error("revocation_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if revoked {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	user, err := s.users.UserByID(ctx, claims.UserID)
	if err != nil {
		// Недоступность хранилища и отсутствие учётки одинаково означают
		// «аутентифицировать нельзя», без падения наверх.
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	now := time.Now().UTC()
	signed, expiresAt, err := s.generateToken(user, kindAccess, now)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.AccessToken{Token: signed, ExpiresAt: expiresAt}, user, nil
}

// Authenticate проверяет access-токен (подпись/вид/отзыв) и возвращает
// актуальную учётку пользователя.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "service.auth.Authenticate"

	claims, err := s.verifyToken(accessToken, kindAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, revocation.TokenID(accessToken))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	user, err := s.users.UserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return user, nil
}

// Logout отзывает предъявленные токены до их естественного истечения.
// Отсутствие обоих токенов — корректный no-op; повторный logout идемпотентен.
// Токены не верифицируются: отзыв невалидного токена безвреден.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	const op = "service.auth.Logout"

	now := time.Now().UTC()

	if accessToken != "" {
		if err := s.revoked.Revoke(ctx, revocation.TokenID(accessToken), now.Add(s.cfg.AccessTokenTTL)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if refreshToken != "" {
		if err := s.revoked.Revoke(ctx, revocation.TokenID(refreshToken), now.Add(s.cfg.RefreshTokenTTL)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// normalizeEmail проверяет базовый формат email и приводит его к нижнему регистру.
func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", &ValidationError{Field: "email", Message: "email is required"}
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", &ValidationError{Field: "email", Message: "invalid email format"}
	}

	return strings.ToLower(email), nil
}

// issueTokenPair выпускает пару access+refresh токенов для пользователя.
func (s *Service) issueTokenPair(user *models.User, now time.Time) (*models.TokenPair, error) {
	const op = "service.auth.issueTokenPair"

	accessToken, accessExp, err := s.generateToken(user, kindAccess, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, refreshExp, err := s.generateToken(user, kindRefresh, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}
