package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medbook/auth-service/internal/models"
)

// tokenKind — вид токена. Зашивается в claims, чтобы refresh-токен нельзя
// было предъявить вместо access-токена (и наоборот).
type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

// ttl возвращает номинальный срок жизни токена данного вида.
func (s *Service) ttl(kind tokenKind) time.Duration {
	if kind == kindRefresh {
		return s.cfg.RefreshTokenTTL
	}

	return s.cfg.AccessTokenTTL
}

type authClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Kind  string `json:"kind"`
	jwt.RegisteredClaims
}

// generateToken выпускает подписанный токен заданного вида.
func (s *Service) generateToken(user *models.User, kind tokenKind, now time.Time) (string, time.Time, error) {
	const op = "service.token.generateToken"

	expiresAt := now.Add(s.ttl(kind))

	claims := authClaims{
		Email: user.Email,
		Role:  user.Role,
		Kind:  string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		slog.Error("token_sign_failed",
			slog.String("op", op),
			slog.String("kind", string(kind)),
			slog.String("err", err.Error()),
		)
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, expiresAt, nil
}

// verifyToken проверяет токен и его вид, возвращает identity-claims.
//
// Все причины отказа (битая подпись, формат, истечение, несовпадение вида)
// схлопываются в ErrInvalidToken: снаружи они неразличимы намеренно.
func (s *Service) verifyToken(raw string, kind tokenKind) (*models.Claims, error) {
	const op = "service.token.verifyToken"

	token, err := jwt.ParseWithClaims(raw, &authClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*authClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Kind != string(kind) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return &models.Claims{
		UserID: uid,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
