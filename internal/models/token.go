package models

import (
	"time"

	"github.com/google/uuid"
)

// Claims — identity-факты, зашитые в каждый выпущенный токен.
// После выпуска неизменяемы; смена роли требует перевыпуска токенов.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// AccessToken — выпущенный access-токен с моментом истечения (UTC).
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenPair — пара токенов, выдаваемая при регистрации/входе.
//
//   - AccessToken — короткоживущий JWT для доступа к API;
//   - RefreshToken — долгоживущий JWT для выпуска новых access-токенов;
//   - AccessExpiresAt/RefreshExpiresAt — моменты истечения (UTC),
//     транспорт использует их как maxAge соответствующих cookie.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
