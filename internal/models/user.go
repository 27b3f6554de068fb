package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей. RoleAdmin — повышенная роль для административных операций.
const (
	RolePatient = "patient"
	RoleAdmin   = "admin"
)

// User — учётная запись в системе записи на приём.
//
// PasswordHash пустой для «гостевых» учёток (создаются регистратурой без пароля);
// вход по паролю для них невозможен.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Phone        string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
