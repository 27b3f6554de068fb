// service содержит бизнес-логику аутентификации и жизненного цикла сессий:
// регистрацию/вход, выпуск/проверку токенов, обновление access-токена и
// отзыв токенов при выходе.
//
// Основные аспекты:
//   - Service не хранит состояния запроса; экземпляр безопасен для
//     конкурентного использования при условии, что переданные хранилища
//     (storage.Users, revocation.Store) потокобезопасны.
//   - Ошибки возвращаются наверх и маппятся транспортом на HTTP-статусы
//     (см. комментарии к переменным ошибок ниже).
//   - Низкоуровневые ошибки bcrypt/jwt наружу не выходят: они заворачиваются
//     в ошибки из таксономии ниже до выхода из пакета.
package service

import (
	"errors"

	"github.com/medbook/auth-service/internal/config"
	"github.com/medbook/auth-service/internal/revocation"
	"github.com/medbook/auth-service/internal/storage"
)

var (
	// ErrInvalidCredentials — вход не удался. Одно сообщение для всех трёх
	// внутренних причин (нет пользователя / гостевая учётка без пароля /
	// неверный пароль): перечисление учёток невозможно по построению.
	// Транспорт: 401.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken — токен некорректен: подпись/формат/истечение/вид.
	// Причины снаружи не различаются, чтобы не давать оракула.
	// Транспорт: 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenRevoked — токен отозван (logout) и недействителен независимо
	// от срока. Транспорт: 401 с тем же сообщением, что и ErrInvalidToken.
	ErrTokenRevoked = errors.New("token revoked")
)

// ValidationError — ошибка валидации входа, привязанная к конкретному полю.
// Транспорт: 400 с указанием поля.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Service реализует операции аутентификации.
type Service struct {
	users   storage.Users
	revoked revocation.Store
	cfg     config.AuthConfig
}

// New создаёт новый экземпляр Service. Хранилище отозванных токенов
// создаётся на старте процесса и передаётся сюда явно.
func New(users storage.Users, revoked revocation.Store, cfg config.AuthConfig) *Service {
	return &Service{
		users:   users,
		revoked: revoked,
		cfg:     cfg,
	}
}
