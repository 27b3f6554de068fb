// revocation — хранилище отозванных токенов (logout до естественного истечения).
//
// Запись живёт до момента истечения самого токена, после чего логически
// отсутствует и вычищается (лениво при чтении и фоновым обходом).
// Хранилище общее для всех обработчиков запроса; экземпляр создаётся на старте
// процесса и передаётся сервису и guard явно, без глобального состояния.
package revocation

import (
	"context"
	"time"
)

// Store — контракт хранилища отозванных токенов.
// Реализации обязаны быть потокобезопасными: revoke/isRevoked/sweep
// вызываются конкурентно из разных горутин.
type Store interface {
	// Revoke помечает токен отозванным до expiresAt.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	// IsRevoked сообщает, отозван ли токен. Просроченная запись
	// считается отсутствующей.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Close освобождает ресурсы реализации.
	Close() error
}

// tokenIDLen — длина идентификатора: последние 32 символа компактного токена.
const tokenIDLen = 32

// TokenID детерминированно выводит идентификатор токена из его строки.
//
// Схема — суффикс подписи: слабый идентификатор (возможны совпадения суффиксов,
// идентификатор раскрывает часть подписи). Оставлена как есть; замена на
// односторонний хэш всей строки меняет видимые снаружи ключи и делается здесь,
// в одной точке.
func TokenID(token string) string {
	if len(token) <= tokenIDLen {
		return token
	}

	return token[len(token)-tokenIDLen:]
}
