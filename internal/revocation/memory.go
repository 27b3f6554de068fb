package revocation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Memory — процессное in-memory хранилище отозванных токенов.
//
// Ограничение деплоя: записи не переживают рестарт процесса и не разделяются
// между инстансами — после рестарта все отозванные токены снова валидны.
// Для мульти-инстансных деплоев используется Redis-реализация того же Store.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time // tokenID -> expiresAt
}

// NewMemory создаёт пустое хранилище. Фоновая очистка запускается отдельно
// через Sweep — жизненным циклом владеет вызывающая сторона.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
	}
}

// Revoke помечает токен отозванным до expiresAt.
func (m *Memory) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[tokenID] = expiresAt

	return nil
}

// IsRevoked сообщает, отозван ли токен. Просроченная запись
// считается отсутствующей и вычищается лениво.
func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.entries[tokenID]
	if !ok {
		return false, nil
	}

	if time.Now().UTC().After(expiresAt) {
		delete(m.entries, tokenID)
		return false, nil
	}

	return true, nil
}

// Close — no-op для in-memory реализации.
func (m *Memory) Close() error { return nil }

// Sweep запускает фоновую очистку просроченных записей с заданным периодом.
// Возвращается после остановки по ctx. Блокировка удерживается только
// на время одного прохода по map.
func (m *Memory) Sweep(ctx context.Context, period time.Duration, log *slog.Logger) {
	if period <= 0 {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			removed := m.sweepOnce(time.Now().UTC())
			if removed > 0 {
				log.Debug("revocation_sweep", slog.Int("removed", removed))
			}
		}
	}
}

func (m *Memory) sweepOnce(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, expiresAt := range m.entries {
		if now.After(expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}

	return removed
}

var _ Store = (*Memory)(nil)
