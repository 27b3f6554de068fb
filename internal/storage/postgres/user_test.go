package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/medbook/auth-service/internal/models"
	"github.com/medbook/auth-service/internal/storage"
)

// Файл интеграционных тестов для пакета postgres (репозиторий user.go):
// - поднимает реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// - применяет миграции из ./migrations (1_init_users.up.sql);
// - проверяет happy-path (создание и поиск по email/phone/ID), уникальность
//   (email CITEXT, phone, первичный ключ id) и гостевые учётки с NULL-паролем;
// - валидирует сценарии отсутствия записей (storage.ErrNotFound) и корректную
//   обработку ошибок контекста (Canceled/DeadlineExceeded).
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// repoRootFromThisFile — определяет корень репозитория относительно текущего файла тестов.
// Используется для поиска SQL-миграций в каталоге ./migrations независимо от текущего рабочего каталога.
func repoRootFromThisFile() string {
	// internal/storage/postgres/... -> подняться на 3 уровня до корня.
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", ".."))
}

// readMigration — читает содержимое SQL-миграции из подкаталога ./migrations.
func readMigration(t *testing.T, name string) string {
	t.Helper()
	root := repoRootFromThisFile()
	path := filepath.Join(root, "migrations", name)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "read migration %s", path)
	return string(b)
}

// startPostgres — поднимает временный экземпляр PostgreSQL через testcontainers-go,
// применяет миграцию users и возвращает инициализированное хранилище и функцию очистки.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	// применяем миграции.
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, readMigration(t, "1_init_users.up.sql"))
	require.NoError(t, err)

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

func newTestUser(email, phone string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test",
		Phone:        phone,
		Role:         models.RolePatient,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TestIntegration_SaveUser_And_Lookups_OK — happy-path: сохранение пользователя
// и последующий поиск по email, phone и ID; проверка CITEXT и таймстемпов.
func TestIntegration_SaveUser_And_Lookups_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newTestUser("User@Example.Com", "+70000000001")
	require.NoError(t, st.SaveUser(context.Background(), u))

	gotByEmail, err := st.UserByEmail(context.Background(), strings.ToLower(u.Email))
	require.NoError(t, err)
	require.Equal(t, u.ID, gotByEmail.ID)
	require.Equal(t, models.RolePatient, gotByEmail.Role)
	require.WithinDuration(t, u.CreatedAt, gotByEmail.CreatedAt, time.Second)
	require.WithinDuration(t, u.UpdatedAt, gotByEmail.UpdatedAt, time.Second)

	gotByPhone, err := st.UserByPhone(context.Background(), u.Phone)
	require.NoError(t, err)
	require.Equal(t, u.ID, gotByPhone.ID)

	gotByID, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, gotByID.ID)
	require.Equal(t, "hash", gotByID.PasswordHash)
}

// TestIntegration_GuestUser_NullPassword_RoundTrip — пустой PasswordHash
// сохраняется как NULL и читается обратно пустой строкой.
func TestIntegration_GuestUser_NullPassword_RoundTrip(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newTestUser("guest@example.com", "+70000000002")
	u.PasswordHash = ""
	require.NoError(t, st.SaveUser(context.Background(), u))

	got, err := st.UserByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	require.Empty(t, got.PasswordHash)
}

// TestIntegration_SaveUser_UniqueEmail_CaseInsensitive_Violation — конфликт
// уникальности по email при различии только в регистре, ожидаем storage.ErrAlreadyExists.
func TestIntegration_SaveUser_UniqueEmail_CaseInsensitive_Violation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	a := newTestUser("user@example.com", "+70000000003")
	require.NoError(t, st.SaveUser(context.Background(), a))

	b := newTestUser("USER@EXAMPLE.COM", "+70000000004") // тот же email, другой регистр
	err := st.SaveUser(context.Background(), b)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_SaveUser_UniquePhone_Violation — конфликт уникальности по phone.
func TestIntegration_SaveUser_UniquePhone_Violation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	a := newTestUser("a@example.com", "+70000000005")
	require.NoError(t, st.SaveUser(context.Background(), a))

	b := newTestUser("b@example.com", "+70000000005") // тот же phone
	err := st.SaveUser(context.Background(), b)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_SaveUser_ContextDeadlineExceeded — SaveUser с мгновенным
// дедлайном должен завершиться ошибкой context.DeadlineExceeded.
func TestIntegration_SaveUser_ContextDeadlineExceeded(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	err := st.SaveUser(ctx, newTestUser("deadline@example.com", "+70000000006"))
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestIntegration_Lookups_NotFound — поиск отсутствующих записей,
// ожидаем storage.ErrNotFound по всем трём ключам.
func TestIntegration_Lookups_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UserByEmail(context.Background(), "absent@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByPhone(context.Background(), "+79999999999")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_UserQueries_ContextCanceled — отменённый контекст должен
// «просочиться» в ошибки чтения как context.Canceled.
func TestIntegration_UserQueries_ContextCanceled(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // отменяем заранее

	_, err := st.UserByEmail(ctx, "user@example.com")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)

	_, err = st.UserByID(ctx, uuid.New())
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
