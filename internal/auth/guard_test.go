package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medbook/auth-service/internal/config"
	"github.com/medbook/auth-service/internal/models"
	"github.com/medbook/auth-service/internal/revocation"
	"github.com/medbook/auth-service/internal/service"
	"github.com/medbook/auth-service/mocks"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "unit-secret-unit-secret-32-bytes!!!!",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
		Issuer:          "auth-service",
		Audience:        []string{"appointment-api"},
	}
}

type fixture struct {
	guard   *Guard
	svc     *service.Service
	users   *mocks.MockUsers
	revoked *revocation.Memory
	user    *models.User
	pair    *models.TokenPair
}

func newFixture(t *testing.T) (*fixture, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsers(ctrl)
	revoked := revocation.NewMemory()
	svc := service.New(users, revoked, testCfg())

	user := &models.User{ID: uuid.New(), Email: "a@x.com", Role: models.RolePatient}
	pair, user2, err := login(svc, users, user)
	require.NoError(t, err)

	return &fixture{
		guard:   New(svc),
		svc:     svc,
		users:   users,
		revoked: revoked,
		user:    user2,
		pair:    pair,
	}, ctrl
}

// login выпускает пару токенов через публичный API сервиса.
func login(svc *service.Service, users *mocks.MockUsers, user *models.User) (*models.TokenPair, *models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		return nil, nil, err
	}

	user.PasswordHash = string(hash)
	users.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil)
	return svc.LoginUser(context.Background(), user.Email, "password")
}

func TestResolve_ValidAccessToken_Authenticated(t *testing.T) {
	t.Parallel()

	f, ctrl := newFixture(t)
	defer ctrl.Finish()

	f.users.EXPECT().UserByID(gomock.Any(), f.user.ID).Return(f.user, nil)

	got, issued := f.guard.Resolve(context.Background(), f.pair.AccessToken, "")
	require.True(t, got.Authenticated)
	require.Nil(t, issued, "валидный access-токен не требует перевыпуска")
	require.Equal(t, f.user.ID, got.Identity.UserID)
	require.Equal(t, f.pair.AccessToken, got.Token)
}

func TestResolve_NoTokens_Anonymous(t *testing.T) {
	t.Parallel()

	f, ctrl := newFixture(t)
	defer ctrl.Finish()

	got, issued := f.guard.Resolve(context.Background(), "", "")
	require.False(t, got.Authenticated)
	require.Nil(t, got.Identity)
	require.Nil(t, issued)
}

// TestResolve_InvalidAccess_FallsBackToRefresh — негодный access-токен
// при живом refresh-токене даёт аутентифицированный контекст и новый
// access-токен для переустановки cookie.
func TestResolve_InvalidAccess_FallsBackToRefresh(t *testing.T) {
	t.Parallel()

	f, ctrl := newFixture(t)
	defer ctrl.Finish()

	f.users.EXPECT().UserByID(gomock.Any(), f.user.ID).Return(f.user, nil)

	got, issued := f.guard.Resolve(context.Background(), "garbage", f.pair.RefreshToken)
	require.True(t, got.Authenticated)
	require.NotNil(t, issued)
	require.NotEmpty(t, issued.Token)
	require.Equal(t, issued.Token, got.Token)
}

// TestResolve_RevokedTokens_Anonymous — после logout разрешение с теми же
// токенами даёт анонимный контекст, хотя срок токенов не истёк.
func TestResolve_RevokedTokens_Anonymous(t *testing.T) {
	t.Parallel()

	f, ctrl := newFixture(t)
	defer ctrl.Finish()

	ctx := context.Background()
	require.NoError(t, f.svc.Logout(ctx, f.pair.AccessToken, f.pair.RefreshToken))

	got, issued := f.guard.Resolve(ctx, f.pair.AccessToken, f.pair.RefreshToken)
	require.False(t, got.Authenticated)
	require.Nil(t, issued)
}

// TestResolve_UserLookupFailure_Anonymous — сбой внешнего хранилища
// пользователей — «нельзя аутентифицировать», а не падение.
func TestResolve_UserLookupFailure_Anonymous(t *testing.T) {
	t.Parallel()

	f, ctrl := newFixture(t)
	defer ctrl.Finish()

	// Падают оба пути: и access, и refresh.
	f.users.EXPECT().UserByID(gomock.Any(), f.user.ID).Return(nil, errors.New("db down")).Times(2)

	got, issued := f.guard.Resolve(context.Background(), f.pair.AccessToken, f.pair.RefreshToken)
	require.False(t, got.Authenticated)
	require.Nil(t, issued)
}

func TestRequireAuthenticated(t *testing.T) {
	t.Parallel()

	_, err := RequireAuthenticated(Context{})
	require.ErrorIs(t, err, ErrUnauthenticated)

	identity := &Identity{UserID: uuid.New(), Role: models.RolePatient}
	got, err := RequireAuthenticated(Context{Identity: identity, Authenticated: true})
	require.NoError(t, err)
	require.Equal(t, identity, got)
}

// TestRequireAdmin_OrderingContract — анонимный запрос получает
// ErrUnauthenticated, а не ErrPermissionDenied.
func TestRequireAdmin_OrderingContract(t *testing.T) {
	t.Parallel()

	_, err := RequireAdmin(Context{})
	require.ErrorIs(t, err, ErrUnauthenticated)

	patient := Context{
		Identity:      &Identity{UserID: uuid.New(), Role: models.RolePatient},
		Authenticated: true,
	}
	_, err = RequireAdmin(patient)
	require.ErrorIs(t, err, ErrPermissionDenied)

	admin := Context{
		Identity:      &Identity{UserID: uuid.New(), Role: models.RoleAdmin},
		Authenticated: true,
	}
	got, err := RequireAdmin(admin)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, got.Role)
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	c := Context{
		Identity:      &Identity{UserID: uuid.New(), Email: "a@x.com", Role: models.RolePatient},
		Token:         "raw",
		Authenticated: true,
	}

	ctx := IntoContext(context.Background(), c)
	require.Equal(t, c, FromContext(ctx))

	// Пустой контекст — анонимный.
	require.Equal(t, Context{}, FromContext(context.Background()))
}
