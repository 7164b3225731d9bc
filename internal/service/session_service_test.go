package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/exso/CryptoBank/config"
	"github.com/exso/CryptoBank/internal/model"
	"github.com/exso/CryptoBank/internal/ports"
	"github.com/exso/CryptoBank/internal/security"
	"github.com/exso/CryptoBank/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ===== MOCKS =====

// MockTokenStore
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Insert(ctx context.Context, token *model.RefreshToken) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenStore) FindByToken(ctx context.Context, secret string) (*model.RefreshToken, error) {
	args := m.Called(ctx, secret)
	if token, ok := args.Get(0).(*model.RefreshToken); ok {
		return token, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenStore) FindByID(ctx context.Context, id int64) (*model.RefreshToken, error) {
	args := m.Called(ctx, id)
	if token, ok := args.Get(0).(*model.RefreshToken); ok {
		return token, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenStore) TryRotate(ctx context.Context, oldID int64, newRow *model.RefreshToken) (*model.RefreshToken, error) {
	args := m.Called(ctx, oldID, newRow)
	if token, ok := args.Get(0).(*model.RefreshToken); ok {
		return token, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenStore) Revoke(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockTokenStore) RevokeAllActive(ctx context.Context, userUUID string, reason string) (int64, error) {
	args := m.Called(ctx, userUUID, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenStore) DeleteRetired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockIssuer
type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) IssueAccessToken(user *model.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockIssuer) ValidateJWT(tokenStr string) (*security.Claims, error) {
	args := m.Called(tokenStr)
	if claims, ok := args.Get(0).(*security.Claims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	args := m.Called(ctx, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindRoles(ctx context.Context, userUUID string) ([]string, error) {
	args := m.Called(ctx, userUUID)
	if roles, ok := args.Get(0).([]string); ok {
		return roles, args.Error(1)
	}
	return nil, args.Error(1)
}

// ===== HELPERS =====

func newTestSessionService(t *testing.T) (*service.SessionService, *MockTokenStore, *MockIssuer, *MockUserRepository) {
	mockStore := new(MockTokenStore)
	mockIssuer := new(MockIssuer)
	mockUserRepo := new(MockUserRepository)

	svc, err := service.NewSessionService(
		mockStore,
		mockIssuer,
		mockUserRepo,
		nil, // без кэша: снапшот читается из БД
		&config.JWTConfig{
			SigningKey:      "secret",
			AccessTokenTTL:  "15m",
			RefreshTokenTTL: "168h",
		},
	)
	require.NoError(t, err)

	return svc, mockStore, mockIssuer, mockUserRepo
}

func activeRow(id int64, userUUID, secret string) *model.RefreshToken {
	now := time.Now().UTC()
	return &model.RefreshToken{
		ID:        id,
		UserUUID:  userUUID,
		Token:     secret,
		CreatedAt: now.Add(-time.Hour),
		ExpiresAt: now.Add(167 * time.Hour),
	}
}

func revokedRow(id int64, userUUID, secret, reason string) *model.RefreshToken {
	row := activeRow(id, userUUID, secret)
	revokedAt := time.Now().UTC().Add(-30 * time.Minute)
	row.RevokedAt = &revokedAt
	row.RevokedReason = &reason
	return row
}

// ===== TESTS: StartSession =====

// 1. Успешный логин: access-токен плюс свежий refresh-секрет
func TestStartSession_Success(t *testing.T) {
	svc, mockStore, mockIssuer, _ := newTestSessionService(t)
	ctx := context.Background()
	user := &model.User{UUID: "u1", Email: "user@example.com", Roles: []string{model.RoleUser}}

	mockIssuer.On("IssueAccessToken", user).Return("access", nil)
	mockStore.On("Insert", ctx, mock.AnythingOfType("*model.RefreshToken")).Return(int64(1), nil)

	tokens, err := svc.StartSession(ctx, user)

	require.NoError(t, err)
	assert.Equal(t, "access", tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	mockIssuer.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

// 2. Секрет привязан к пользователю и живёт ровно refresh_token_ttl
func TestStartSession_RowFields(t *testing.T) {
	svc, mockStore, mockIssuer, _ := newTestSessionService(t)
	ctx := context.Background()
	user := &model.User{UUID: "u1"}

	var saved *model.RefreshToken
	mockIssuer.On("IssueAccessToken", user).Return("access", nil)
	mockStore.On("Insert", ctx, mock.AnythingOfType("*model.RefreshToken")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*model.RefreshToken)
		}).
		Return(int64(1), nil)

	tokens, err := svc.StartSession(ctx, user)

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "u1", saved.UserUUID)
	assert.Equal(t, tokens.RefreshToken, saved.Token)
	assert.Nil(t, saved.RevokedAt)
	assert.Equal(t, 168*time.Hour, saved.ExpiresAt.Sub(saved.CreatedAt))
}

// 3. Коллизия секрета: вставка повторяется с новым секретом, наружу ошибки нет
func TestStartSession_ConflictRetried(t *testing.T) {
	svc, mockStore, mockIssuer, _ := newTestSessionService(t)
	ctx := context.Background()
	user := &model.User{UUID: "u1"}

	mockIssuer.On("IssueAccessToken", user).Return("access", nil)
	mockStore.On("Insert", ctx, mock.AnythingOfType("*model.RefreshToken")).
		Return(int64(0), ports.ErrTokenConflict).Once()
	mockStore.On("Insert", ctx, mock.AnythingOfType("*model.RefreshToken")).
		Return(int64(2), nil).Once()

	tokens, err := svc.StartSession(ctx, user)

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.RefreshToken)
	mockStore.AssertNumberOfCalls(t, "Insert", 2)
}

// 4. Ошибка БД при сохранении refresh-токена
func TestStartSession_InsertError(t *testing.T) {
	svc, mockStore, mockIssuer, _ := newTestSessionService(t)
	ctx := context.Background()
	user := &model.User{UUID: "u1"}

	mockIssuer.On("IssueAccessToken", user).Return("access", nil)
	mockStore.On("Insert", ctx, mock.AnythingOfType("*model.RefreshToken")).
		Return(int64(0), errors.New("db down"))

	tokens, err := svc.StartSession(ctx, user)

	assert.Nil(t, tokens)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrInvalidToken)
}

// ===== TESTS: Rotate =====

// 5. Неизвестный секрет: единый отказ, каскада нет
func TestRotate_NotFound(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	mockStore.On("FindByToken", ctx, "unknown").Return(nil, ports.ErrTokenNotFound)

	tokens, err := svc.Rotate(ctx, "unknown")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	mockStore.AssertNotCalled(t, "RevokeAllActive", mock.Anything, mock.Anything, mock.Anything)
}

// 6. Естественное истечение — не инцидент: отказ без каскада
func TestRotate_ExpiredNotContagious(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	row := activeRow(1, "u1", "old-secret")
	row.ExpiresAt = time.Now().UTC().Add(-time.Minute)

	mockStore.On("FindByToken", ctx, "old-secret").Return(row, nil)

	tokens, err := svc.Rotate(ctx, "old-secret")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	mockStore.AssertNotCalled(t, "RevokeAllActive", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "TryRotate", mock.Anything, mock.Anything, mock.Anything)
}

// 7. Повторное предъявление списанного секрета: каскадный отзыв всех токенов
func TestRotate_ReuseDetected(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	row := revokedRow(1, "u1", "stolen-secret", model.RevokedReasonReplaced)

	mockStore.On("FindByToken", ctx, "stolen-secret").Return(row, nil)
	mockStore.On("RevokeAllActive", ctx, "u1", model.RevokedReasonReuseDetected).Return(int64(3), nil)

	tokens, err := svc.Rotate(ctx, "stolen-secret")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	mockStore.AssertExpectations(t)
}

// 8. Просроченный И отозванный секрет — всё ещё повторное использование
func TestRotate_RevokedAndExpiredStillCascades(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	row := revokedRow(1, "u1", "ancient-secret", model.RevokedReasonReplaced)
	row.ExpiresAt = time.Now().UTC().Add(-time.Hour)

	mockStore.On("FindByToken", ctx, "ancient-secret").Return(row, nil)
	mockStore.On("RevokeAllActive", ctx, "u1", model.RevokedReasonReuseDetected).Return(int64(0), nil)

	_, err := svc.Rotate(ctx, "ancient-secret")

	assert.ErrorIs(t, err, service.ErrInvalidToken)
	mockStore.AssertExpectations(t)
}

// 9. Ошибка каскада не спасает вызов: Rotate всё равно отвечает отказом
func TestRotate_CascadeErrorStillInvalid(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	row := revokedRow(1, "u1", "stolen-secret", model.RevokedReasonReplaced)

	mockStore.On("FindByToken", ctx, "stolen-secret").Return(row, nil)
	mockStore.On("RevokeAllActive", ctx, "u1", model.RevokedReasonReuseDetected).
		Return(int64(0), errors.New("db down"))

	tokens, err := svc.Rotate(ctx, "stolen-secret")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

// 10. Проигрыш гонки конкурентной ротации: тот же каскад, что и при краже
func TestRotate_LostRaceTreatedAsReuse(t *testing.T) {
	svc, mockStore, _, mockUserRepo := newTestSessionService(t)
	ctx := context.Background()

	row := activeRow(1, "u1", "contested-secret")
	user := &model.User{UUID: "u1", Roles: []string{model.RoleUser}}

	mockStore.On("FindByToken", ctx, "contested-secret").Return(row, nil)
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(user, nil)
	mockStore.On("TryRotate", ctx, int64(1), mock.AnythingOfType("*model.RefreshToken")).
		Return(nil, ports.ErrAlreadyRotated)
	mockStore.On("RevokeAllActive", ctx, "u1", model.RevokedReasonReuseDetected).Return(int64(1), nil)

	tokens, err := svc.Rotate(ctx, "contested-secret")

	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	mockStore.AssertExpectations(t)
}

// 11. Успешная ротация: новый секрет отличается от предъявленного
func TestRotate_Success(t *testing.T) {
	svc, mockStore, mockIssuer, mockUserRepo := newTestSessionService(t)
	ctx := context.Background()

	row := activeRow(1, "u1", "old-secret")
	user := &model.User{UUID: "u1", Roles: []string{model.RoleUser}}

	mockStore.On("FindByToken", ctx, "old-secret").Return(row, nil)
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(user, nil)
	mockStore.On("TryRotate", ctx, int64(1), mock.AnythingOfType("*model.RefreshToken")).
		Return(&model.RefreshToken{ID: 2}, nil)
	mockIssuer.On("IssueAccessToken", user).Return("new-access", nil)

	tokens, err := svc.Rotate(ctx, "old-secret")

	require.NoError(t, err)
	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, "old-secret", tokens.RefreshToken)
	mockStore.AssertNotCalled(t, "RevokeAllActive", mock.Anything, mock.Anything, mock.Anything)
}

// 12. Коллизия секрета при ротации: повтор с новым секретом
func TestRotate_ConflictRetried(t *testing.T) {
	svc, mockStore, mockIssuer, mockUserRepo := newTestSessionService(t)
	ctx := context.Background()

	row := activeRow(1, "u1", "old-secret")
	user := &model.User{UUID: "u1"}

	mockStore.On("FindByToken", ctx, "old-secret").Return(row, nil)
	mockUserRepo.On("FindByUUID", ctx, "u1").Return(user, nil)
	mockStore.On("TryRotate", ctx, int64(1), mock.AnythingOfType("*model.RefreshToken")).
		Return(nil, ports.ErrTokenConflict).Once()
	mockStore.On("TryRotate", ctx, int64(1), mock.AnythingOfType("*model.RefreshToken")).
		Return(&model.RefreshToken{ID: 2}, nil).Once()
	mockIssuer.On("IssueAccessToken", user).Return("new-access", nil)

	tokens, err := svc.Rotate(ctx, "old-secret")

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.RefreshToken)
	mockStore.AssertNumberOfCalls(t, "TryRotate", 2)
}

// 13. Временная недоступность БД: ошибка пробрасывается как есть,
// без подмены на отказ по токену — клиент может безопасно повторить
func TestRotate_StoreErrorPropagated(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	mockStore.On("FindByToken", ctx, "secret").Return(nil, errors.New("connection refused"))

	tokens, err := svc.Rotate(ctx, "secret")

	assert.Nil(t, tokens)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrInvalidToken)
}

// ===== TESTS: Revoke =====

// 14. Logout: активная строка отзывается с причиной "user-revoked"
func TestRevoke_Success(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	row := activeRow(1, "u1", "secret")

	mockStore.On("FindByToken", ctx, "secret").Return(row, nil)
	mockStore.On("Revoke", ctx, int64(1), model.RevokedReasonUserRevoked).Return(nil)

	err := svc.Revoke(ctx, "secret")

	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

// 15. Отзыв неактивного секрета: единый отказ
func TestRevoke_NotActive(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	row := revokedRow(1, "u1", "secret", model.RevokedReasonUserRevoked)

	mockStore.On("FindByToken", ctx, "secret").Return(row, nil)

	err := svc.Revoke(ctx, "secret")

	assert.ErrorIs(t, err, service.ErrInvalidToken)
	mockStore.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

// 16. Конкурентная ротация успела раньше logout: тоже отказ
func TestRevoke_LostRace(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	row := activeRow(1, "u1", "secret")

	mockStore.On("FindByToken", ctx, "secret").Return(row, nil)
	mockStore.On("Revoke", ctx, int64(1), model.RevokedReasonUserRevoked).Return(ports.ErrAlreadyRotated)

	err := svc.Revoke(ctx, "secret")

	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

// 17. Неизвестный секрет при logout
func TestRevoke_NotFound(t *testing.T) {
	svc, mockStore, _, _ := newTestSessionService(t)
	ctx := context.Background()

	mockStore.On("FindByToken", ctx, "unknown").Return(nil, ports.ErrTokenNotFound)

	err := svc.Revoke(ctx, "unknown")

	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
