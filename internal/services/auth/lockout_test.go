package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/account-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/account-gatekeeper/internal/models"
	services "github.com/magabrotheeeer/account-gatekeeper/internal/services/auth"
	"github.com/magabrotheeeer/account-gatekeeper/internal/storage/repository"
)

// memUserRepo — хранилище в памяти с той же атомарностью на аккаунт,
// что и у PostgreSQL-репозитория: инкремент счётчика и переход в
// блокировку выполняются под мьютексом как одно действие.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (m *memUserRepo) RegisterUser(_ context.Context, user models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return "", repository.ErrUsernameTaken
	}
	u := user
	u.UUID = fmt.Sprintf("uid-%d", len(m.users)+1)
	m.users[user.Username] = &u
	return u.UUID, nil
}

func (m *memUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) RecordLoginFailure(_ context.Context, username string, lockThreshold int, lockUntil time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	u.FailedLoginCount++
	if u.FailedLoginCount >= lockThreshold {
		until := lockUntil
		u.LockoutUntil = &until
	}
	return u.FailedLoginCount, nil
}

func (m *memUserRepo) ResetLoginFailures(_ context.Context, username string, lastLogin time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.FailedLoginCount = 0
	u.LockoutUntil = nil
	ll := lastLogin
	u.LastLogin = &ll
	return nil
}

func (m *memUserRepo) CountUsers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

// memAttemptRepo — журнал попыток входа в памяти.
type memAttemptRepo struct {
	mu       sync.Mutex
	attempts []models.LoginAttempt
}

func (m *memAttemptRepo) InsertLoginAttempt(_ context.Context, attempt models.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt.ID = int64(len(m.attempts) + 1)
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *memAttemptRepo) ListLoginAttempts(_ context.Context, username string, limit int) ([]models.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.LoginAttempt
	for i := len(m.attempts) - 1; i >= 0 && len(result) < limit; i-- {
		if m.attempts[i].Username == username {
			result = append(result, m.attempts[i])
		}
	}
	return result, nil
}

// memSessionStore — реестр сессий в памяти.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]string)}
}

func (m *memSessionStore) Save(_ context.Context, sessionID, username string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = username
	return nil
}

func (m *memSessionStore) Exists(_ context.Context, sessionID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	username, ok := m.sessions[sessionID]
	return username, ok, nil
}

func (m *memSessionStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Сквозной сценарий блокировки: 4 неудачи подряд отвечают "invalid
// credentials", пятая переводит аккаунт в блокировку, правильный пароль
// во время блокировки не принимается и счётчик не растёт, после
// истечения окна вход снова оценивается нормально и сбрасывает счётчик.
func TestAuthService_LockoutSequence(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	attempts := &memAttemptRepo{}
	sessionsStore := newMemSessionStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	maker := customjwt.NewJWTMaker("test_secret_key", time.Hour)
	svc, err := services.NewAuthService(noopLogger(), users, attempts, sessionsStore, maker, nil, clk, testPolicy(), time.Hour)
	require.NoError(t, err)

	_, err = svc.Register(ctx, services.RegisterRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "Str0ng!Pass",
		ConfirmPassword: "Str0ng!Pass",
	})
	require.NoError(t, err)

	// Первые четыре неудачи — обычный отказ.
	for i := 1; i <= 4; i++ {
		_, err = svc.Login(ctx, "alice", "wrong", "127.0.0.1")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials, "attempt %d", i)
	}

	// Пятая неудача достигает порога и блокирует аккаунт.
	_, err = svc.Login(ctx, "alice", "wrong", "127.0.0.1")
	assert.ErrorIs(t, err, services.ErrAccountLocked)

	user, err := users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, user.FailedLoginCount)
	require.NotNil(t, user.LockoutUntil)
	assert.Equal(t, clk.Now().Add(15*time.Minute), *user.LockoutUntil)

	// Во время блокировки не принимается даже правильный пароль,
	// счётчик при этом не увеличивается.
	_, err = svc.Login(ctx, "alice", "Str0ng!Pass", "127.0.0.1")
	assert.ErrorIs(t, err, services.ErrAccountLocked)

	user, err = users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, user.FailedLoginCount)

	// После истечения окна блокировки вход оценивается нормально.
	clk.Advance(15*time.Minute + time.Second)

	token, err := svc.Login(ctx, "alice", "Str0ng!Pass", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	user, err = users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, user.FailedLoginCount)
	assert.Nil(t, user.LockoutUntil)
	require.NotNil(t, user.LastLogin)

	// Выпущенная сессия валидна и отзывается при logout.
	username, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, services.ErrInvalidSession)

	// Журнал безопасности содержит все попытки.
	list, err := svc.ListLoginAttempts(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, list, 7)
	assert.True(t, list[0].Success)
}

// Конкурентные неудачные попытки не теряют инкременты: переход в
// блокировку происходит, как только суммарный счётчик достигает порога.
func TestAuthService_ConcurrentFailuresTriggerLockout(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	attempts := &memAttemptRepo{}
	sessionsStore := newMemSessionStore()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	maker := customjwt.NewJWTMaker("test_secret_key", time.Hour)
	svc, err := services.NewAuthService(noopLogger(), users, attempts, sessionsStore, maker, nil, clk, testPolicy(), time.Hour)
	require.NoError(t, err)

	_, err = svc.Register(ctx, services.RegisterRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "Str0ng!Pass",
		ConfirmPassword: "Str0ng!Pass",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Login(ctx, "alice", "wrong", "127.0.0.1")
		}()
	}
	wg.Wait()

	user, err := users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 10, user.FailedLoginCount)
	require.NotNil(t, user.LockoutUntil)

	_, err = svc.Login(ctx, "alice", "Str0ng!Pass", "127.0.0.1")
	assert.ErrorIs(t, err, services.ErrAccountLocked)
}
