package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"connect-digitals-backend/internal/domains/user"
	"connect-digitals-backend/internal/infrastructure/email"
	"connect-digitals-backend/pkg/jwt"
)

// mockRepository implements user.Repository with overridable func fields.
type mockRepository struct {
	CreateFunc                  func(ctx context.Context, u *user.User) (uuid.UUID, error)
	FindByIDFunc                func(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmailFunc             func(ctx context.Context, email string) (*user.User, error)
	UpdateProfileFunc           func(ctx context.Context, id uuid.UUID, name, bio, avatar *string) error
	FindByVerificationTokenFunc func(ctx context.Context, token string) (*user.User, error)
	FindByResetTokenFunc        func(ctx context.Context, token string) (*user.User, error)
	UpdatePasswordFunc          func(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt time.Time) error
	SetResetTokenFunc           func(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	MarkAsVerifiedFunc          func(ctx context.Context, userID uuid.UUID) error
	UpdateLastLoginFunc         func(ctx context.Context, userID uuid.UUID) error
	ListFunc                    func(ctx context.Context, req user.ListUsersRequest) ([]user.User, int, error)
	UpdateRoleFunc              func(ctx context.Context, userID uuid.UUID, role user.Role) error
	UpdateStatusFunc            func(ctx context.Context, userID uuid.UUID, isActive bool) error
	DeleteExpiredTokensFunc     func(ctx context.Context) (int64, error)
	ExistsByEmailFunc           func(ctx context.Context, email string) (bool, error)
	StatsFunc                   func(ctx context.Context) (int, int, error)
}

func (m *mockRepository) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return uuid.New(), nil
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, user.ErrUserNotFound
}

func (m *mockRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, bio, avatar *string) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, name, bio, avatar)
	}
	return nil
}

func (m *mockRepository) FindByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	if m.FindByVerificationTokenFunc != nil {
		return m.FindByVerificationTokenFunc(ctx, token)
	}
	return nil, user.ErrInvalidToken
}

func (m *mockRepository) FindByResetToken(ctx context.Context, token string) (*user.User, error) {
	if m.FindByResetTokenFunc != nil {
		return m.FindByResetTokenFunc(ctx, token)
	}
	return nil, user.ErrInvalidToken
}

func (m *mockRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt time.Time) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, passwordHash, changedAt)
	}
	return nil
}

func (m *mockRepository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, userID, token, expiresAt)
	}
	return nil
}

func (m *mockRepository) MarkAsVerified(ctx context.Context, userID uuid.UUID) error {
	if m.MarkAsVerifiedFunc != nil {
		return m.MarkAsVerifiedFunc(ctx, userID)
	}
	return nil
}

func (m *mockRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, userID)
	}
	return nil
}

func (m *mockRepository) List(ctx context.Context, req user.ListUsersRequest) ([]user.User, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, req)
	}
	return nil, 0, nil
}

func (m *mockRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role user.Role) error {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, userID, role)
	}
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, isActive bool) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, userID, isActive)
	}
	return nil
}

func (m *mockRepository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	if m.DeleteExpiredTokensFunc != nil {
		return m.DeleteExpiredTokensFunc(ctx)
	}
	return 0, nil
}

func (m *mockRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *mockRepository) Stats(ctx context.Context) (int, int, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return 0, 0, nil
}

// mockCache is an in-memory stand-in for the Redis cache.
type mockCache struct {
	counters map[string]int64
}

func newMockCache() *mockCache {
	return &mockCache{counters: map[string]int64{}}
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	count, ok := m.counters[key]
	if !ok {
		return false, nil
	}
	if p, ok := dest.(*int64); ok {
		*p = count
		return true, nil
	}
	return false, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.counters, key)
	}
	return nil
}

func (m *mockCache) Ping(ctx context.Context) error { return nil }

func (m *mockCache) Increment(ctx context.Context, key string) (int64, error) {
	m.counters[key]++
	return m.counters[key], nil
}

func (m *mockCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

// mockEnqueuer records email tasks instead of pushing them to Redis.
type mockEnqueuer struct {
	verifications []email.VerificationEmailData
	resets        []email.ResetPasswordData
}

func (m *mockEnqueuer) EnqueueVerificationEmail(data email.VerificationEmailData) error {
	m.verifications = append(m.verifications, data)
	return nil
}

func (m *mockEnqueuer) EnqueueResetPasswordEmail(data email.ResetPasswordData) error {
	m.resets = append(m.resets, data)
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestService(repo user.Repository, cache *mockCache, enqueuer *mockEnqueuer) user.Service {
	return NewUserService(repo, jwt.NewManager("test-secret", time.Hour), cache, enqueuer, "http://localhost:8080")
}

// ========================================
// REGISTER
// ========================================

func TestRegister_DefaultsToAuthorAndEnqueuesEmail(t *testing.T) {
	var created *user.User
	repo := &mockRepository{
		CreateFunc: func(ctx context.Context, u *user.User) (uuid.UUID, error) {
			created = u
			return uuid.New(), nil
		},
	}
	enqueuer := &mockEnqueuer{}
	svc := newTestService(repo, newMockCache(), enqueuer)

	dto, err := svc.Register(context.Background(), user.RegisterRequest{
		Name:     "Jane Author",
		Email:    "Jane@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, user.RoleAuthor, created.Role)
	assert.Equal(t, "jane@example.com", created.Email)
	assert.True(t, created.IsActive)
	assert.False(t, created.IsVerified)
	require.NotNil(t, created.VerificationToken)
	assert.Equal(t, user.RoleAuthor, dto.Role)

	require.Len(t, enqueuer.verifications, 1)
	assert.Contains(t, enqueuer.verifications[0].VerifyLink, *created.VerificationToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockRepository{
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(repo, newMockCache(), &mockEnqueuer{})

	_, err := svc.Register(context.Background(), user.RegisterRequest{
		Name:     "Jane Author",
		Email:    "taken@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

// ========================================
// LOGIN
// ========================================

func TestLogin_Success(t *testing.T) {
	account := &user.User{
		ID:           uuid.New(),
		Email:        "jane@example.com",
		PasswordHash: hashPassword(t, "password123"),
		Name:         "Jane Author",
		Role:         user.RoleAuthor,
		IsActive:     true,
	}
	repo := &mockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			assert.Equal(t, "jane@example.com", email)
			return account, nil
		},
	}
	svc := newTestService(repo, newMockCache(), &mockEnqueuer{})

	resp, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "Jane@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, account.Email, resp.User.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)
}

func TestLogin_WrongPassword(t *testing.T) {
	account := &user.User{
		ID:           uuid.New(),
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}
	repo := &mockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			return account, nil
		},
	}
	svc := newTestService(repo, newMockCache(), &mockEnqueuer{})

	_, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	account := &user.User{
		ID:           uuid.New(),
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     false,
	}
	repo := &mockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			return account, nil
		},
	}
	svc := newTestService(repo, newMockCache(), &mockEnqueuer{})

	_, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "jane@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, user.ErrUserInactive)
}

func TestLogin_ThrottledAfterFiveFailures(t *testing.T) {
	account := &user.User{
		ID:           uuid.New(),
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}
	repo := &mockRepository{
		FindByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
			return account, nil
		},
	}
	cache := newMockCache()
	svc := newTestService(repo, cache, &mockEnqueuer{})

	req := user.LoginRequest{Email: "jane@example.com", Password: "wrong-password"}
	for i := 0; i < 5; i++ {
		_, err := svc.Login(context.Background(), req)
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	}

	// The sixth attempt is rejected before the password check, even with
	// the correct password.
	_, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "jane@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, user.ErrTooManyAttempts)
}

// ========================================
// PASSWORDS
// ========================================

func TestChangePassword_SamePasswordRejected(t *testing.T) {
	account := &user.User{
		ID:           uuid.New(),
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}
	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			return account, nil
		},
	}
	svc := newTestService(repo, newMockCache(), &mockEnqueuer{})

	err := svc.ChangePassword(context.Background(), account.ID, user.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "password123",
	})
	assert.ErrorIs(t, err, user.ErrSamePassword)
}

func TestChangePassword_BackdatesChangeStamp(t *testing.T) {
	account := &user.User{
		ID:           uuid.New(),
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}

	var stampedAt time.Time
	repo := &mockRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			return account, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt time.Time) error {
			stampedAt = changedAt
			return nil
		},
	}
	svc := newTestService(repo, newMockCache(), &mockEnqueuer{})

	err := svc.ChangePassword(context.Background(), account.ID, user.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "new-password-456",
	})
	require.NoError(t, err)

	// Stamped before now, so a token issued in the same instant reads
	// as stale.
	assert.True(t, stampedAt.Before(time.Now()))
}

func TestResetPassword_InvalidToken(t *testing.T) {
	svc := newTestService(&mockRepository{}, newMockCache(), &mockEnqueuer{})

	err := svc.ResetPassword(context.Background(), user.ResetPasswordRequest{
		Token:       "expired-token",
		NewPassword: "new-password-456",
	})
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestForgotPassword_UnknownEmailSucceedsSilently(t *testing.T) {
	enqueuer := &mockEnqueuer{}
	svc := newTestService(&mockRepository{}, newMockCache(), enqueuer)

	err := svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{
		Email: "nobody@example.com",
	})
	assert.NoError(t, err)
	assert.Empty(t, enqueuer.resets)
}

// ========================================
// ADMIN
// ========================================

func TestUpdateUserRole_SelfChangeRejected(t *testing.T) {
	svc := newTestService(&mockRepository{}, newMockCache(), &mockEnqueuer{})

	id := uuid.New()
	err := svc.UpdateUserRole(context.Background(), id, id, user.UpdateRoleRequest{Role: user.RoleEditor})
	assert.ErrorIs(t, err, user.ErrSelfRoleChange)
}

func TestUpdateUserStatus_SelfDeactivateRejected(t *testing.T) {
	svc := newTestService(&mockRepository{}, newMockCache(), &mockEnqueuer{})

	id := uuid.New()
	err := svc.UpdateUserStatus(context.Background(), id, id, user.UpdateStatusRequest{IsActive: false})
	assert.ErrorIs(t, err, user.ErrSelfDeactivate)
}

func TestEnsureAdmin_SkipsExistingAccount(t *testing.T) {
	var createCalled bool
	repo := &mockRepository{
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
		CreateFunc: func(ctx context.Context, u *user.User) (uuid.UUID, error) {
			createCalled = true
			return uuid.New(), nil
		},
	}
	svc := newTestService(repo, newMockCache(), &mockEnqueuer{})

	err := svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "secret-password")
	require.NoError(t, err)
	assert.False(t, createCalled)
}

func TestEnsureAdmin_CreatesVerifiedAdmin(t *testing.T) {
	var created *user.User
	repo := &mockRepository{
		CreateFunc: func(ctx context.Context, u *user.User) (uuid.UUID, error) {
			created = u
			return uuid.New(), nil
		},
	}
	svc := newTestService(repo, newMockCache(), &mockEnqueuer{})

	err := svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "secret-password")
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, user.RoleAdmin, created.Role)
	assert.True(t, created.IsVerified)
	assert.True(t, created.IsActive)
}

// The seed email must go through the same lowercasing as Register and
// Login, or a mixed-case ADMIN_EMAIL produces an account that can
// never sign in.
func TestEnsureAdmin_LowercasesSeedEmail(t *testing.T) {
	var checkedEmail string
	var created *user.User
	repo := &mockRepository{
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
			checkedEmail = email
			return false, nil
		},
		CreateFunc: func(ctx context.Context, u *user.User) (uuid.UUID, error) {
			created = u
			return uuid.New(), nil
		},
	}
	svc := newTestService(repo, newMockCache(), &mockEnqueuer{})

	err := svc.EnsureAdmin(context.Background(), "Admin", "Admin@Example.COM", "secret-password")
	require.NoError(t, err)

	assert.Equal(t, "admin@example.com", checkedEmail)
	require.NotNil(t, created)
	assert.Equal(t, "admin@example.com", created.Email)
}
