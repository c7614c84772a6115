package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"connect-digitals-backend/internal/domains/user"
	"connect-digitals-backend/internal/infrastructure/email"
	"connect-digitals-backend/pkg/cache"
	"connect-digitals-backend/pkg/jwt"
	"connect-digitals-backend/pkg/logger"
)

const (
	bcryptCost = 12

	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = 15 * time.Minute

	// Failed login throttling: 5 attempts per 15 minute window.
	maxLoginAttempts = 5
	loginAttemptsTTL = 15 * time.Minute
)

// EmailEnqueuer pushes email tasks onto the background queue.
type EmailEnqueuer interface {
	EnqueueVerificationEmail(data email.VerificationEmailData) error
	EnqueueResetPasswordEmail(data email.ResetPasswordData) error
}

type userService struct {
	repo     user.Repository
	jwtMgr   *jwt.Manager
	cache    cache.Cache
	enqueuer EmailEnqueuer
	baseURL  string
}

func NewUserService(
	repo user.Repository,
	jwtMgr *jwt.Manager,
	cache cache.Cache,
	enqueuer EmailEnqueuer,
	baseURL string,
) user.Service {
	return &userService{
		repo:     repo,
		jwtMgr:   jwtMgr,
		cache:    cache,
		enqueuer: enqueuer,
		baseURL:  baseURL,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	req.Email = strings.ToLower(req.Email)

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, user.ErrEmailAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	verificationToken, err := generateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now()
	tokenExpiry := now.Add(verificationTokenTTL)
	newUser := &user.User{
		Email:                      req.Email,
		PasswordHash:               string(passwordHash),
		Name:                       req.Name,
		Role:                       user.RoleAuthor,
		IsActive:                   true,
		IsVerified:                 false,
		VerificationToken:          &verificationToken,
		VerificationTokenExpiresAt: &tokenExpiry,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	id, err := s.repo.Create(ctx, newUser)
	if err != nil {
		return nil, err
	}
	newUser.ID = id

	if s.enqueuer != nil {
		verifyLink := fmt.Sprintf("%s/api/auth/verify-email?token=%s", s.baseURL, verificationToken)
		if err := s.enqueuer.EnqueueVerificationEmail(email.VerificationEmailData{
			Email:      newUser.Email,
			VerifyLink: verifyLink,
			ExpiresIn:  "24 hours",
		}); err != nil {
			logger.Error("enqueue verification email", err)
		}
	}

	dto := newUser.ToDTO()
	return &dto, nil
}

func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	req.Email = strings.ToLower(req.Email)

	throttleKey := fmt.Sprintf("login_attempts:%s", req.Email)
	if s.cache != nil {
		var attempts int64
		if found, err := s.cache.Get(ctx, throttleKey, &attempts); err == nil && found && attempts >= maxLoginAttempts {
			return nil, user.ErrTooManyAttempts
		}
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the email exists.
		s.recordFailedAttempt(ctx, throttleKey)
		return nil, user.ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, user.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailedAttempt(ctx, throttleKey)
		return nil, user.ErrInvalidCredentials
	}

	token, err := s.jwtMgr.GenerateToken(u.ID.String(), u.Email, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, throttleKey)
	}

	go func() {
		_ = s.repo.UpdateLastLogin(context.Background(), u.ID)
	}()

	dto := u.ToDTO()
	return &user.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.jwtMgr.Expiry()),
		User:      dto,
	}, nil
}

func (s *userService) recordFailedAttempt(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	count, err := s.cache.Increment(ctx, key)
	if err != nil {
		return
	}
	if count == 1 {
		_ = s.cache.Expire(ctx, key, loginAttemptsTTL)
	}
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	u, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		return err
	}

	if u.IsVerified {
		// Idempotent.
		return nil
	}

	if err := s.repo.MarkAsVerified(ctx, u.ID); err != nil {
		return fmt.Errorf("mark as verified: %w", err)
	}

	return nil
}

func (s *userService) ForgotPassword(ctx context.Context, req user.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		// Always succeed so the endpoint cannot be used to probe emails.
		return nil
	}

	resetToken, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.repo.SetResetToken(ctx, u.ID, resetToken, expiresAt); err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueResetPasswordEmail(email.ResetPasswordData{
			Email:     u.Email,
			Token:     resetToken,
			ExpiresIn: "15 minutes",
		}); err != nil {
			logger.Error("enqueue reset password email", err)
		}
	}

	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByResetToken(ctx, req.Token)
	if err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, u.ID, string(passwordHash), passwordChangeStamp()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req user.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return user.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.NewPassword)); err == nil {
		return user.ErrSamePassword
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(passwordHash), passwordChangeStamp()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// passwordChangeStamp backdates the change by one second so a token
// issued in the same instant still compares as stale.
func passwordChangeStamp() time.Time {
	return time.Now().Add(-time.Second)
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req user.UpdateProfileRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var name *string
	if req.Name != "" {
		name = &req.Name
	}

	if err := s.repo.UpdateProfile(ctx, userID, name, req.Bio, req.Avatar); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dto := u.ToDTO()
	return &dto, nil
}

// ========================================
// ADMIN
// ========================================

func (s *userService) ListUsers(ctx context.Context, req user.ListUsersRequest) ([]user.UserDTO, int, error) {
	req.SetDefaults()
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	users, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	dtos := make([]user.UserDTO, len(users))
	for i, u := range users {
		dtos[i] = u.ToDTO()
	}

	return dtos, total, nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	return s.GetProfile(ctx, userID)
}

func (s *userService) UpdateUserRole(ctx context.Context, actorID, userID uuid.UUID, req user.UpdateRoleRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if actorID == userID {
		return user.ErrSelfRoleChange
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.UpdateRole(ctx, userID, req.Role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	return nil
}

func (s *userService) UpdateUserStatus(ctx context.Context, actorID, userID uuid.UUID, req user.UpdateStatusRequest) error {
	if actorID == userID && !req.IsActive {
		return user.ErrSelfDeactivate
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, userID, req.IsActive); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	return nil
}

// EnsureAdmin creates the seed admin account on first boot. Existing
// accounts are left untouched.
func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	// Matches the lowercasing applied on Register/Login, so the seed
	// account can actually sign in.
	email = strings.ToLower(email)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check admin exists: %w", err)
	}
	if exists {
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	admin := &user.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		Name:         name,
		Role:         user.RoleAdmin,
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Info("seed admin account created", map[string]interface{}{"email": email})
	return nil
}

// ========================================
// HELPERS
// ========================================

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
