package user

import (
	"context"

	"github.com/google/uuid"
)

// Service is the business logic contract for accounts and auth.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error)

	// Admin operations. actorID is the authenticated admin, used to
	// refuse self role changes and self deactivation.
	ListUsers(ctx context.Context, req ListUsersRequest) ([]UserDTO, int, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateUserRole(ctx context.Context, actorID, userID uuid.UUID, req UpdateRoleRequest) error
	UpdateUserStatus(ctx context.Context, actorID, userID uuid.UUID, req UpdateStatusRequest) error

	// EnsureAdmin seeds the configured admin account at startup when no
	// account with that email exists.
	EnsureAdmin(ctx context.Context, name, email, password string) error
}
