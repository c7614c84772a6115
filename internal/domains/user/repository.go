package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the data access contract for accounts.
type Repository interface {
	// Create inserts a new account.
	// Returns ErrEmailAlreadyExists when the email is taken.
	Create(ctx context.Context, user *User) (uuid.UUID, error)

	// FindByID returns ErrUserNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail is used for login, no caching.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// UpdateProfile patches name, bio and avatar. Nil fields keep their
	// current value.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, bio, avatar *string) error

	// FindByVerificationToken only matches tokens that have not expired.
	FindByVerificationToken(ctx context.Context, token string) (*User, error)

	// FindByResetToken only matches tokens that have not expired.
	FindByResetToken(ctx context.Context, token string) (*User, error)

	// UpdatePassword stores a new hash, stamps password_changed_at and
	// clears any reset token.
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, changedAt time.Time) error

	// SetResetToken stores a reset token with its expiry.
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// MarkAsVerified flags the email as verified and clears the token.
	MarkAsVerified(ctx context.Context, userID uuid.UUID) error

	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error

	// List returns accounts matching the filters plus the total count.
	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)

	UpdateRole(ctx context.Context, userID uuid.UUID, role Role) error
	UpdateStatus(ctx context.Context, userID uuid.UUID, isActive bool) error

	// DeleteExpiredTokens clears verification and reset tokens past
	// their expiry. Returns the number of rows touched.
	DeleteExpiredTokens(ctx context.Context) (int64, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Stats returns total and active account counts for the dashboard.
	Stats(ctx context.Context) (total int, active int, err error)
}
