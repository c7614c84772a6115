package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the account entity, mapped 1:1 to the users table.
type User struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Email string    `db:"email" json:"email"`

	PasswordHash string `db:"password_hash" json:"-"`

	Name   string  `db:"name" json:"name"`
	Bio    *string `db:"bio" json:"bio,omitempty"`
	Avatar *string `db:"avatar" json:"avatar,omitempty"`

	Role     Role `db:"role" json:"role"`
	IsActive bool `db:"is_active" json:"is_active"`

	IsVerified                 bool       `db:"is_verified" json:"is_verified"`
	VerificationToken          *string    `db:"verification_token" json:"-"`
	VerificationTokenExpiresAt *time.Time `db:"verification_token_expires_at" json:"-"`

	ResetToken          *string    `db:"reset_token" json:"-"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at" json:"-"`

	// PasswordChangedAt invalidates tokens issued before a password change.
	PasswordChangedAt *time.Time `db:"password_changed_at" json:"-"`

	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// PostCount is derived, populated by list queries only.
	PostCount int `db:"-" json:"post_count,omitempty"`
}

// Role enum. Every new account starts as author.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

func AllRoles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleAuthor}
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleAuthor:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// CanManageAnyPost reports whether the role may mutate posts it does
// not own. Authors are limited to their own posts.
func (r Role) CanManageAnyPost() bool {
	return r == RoleAdmin || r == RoleEditor
}

// TokenIssuedBeforePasswordChange reports whether a token issued at
// issuedAt predates the last password change and must be rejected.
func (u *User) TokenIssuedBeforePasswordChange(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Before(*u.PasswordChangedAt)
}

// IsPasswordResetValid reports whether the stored reset token is still
// within its expiry window.
func (u *User) IsPasswordResetValid() bool {
	if u.ResetToken == nil || u.ResetTokenExpiresAt == nil {
		return false
	}
	return time.Now().Before(*u.ResetTokenExpiresAt)
}

// Sanitize removes sensitive data before sending to clients.
func (u *User) Sanitize() {
	u.PasswordHash = ""
	u.VerificationToken = nil
	u.ResetToken = nil
}
