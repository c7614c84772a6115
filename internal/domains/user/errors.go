package user

import "errors"

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserInactive       = errors.New("user account is deactivated")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSamePassword       = errors.New("new password cannot be same as current password")
	ErrTooManyAttempts    = errors.New("too many login attempts, please try again later")

	// Admins cannot demote or deactivate themselves.
	ErrSelfRoleChange = errors.New("cannot change your own role")
	ErrSelfDeactivate = errors.New("cannot deactivate your own account")

	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden: insufficient permissions")
	ErrInvalidRole  = errors.New("invalid user role")
)
