package auth

import "errors"

var (
	// ErrInvalidCredentials is returned on a failed username/password check.
	// The same error covers unknown usernames so callers cannot probe accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountDisabled is returned when a disabled account attempts login.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrPermissionDenied is returned when the caller lacks the required role.
	ErrPermissionDenied = errors.New("insufficient permissions")

	// ErrAdminExists is returned by provisioning when an admin already exists.
	ErrAdminExists = errors.New("an administrator account already exists")
)
