// Package apperrors defines the recoverable failure kinds the engine
// reports. Route handlers translate these into transport responses;
// anything not listed here is treated as an infrastructure fault.
package apperrors

import "errors"

var (
	// ErrNotFound is returned when a referenced project, membership or
	// invitation link does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the acting user lacks the required
	// role level for the attempted action.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrNotAMember is returned when an operation targets a user who has
	// no membership in the project.
	ErrNotAMember = errors.New("user is not a member of this project")

	// ErrAlreadyMember is returned when a membership for the
	// (project, user) pair already exists.
	ErrAlreadyMember = errors.New("user is already a member of this project")

	// ErrOwnerConflict is returned when a second OWNER membership would
	// be created for a project.
	ErrOwnerConflict = errors.New("project already has an owner")

	// ErrCannotRemoveOwner is returned when removing the current owner
	// without transferring ownership first.
	ErrCannotRemoveOwner = errors.New("cannot remove project owner, transfer ownership first")

	// ErrInvalidOrExpiredToken is returned when an invitation token is
	// absent, inactive, expired or usage-exhausted.
	ErrInvalidOrExpiredToken = errors.New("invitation link is invalid or expired")

	// ErrInvalidInput is returned for malformed roles, non-positive max
	// uses, past expiry at creation, or a no-op role change.
	ErrInvalidInput = errors.New("invalid input")
)

// IsRecoverable reports whether err is one of the expected outcomes a
// route handler maps to a user-facing response.
func IsRecoverable(err error) bool {
	for _, known := range []error{
		ErrNotFound,
		ErrForbidden,
		ErrNotAMember,
		ErrAlreadyMember,
		ErrOwnerConflict,
		ErrCannotRemoveOwner,
		ErrInvalidOrExpiredToken,
		ErrInvalidInput,
	} {
		if errors.Is(err, known) {
			return true
		}
	}

	return false
}
