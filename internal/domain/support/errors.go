package support

import "errors"

var (
	ErrSessionNotFound      = errors.New("support session not found")
	ErrNotSessionOwner      = errors.New("caller does not own this support session")
	ErrSessionExpired       = errors.New("support session has expired")
	ErrSessionInactive      = errors.New("support session is not active")
	ErrReasonTooShort       = errors.New("reason does not meet the minimum length")
	ErrInvalidDuration      = errors.New("duration must be between 15 and 480 minutes")
	ErrInvalidSessionType   = errors.New("invalid session type")
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrTokenInvalid is the single uniform failure for every handoff token
	// problem — malformed, tampered, expired, or revoked. Collapsing them
	// denies an oracle distinguishing the sub-checks.
	ErrTokenInvalid = errors.New("invalid or expired token")
)
