package admin

import "errors"

var (
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrOperatorInactive   = errors.New("operator account is inactive")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrCannotManageRole   = errors.New("cannot manage operator with equal or higher role")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrEmailTaken         = errors.New("email already in use")
)
