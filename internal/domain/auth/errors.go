package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoMembership       = errors.New("user has no company membership")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
)
