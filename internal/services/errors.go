package services

import "errors"

var (
	// ErrUserNotFound signals that a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyExists signals an email uniqueness violation.
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned for an unknown email and a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
