package service

import "errors"

var (
	ErrItemNotFound       = errors.New("item not found")
	ErrItemAlreadySold    = errors.New("item already sold")
	ErrPermissionDenied   = errors.New("not enough permissions")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
)
