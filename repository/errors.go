package repository

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrTokenNotFound     = errors.New("refresh token not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)
