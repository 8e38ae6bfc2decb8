package interceptor

import "errors"

var (
	ErrAlreadyInstalled = errors.New("interceptor.already_installed")
	ErrNotInstalled     = errors.New("interceptor.not_installed")
)
