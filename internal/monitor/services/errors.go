package services

import "errors"

var (
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrShutdownTimeout = errors.New("shutdown grace period exceeded")
	ErrAlreadyRunning  = errors.New("scheduler already running")
)
