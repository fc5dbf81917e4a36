package service

import "errors"

// Errors shared by the service and its storage backends. Transports match
// them with errors.Is to pick a status code.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrConfigNotFound       = errors.New("configuration not found")
	ErrInvalidConfig        = errors.New("invalid configuration")
)
