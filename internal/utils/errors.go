package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
	ErrProductNotFound    = errors.New("PRODUCT_NOT_FOUND")
	ErrUnknownEntity      = errors.New("UNKNOWN_ENTITY")
	ErrSyncAlreadyRunning = errors.New("SYNC_ALREADY_RUNNING")
)
